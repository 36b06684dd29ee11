package publish

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
)

// ResultRepository is the durable store for per (post, platform) publish
// records. During execution a record is written only by the goroutine that
// owns it.
type ResultRepository interface {
	Create(ctx context.Context, result *dbmysql.PublishResult) error
	Save(ctx context.Context, result *dbmysql.PublishResult) error
	Find(ctx context.Context, postID uint64, platformID string) (*dbmysql.PublishResult, error)
	FindMany(ctx context.Context, postID uint64) ([]*dbmysql.PublishResult, error)
}

// AccountResolver finds the active credential for (owner, platform).
// A missing account is (nil, nil), not an error.
type AccountResolver interface {
	FindActive(ctx context.Context, userID uint64, platformID string) (*dbmysql.ConnectedAccount, error)
}

// PostStatusStore lets the orchestrator persist the post-level aggregate.
type PostStatusStore interface {
	UpdateStatus(ctx context.Context, postID uint64, status common.PostStatus) error
}

type resultRepository struct {
	db *gorm.DB
}

func NewResultRepository(db *gorm.DB) ResultRepository {
	return &resultRepository{db: db}
}

func (r *resultRepository) Create(ctx context.Context, result *dbmysql.PublishResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *resultRepository) Save(ctx context.Context, result *dbmysql.PublishResult) error {
	return r.db.WithContext(ctx).Save(result).Error
}

func (r *resultRepository) Find(ctx context.Context, postID uint64, platformID string) (*dbmysql.PublishResult, error) {
	var result dbmysql.PublishResult
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND platform_id = ?", postID, platformID).
		First(&result).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *resultRepository) FindMany(ctx context.Context, postID uint64) ([]*dbmysql.PublishResult, error) {
	var results []*dbmysql.PublishResult
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("platform_id asc").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
