package post

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
)

type PostRepository interface {
	CreatePost(ctx context.Context, post *dbmysql.Post) error
	GetPostByID(ctx context.Context, postID uint64) (*dbmysql.Post, error)
	ListUserPosts(ctx context.Context, userID uint64) ([]dbmysql.Post, error)
	UpdatePost(ctx context.Context, post *dbmysql.Post) error
	UpdateStatus(ctx context.Context, postID uint64, status common.PostStatus) error
	DeletePost(ctx context.Context, postID uint64) error
	ListDueScheduled(ctx context.Context, now time.Time) ([]dbmysql.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) CreatePost(ctx context.Context, post *dbmysql.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetPostByID(ctx context.Context, postID uint64) (*dbmysql.Post, error) {
	var post dbmysql.Post
	err := r.db.WithContext(ctx).Where("post_id = ?", postID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListUserPosts(ctx context.Context, userID uint64) ([]dbmysql.Post, error) {
	var posts []dbmysql.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) UpdatePost(ctx context.Context, post *dbmysql.Post) error {
	return r.db.WithContext(ctx).Save(post).Error
}

func (r *postRepository) UpdateStatus(ctx context.Context, postID uint64, status common.PostStatus) error {
	return r.db.WithContext(ctx).
		Model(&dbmysql.Post{}).
		Where("post_id = ?", postID).
		Update("status", status).Error
}

func (r *postRepository) DeletePost(ctx context.Context, postID uint64) error {
	return r.db.WithContext(ctx).Delete(&dbmysql.Post{}, postID).Error
}

func (r *postRepository) ListDueScheduled(ctx context.Context, now time.Time) ([]dbmysql.Post, error) {
	var posts []dbmysql.Post
	err := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?", common.PostScheduled, now).
		Find(&posts).Error
	return posts, err
}
