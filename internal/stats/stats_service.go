package stats

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"crosspost/internal/cache"
	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
)

const statsCacheTTL = 30 * time.Second

type StatsService interface {
	Dashboard(ctx context.Context, userID uint64) (*common.DashboardStats, error)
	RecentActivity(ctx context.Context, userID uint64) ([]common.Activity, error)
}

type statsService struct {
	db    *gorm.DB
	cache *cache.Cache
}

func NewStatsService(db *gorm.DB, c *cache.Cache) StatsService {
	return &statsService{db: db, cache: c}
}

func (s *statsService) Dashboard(ctx context.Context, userID uint64) (*common.DashboardStats, error) {
	key := fmt.Sprintf("stats:dashboard:%d", userID)
	var cached common.DashboardStats
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	var out common.DashboardStats
	if err := s.db.WithContext(ctx).Model(&dbmysql.Post{}).
		Where("user_id = ?", userID).
		Count(&out.TotalPosts).Error; err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	results := s.db.WithContext(ctx).Model(&dbmysql.PublishResult{}).
		Joins("JOIN posts ON posts.post_id = publish_results.post_id").
		Where("posts.user_id = ?", userID)

	if err := results.Session(&gorm.Session{}).
		Where("publish_results.status = ?", common.PublishPublished).
		Count(&out.PublishedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count published: %w", err)
	}
	if err := results.Session(&gorm.Session{}).
		Where("publish_results.status = ?", common.PublishFailed).
		Count(&out.FailedCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count failed: %w", err)
	}
	if err := results.Session(&gorm.Session{}).
		Where("publish_results.status IN ?", []common.PublishStatus{common.PublishPending, common.PublishInProgress}).
		Count(&out.PendingCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending: %w", err)
	}

	if total := out.PublishedCount + out.FailedCount; total > 0 {
		out.SuccessRate = int(out.PublishedCount * 100 / total)
	}

	s.cache.SetJSON(ctx, key, &out, statsCacheTTL)
	return &out, nil
}

func (s *statsService) RecentActivity(ctx context.Context, userID uint64) ([]common.Activity, error) {
	var records []dbmysql.PublishResult
	err := s.db.WithContext(ctx).
		Joins("JOIN posts ON posts.post_id = publish_results.post_id").
		Where("posts.user_id = ? AND publish_results.status IN ?",
			userID, []common.PublishStatus{common.PublishPublished, common.PublishFailed}).
		Order("publish_results.updated_at DESC").
		Limit(10).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load activity: %w", err)
	}

	activities := make([]common.Activity, 0, len(records))
	for _, rec := range records {
		act := common.Activity{
			ID:         rec.ResultID,
			PlatformID: rec.PlatformID,
			Timestamp:  rec.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if rec.Status == common.PublishPublished {
			act.Type = "published"
			act.Message = fmt.Sprintf("Post published to %s", rec.PlatformID)
		} else {
			act.Type = "failed"
			act.Message = fmt.Sprintf("Publish to %s failed", rec.PlatformID)
			if rec.Error != nil {
				act.Message = fmt.Sprintf("Publish to %s failed: %s", rec.PlatformID, *rec.Error)
			}
		}
		activities = append(activities, act)
	}
	return activities, nil
}
