package dbmysql

import (
	"time"

	"crosspost/internal/common"
)

// PublishResult is the per (post, platform) execution record. Exactly one row
// exists per pair; a retry resets the row in place rather than versioning it.
// While a publish is running the row is written only by the goroutine that
// owns it.
type PublishResult struct {
	ResultID   uint64               `gorm:"primaryKey;column:result_id;autoIncrement" json:"result_id"`
	PostID     uint64               `gorm:"column:post_id;uniqueIndex:idx_post_platform;not null" json:"post_id"`
	UserID     uint64               `gorm:"column:user_id;index;not null" json:"user_id"`
	PlatformID string               `gorm:"column:platform_id;uniqueIndex:idx_post_platform;size:20;not null" json:"platform_id"`
	Status     common.PublishStatus `gorm:"column:status;type:enum('pending','in_progress','published','failed');default:'pending'" json:"status"`
	Progress   int                  `gorm:"column:progress;default:0" json:"progress"` // 0-100

	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`
	PostURL     *string    `gorm:"column:post_url;size:512" json:"post_url,omitempty"`
	ExternalID  *string    `gorm:"column:external_id;size:255" json:"external_id,omitempty"`
	Error       *string    `gorm:"column:error;type:text" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ToResponse converts the record to its wire shape.
func (r *PublishResult) ToResponse() common.PublishResultResponse {
	return common.PublishResultResponse{
		PostID:      r.PostID,
		PlatformID:  r.PlatformID,
		Status:      string(r.Status),
		Progress:    r.Progress,
		PublishedAt: r.PublishedAt,
		PostURL:     r.PostURL,
		Error:       r.Error,
	}
}
