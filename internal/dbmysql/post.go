package dbmysql

import (
	"time"

	"crosspost/internal/common"
)

// Post is one piece of content composed by a user. MediaFiles holds ordered
// media URLs served by the media server; Platforms holds the platform ids the
// user selected at compose time.
type Post struct {
	PostID       uint64            `gorm:"primaryKey;column:post_id;autoIncrement" json:"post_id"`
	UserID       uint64            `gorm:"column:user_id;index;not null" json:"user_id"`
	Caption      string            `gorm:"column:caption;type:text;not null" json:"caption"`
	MediaFiles   []string          `gorm:"column:media_files;serializer:json" json:"media_files"`
	MediaTypes   []string          `gorm:"column:media_types;serializer:json" json:"media_types"`
	Platforms    []string          `gorm:"column:platforms;serializer:json" json:"platforms"`
	ScheduledFor *time.Time        `gorm:"column:scheduled_for;index" json:"scheduled_for,omitempty"`
	Status       common.PostStatus `gorm:"column:status;type:enum('draft','scheduled','publishing','published','completed','failed');default:'draft';index" json:"status"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}
