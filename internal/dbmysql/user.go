package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	UserID        uint64         `gorm:"primaryKey;column:user_id;autoIncrement" json:"user_id"`
	Email         string         `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  *string        `gorm:"column:password_hash;size:255" json:"-"` // nil for SSO users
	Name          string         `gorm:"column:name;size:100;not null" json:"name"`
	Avatar        *string        `gorm:"column:avatar;size:512" json:"avatar,omitempty"`
	OAuthProvider *string        `gorm:"column:oauth_provider;size:50" json:"-"` // google, facebook, ...
	OAuthID       *string        `gorm:"column:oauth_id;size:255" json:"-"`
	IsActive      bool           `gorm:"column:is_active;default:true" json:"is_active"`
	IsVerified    bool           `gorm:"column:is_verified;default:false" json:"is_verified"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
