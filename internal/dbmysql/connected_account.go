package dbmysql

import (
	"time"
)

// ConnectedAccount holds the credential for one (user, platform) pair. At
// most one active account exists per pair. The publish engine only ever
// reads these rows.
type ConnectedAccount struct {
	AccountID    uint64 `gorm:"primaryKey;column:account_id;autoIncrement" json:"account_id"`
	UserID       uint64 `gorm:"column:user_id;uniqueIndex:idx_user_platform;not null" json:"user_id"`
	PlatformID   string `gorm:"column:platform_id;uniqueIndex:idx_user_platform;size:20;not null" json:"platform_id"`
	PlatformName string `gorm:"column:platform_name;size:50" json:"platform_name"`

	Username    string  `gorm:"column:username;size:255" json:"username"`
	DisplayName string  `gorm:"column:display_name;size:255" json:"display_name"`
	Avatar      *string `gorm:"column:avatar;size:512" json:"avatar,omitempty"`

	AccessToken    string     `gorm:"column:access_token;type:text;not null" json:"-"`
	RefreshToken   *string    `gorm:"column:refresh_token;type:text" json:"-"`
	TokenExpiresAt *time.Time `gorm:"column:token_expires_at" json:"-"`

	// Platform-specific posting target (Facebook page, Instagram business
	// account). Falls back to PlatformUserID when unset.
	PlatformUserID string  `gorm:"column:platform_user_id;size:255" json:"platform_user_id"`
	PageID         *string `gorm:"column:page_id;size:255" json:"-"`

	IsActive    bool       `gorm:"column:is_active;default:true" json:"is_active"`
	ConnectedAt time.Time  `gorm:"column:connected_at;autoCreateTime" json:"connected_at"`
	LastUsedAt  *time.Time `gorm:"column:last_used_at" json:"last_used_at,omitempty"`
}

// PostTarget resolves the id posts should be published under.
func (a *ConnectedAccount) PostTarget() string {
	if a.PageID != nil && *a.PageID != "" {
		return *a.PageID
	}
	return a.PlatformUserID
}
