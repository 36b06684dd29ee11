package common

import (
	"time"
)

// PostStatus is the post-level lifecycle status. Before publishing starts it
// is user-controlled (draft/scheduled); once publishing starts it is derived
// from the per-platform publish results.
type PostStatus string

const (
	PostDraft      PostStatus = "draft"
	PostScheduled  PostStatus = "scheduled"
	PostPublishing PostStatus = "publishing"
	PostPublished  PostStatus = "published" // every target published
	PostCompleted  PostStatus = "completed" // at least one published, at least one failed
	PostFailed     PostStatus = "failed"    // every target failed
)

// PublishStatus is the per (post, platform) execution status.
// pending and in_progress are transient; published and failed are terminal.
type PublishStatus string

const (
	PublishPending    PublishStatus = "pending"
	PublishInProgress PublishStatus = "in_progress"
	PublishPublished  PublishStatus = "published"
	PublishFailed     PublishStatus = "failed"
)

// Terminal reports whether no further automatic transition occurs.
func (s PublishStatus) Terminal() bool {
	return s == PublishPublished || s == PublishFailed
}

type PublishResultResponse struct {
	PostID      uint64     `json:"postId"`
	PlatformID  string     `json:"platformId"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	PostURL     *string    `json:"postUrl,omitempty"`
	Error       *string    `json:"error,omitempty"`
}

type DashboardStats struct {
	TotalPosts     int64 `json:"totalPosts"`
	PublishedCount int64 `json:"publishedCount"`
	FailedCount    int64 `json:"failedCount"`
	PendingCount   int64 `json:"pendingCount"`
	SuccessRate    int   `json:"successRate"`
}

type Activity struct {
	ID         uint64 `json:"id"`
	Type       string `json:"type"`
	PlatformID string `json:"platformId"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}
