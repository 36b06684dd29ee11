package post

import (
	"context"
	"fmt"
	"time"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
)

type PostService interface {
	CreatePost(ctx context.Context, userID uint64, input CreateInput) (*dbmysql.Post, error)
	GetPost(ctx context.Context, userID, postID uint64) (*dbmysql.Post, error)
	ListPosts(ctx context.Context, userID uint64) ([]dbmysql.Post, error)
	UpdatePost(ctx context.Context, userID, postID uint64, input CreateInput) (*dbmysql.Post, error)
	DeletePost(ctx context.Context, userID, postID uint64) error
}

type CreateInput struct {
	Caption      string     `json:"caption"`
	MediaFiles   []string   `json:"mediaFiles"`
	MediaTypes   []string   `json:"mediaTypes"`
	Platforms    []string   `json:"platforms"`
	ScheduledFor *time.Time `json:"scheduledFor"`
}

type postService struct {
	repo PostRepository
}

func NewPostService(repo PostRepository) PostService {
	return &postService{repo: repo}
}

func (s *postService) CreatePost(ctx context.Context, userID uint64, input CreateInput) (*dbmysql.Post, error) {
	if err := common.ValidateCaption(input.Caption); err != nil {
		return nil, err
	}

	// Until publishing starts the status is user-controlled: scheduled when
	// a schedule time is set, draft otherwise. Dispatch flips it to
	// publishing later.
	status := common.PostDraft
	if input.ScheduledFor != nil {
		status = common.PostScheduled
	}

	post := &dbmysql.Post{
		UserID:       userID,
		Caption:      input.Caption,
		MediaFiles:   input.MediaFiles,
		MediaTypes:   input.MediaTypes,
		Platforms:    input.Platforms,
		ScheduledFor: input.ScheduledFor,
		Status:       status,
	}

	if err := s.repo.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *postService) GetPost(ctx context.Context, userID, postID uint64) (*dbmysql.Post, error) {
	post, err := s.repo.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, common.ErrForbidden
	}
	return post, nil
}

func (s *postService) ListPosts(ctx context.Context, userID uint64) ([]dbmysql.Post, error) {
	return s.repo.ListUserPosts(ctx, userID)
}

func (s *postService) UpdatePost(ctx context.Context, userID, postID uint64, input CreateInput) (*dbmysql.Post, error) {
	post, err := s.GetPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	// content edits are pre-publish only
	if post.Status != common.PostDraft && post.Status != common.PostScheduled {
		return nil, fmt.Errorf("%w: post already publishing", common.ErrConflict)
	}

	if err := common.ValidateCaption(input.Caption); err != nil {
		return nil, err
	}

	post.Caption = input.Caption
	post.MediaFiles = input.MediaFiles
	post.MediaTypes = input.MediaTypes
	post.Platforms = input.Platforms
	post.ScheduledFor = input.ScheduledFor
	if input.ScheduledFor != nil {
		post.Status = common.PostScheduled
	} else {
		post.Status = common.PostDraft
	}

	if err := s.repo.UpdatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

func (s *postService) DeletePost(ctx context.Context, userID, postID uint64) error {
	if _, err := s.GetPost(ctx, userID, postID); err != nil {
		return err
	}
	return s.repo.DeletePost(ctx, postID)
}
