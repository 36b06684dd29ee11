package post

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crosspost/internal/common"
	"crosspost/internal/dbmysql"
)

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) CreatePost(ctx context.Context, post *dbmysql.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) GetPostByID(ctx context.Context, postID uint64) (*dbmysql.Post, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dbmysql.Post), args.Error(1)
}

func (m *mockPostRepo) ListUserPosts(ctx context.Context, userID uint64) ([]dbmysql.Post, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dbmysql.Post), args.Error(1)
}

func (m *mockPostRepo) UpdatePost(ctx context.Context, post *dbmysql.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *mockPostRepo) UpdateStatus(ctx context.Context, postID uint64, status common.PostStatus) error {
	args := m.Called(ctx, postID, status)
	return args.Error(0)
}

func (m *mockPostRepo) DeletePost(ctx context.Context, postID uint64) error {
	args := m.Called(ctx, postID)
	return args.Error(0)
}

func (m *mockPostRepo) ListDueScheduled(ctx context.Context, now time.Time) ([]dbmysql.Post, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dbmysql.Post), args.Error(1)
}

func TestCreatePostStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("draft without schedule", func(t *testing.T) {
		repo := new(mockPostRepo)
		repo.On("CreatePost", ctx, mock.Anything).Return(nil)
		svc := NewPostService(repo)

		post, err := svc.CreatePost(ctx, 7, CreateInput{Caption: "hello"})
		require.NoError(t, err)
		require.Equal(t, common.PostDraft, post.Status)
		repo.AssertExpectations(t)
	})

	t.Run("scheduled with schedule", func(t *testing.T) {
		repo := new(mockPostRepo)
		repo.On("CreatePost", ctx, mock.Anything).Return(nil)
		svc := NewPostService(repo)

		when := time.Now().Add(time.Hour)
		post, err := svc.CreatePost(ctx, 7, CreateInput{Caption: "hello", ScheduledFor: &when})
		require.NoError(t, err)
		require.Equal(t, common.PostScheduled, post.Status)
	})

	t.Run("empty caption rejected", func(t *testing.T) {
		repo := new(mockPostRepo)
		svc := NewPostService(repo)

		_, err := svc.CreatePost(ctx, 7, CreateInput{Caption: "   "})
		require.Error(t, err)
		repo.AssertNotCalled(t, "CreatePost")
	})
}

func TestGetPostOwnership(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPostRepo)
	repo.On("GetPostByID", ctx, uint64(1)).Return(&dbmysql.Post{PostID: 1, UserID: 7}, nil)
	svc := NewPostService(repo)

	_, err := svc.GetPost(ctx, 8, 1)
	require.ErrorIs(t, err, common.ErrForbidden)

	post, err := svc.GetPost(ctx, 7, 1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), post.PostID)
}

func TestUpdatePostLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("draft is editable", func(t *testing.T) {
		repo := new(mockPostRepo)
		repo.On("GetPostByID", ctx, uint64(1)).Return(&dbmysql.Post{PostID: 1, UserID: 7, Status: common.PostDraft}, nil)
		repo.On("UpdatePost", ctx, mock.Anything).Return(nil)
		svc := NewPostService(repo)

		post, err := svc.UpdatePost(ctx, 7, 1, CreateInput{Caption: "edited"})
		require.NoError(t, err)
		require.Equal(t, "edited", post.Caption)
		require.Equal(t, common.PostDraft, post.Status)
	})

	t.Run("publishing post is frozen", func(t *testing.T) {
		repo := new(mockPostRepo)
		repo.On("GetPostByID", ctx, uint64(1)).Return(&dbmysql.Post{PostID: 1, UserID: 7, Status: common.PostPublishing}, nil)
		svc := NewPostService(repo)

		_, err := svc.UpdatePost(ctx, 7, 1, CreateInput{Caption: "edited"})
		require.ErrorIs(t, err, common.ErrConflict)
		repo.AssertNotCalled(t, "UpdatePost")
	})

	t.Run("clearing the schedule reverts to draft", func(t *testing.T) {
		when := time.Now().Add(time.Hour)
		repo := new(mockPostRepo)
		repo.On("GetPostByID", ctx, uint64(1)).Return(
			&dbmysql.Post{PostID: 1, UserID: 7, Status: common.PostScheduled, ScheduledFor: &when}, nil)
		repo.On("UpdatePost", ctx, mock.Anything).Return(nil)
		svc := NewPostService(repo)

		post, err := svc.UpdatePost(ctx, 7, 1, CreateInput{Caption: "edited"})
		require.NoError(t, err)
		require.Equal(t, common.PostDraft, post.Status)
		require.Nil(t, post.ScheduledFor)
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	repo := new(mockPostRepo)
	repo.On("GetPostByID", ctx, uint64(1)).Return(&dbmysql.Post{PostID: 1, UserID: 7}, nil)
	repo.On("DeletePost", ctx, uint64(1)).Return(nil)
	svc := NewPostService(repo)

	require.NoError(t, svc.DeletePost(ctx, 7, 1))
	repo.AssertExpectations(t)
}
