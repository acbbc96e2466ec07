package app

import (
	"context"

	"edu_social_client/internal/feed"
	"edu_social_client/internal/post/domain"

	"github.com/stretchr/testify/mock"
)

// MockPostRepository Mock PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) List(ctx context.Context, view domain.View, query string, page, size int) (feed.Page[domain.Post], error) {
	args := m.Called(ctx, view, query, page, size)
	return args.Get(0).(feed.Page[domain.Post]), args.Error(1)
}

func (m *MockPostRepository) Create(ctx context.Context, content string, image *domain.Attachment) (domain.Post, error) {
	args := m.Called(ctx, content, image)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockPostRepository) UpdateStatus(ctx context.Context, id int64, status domain.PostStatus) (domain.Post, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockPostRepository) Pin(ctx context.Context, id int64, pinned bool) (domain.Post, error) {
	args := m.Called(ctx, id, pinned)
	return args.Get(0).(domain.Post), args.Error(1)
}

func (m *MockPostRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockPostRepository) ToggleLike(ctx context.Context, id int64) (domain.LikeResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.LikeResult), args.Error(1)
}

func (m *MockPostRepository) IsLiked(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) ToggleBookmark(ctx context.Context, id int64) (domain.BookmarkResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.BookmarkResult), args.Error(1)
}

func (m *MockPostRepository) IsBookmarked(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockPostRepository) AddComment(ctx context.Context, postID int64, content string, parentID *int64) (domain.Comment, error) {
	args := m.Called(ctx, postID, content, parentID)
	return args.Get(0).(domain.Comment), args.Error(1)
}

func (m *MockPostRepository) Comments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockPostRepository) CommentsPage(ctx context.Context, postID int64, page, size int) (feed.Page[domain.Comment], error) {
	args := m.Called(ctx, postID, page, size)
	return args.Get(0).(feed.Page[domain.Comment]), args.Error(1)
}
