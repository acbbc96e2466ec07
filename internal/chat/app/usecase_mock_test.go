package app

import (
	"context"

	"edu_social_client/internal/chat/domain"
	errprocess "edu_social_client/pkg/err"

	"github.com/stretchr/testify/mock"
)

// MockChatRepository Mock ChatRepository
type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) ListChats(ctx context.Context) ([]domain.Chat, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Chat), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) CreateChat(ctx context.Context, senderID, receiverID string) (string, error) {
	args := m.Called(ctx, senderID, receiverID)
	return args.String(0), args.Error(1)
}

func (m *MockChatRepository) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	args := m.Called(ctx, chatID)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChatRepository) SaveMessage(ctx context.Context, req domain.MessageRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockChatRepository) MarkSeen(ctx context.Context, chatID string) error {
	return m.Called(ctx, chatID).Error(0)
}

func (m *MockChatRepository) UploadMedia(ctx context.Context, chatID, fileName string, data []byte) error {
	return m.Called(ctx, chatID, fileName, data).Error(0)
}

func (m *MockChatRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockInboxRepository Mock InboxRepository
type MockInboxRepository struct {
	mock.Mock
}

func (m *MockInboxRepository) List(ctx context.Context) ([]domain.InboxItem, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.InboxItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInboxRepository) Unread(ctx context.Context) ([]domain.InboxItem, error) {
	args := m.Called(ctx)
	if args.Get(0) != nil {
		return args.Get(0).([]domain.InboxItem), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockInboxRepository) UnreadCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInboxRepository) MarkRead(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInboxRepository) MarkAllRead(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockInboxRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// fakeIdentity fixed session user, "" means logged out
type fakeIdentity struct {
	id string
}

func (f fakeIdentity) UserID() string { return f.id }

func (f fakeIdentity) RequireUser() (string, error) {
	if f.id == "" {
		return "", errprocess.ErrSession
	}
	return f.id, nil
}
