package app

import (
	"context"
	"errors"
	"testing"

	"edu_social_client/internal/chat/domain"
	errprocess "edu_social_client/pkg/err"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedInbox(t *testing.T) (*InboxController, *MockInboxRepository) {
	t.Helper()
	repo := new(MockInboxRepository)
	repo.On("List", context.Background()).Return([]domain.InboxItem{
		{ID: 1, ChatID: "c1", Content: "a"},
		{ID: 2, ChatID: "c1", Content: "b", Read: true},
		{ID: 3, ChatID: "c2", Content: "c"},
	}, nil).Once()
	c := NewInboxController(repo, nil)
	require.NoError(t, c.Load(context.Background()))
	return c, repo
}

func TestInbox_Load(t *testing.T) {
	c, repo := loadedInbox(t)

	assert.Equal(t, int64(2), c.UnreadCount())
	assert.Len(t, c.State().Items, 3)
	repo.AssertExpectations(t)
}

func TestInbox_MarkRead(t *testing.T) {
	c, repo := loadedInbox(t)
	repo.On("MarkRead", context.Background(), int64(1)).Return(nil).Twice()

	require.NoError(t, c.MarkRead(context.Background(), 1))
	require.NoError(t, c.MarkRead(context.Background(), 1))

	assert.Equal(t, int64(1), c.UnreadCount())
	assert.True(t, c.State().Items[0].Read)
}

func TestInbox_MarkAllReadAndDelete(t *testing.T) {
	c, repo := loadedInbox(t)
	repo.On("Delete", context.Background(), int64(3)).Return(nil).Once()
	repo.On("MarkAllRead", context.Background()).Return(nil).Once()

	require.NoError(t, c.Delete(context.Background(), 3))
	assert.Equal(t, int64(1), c.UnreadCount())
	assert.Len(t, c.State().Items, 2)

	require.NoError(t, c.MarkAllRead(context.Background()))
	assert.Equal(t, int64(0), c.UnreadCount())
	repo.AssertExpectations(t)
}

func TestInbox_ErrorsKeepState(t *testing.T) {
	c, repo := loadedInbox(t)
	repo.On("Delete", context.Background(), int64(1)).Return(errors.New("down")).Once()
	repo.On("UnreadCount", context.Background()).Return(int64(0), errors.New("down")).Once()

	assert.ErrorIs(t, c.Delete(context.Background(), 1), errprocess.ErrNetwork)
	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, errprocess.ErrNetwork)
	assert.Len(t, c.State().Items, 3)
	assert.Equal(t, int64(2), c.UnreadCount())
}

func TestInbox_Refresh(t *testing.T) {
	c, repo := loadedInbox(t)
	repo.On("UnreadCount", context.Background()).Return(int64(7), nil).Once()

	n, err := c.Refresh(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, int64(7), c.UnreadCount())
}
