package repository

import (
	"context"
	"strconv"

	"edu_social_client/internal/chat/domain"
	"edu_social_client/pkg/httpclient"
)

const notificationsPath = "/api/v1/chats/notifications"

// InboxRepository stored notifications backend
type InboxRepository interface {
	List(ctx context.Context) ([]domain.InboxItem, error)
	Unread(ctx context.Context) ([]domain.InboxItem, error)
	UnreadCount(ctx context.Context) (int64, error)
	MarkRead(ctx context.Context, id int64) error
	MarkAllRead(ctx context.Context) error
	Delete(ctx context.Context, id int64) error
}

type inboxRepository struct {
	client *httpclient.Client
}

// NewInboxRepository create InboxRepository over REST
func NewInboxRepository(client *httpclient.Client) InboxRepository {
	return &inboxRepository{client: client}
}

func (r *inboxRepository) List(ctx context.Context) ([]domain.InboxItem, error) {
	var items []domain.InboxItem
	if err := r.client.Get(ctx, notificationsPath, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inboxRepository) Unread(ctx context.Context) ([]domain.InboxItem, error) {
	var items []domain.InboxItem
	if err := r.client.Get(ctx, notificationsPath+"/unread", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *inboxRepository) UnreadCount(ctx context.Context) (int64, error) {
	var n int64
	if err := r.client.Get(ctx, notificationsPath+"/count", nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *inboxRepository) MarkRead(ctx context.Context, id int64) error {
	return r.client.Put(ctx, notificationsPath+"/"+strconv.FormatInt(id, 10)+"/read", nil, nil, nil)
}

func (r *inboxRepository) MarkAllRead(ctx context.Context) error {
	return r.client.Put(ctx, notificationsPath+"/read-all", nil, nil, nil)
}

func (r *inboxRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, notificationsPath+"/"+strconv.FormatInt(id, 10), nil)
}
