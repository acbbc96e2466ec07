package app

import (
	"context"
	"sync"

	"edu_social_client/internal/chat/domain"
	"edu_social_client/internal/chat/repository"
	errprocess "edu_social_client/pkg/err"
)

// ViewInbox change hook name of the notifications page
const ViewInbox = "inbox"

// InboxState notifications page state
type InboxState struct {
	Items       []domain.InboxItem `json:"items"`
	UnreadCount int64              `json:"unreadCount"`
}

// InboxController 通知頁狀態, 只在後端成功後修改
type InboxController struct {
	repo     repository.InboxRepository
	onChange func(view string)

	mu     sync.Mutex
	items  []domain.InboxItem
	unread int64
}

// NewInboxController create InboxController, onChange may be nil
func NewInboxController(repo repository.InboxRepository, onChange func(view string)) *InboxController {
	return &InboxController{repo: repo, onChange: onChange}
}

func (c *InboxController) changed() {
	if c.onChange != nil {
		c.onChange(ViewInbox)
	}
}

// Load fetch every stored notification and the unread count
func (c *InboxController) Load(ctx context.Context) error {
	items, err := c.repo.List(ctx)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "load notifications", err)
	}
	c.mu.Lock()
	c.items = items
	c.unread = countUnread(items)
	c.mu.Unlock()
	c.changed()
	return nil
}

// Refresh reload the server side unread count only
func (c *InboxController) Refresh(ctx context.Context) (int64, error) {
	n, err := c.repo.UnreadCount(ctx)
	if err != nil {
		return 0, errprocess.Wrap(errprocess.ErrNetwork, "load unread count", err)
	}
	c.mu.Lock()
	c.unread = n
	c.mu.Unlock()
	c.changed()
	return n, nil
}

// MarkRead mark one notification read
func (c *InboxController) MarkRead(ctx context.Context, id int64) error {
	if err := c.repo.MarkRead(ctx, id); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "mark notification read", err)
	}
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == id && !c.items[i].Read {
			c.items[i].Read = true
			if c.unread > 0 {
				c.unread--
			}
		}
	}
	c.mu.Unlock()
	c.changed()
	return nil
}

// MarkAllRead mark every notification read
func (c *InboxController) MarkAllRead(ctx context.Context) error {
	if err := c.repo.MarkAllRead(ctx); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "mark all notifications read", err)
	}
	c.mu.Lock()
	for i := range c.items {
		c.items[i].Read = true
	}
	c.unread = 0
	c.mu.Unlock()
	c.changed()
	return nil
}

// Delete remove one notification
func (c *InboxController) Delete(ctx context.Context, id int64) error {
	if err := c.repo.Delete(ctx, id); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "delete notification", err)
	}
	c.mu.Lock()
	out := c.items[:0]
	for _, it := range c.items {
		if it.ID == id {
			if !it.Read && c.unread > 0 {
				c.unread--
			}
			continue
		}
		out = append(out, it)
	}
	c.items = out
	c.mu.Unlock()
	c.changed()
	return nil
}

// UnreadCount local unread count
func (c *InboxController) UnreadCount() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unread
}

// State copy of the current state
func (c *InboxController) State() InboxState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return InboxState{Items: append([]domain.InboxItem(nil), c.items...), UnreadCount: c.unread}
}

func countUnread(items []domain.InboxItem) int64 {
	var n int64
	for _, it := range items {
		if !it.Read {
			n++
		}
	}
	return n
}
