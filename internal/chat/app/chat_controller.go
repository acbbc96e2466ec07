package app

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"edu_social_client/internal/chat/domain"
	"edu_social_client/internal/chat/repository"
	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/jsontime"
	"edu_social_client/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ViewChats change hook name of the chat list
const ViewChats = "chats"

// Identity current session user
type Identity interface {
	UserID() string
	RequireUser() (string, error)
}

// Snapshot chat view state
type Snapshot struct {
	Chats       []domain.Chat    `json:"chats"`
	SelectedID  string           `json:"selectedChatId"`
	Messages    []domain.Message `json:"messages"`
	UnreadTotal int              `json:"unreadTotal"`
}

// ChatController 聊天列表與目前選取聊天室的狀態
type ChatController struct {
	repo     repository.ChatRepository
	identity Identity
	now      func() time.Time
	maxBytes int64
	onChange func(view string)

	mu       sync.Mutex
	chats    []domain.Chat
	selected string
	messages []domain.Message
	contacts []domain.User
}

// Option ChatController option
type Option func(*ChatController)

// WithClock override time source
func WithClock(now func() time.Time) Option {
	return func(c *ChatController) { c.now = now }
}

// WithMaxUploadBytes attachment ceiling
func WithMaxUploadBytes(n int64) Option {
	return func(c *ChatController) { c.maxBytes = n }
}

// WithChangeHook called after every committed state change
func WithChangeHook(fn func(view string)) Option {
	return func(c *ChatController) { c.onChange = fn }
}

// NewChatController create ChatController
func NewChatController(repo repository.ChatRepository, identity Identity, opts ...Option) *ChatController {
	c := &ChatController{
		repo:     repo,
		identity: identity,
		now:      time.Now,
		maxBytes: 1000 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ChatController) changed() {
	if c.onChange != nil {
		c.onChange(ViewChats)
	}
}

// LoadChats replace the chat list, previous list is kept on error
func (c *ChatController) LoadChats(ctx context.Context) error {
	chats, err := c.repo.ListChats(ctx)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "load chats", err)
	}
	c.mu.Lock()
	c.chats = chats
	c.mu.Unlock()
	c.changed()
	return nil
}

// SelectChat make chatID the active chat, load its messages and mark them seen
func (c *ChatController) SelectChat(ctx context.Context, chatID string) error {
	msgs, err := c.repo.ListMessages(ctx, chatID)
	if err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "load messages", err)
	}

	c.mu.Lock()
	c.selected = chatID
	c.messages = msgs
	if i := c.indexLocked(chatID); i >= 0 {
		c.chats[i].UnreadCount = 0
	}
	c.mu.Unlock()
	c.changed()

	if err := c.repo.MarkSeen(ctx, chatID); err != nil {
		// the messages are shown, only the read receipt failed
		logger.Log.Warn("mark seen failed", zap.String("chat_id", chatID), zap.Error(err))
	}
	return nil
}

// SendMessage send text to the selected chat and echo it locally as SENT
func (c *ChatController) SendMessage(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return errprocess.Validation("message content is empty")
	}
	chat, ok := c.selectedChat()
	if !ok {
		return errprocess.Validation("no chat selected")
	}
	sender := c.identity.UserID()
	req := domain.MessageRequest{
		Content:    content,
		SenderID:   sender,
		ReceiverID: chat.Counterpart(sender),
		Type:       domain.MessageText,
		ChatID:     chat.ID,
	}
	if err := c.repo.SaveMessage(ctx, req); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "send message", err)
	}

	c.appendLocal(chat.ID, domain.Message{
		Content:    content,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Type:       domain.MessageText,
		State:      domain.StateSent,
	}, content)
	return nil
}

// UploadMedia send an image attachment to the selected chat
func (c *ChatController) UploadMedia(ctx context.Context, fileName string, data []byte) error {
	if len(data) == 0 {
		return errprocess.Validation("attachment is empty")
	}
	if int64(len(data)) > c.maxBytes {
		return errprocess.Validation("attachment exceeds size limit")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return errprocess.Validation("attachment must be an image, got " + mt.String())
	}
	chat, ok := c.selectedChat()
	if !ok {
		return errprocess.Validation("no chat selected")
	}
	if err := c.repo.UploadMedia(ctx, chat.ID, fileName, data); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "upload media", err)
	}

	sender := c.identity.UserID()
	c.appendLocal(chat.ID, domain.Message{
		Content:    domain.AttachmentContent,
		SenderID:   sender,
		ReceiverID: chat.Counterpart(sender),
		Type:       domain.MessageImage,
		State:      domain.StateSent,
		Media:      fileName,
	}, domain.AttachmentContent)
	return nil
}

// StartChat open the chat with contactID, create it when absent
func (c *ChatController) StartChat(ctx context.Context, contactID string) (string, error) {
	userID, err := c.identity.RequireUser()
	if err != nil {
		logger.Log.Warn("start chat without session", zap.String("contact_id", contactID))
		return "", err
	}
	if contactID == "" || contactID == userID {
		return "", errprocess.Validation("invalid contact")
	}

	c.mu.Lock()
	existing := ""
	for _, ch := range c.chats {
		if ch.HasParticipants(userID, contactID) {
			existing = ch.ID
			break
		}
	}
	c.mu.Unlock()
	if existing != "" {
		return existing, c.SelectChat(ctx, existing)
	}

	id, err := c.repo.CreateChat(ctx, userID, contactID)
	if err != nil {
		return "", errprocess.Wrap(errprocess.ErrNetwork, "create chat", err)
	}
	chat := domain.Chat{ID: id, SenderID: userID, ReceiverID: contactID, Name: c.contactName(contactID)}

	c.mu.Lock()
	if c.indexLocked(id) < 0 {
		c.chats = append([]domain.Chat{chat}, c.chats...)
	}
	c.mu.Unlock()
	return id, c.SelectChat(ctx, id)
}

// Contacts load users that can be messaged
func (c *ChatController) Contacts(ctx context.Context) ([]domain.User, error) {
	users, err := c.repo.ListUsers(ctx)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.ErrNetwork, "load contacts", err)
	}
	self := c.identity.UserID()
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.ID != self {
			out = append(out, u)
		}
	}
	c.mu.Lock()
	c.contacts = out
	c.mu.Unlock()
	return out, nil
}

// FilterChats chats whose name contains term, case insensitive
func (c *ChatController) FilterChats(term string) []domain.Chat {
	term = strings.ToLower(strings.TrimSpace(term))
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.Chat, 0, len(c.chats))
	for _, ch := range c.chats {
		if term == "" || strings.Contains(strings.ToLower(ch.Name), term) {
			out = append(out, ch)
		}
	}
	return out
}

// Snapshot copy of the current state
func (c *ChatController) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Chats:      append([]domain.Chat(nil), c.chats...),
		SelectedID: c.selected,
		Messages:   append([]domain.Message(nil), c.messages...),
	}
	for _, ch := range c.chats {
		s.UnreadTotal += ch.UnreadCount
	}
	return s
}

// HandleNotification apply a chat push payload
func (c *ChatController) HandleNotification(_ context.Context, body []byte) error {
	var n domain.Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return errprocess.Wrap(errprocess.ErrMalformed, "decode chat notification", err)
	}
	if err := n.Validate(); err != nil {
		return errprocess.Wrap(errprocess.ErrMalformed, "invalid chat notification", err)
	}

	c.mu.Lock()
	applied := c.applyLocked(n)
	c.mu.Unlock()
	if applied {
		c.changed()
	}
	return nil
}

func (c *ChatController) applyLocked(n domain.Notification) bool {
	if n.Type == domain.NotifySeen {
		if n.ChatID != c.selected {
			return false
		}
		for i := range c.messages {
			c.messages[i].State = domain.StateSeen
		}
		return true
	}

	text := n.SummaryText()
	now := jsontime.Of(c.now())
	i := c.indexLocked(n.ChatID)
	if i < 0 {
		if n.Type != domain.NotifyMessage {
			logger.Log.Debug("notification for unknown chat ignored", zap.String("chat_id", n.ChatID))
			return false
		}
		c.chats = append([]domain.Chat{{
			ID:              n.ChatID,
			Name:            n.ChatName,
			SenderID:        n.SenderID,
			ReceiverID:      n.ReceiverID,
			LastMessage:     text,
			LastMessageTime: now,
			UnreadCount:     1,
		}}, c.chats...)
		return true
	}

	c.chats[i].LastMessage = text
	c.chats[i].LastMessageTime = now
	if n.ChatID != c.selected {
		c.chats[i].UnreadCount++
		return true
	}

	msgType := n.MessageType
	if msgType == "" {
		msgType = domain.MessageText
		if n.Type == domain.NotifyImage {
			msgType = domain.MessageImage
		}
	}
	c.messages = append(c.messages, domain.Message{
		Content:    text,
		SenderID:   n.SenderID,
		ReceiverID: n.ReceiverID,
		Type:       msgType,
		State:      domain.StateSent,
		Media:      n.MediaPayload(),
		CreatedAt:  now,
	})
	return true
}

func (c *ChatController) appendLocal(chatID string, msg domain.Message, summary string) {
	now := jsontime.Of(c.now())
	msg.CreatedAt = now
	c.mu.Lock()
	if c.selected == chatID {
		c.messages = append(c.messages, msg)
	}
	if i := c.indexLocked(chatID); i >= 0 {
		c.chats[i].LastMessage = summary
		c.chats[i].LastMessageTime = now
	}
	c.mu.Unlock()
	c.changed()
}

func (c *ChatController) selectedChat() (domain.Chat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == "" {
		return domain.Chat{}, false
	}
	if i := c.indexLocked(c.selected); i >= 0 {
		return c.chats[i], true
	}
	return domain.Chat{}, false
}

func (c *ChatController) contactName(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, u := range c.contacts {
		if u.ID == id {
			return strings.TrimSpace(u.FirstName + " " + u.LastName)
		}
	}
	return ""
}

func (c *ChatController) indexLocked(chatID string) int {
	for i := range c.chats {
		if c.chats[i].ID == chatID {
			return i
		}
	}
	return -1
}
