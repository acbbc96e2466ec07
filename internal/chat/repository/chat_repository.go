package repository

import (
	"context"
	"net/url"

	"edu_social_client/internal/chat/domain"
	"edu_social_client/pkg/httpclient"

	"github.com/gofiber/fiber/v2"
)

const (
	chatsPath    = "/api/v1/chats"
	messagesPath = "/api/v1/messages"
	usersPath    = "/api/v1/users"
)

// ChatRepository messaging backend
type ChatRepository interface {
	ListChats(ctx context.Context) ([]domain.Chat, error)
	CreateChat(ctx context.Context, senderID, receiverID string) (string, error)
	ListMessages(ctx context.Context, chatID string) ([]domain.Message, error)
	SaveMessage(ctx context.Context, req domain.MessageRequest) error
	MarkSeen(ctx context.Context, chatID string) error
	UploadMedia(ctx context.Context, chatID, fileName string, data []byte) error
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type chatRepository struct {
	client *httpclient.Client
}

// NewChatRepository create ChatRepository over REST
func NewChatRepository(client *httpclient.Client) ChatRepository {
	return &chatRepository{client: client}
}

// ListChats chats of the current user
func (r *chatRepository) ListChats(ctx context.Context) ([]domain.Chat, error) {
	var chats []domain.Chat
	if err := r.client.Get(ctx, chatsPath, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// CreateChat return the new chat id
func (r *chatRepository) CreateChat(ctx context.Context, senderID, receiverID string) (string, error) {
	q := url.Values{"sender-id": {senderID}, "receiver-id": {receiverID}}
	var resp domain.CreateChatResponse
	if err := r.client.Post(ctx, chatsPath, q, nil, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

// ListMessages messages of chatID, oldest first
func (r *chatRepository) ListMessages(ctx context.Context, chatID string) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := r.client.Get(ctx, messagesPath+"/chat/"+url.PathEscape(chatID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SaveMessage send a text message
func (r *chatRepository) SaveMessage(ctx context.Context, req domain.MessageRequest) error {
	return r.client.Post(ctx, messagesPath, nil, req, nil)
}

// MarkSeen mark every message of chatID seen
func (r *chatRepository) MarkSeen(ctx context.Context, chatID string) error {
	return r.client.Patch(ctx, messagesPath, url.Values{"chat-id": {chatID}}, nil)
}

// UploadMedia send a media message as multipart "file"
func (r *chatRepository) UploadMedia(ctx context.Context, chatID, fileName string, data []byte) error {
	return r.client.Do(ctx, httpclient.Request{
		Method: fiber.MethodPost,
		Path:   messagesPath + "/upload-media",
		Query:  url.Values{"chat-id": {chatID}},
		Files:  []httpclient.File{{Field: "file", Name: fileName, Content: data}},
	}, nil)
}

// ListUsers contacts
func (r *chatRepository) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.client.Get(ctx, usersPath, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}
