package domain

import (
	"unicode/utf8"

	"edu_social_client/pkg/jsontime"
)

// Chat 一對一聊天室摘要
type Chat struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	SenderID        string        `json:"senderId"`
	ReceiverID      string        `json:"receiverId"`
	LastMessage     string        `json:"lastMessage"`
	LastMessageTime jsontime.Time `json:"lastMessageTime"`
	UnreadCount     int           `json:"unreadCount"`
	RecipientOnline bool          `json:"recipientOnline"`
}

// Counterpart the participant that is not userID
func (c Chat) Counterpart(userID string) string {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

// HasParticipants chat between a and b, in either direction
func (c Chat) HasParticipants(a, b string) bool {
	return (c.SenderID == a && c.ReceiverID == b) || (c.SenderID == b && c.ReceiverID == a)
}

// User 聯絡人
type User struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	LastSeen  jsontime.Time `json:"lastSeen"`
	Online    bool          `json:"online"`
}

// CreateChatResponse {response: id}
type CreateChatResponse struct {
	Response string `json:"response"`
}

const (
	previewMax  = 20
	previewKeep = 17
)

// Preview chat list preview, long text is cut to 17 runes plus "..."
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= previewMax {
		return text
	}
	return string([]rune(text)[:previewKeep]) + "..."
}
