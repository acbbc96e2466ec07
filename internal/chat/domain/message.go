package domain

import "edu_social_client/pkg/jsontime"

// MessageType 訊息內容類型
type MessageType string

// message type
const (
	MessageText  MessageType = "TEXT"
	MessageImage MessageType = "IMAGE"
	MessageVideo MessageType = "VIDEO"
	MessageAudio MessageType = "AUDIO"
)

// MessageState 送達狀態
type MessageState string

// message state
const (
	StateSent MessageState = "SENT"
	StateSeen MessageState = "SEEN"
)

// AttachmentContent summary text of a media message
const AttachmentContent = "Attachment"

// Message 一則聊天訊息, 只在 SENT -> SEEN 時被修改
type Message struct {
	ID         int64         `json:"id,omitempty"`
	Content    string        `json:"content"`
	SenderID   string        `json:"senderId"`
	ReceiverID string        `json:"receiverId"`
	Type       MessageType   `json:"type"`
	State      MessageState  `json:"state"`
	Media      string        `json:"media,omitempty"`
	CreatedAt  jsontime.Time `json:"createdAt"`
}

// MessageRequest send message body
type MessageRequest struct {
	Content    string      `json:"content"`
	SenderID   string      `json:"senderId"`
	ReceiverID string      `json:"receiverId"`
	Type       MessageType `json:"type"`
	ChatID     string      `json:"chatId"`
}
