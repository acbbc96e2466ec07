package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// NotificationType push notification type of the chat channel
type NotificationType string

// chat push types
const (
	NotifyMessage NotificationType = "MESSAGE"
	NotifyImage   NotificationType = "IMAGE"
	NotifySeen    NotificationType = "SEEN"
)

// Notification chat push payload
type Notification struct {
	ChatID      string           `json:"chatId"`
	Content     string           `json:"content"`
	SenderID    string           `json:"senderId"`
	ReceiverID  string           `json:"receiverId"`
	ChatName    string           `json:"chatName"`
	MessageType MessageType      `json:"messageType"`
	Type        NotificationType `json:"type"`
	// Media base64 string or array of base64 strings
	Media json.RawMessage `json:"media,omitempty"`
}

// Validate reject payloads that can not be applied
func (n Notification) Validate() error {
	if n.ChatID == "" {
		return errors.New("missing chatId")
	}
	switch n.Type {
	case NotifyMessage, NotifyImage, NotifySeen:
		return nil
	default:
		return fmt.Errorf("unknown notification type %q", n.Type)
	}
}

// MediaPayload first media entry, "" when absent
func (n Notification) MediaPayload() string {
	if len(n.Media) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(n.Media, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(n.Media, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// SummaryText lastMessage text for the notification
func (n Notification) SummaryText() string {
	if n.Type == NotifyImage {
		return AttachmentContent
	}
	return n.Content
}
