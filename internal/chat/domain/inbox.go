package domain

import "edu_social_client/pkg/jsontime"

// InboxItem stored notification of the notifications page
type InboxItem struct {
	ID          int64            `json:"id"`
	ChatID      string           `json:"chatId"`
	Content     string           `json:"content"`
	SenderID    string           `json:"senderId"`
	ReceiverID  string           `json:"receiverId"`
	ChatName    string           `json:"chatName"`
	MessageType MessageType      `json:"messageType"`
	Type        NotificationType `json:"type"`
	Read        bool             `json:"read"`
	CreatedDate jsontime.Time    `json:"createdDate"`
}
