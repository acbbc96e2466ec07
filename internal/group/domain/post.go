package domain

import (
	"strings"

	"edu_social_client/pkg/jsontime"
)

// PostType group post content type
type PostType string

// post type
const (
	PostText     PostType = "TEXT"
	PostImage    PostType = "IMAGE"
	PostVideo    PostType = "VIDEO"
	PostAudio    PostType = "AUDIO"
	PostDocument PostType = "DOCUMENT"
	PostLink     PostType = "LINK"
)

// PostState group post state
type PostState string

// post state
const (
	PostPublished PostState = "PUBLISHED"
	PostDeleted   PostState = "DELETED"
)

// Post 群組貼文
type Post struct {
	ID          int64         `json:"id"`
	GroupID     int64         `json:"groupId"`
	UserID      string        `json:"userId"`
	Content     string        `json:"content"`
	Type        PostType      `json:"type"`
	State       PostState     `json:"state,omitempty"`
	FilePath    string        `json:"filePath,omitempty"`
	FileName    string        `json:"fileName,omitempty"`
	CreatedBy   string        `json:"createdBy,omitempty"`
	CreatedDate jsontime.Time `json:"createdDate"`
}

// CreatePostRequest JSON post body
type CreatePostRequest struct {
	Content string   `json:"content"`
	Type    PostType `json:"type"`
}

// Download file of a group post
type Download struct {
	FileName    string
	ContentType string
	Data        []byte
}

// TypeForMIME post type of an uploaded file
func TypeForMIME(mime string) PostType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return PostImage
	case strings.HasPrefix(mime, "video/"):
		return PostVideo
	case strings.HasPrefix(mime, "audio/"):
		return PostAudio
	default:
		return PostDocument
	}
}
