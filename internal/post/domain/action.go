package domain

import "edu_social_client/pkg/jsontime"

// like and bookmark actions reported by the backend
const (
	ActionLiked   = "liked"
	ActionUnliked = "unliked"
	ActionAdded   = "added"
	ActionRemoved = "removed"
)

// LikeResult POST /{id}/like response
type LikeResult struct {
	Liked     bool   `json:"liked"`
	Action    string `json:"action"`
	LikeCount int64  `json:"likeCount"`
}

// IsLiked outcome of the toggle, action wins over the flag
func (r LikeResult) IsLiked() bool {
	switch r.Action {
	case ActionLiked:
		return true
	case ActionUnliked:
		return false
	}
	return r.Liked
}

// BookmarkResult POST /{id}/bookmark response
type BookmarkResult struct {
	Bookmarked    bool   `json:"bookmarked"`
	BookmarkCount int64  `json:"bookmarkCount"`
	Action        string `json:"action"`
}

// IsBookmarked outcome of the toggle, action wins over the flag
func (r BookmarkResult) IsBookmarked() bool {
	switch r.Action {
	case ActionAdded:
		return true
	case ActionRemoved:
		return false
	}
	return r.Bookmarked
}

// Comment post comment, replies are nested
type Comment struct {
	ID              int64         `json:"id"`
	Content         string        `json:"content"`
	AuthorID        string        `json:"authorId"`
	PostID          int64         `json:"postId"`
	ParentCommentID *int64        `json:"parentCommentId,omitempty"`
	Reply           bool          `json:"reply"`
	CreatedDate     jsontime.Time `json:"createdDate"`
	Replies         []Comment     `json:"replies,omitempty"`
}
