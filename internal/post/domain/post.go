package domain

import "edu_social_client/pkg/jsontime"

// PostStatus moderation status
type PostStatus string

// post status
const (
	StatusPending  PostStatus = "PENDING"
	StatusApproved PostStatus = "APPROVED"
	StatusRejected PostStatus = "REJECTED"
)

// Valid known status
func (s PostStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Post 動態牆貼文
type Post struct {
	ID               int64         `json:"id"`
	Content          string        `json:"content"`
	ImageURL         string        `json:"imageUrl,omitempty"`
	Status           PostStatus    `json:"status"`
	AuthorID         string        `json:"authorId"`
	AuthorName       string        `json:"authorName,omitempty"`
	LikeCount        int64         `json:"likeCount"`
	CommentCount     int64         `json:"commentCount"`
	BookmarkCount    int64         `json:"bookmarkCount"`
	Pinned           bool          `json:"pinned"`
	CreatedDate      jsontime.Time `json:"createdDate"`
	LastModifiedDate jsontime.Time `json:"lastModifiedDate"`
}

// Attachment image of a new post
type Attachment struct {
	Name string
	Data []byte
}

// View named subset of the posts collection
type View string

// tracked views
const (
	ViewAll        View = "all"
	ViewMine       View = "mine"
	ViewBookmarked View = "bookmarked"
	ViewTrending   View = "trending"
	ViewPending    View = "pending"
	ViewSearch     View = "search"
)

// Views every tracked view, in propagation order
var Views = []View{ViewAll, ViewMine, ViewBookmarked, ViewTrending, ViewPending, ViewSearch}
