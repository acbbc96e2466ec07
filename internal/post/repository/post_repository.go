package repository

import (
	"context"
	"net/url"
	"strconv"

	"edu_social_client/internal/feed"
	"edu_social_client/internal/post/domain"
	"edu_social_client/pkg/httpclient"

	"github.com/gofiber/fiber/v2"
)

const postsPath = "/api/v1/posts"

// PostRepository post backend
type PostRepository interface {
	// List page of a feed view, query is used by ViewSearch only
	List(ctx context.Context, view domain.View, query string, page, size int) (feed.Page[domain.Post], error)
	Create(ctx context.Context, content string, image *domain.Attachment) (domain.Post, error)
	UpdateStatus(ctx context.Context, id int64, status domain.PostStatus) (domain.Post, error)
	Pin(ctx context.Context, id int64, pinned bool) (domain.Post, error)
	Delete(ctx context.Context, id int64) error

	ToggleLike(ctx context.Context, id int64) (domain.LikeResult, error)
	IsLiked(ctx context.Context, id int64) (bool, error)
	ToggleBookmark(ctx context.Context, id int64) (domain.BookmarkResult, error)
	IsBookmarked(ctx context.Context, id int64) (bool, error)

	AddComment(ctx context.Context, postID int64, content string, parentID *int64) (domain.Comment, error)
	Comments(ctx context.Context, postID int64) ([]domain.Comment, error)
	CommentsPage(ctx context.Context, postID int64, page, size int) (feed.Page[domain.Comment], error)
}

var viewPaths = map[domain.View]string{
	domain.ViewAll:        postsPath,
	domain.ViewMine:       postsPath + "/my-posts",
	domain.ViewTrending:   postsPath + "/trending",
	domain.ViewPending:    postsPath + "/my-pending",
	domain.ViewBookmarked: postsPath + "/bookmarks",
	domain.ViewSearch:     postsPath + "/search",
}

type postRepository struct {
	client *httpclient.Client
}

// NewPostRepository create PostRepository over REST
func NewPostRepository(client *httpclient.Client) PostRepository {
	return &postRepository{client: client}
}

func postPath(id int64) string {
	return postsPath + "/" + strconv.FormatInt(id, 10)
}

func pageQuery(page, size int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}, "size": {strconv.Itoa(size)}}
}

func (r *postRepository) List(ctx context.Context, view domain.View, query string, page, size int) (feed.Page[domain.Post], error) {
	var out feed.Page[domain.Post]
	path, ok := viewPaths[view]
	if !ok {
		path = postsPath
	}
	q := pageQuery(page, size)
	if view == domain.ViewSearch {
		q.Set("query", query)
	}
	err := r.client.Get(ctx, path, q, &out)
	return out, err
}

func (r *postRepository) Create(ctx context.Context, content string, image *domain.Attachment) (domain.Post, error) {
	var p domain.Post
	req := httpclient.Request{
		Method: fiber.MethodPost,
		Path:   postsPath,
		Form:   map[string]string{"content": content},
	}
	if image != nil {
		req.Files = []httpclient.File{{Field: "imageFile", Name: image.Name, Content: image.Data}}
	}
	err := r.client.Do(ctx, req, &p)
	return p, err
}

func (r *postRepository) UpdateStatus(ctx context.Context, id int64, status domain.PostStatus) (domain.Post, error) {
	var p domain.Post
	err := r.client.Patch(ctx, postPath(id)+"/status", url.Values{"status": {string(status)}}, &p)
	return p, err
}

func (r *postRepository) Pin(ctx context.Context, id int64, pinned bool) (domain.Post, error) {
	var p domain.Post
	err := r.client.Patch(ctx, postPath(id)+"/pin", url.Values{"pinned": {strconv.FormatBool(pinned)}}, &p)
	return p, err
}

func (r *postRepository) Delete(ctx context.Context, id int64) error {
	return r.client.Delete(ctx, postPath(id), nil)
}

func (r *postRepository) ToggleLike(ctx context.Context, id int64) (domain.LikeResult, error) {
	var res domain.LikeResult
	err := r.client.Post(ctx, postPath(id)+"/like", nil, nil, &res)
	return res, err
}

func (r *postRepository) IsLiked(ctx context.Context, id int64) (bool, error) {
	var liked bool
	err := r.client.Get(ctx, postPath(id)+"/liked", nil, &liked)
	return liked, err
}

func (r *postRepository) ToggleBookmark(ctx context.Context, id int64) (domain.BookmarkResult, error) {
	var res domain.BookmarkResult
	err := r.client.Post(ctx, postPath(id)+"/bookmark", nil, nil, &res)
	return res, err
}

func (r *postRepository) IsBookmarked(ctx context.Context, id int64) (bool, error) {
	var bookmarked bool
	err := r.client.Get(ctx, postPath(id)+"/bookmarked", nil, &bookmarked)
	return bookmarked, err
}

func (r *postRepository) AddComment(ctx context.Context, postID int64, content string, parentID *int64) (domain.Comment, error) {
	var c domain.Comment
	q := url.Values{"content": {content}}
	if parentID != nil {
		q.Set("parentCommentId", strconv.FormatInt(*parentID, 10))
	}
	err := r.client.Post(ctx, postPath(postID)+"/comments", q, nil, &c)
	return c, err
}

func (r *postRepository) Comments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := r.client.Get(ctx, postPath(postID)+"/comments", nil, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *postRepository) CommentsPage(ctx context.Context, postID int64, page, size int) (feed.Page[domain.Comment], error) {
	var out feed.Page[domain.Comment]
	err := r.client.Get(ctx, postPath(postID)+"/comments/paginated", pageQuery(page, size), &out)
	return out, err
}
