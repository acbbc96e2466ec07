package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"edu_social_client/internal/feed"
	"edu_social_client/internal/post/domain"
	"edu_social_client/internal/post/repository"
	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// ViewPosts change hook name of the posts page
const ViewPosts = "posts"

// BoardSnapshot active view with the status flags of its items
type BoardSnapshot struct {
	View       domain.View             `json:"view"`
	Query      string                  `json:"query,omitempty"`
	Feed       feed.State[domain.Post] `json:"feed"`
	Liked      map[int64]bool          `json:"liked"`
	Bookmarked map[int64]bool          `json:"bookmarked"`
}

// Board 動態牆, 每個 view 各自持有一份獨立的貼文列表
type Board struct {
	repo     repository.PostRepository
	cache    *StatusCache
	feeds    map[domain.View]*feed.Controller[domain.Post]
	pageSize int
	maxBytes int64
	onChange func(view string)

	mu     sync.Mutex
	active domain.View
}

// BoardOption Board option
type BoardOption func(*Board)

// WithPageSize posts per page
func WithPageSize(size int) BoardOption {
	return func(b *Board) { b.pageSize = size }
}

// WithMaxUploadBytes image ceiling
func WithMaxUploadBytes(n int64) BoardOption {
	return func(b *Board) { b.maxBytes = n }
}

// WithChangeHook called after any view changed
func WithChangeHook(fn func(view string)) BoardOption {
	return func(b *Board) { b.onChange = fn }
}

// NewBoard create Board, cache is shared by every view
func NewBoard(repo repository.PostRepository, cache *StatusCache, opts ...BoardOption) *Board {
	b := &Board{
		repo:     repo,
		cache:    cache,
		feeds:    make(map[domain.View]*feed.Controller[domain.Post], len(domain.Views)),
		pageSize: 10,
		maxBytes: 1000 * 1024 * 1024,
		active:   domain.ViewAll,
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, v := range domain.Views {
		b.feeds[v] = feed.New[domain.Post]("posts-"+string(v), b.loader(v),
			feed.WithPageSize[domain.Post](b.pageSize),
			feed.OnChange[domain.Post](b.changed),
			feed.OnLoaded[domain.Post](b.preload),
		)
	}
	return b
}

// loader the feed view string of ViewSearch carries the query
func (b *Board) loader(v domain.View) feed.Loader[domain.Post] {
	return func(ctx context.Context, view string, page, size int) (feed.Page[domain.Post], error) {
		query := ""
		if v == domain.ViewSearch {
			query = view
		}
		return b.repo.List(ctx, v, query, page, size)
	}
}

// preload 載入成功後預先刷新尚未快取的 liked/bookmarked
func (b *Board) preload(items []domain.Post) {
	postIDs := make([]int64, len(items))
	for i, p := range items {
		postIDs[i] = p.ID
	}
	b.cache.Preload(context.Background(), postIDs...)
}

func (b *Board) changed() {
	if b.onChange != nil {
		b.onChange(ViewPosts)
	}
}

// Active current view
func (b *Board) Active() domain.View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Board) activeFeed() *feed.Controller[domain.Post] {
	return b.feeds[b.Active()]
}

// Feed controller of view
func (b *Board) Feed(view domain.View) *feed.Controller[domain.Post] {
	return b.feeds[view]
}

// SetView switch to view at page 0, no-op when view is already active and loaded
func (b *Board) SetView(ctx context.Context, view domain.View) error {
	if view == b.Active() && b.feeds[view].State().Loaded {
		return nil
	}
	return b.LoadView(ctx, view)
}

// LoadView load page 0 of view and make it active
func (b *Board) LoadView(ctx context.Context, view domain.View) error {
	if view == domain.ViewSearch {
		return errprocess.Validation("search view is loaded through Search")
	}
	f, ok := b.feeds[view]
	if !ok {
		return errprocess.Validation("unknown view " + string(view))
	}
	if err := f.LoadPage(ctx, string(view), 0, b.pageSize); err != nil {
		return wrapLoad(err, "load "+string(view)+" posts")
	}
	b.activate(view)
	return nil
}

// Search load page 0 of query results, empty query returns to ViewAll
func (b *Board) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return b.SetView(ctx, domain.ViewAll)
	}
	if err := b.feeds[domain.ViewSearch].LoadPage(ctx, query, 0, b.pageSize); err != nil {
		return wrapLoad(err, "search posts")
	}
	b.activate(domain.ViewSearch)
	return nil
}

// NextPage next page of the active view
func (b *Board) NextPage(ctx context.Context) error {
	return wrapLoad(b.activeFeed().NextPage(ctx), "next posts page")
}

// PreviousPage previous page of the active view
func (b *Board) PreviousPage(ctx context.Context) error {
	return wrapLoad(b.activeFeed().PreviousPage(ctx), "previous posts page")
}

// GoToPage page n of the active view, out of range is ignored
func (b *Board) GoToPage(ctx context.Context, n int) error {
	return wrapLoad(b.activeFeed().GoToPage(ctx, n), "posts page")
}

func (b *Board) activate(view domain.View) {
	b.mu.Lock()
	changed := b.active != view
	b.active = view
	b.mu.Unlock()
	if changed {
		b.changed()
	}
}

// CreatePost publish a post with an optional image, prepended to the active view
func (b *Board) CreatePost(ctx context.Context, content string, image *domain.Attachment) (domain.Post, error) {
	content = strings.TrimSpace(content)
	if image != nil && len(image.Data) == 0 {
		image = nil
	}
	if content == "" && image == nil {
		return domain.Post{}, errprocess.Validation("post needs content or an image")
	}
	if image != nil {
		if int64(len(image.Data)) > b.maxBytes {
			return domain.Post{}, errprocess.Validation("image exceeds size limit")
		}
		if mt := mimetype.Detect(image.Data); !strings.HasPrefix(mt.String(), "image/") {
			return domain.Post{}, errprocess.Validation("attachment must be an image, got " + mt.String())
		}
	}
	p, err := b.repo.Create(ctx, content, image)
	if err != nil {
		return domain.Post{}, errprocess.Wrap(errprocess.ErrNetwork, "create post", err)
	}
	b.activeFeed().Prepend(p)
	return p, nil
}

// ToggleLike like or unlike, the counter of every copy follows the server
func (b *Board) ToggleLike(ctx context.Context, postID int64) (domain.LikeResult, error) {
	res, err := b.repo.ToggleLike(ctx, postID)
	if err != nil {
		return domain.LikeResult{}, errprocess.Wrap(errprocess.ErrNetwork, "toggle like", err)
	}
	b.Propagate(postID, func(p *domain.Post) { p.LikeCount = res.LikeCount })
	b.cache.Set(ctx, ActionLiked, postID, res.IsLiked())
	return res, nil
}

// ToggleBookmark bookmark or unbookmark, the counter of every copy follows the server
func (b *Board) ToggleBookmark(ctx context.Context, postID int64) (domain.BookmarkResult, error) {
	res, err := b.repo.ToggleBookmark(ctx, postID)
	if err != nil {
		return domain.BookmarkResult{}, errprocess.Wrap(errprocess.ErrNetwork, "toggle bookmark", err)
	}
	b.Propagate(postID, func(p *domain.Post) { p.BookmarkCount = res.BookmarkCount })
	b.cache.Set(ctx, ActionBookmarked, postID, res.IsBookmarked())
	return res, nil
}

// IsLiked cached liked flag, see StatusCache.Get
func (b *Board) IsLiked(ctx context.Context, postID int64) bool {
	return b.cache.Get(ctx, ActionLiked, postID)
}

// IsBookmarked cached bookmarked flag, see StatusCache.Get
func (b *Board) IsBookmarked(ctx context.Context, postID int64) bool {
	return b.cache.Get(ctx, ActionBookmarked, postID)
}

// Delete delete a post, it is removed from every view and the cache
func (b *Board) Delete(ctx context.Context, postID int64) error {
	if err := b.repo.Delete(ctx, postID); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "delete post", err)
	}
	n := b.Remove(postID)
	b.cache.Purge(ctx, postID)
	logger.Log.Debug("post removed", zap.Int64("post_id", postID), zap.Int("lists", n))
	return nil
}

// UpdateStatus moderate a post
func (b *Board) UpdateStatus(ctx context.Context, postID int64, status domain.PostStatus) (domain.Post, error) {
	if !status.Valid() {
		return domain.Post{}, errprocess.Validation("unknown post status " + string(status))
	}
	p, err := b.repo.UpdateStatus(ctx, postID, status)
	if err != nil {
		return domain.Post{}, errprocess.Wrap(errprocess.ErrNetwork, "update post status", err)
	}
	b.replace(postID, p, func(held *domain.Post) { held.Status = status })
	return p, nil
}

// Pin pin or unpin a post
func (b *Board) Pin(ctx context.Context, postID int64, pinned bool) (domain.Post, error) {
	p, err := b.repo.Pin(ctx, postID, pinned)
	if err != nil {
		return domain.Post{}, errprocess.Wrap(errprocess.ErrNetwork, "pin post", err)
	}
	b.replace(postID, p, func(held *domain.Post) { held.Pinned = pinned })
	return p, nil
}

// replace write the authoritative post into every copy, fallback patches when the server sent no body
func (b *Board) replace(postID int64, p domain.Post, fallback func(*domain.Post)) {
	if p.ID == postID {
		b.Propagate(postID, func(held *domain.Post) { *held = p })
		return
	}
	b.Propagate(postID, fallback)
}

// AddComment comment or reply, the comment counter of every copy is incremented
func (b *Board) AddComment(ctx context.Context, postID int64, content string, parentID *int64) (domain.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.Comment{}, errprocess.Validation("comment content is empty")
	}
	c, err := b.repo.AddComment(ctx, postID, content, parentID)
	if err != nil {
		return domain.Comment{}, errprocess.Wrap(errprocess.ErrNetwork, "add comment", err)
	}
	b.Propagate(postID, func(p *domain.Post) { p.CommentCount++ })
	return c, nil
}

// Comments every comment of a post
func (b *Board) Comments(ctx context.Context, postID int64) ([]domain.Comment, error) {
	comments, err := b.repo.Comments(ctx, postID)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.ErrNetwork, "load comments", err)
	}
	return comments, nil
}

// CommentsPage one page of comments
func (b *Board) CommentsPage(ctx context.Context, postID int64, page, size int) (feed.Page[domain.Comment], error) {
	if size <= 0 {
		size = b.pageSize
	}
	p, err := b.repo.CommentsPage(ctx, postID, page, size)
	if err != nil {
		return feed.Page[domain.Comment]{}, errprocess.Wrap(errprocess.ErrNetwork, "load comments page", err)
	}
	return p, nil
}

// Snapshot active view state
func (b *Board) Snapshot(ctx context.Context) BoardSnapshot {
	view := b.Active()
	f := b.feeds[view]
	s := BoardSnapshot{
		View:       view,
		Feed:       f.State(),
		Liked:      make(map[int64]bool),
		Bookmarked: make(map[int64]bool),
	}
	if view == domain.ViewSearch {
		s.Query = f.View()
	}
	for _, p := range s.Feed.Items {
		s.Liked[p.ID] = b.IsLiked(ctx, p.ID)
		s.Bookmarked[p.ID] = b.IsBookmarked(ctx, p.ID)
	}
	return s
}

func wrapLoad(err error, msg string) error {
	if err == nil || errors.Is(err, errprocess.ErrSuperseded) || errors.Is(err, errprocess.ErrValidation) {
		return err
	}
	return errprocess.Wrap(errprocess.ErrNetwork, msg, err)
}
