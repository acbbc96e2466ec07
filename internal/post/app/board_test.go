package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"edu_social_client/internal/feed"
	"edu_social_client/internal/post/domain"
	errprocess "edu_social_client/pkg/err"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

func page(total int64, posts ...domain.Post) feed.Page[domain.Post] {
	return feed.Page[domain.Post]{Content: posts, Page: feed.PageInfo{TotalElements: total}}
}

func post(id int64) domain.Post {
	return domain.Post{ID: id, Content: "post", LikeCount: 1, CommentCount: 0, BookmarkCount: 0}
}

func onList(repo *MockPostRepository, view domain.View, query string, p int, res feed.Page[domain.Post]) *mock.Call {
	return repo.On("List", mock.Anything, view, query, p, 10).Return(res, nil)
}

func newBoard(t *testing.T) (*Board, *MockPostRepository, *countingFetcher) {
	t.Helper()
	repo := new(MockPostRepository)
	liked := &countingFetcher{}
	bookmarked := &countingFetcher{}
	cache := NewStatusCache(newPool(t, 2, 16), liked.fetch, bookmarked.fetch)
	return NewBoard(repo, cache), repo, liked
}

func ids(posts []domain.Post) []int64 {
	out := make([]int64, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func TestBoard_SetViewAndPaging(t *testing.T) {
	b, repo, _ := newBoard(t)
	onList(repo, domain.ViewAll, "", 0, page(25, post(1), post(2))).Once()
	onList(repo, domain.ViewAll, "", 2, page(25, post(21))).Once()

	require.NoError(t, b.SetView(ctx, domain.ViewAll))
	require.NoError(t, b.SetView(ctx, domain.ViewAll))

	st := b.Feed(domain.ViewAll).State()
	assert.Equal(t, 3, st.TotalPages)
	assert.LessOrEqual(t, len(st.Items), 10)

	require.NoError(t, b.GoToPage(ctx, 2))
	assert.Equal(t, 2, b.Feed(domain.ViewAll).CurrentPage())

	// page == totalPages is out of range
	require.NoError(t, b.GoToPage(ctx, 3))
	assert.Equal(t, 2, b.Feed(domain.ViewAll).CurrentPage())
	repo.AssertNumberOfCalls(t, "List", 2)
}

func TestBoard_LoadFailureKeepsView(t *testing.T) {
	b, repo, _ := newBoard(t)
	onList(repo, domain.ViewAll, "", 0, page(1, post(1))).Once()
	repo.On("List", mock.Anything, domain.ViewMine, "", 0, 10).Return(feed.Page[domain.Post]{}, errors.New("down")).Once()

	require.NoError(t, b.SetView(ctx, domain.ViewAll))
	err := b.SetView(ctx, domain.ViewMine)

	assert.ErrorIs(t, err, errprocess.ErrNetwork)
	assert.Equal(t, domain.ViewAll, b.Active())
	assert.Equal(t, []int64{1}, ids(b.Snapshot(ctx).Feed.Items))
}

func TestBoard_Search(t *testing.T) {
	b, repo, _ := newBoard(t)
	onList(repo, domain.ViewSearch, "golang", 0, page(1, post(7))).Once()
	onList(repo, domain.ViewAll, "", 0, page(1, post(1))).Once()

	require.NoError(t, b.Search(ctx, " golang "))
	s := b.Snapshot(ctx)
	assert.Equal(t, domain.ViewSearch, s.View)
	assert.Equal(t, "golang", s.Query)
	assert.Equal(t, []int64{7}, ids(s.Feed.Items))

	require.NoError(t, b.Search(ctx, "  "))
	assert.Equal(t, domain.ViewAll, b.Active())
}

func TestBoard_CreatePostValidation(t *testing.T) {
	b, repo, _ := newBoard(t)

	_, err := b.CreatePost(ctx, "  ", nil)
	assert.ErrorIs(t, err, errprocess.ErrValidation)

	_, err = b.CreatePost(ctx, "", &domain.Attachment{Name: "a.txt", Data: []byte("just text")})
	assert.ErrorIs(t, err, errprocess.ErrValidation)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestBoard_CreatePostPrepends(t *testing.T) {
	b, repo, _ := newBoard(t)
	onList(repo, domain.ViewAll, "", 0, page(1, post(1))).Once()
	require.NoError(t, b.SetView(ctx, domain.ViewAll))
	img := &domain.Attachment{Name: "a.png", Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")}
	repo.On("Create", ctx, "hello", img).Return(domain.Post{ID: 99, Content: "hello"}, nil).Once()

	_, err := b.CreatePost(ctx, "hello", img)

	require.NoError(t, err)
	assert.Equal(t, []int64{99, 1}, ids(b.Feed(domain.ViewAll).Items()))
}

func loadViews(t *testing.T, b *Board, repo *MockPostRepository) {
	t.Helper()
	onList(repo, domain.ViewAll, "", 0, page(2, post(1), post(2))).Once()
	onList(repo, domain.ViewMine, "", 0, page(1, post(1))).Once()
	onList(repo, domain.ViewBookmarked, "", 0, page(1, post(3))).Once()
	onList(repo, domain.ViewTrending, "", 0, page(2, post(2), post(4))).Once()
	for _, v := range []domain.View{domain.ViewMine, domain.ViewBookmarked, domain.ViewTrending, domain.ViewAll} {
		require.NoError(t, b.LoadView(ctx, v))
	}
}

func TestBoard_ToggleLikePropagates(t *testing.T) {
	b, repo, liked := newBoard(t)
	loadViews(t, b, repo)
	waitIdle(t, b.cache)
	preloaded := liked.calls.Load()
	repo.On("ToggleLike", ctx, int64(1)).Return(domain.LikeResult{Liked: true, Action: domain.ActionLiked, LikeCount: 5}, nil).Once()

	res, err := b.ToggleLike(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), res.LikeCount)

	assert.Equal(t, int64(5), b.Feed(domain.ViewAll).Items()[0].LikeCount)
	assert.Equal(t, int64(5), b.Feed(domain.ViewMine).Items()[0].LikeCount)
	assert.Equal(t, int64(1), b.Feed(domain.ViewTrending).Items()[0].LikeCount)

	assert.True(t, b.IsLiked(ctx, 1))
	assert.Equal(t, preloaded, liked.calls.Load())
}

func TestBoard_LoadPreloadsStatus(t *testing.T) {
	repo := new(MockPostRepository)
	liked := &countingFetcher{}
	bookmarked := &countingFetcher{}
	clock := newFakeClock()
	cache := NewStatusCache(newPool(t, 2, 16), liked.fetch, bookmarked.fetch, WithCacheClock(clock.Now))
	b := NewBoard(repo, cache)
	onList(repo, domain.ViewAll, "", 0, page(2, post(1), post(2))).Times(3)

	require.NoError(t, b.LoadView(ctx, domain.ViewAll))
	waitIdle(t, cache)
	assert.Equal(t, int32(2), liked.calls.Load())
	assert.Equal(t, int32(2), bookmarked.calls.Load())

	// entries still valid
	require.NoError(t, b.LoadView(ctx, domain.ViewAll))
	waitIdle(t, cache)
	assert.Equal(t, int32(2), liked.calls.Load())
	assert.Equal(t, int32(2), bookmarked.calls.Load())

	clock.Advance(31 * time.Second)
	require.NoError(t, b.LoadView(ctx, domain.ViewAll))
	waitIdle(t, cache)
	assert.Equal(t, int32(4), liked.calls.Load())
	assert.Equal(t, int32(4), bookmarked.calls.Load())
}

func TestBoard_ToggleIsNeverDeduplicated(t *testing.T) {
	b, repo, _ := newBoard(t)
	repo.On("ToggleLike", ctx, int64(1)).Return(domain.LikeResult{Action: domain.ActionUnliked, LikeCount: 0}, nil).Twice()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := b.ToggleLike(ctx, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	repo.AssertNumberOfCalls(t, "ToggleLike", 2)
	assert.False(t, b.IsLiked(ctx, 1))
}

func TestBoard_ToggleBookmark(t *testing.T) {
	b, repo, _ := newBoard(t)
	loadViews(t, b, repo)
	repo.On("ToggleBookmark", ctx, int64(3)).Return(domain.BookmarkResult{Action: domain.ActionAdded, BookmarkCount: 2}, nil).Once()

	_, err := b.ToggleBookmark(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.Feed(domain.ViewBookmarked).Items()[0].BookmarkCount)
	assert.True(t, b.IsBookmarked(ctx, 3))
}

func TestBoard_ToggleErrorKeepsState(t *testing.T) {
	b, repo, _ := newBoard(t)
	loadViews(t, b, repo)
	repo.On("ToggleLike", ctx, int64(1)).Return(domain.LikeResult{}, errors.New("down")).Once()

	_, err := b.ToggleLike(ctx, 1)
	assert.ErrorIs(t, err, errprocess.ErrNetwork)
	assert.Equal(t, int64(1), b.Feed(domain.ViewAll).Items()[0].LikeCount)
}

func TestBoard_DeleteRemovesEverywhere(t *testing.T) {
	b, repo, _ := newBoard(t)
	loadViews(t, b, repo)
	b.cache.Set(ctx, ActionLiked, 4, true)
	b.cache.Set(ctx, ActionBookmarked, 4, true)
	repo.On("Delete", ctx, int64(4)).Return(nil).Once()

	require.NoError(t, b.Delete(ctx, 4))

	for _, v := range domain.Views {
		assert.NotContains(t, ids(b.Feed(v).Items()), int64(4), v)
	}
	assert.Equal(t, []int64{2}, ids(b.Feed(domain.ViewTrending).Items()))
	_, ok := b.cache.Lookup(ctx, ActionLiked, 4)
	assert.False(t, ok)
	_, ok = b.cache.Lookup(ctx, ActionBookmarked, 4)
	assert.False(t, ok)
}

func TestBoard_ModerationPropagates(t *testing.T) {
	b, repo, _ := newBoard(t)
	loadViews(t, b, repo)

	_, err := b.UpdateStatus(ctx, 2, "ARCHIVED")
	assert.ErrorIs(t, err, errprocess.ErrValidation)

	updated := post(2)
	updated.Status = domain.StatusApproved
	updated.Content = "edited"
	repo.On("UpdateStatus", ctx, int64(2), domain.StatusApproved).Return(updated, nil).Once()
	_, err = b.UpdateStatus(ctx, 2, domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, "edited", b.Feed(domain.ViewAll).Items()[1].Content)
	assert.Equal(t, domain.StatusApproved, b.Feed(domain.ViewTrending).Items()[0].Status)

	repo.On("Pin", ctx, int64(2), true).Return(domain.Post{}, nil).Once()
	_, err = b.Pin(ctx, 2, true)
	require.NoError(t, err)
	assert.True(t, b.Feed(domain.ViewTrending).Items()[0].Pinned)
}

func TestBoard_AddComment(t *testing.T) {
	b, repo, _ := newBoard(t)
	loadViews(t, b, repo)

	_, err := b.AddComment(ctx, 2, " ", nil)
	assert.ErrorIs(t, err, errprocess.ErrValidation)

	repo.On("AddComment", ctx, int64(2), "nice", (*int64)(nil)).Return(domain.Comment{ID: 1, PostID: 2}, nil).Once()
	_, err = b.AddComment(ctx, 2, "nice", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), b.Feed(domain.ViewAll).Items()[1].CommentCount)
	assert.Equal(t, int64(1), b.Feed(domain.ViewTrending).Items()[0].CommentCount)
	assert.Equal(t, int64(0), b.Feed(domain.ViewMine).Items()[0].CommentCount)
}

func TestBoard_PropagateCountsLists(t *testing.T) {
	b, repo, _ := newBoard(t)
	loadViews(t, b, repo)

	assert.Equal(t, 2, b.Propagate(1, func(p *domain.Post) { p.Pinned = true }))
	assert.Equal(t, 0, b.Propagate(42, func(p *domain.Post) { p.Pinned = true }))
	assert.Equal(t, 2, b.Remove(2))
}

func TestBoard_SnapshotFlags(t *testing.T) {
	b, repo, _ := newBoard(t)
	loadViews(t, b, repo)
	b.cache.Set(ctx, ActionLiked, 2, true)

	s := b.Snapshot(ctx)
	assert.Equal(t, domain.ViewAll, s.View)
	assert.True(t, s.Liked[2])
	assert.False(t, s.Liked[1])
	assert.Len(t, s.Bookmarked, 2)
}
