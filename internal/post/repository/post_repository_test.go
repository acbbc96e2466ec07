package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"edu_social_client/internal/post/domain"
	"edu_social_client/pkg/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type token string

func (t token) BearerToken() (string, error) { return string(t), nil }

func newRepo(t *testing.T, mux *http.ServeMux) PostRepository {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewPostRepository(httpclient.New(srv.URL, token("tok"), 2*time.Second))
}

func TestPostRepository_ListViews(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	handler := func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path] = r.URL.RawQuery
		mu.Unlock()
		_, _ = w.Write([]byte(`{"content":[{"id":1}],"page":{"size":10,"number":0,"totalElements":21,"totalPages":3}}`))
	}
	mux := http.NewServeMux()
	for _, p := range []string{"/api/v1/posts", "/api/v1/posts/my-posts", "/api/v1/posts/search", "/api/v1/posts/bookmarks"} {
		mux.HandleFunc(p, handler)
	}
	repo := newRepo(t, mux)
	ctx := context.Background()

	_, err := repo.List(ctx, domain.ViewMine, "", 0, 5)
	require.NoError(t, err)
	_, err = repo.List(ctx, domain.ViewBookmarked, "", 0, 5)
	require.NoError(t, err)

	page, err := repo.List(ctx, domain.ViewAll, "", 0, 10)
	require.NoError(t, err)
	pages, total := page.Totals(10)
	assert.Equal(t, 3, pages)
	assert.Equal(t, int64(21), total)

	_, err = repo.List(ctx, domain.ViewSearch, "golang", 1, 10)
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, seen["/api/v1/posts/search"], "query=golang")
	assert.Contains(t, seen["/api/v1/posts/search"], "page=1")
	assert.Contains(t, seen["/api/v1/posts/my-posts"], "size=5")
	assert.Contains(t, seen, "/api/v1/posts/bookmarks")
}

func TestPostRepository_Toggles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/posts/4/like", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_ = json.NewEncoder(w).Encode(domain.LikeResult{Liked: true, Action: domain.ActionLiked, LikeCount: 8})
	})
	mux.HandleFunc("/api/v1/posts/4/bookmarked", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`true`))
	})
	mux.HandleFunc("/api/v1/posts/4/comments", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nice", r.URL.Query().Get("content"))
		assert.Equal(t, "2", r.URL.Query().Get("parentCommentId"))
		_ = json.NewEncoder(w).Encode(domain.Comment{ID: 11, PostID: 4, Content: "nice", Reply: true})
	})
	repo := newRepo(t, mux)
	ctx := context.Background()

	res, err := repo.ToggleLike(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.LikeCount)

	ok, err := repo.IsBookmarked(ctx, 4)
	require.NoError(t, err)
	assert.True(t, ok)

	parent := int64(2)
	c, err := repo.AddComment(ctx, 4, "nice", &parent)
	require.NoError(t, err)
	assert.True(t, c.Reply)
}

func TestPostRepository_CreateMultipart(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/posts", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "hello", r.FormValue("content"))
		_, hdr, err := r.FormFile("imageFile")
		require.NoError(t, err)
		assert.Equal(t, "a.png", hdr.Filename)
		_ = json.NewEncoder(w).Encode(domain.Post{ID: 5, Content: "hello", Status: domain.StatusPending})
	})
	repo := newRepo(t, mux)

	p, err := repo.Create(context.Background(), "hello", &domain.Attachment{Name: "a.png", Data: []byte("\x89PNG")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)
}
