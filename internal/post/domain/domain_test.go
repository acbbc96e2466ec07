package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleOutcome(t *testing.T) {
	assert.True(t, LikeResult{Action: ActionLiked}.IsLiked())
	assert.False(t, LikeResult{Action: ActionUnliked, Liked: true}.IsLiked())
	assert.True(t, LikeResult{Liked: true}.IsLiked())

	assert.True(t, BookmarkResult{Action: ActionAdded}.IsBookmarked())
	assert.False(t, BookmarkResult{Action: ActionRemoved, Bookmarked: true}.IsBookmarked())
}

func TestPostStatusValid(t *testing.T) {
	assert.True(t, StatusApproved.Valid())
	assert.False(t, PostStatus("ARCHIVED").Valid())
}

func TestDecodePost(t *testing.T) {
	body := `{"id":3,"content":"hi","status":"APPROVED","likeCount":4,"pinned":true,"createdDate":"2025-01-02T03:04:05"}`
	var p Post
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	assert.Equal(t, int64(4), p.LikeCount)
	assert.True(t, p.Pinned)
	assert.Equal(t, 2025, p.CreatedDate.Year())
}
