package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeForMIME(t *testing.T) {
	cases := map[string]PostType{
		"image/png":       PostImage,
		"video/mp4":       PostVideo,
		"audio/mpeg":      PostAudio,
		"application/pdf": PostDocument,
		"text/plain":      PostDocument,
	}
	for mime, want := range cases {
		assert.Equal(t, want, TypeForMIME(mime), mime)
	}
}

func TestFindMember(t *testing.T) {
	members := []Member{{UserID: "a", Admin: true}, {UserID: "b"}}

	m, ok := FindMember(members, "a")
	assert.True(t, ok)
	assert.True(t, m.Admin)

	_, ok = FindMember(members, "z")
	assert.False(t, ok)
}
