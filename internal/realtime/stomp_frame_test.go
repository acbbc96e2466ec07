package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	in := Frame{
		Command: stompMessage,
		Headers: map[string]string{"destination": "/user/u1/chat", "subscription": "a:b"},
		Body:    []byte(`{"type":"MESSAGE"}`),
	}
	frames, err := DecodeFrames(in.Encode())
	require.NoError(t, err)
	require.Len(t, frames, 1)

	out := frames[0]
	assert.Equal(t, stompMessage, out.Command)
	assert.Equal(t, "/user/u1/chat", out.Header("destination"))
	assert.Equal(t, "a:b", out.Header("subscription"))
	assert.Equal(t, in.Body, out.Body)
}

func TestDecodeFrames(t *testing.T) {
	t.Run("heartbeats only", func(t *testing.T) {
		frames, err := DecodeFrames([]byte("\n\r\n"))
		require.NoError(t, err)
		assert.Empty(t, frames)
	})

	t.Run("no content-length", func(t *testing.T) {
		frames, err := DecodeFrames([]byte("CONNECTED\nversion:1.2\n\n\x00\nMESSAGE\ndestination:/topic/group-posts\n\n{}\x00"))
		require.NoError(t, err)
		require.Len(t, frames, 2)
		assert.Equal(t, stompConnected, frames[0].Command)
		assert.Equal(t, "1.2", frames[0].Header("version"))
		assert.Equal(t, "/topic/group-posts", frames[1].Header("destination"))
		assert.Equal(t, []byte("{}"), frames[1].Body)
	})

	t.Run("crlf headers", func(t *testing.T) {
		frames, err := DecodeFrames([]byte("MESSAGE\r\ndestination:/x\r\n\r\nhi\x00"))
		require.NoError(t, err)
		require.Len(t, frames, 1)
		assert.Equal(t, "/x", frames[0].Header("destination"))
		assert.Equal(t, []byte("hi"), frames[0].Body)
	})

	t.Run("body with NUL and content-length", func(t *testing.T) {
		frames, err := DecodeFrames([]byte("MESSAGE\ncontent-length:3\n\na\x00b\x00"))
		require.NoError(t, err)
		require.Len(t, frames, 1)
		assert.Equal(t, []byte("a\x00b"), frames[0].Body)
	})

	t.Run("repeated header keeps first", func(t *testing.T) {
		frames, err := DecodeFrames([]byte("MESSAGE\nfoo:1\nfoo:2\n\n\x00"))
		require.NoError(t, err)
		assert.Equal(t, "1", frames[0].Header("foo"))
	})

	t.Run("incomplete", func(t *testing.T) {
		_, err := DecodeFrames([]byte("MESSAGE\ndestination:/x\n\nno terminator"))
		assert.ErrorIs(t, err, errIncompleteFrame)
		_, err = DecodeFrames([]byte("MESSAGE\ncontent-length:10\n\nshort\x00"))
		assert.ErrorIs(t, err, errIncompleteFrame)
	})

	t.Run("bad header", func(t *testing.T) {
		_, err := DecodeFrames([]byte("MESSAGE\nnocolon\n\n\x00"))
		assert.Error(t, err)
	})
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "user.u1.chat", Subject(ChatDestination("u1")))
	assert.Equal(t, "topic.group-updates", Subject(TopicGroupUpdates))
	assert.Equal(t, EventGroupPost, EventForDestination(TopicGroupPosts))
	assert.Equal(t, EventType(""), EventForDestination("/user/u1/chat"))
}
