package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))
	assert.Equal(t, "exactly twenty chars", Preview("exactly twenty chars"))
	assert.Equal(t, "this is a longer ...", Preview("this is a longer message"))
	assert.Equal(t, "你好你好你好你好你好你好你好你好你...", Preview("你好你好你好你好你好你好你好你好你好你好你好"))
}

func TestNotificationMedia(t *testing.T) {
	single := Notification{Media: json.RawMessage(`"abc"`)}
	list := Notification{Media: json.RawMessage(`["first","second"]`)}
	bad := Notification{Media: json.RawMessage(`{"x":1}`)}

	assert.Equal(t, "abc", single.MediaPayload())
	assert.Equal(t, "first", list.MediaPayload())
	assert.Equal(t, "", bad.MediaPayload())
	assert.Equal(t, "", Notification{}.MediaPayload())
}

func TestNotificationValidate(t *testing.T) {
	assert.NoError(t, Notification{ChatID: "c", Type: NotifySeen}.Validate())
	assert.Error(t, Notification{Type: NotifySeen}.Validate())
	assert.Error(t, Notification{ChatID: "c", Type: "TYPING"}.Validate())
	assert.Equal(t, AttachmentContent, Notification{Type: NotifyImage, Content: "x"}.SummaryText())
}

func TestCounterpart(t *testing.T) {
	c := Chat{SenderID: "a", ReceiverID: "b"}
	assert.Equal(t, "b", c.Counterpart("a"))
	assert.Equal(t, "a", c.Counterpart("b"))
	assert.True(t, c.HasParticipants("b", "a"))
	assert.False(t, c.HasParticipants("a", "c"))
}
