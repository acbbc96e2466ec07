package realtime

import (
	"context"
	"os"
	"testing"
	"time"

	"edu_social_client/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// needs a running server, e.g. NATS_URL=nats://127.0.0.1:4222
func TestNatsTransport(t *testing.T) {
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set")
	}
	logger.SetNewNop()

	conn, err := NewNatsConn(url, time.Second)
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := NewNatsTransport(conn, 4)
	sink := make(chanSink, 1)
	dest := ChatDestination("nats-test")
	go func() { _ = tr.Run(ctx, []string{dest}, sink) }()

	assert.Eventually(t, func() bool {
		_ = tr.Publish(dest, []byte(`{"type":"SEEN","chatId":"c1"}`))
		select {
		case env := <-sink:
			return env.Destination == dest
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
}
