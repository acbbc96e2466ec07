package router

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"edu_social_client/internal/api/handlers"
	"edu_social_client/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatsState struct {
	Unread int32 `json:"unread"`
}

func newApp(t *testing.T, token string) (*fiber.App, *handlers.Hub, *atomic.Int32) {
	t.Helper()
	logger.SetNewNop()
	unread := new(atomic.Int32)
	hub := handlers.NewHub(map[string]handlers.Source{
		"chats": func(context.Context) any { return chatsState{Unread: unread.Load()} },
		"posts": func(context.Context) any { return []int{} },
	}, 100*time.Millisecond)
	app := fiber.New()
	RegisterRoutes(app, hub, handlers.NewStateHandler(hub), token)
	return app, hub, unread
}

func TestRoutes_HTTP(t *testing.T) {
	app, _, unread := newApp(t, "tok")
	unread.Store(3)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/state/chats", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/state/chats?auth=tok", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"view":"chats","state":{"unread":3}}`, string(body))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/state/nope?auth=tok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/state?auth=tok", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"views":["chats","posts"]}`, string(body))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ws/view?auth=tok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
}

func TestRoutes_Debug(t *testing.T) {
	app, _, _ := newApp(t, "")

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/debug?service=sync_client&status=true", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, logger.Log.DebugMode())

	resp, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/debug?status=maybe", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestRoutes_ViewWebsocket(t *testing.T) {
	app, hub, unread := newApp(t, "tok")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	defer app.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/view?auth=tok", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	read := func() handlers.ViewEvent {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev handlers.ViewEvent
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	}
	assert.Equal(t, "chats", read().View)
	assert.Equal(t, "posts", read().View)

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)
	unread.Store(5)
	hub.Notify("chats")

	ev := read()
	assert.Equal(t, "chats", ev.View)
	assert.Equal(t, map[string]any{"unread": float64(5)}, ev.State)
}
