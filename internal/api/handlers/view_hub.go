package handlers

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"edu_social_client/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Source current state of a view
type Source func(ctx context.Context) any

// ViewEvent pushed to /ws/view clients after a view changed
type ViewEvent struct {
	View  string `json:"view"`
	State any    `json:"state"`
}

type viewClient struct {
	send chan []byte
	done chan struct{}
	once sync.Once
}

func (c *viewClient) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub 把 view 變化推送給所有 websocket 連線, 送不出去的慢連線直接斷開
type Hub struct {
	sources   map[string]Source
	heartbeat time.Duration
	bufSize   int
	wake      chan struct{}
	join      chan *viewClient
	stopped   chan struct{}
	stopOnce  sync.Once

	mu      sync.Mutex
	pending map[string]struct{}
	clients map[*viewClient]struct{}
}

// NewHub create Hub, heartbeat is the ping interval
func NewHub(sources map[string]Source, heartbeat time.Duration) *Hub {
	if heartbeat <= 0 {
		heartbeat = 4 * time.Second
	}
	return &Hub{
		sources:   sources,
		heartbeat: heartbeat,
		bufSize:   max(16, 2*len(sources)),
		wake:      make(chan struct{}, 1),
		join:      make(chan *viewClient),
		stopped:   make(chan struct{}),
		pending:   make(map[string]struct{}),
		clients:   make(map[*viewClient]struct{}),
	}
}

// Names exposed view names, sorted
func (h *Hub) Names() []string {
	names := make([]string, 0, len(h.sources))
	for n := range h.sources {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Snapshot state of view
func (h *Hub) Snapshot(ctx context.Context, view string) (any, bool) {
	src, ok := h.sources[view]
	if !ok {
		return nil, false
	}
	return src(ctx), true
}

// Notify mark view dirty, never blocks. Used as the controllers' change hook.
func (h *Hub) Notify(view string) {
	if _, ok := h.sources[view]; !ok {
		return
	}
	h.mu.Lock()
	h.pending[view] = struct{}{}
	h.mu.Unlock()
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Run publish dirty views until ctx is done, repeated notifications of a view coalesce.
// New clients get their initial snapshots from here, after registration.
func (h *Hub) Run(ctx context.Context) {
	defer h.stopOnce.Do(func() { close(h.stopped) })
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.join:
			h.prime(ctx, c)
			continue
		case <-h.wake:
		}
		h.mu.Lock()
		views := make([]string, 0, len(h.pending))
		for v := range h.pending {
			views = append(views, v)
		}
		clear(h.pending)
		h.mu.Unlock()

		slices.Sort(views)
		for _, v := range views {
			msg, err := h.encode(ctx, v)
			if err != nil {
				logger.Log.Error("encode view state failed", zap.String("view", v), zap.Error(err))
				continue
			}
			h.broadcast(msg)
		}
	}
}

func (h *Hub) encode(ctx context.Context, view string) ([]byte, error) {
	state, _ := h.Snapshot(ctx, view)
	return json.Marshal(ViewEvent{View: view, State: state})
}

// Clients number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			logger.Log.Warn("view client too slow, dropped")
			delete(h.clients, c)
			c.close()
		}
	}
}

// prime queue every view state for c only
func (h *Hub) prime(ctx context.Context, c *viewClient) {
	for _, v := range h.Names() {
		msg, err := h.encode(ctx, v)
		if err != nil {
			logger.Log.Error("encode view state failed", zap.String("view", v), zap.Error(err))
			continue
		}
		select {
		case c.send <- msg:
		case <-c.done:
			return
		default:
			logger.Log.Warn("view client too slow, dropped")
			h.unregister(c)
			return
		}
	}
}

func (h *Hub) register(c *viewClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *viewClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

// Serve /ws/view connection: every view state first, then change events
func (h *Hub) Serve(conn *websocket.Conn) {
	c := &viewClient{send: make(chan []byte, h.bufSize), done: make(chan struct{})}
	h.register(c)
	select {
	case h.join <- c:
	case <-h.stopped:
		c.close()
	}
	logger.Log.Info("view client connected", zap.String("remote", conn.RemoteAddr().String()))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(conn, c)
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				logger.Log.Warn("view client read failed", zap.Error(err))
			}
			break
		}
	}
	h.unregister(c)
	wg.Wait()
	logger.Log.Info("view client disconnected", zap.String("remote", conn.RemoteAddr().String()))
}

func (h *Hub) writeLoop(conn *websocket.Conn, c *viewClient) {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
			return
		case msg := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(h.heartbeat))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Log.Warn("view client write failed", zap.Error(err))
				h.unregister(c)
				_ = conn.Close()
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.heartbeat)); err != nil {
				logger.Log.Warn("view client ping failed", zap.Error(err))
				h.unregister(c)
				_ = conn.Close()
				return
			}
		}
	}
}
