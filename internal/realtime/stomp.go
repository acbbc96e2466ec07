package realtime

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StompTransport STOMP over websocket subscription, reconnects until ctx is done
type StompTransport struct {
	name           string
	url            string
	tokens         TokenSource
	dialer         *websocket.Dialer
	reconnectDelay time.Duration
	heartbeat      time.Duration
}

// NewStompTransport create StompTransport, name is used in logs
func NewStompTransport(name, wsURL string, tokens TokenSource, reconnectDelay, heartbeat time.Duration) *StompTransport {
	return &StompTransport{
		name:           name,
		url:            wsURL,
		tokens:         tokens,
		dialer:         &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		reconnectDelay: reconnectDelay,
		heartbeat:      heartbeat,
	}
}

// Run keep a session open, a broken session is retried after reconnectDelay
func (t *StompTransport) Run(ctx context.Context, destinations []string, sink Sink) error {
	for {
		err := t.session(ctx, destinations, sink)
		if ctx.Err() != nil {
			logger.Log.Info("stomp transport stopped", zap.String("transport", t.name))
			return ctx.Err()
		}
		logger.Log.Warn("stomp session ended, reconnecting",
			zap.String("transport", t.name),
			zap.Duration("delay", t.reconnectDelay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(t.reconnectDelay):
		}
	}
}

func (t *StompTransport) session(ctx context.Context, destinations []string, sink Sink) error {
	bearer, err := t.tokens.BearerToken()
	if err != nil {
		return fmt.Errorf("%w: stomp connect", errprocess.ErrSession)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+bearer)
	conn, _, err := t.dialer.DialContext(ctx, t.url, header)
	if err != nil {
		return fmt.Errorf("dial %s: %w", t.url, err)
	}

	stop := make(chan struct{})
	var closeOnce sync.Once
	closeConn := func() { closeOnce.Do(func() { _ = conn.Close() }) }
	defer func() {
		close(stop)
		closeConn()
	}()
	go func() {
		select {
		case <-ctx.Done():
			closeConn()
		case <-stop:
		}
	}()

	w := &frameWriter{conn: conn}
	host := t.url
	if u, err := url.Parse(t.url); err == nil {
		host = u.Hostname()
	}
	hb := fmt.Sprintf("%d,%d", t.heartbeat.Milliseconds(), t.heartbeat.Milliseconds())
	if err := w.write(Frame{Command: stompConnect, Headers: map[string]string{
		"accept-version": "1.2",
		"host":           host,
		"Authorization":  "Bearer " + bearer,
		"heart-beat":     hb,
	}}); err != nil {
		return err
	}

	if err := t.awaitConnected(conn); err != nil {
		return err
	}

	for _, d := range destinations {
		if err := w.write(Frame{Command: stompSubscribe, Headers: map[string]string{
			"id":          uuid.NewString(),
			"destination": d,
			"ack":         "auto",
		}}); err != nil {
			return err
		}
	}
	logger.Log.Info("stomp subscribed", zap.String("transport", t.name), zap.Strings("destinations", destinations))

	if t.heartbeat > 0 {
		go w.heartbeat(t.heartbeat, stop)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		frames, err := DecodeFrames(data)
		if err != nil {
			logger.Log.Warn("stomp frame dropped", zap.String("transport", t.name), zap.Error(err))
		}
		for _, f := range frames {
			switch f.Command {
			case stompMessage:
				env := Envelope{Destination: f.Header("destination"), Body: f.Body}
				if err := sink.Enqueue(ctx, env); err != nil {
					return err
				}
			case stompError:
				return fmt.Errorf("stomp error frame: %s %s", f.Header("message"), string(f.Body))
			}
		}
	}
}

func (t *StompTransport) awaitConnected(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("await CONNECTED: %w", err)
		}
		frames, err := DecodeFrames(data)
		if err != nil {
			return err
		}
		for _, f := range frames {
			switch f.Command {
			case stompConnected:
				return nil
			case stompError:
				return fmt.Errorf("stomp connect refused: %s", f.Header("message"))
			}
		}
	}
}

// frameWriter serialise writes, gorilla allows one concurrent writer
type frameWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *frameWriter) write(f Frame) error {
	return w.raw(f.Encode())
}

func (w *frameWriter) raw(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, b)
}

func (w *frameWriter) heartbeat(every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := w.raw([]byte("\n")); err != nil {
				return
			}
		}
	}
}
