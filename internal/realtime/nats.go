package realtime

import (
	"context"
	"fmt"
	"time"

	"edu_social_client/pkg/logger"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NewNatsConn connect NATS with unlimited reconnects
func NewNatsConn(url string, reconnectWait time.Duration) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Log.Warn("disconnected from NATS", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS connection closed")
		}),
		nats.Timeout(10 * time.Second),
	}
	return nats.Connect(url, opts...)
}

// NatsTransport NATS subscription, subject derived from the destination by Subject
type NatsTransport struct {
	conn       *nats.Conn
	bufferSize int
}

// NewNatsTransport create NatsTransport
func NewNatsTransport(conn *nats.Conn, bufferSize int) *NatsTransport {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	return &NatsTransport{conn: conn, bufferSize: bufferSize}
}

// Run subscribe destinations until ctx is done
func (n *NatsTransport) Run(ctx context.Context, destinations []string, sink Sink) error {
	msgChan := make(chan *nats.Msg, n.bufferSize)
	bySubject := make(map[string]string, len(destinations))
	subs := make([]*nats.Subscription, 0, len(destinations))
	defer func() {
		for _, s := range subs {
			_ = s.Unsubscribe()
		}
	}()

	for _, d := range destinations {
		subject := Subject(d)
		bySubject[subject] = d
		sub, err := n.conn.ChanSubscribe(subject, msgChan)
		if err != nil {
			return fmt.Errorf("nats subscribe %s: %w", subject, err)
		}
		subs = append(subs, sub)
	}
	logger.Log.Info("NATS subscribed", zap.Strings("destinations", destinations))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-msgChan:
			dest, ok := bySubject[msg.Subject]
			if !ok {
				dest = msg.Subject
			}
			if err := sink.Enqueue(ctx, Envelope{Destination: dest, Body: msg.Data}); err != nil {
				return err
			}
		}
	}
}

// Publish send payload to the subject of destination
func (n *NatsTransport) Publish(destination string, payload []byte) error {
	return n.conn.Publish(Subject(destination), payload)
}
