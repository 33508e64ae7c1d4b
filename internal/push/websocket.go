package push

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebsocketChannel dials the backend's notification socket and treats every
// inbound frame as one refresh signal. Frames are opaque; their payload is
// logged and dropped.
type WebsocketChannel struct {
	url       string
	heartbeat time.Duration
	log       *zap.Logger
}

func NewWebsocketChannel(url string, heartbeat time.Duration, log *zap.Logger) *WebsocketChannel {
	return &WebsocketChannel{url: url, heartbeat: heartbeat, log: log}
}

func (w *WebsocketChannel) Run(ctx context.Context, onSignal func()) error {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, w.url, nil)
		if err != nil {
			w.log.Warn("push channel dial failed", zap.String("url", w.url), zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}

		w.log.Info("push channel connected", zap.String("url", w.url))
		backoff = time.Second
		w.readLoop(ctx, conn, onSignal)
	}
}

func (w *WebsocketChannel) readLoop(ctx context.Context, conn *websocket.Conn, onSignal func()) {
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(w.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(10 * time.Second)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			case <-ctx.Done():
				_ = conn.Close()
				return
			case <-done:
				return
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			w.log.Warn("push channel disconnected", zap.Error(err))
			return
		}
		w.log.Debug("push signal received", zap.Int("bytes", len(payload)))
		onSignal()
	}
}
