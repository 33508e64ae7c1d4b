package push

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"pos-terminal/internal/queue"
)

// Topology for the event feed: the backend publishes order events to a topic
// exchange; each terminal binds its own durable queue to the order.# keys.
const (
	eventsExchange = "pos.events"
	orderEventsKey = "order.#"
)

// AMQPChannel consumes backend order events as refresh signals. Event bodies
// are opaque to the terminal; any delivery means resync.
type AMQPChannel struct {
	client    *queue.Client
	queueName string
	log       *zap.Logger
}

// NewAMQPChannel declares the terminal's queue and binds it to the event
// exchange. terminalID keeps queues of different terminals apart.
func NewAMQPChannel(client *queue.Client, terminalID string, log *zap.Logger) (*AMQPChannel, error) {
	queueName := fmt.Sprintf("pos.terminal.%s.refresh", terminalID)
	if err := client.EnsureExchange(eventsExchange); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := client.EnsureQueue(queueName); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	if err := client.BindQueue(queueName, eventsExchange, orderEventsKey); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}
	return &AMQPChannel{client: client, queueName: queueName, log: log}, nil
}

func (a *AMQPChannel) Run(ctx context.Context, onSignal func()) error {
	return a.client.ConsumeWithRetry(ctx, a.queueName, func(_ context.Context, body []byte) error {
		a.log.Debug("push signal received", zap.Int("bytes", len(body)))
		onSignal()
		return nil
	}, 5, 5*time.Second)
}
