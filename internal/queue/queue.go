package queue

import (
	"context"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Client wraps one AMQP connection and channel. The terminal uses it to
// consume backend order events as refresh signals.
type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

func New(url string) (*Client, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch}, nil
}

func (c *Client) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *Client) EnsureExchange(name string) error {
	return c.ch.ExchangeDeclare(
		name,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
}

func (c *Client) EnsureQueue(name string) (amqp.Queue, error) {
	return c.ch.QueueDeclare(
		name,
		true,
		false,
		false,
		false,
		nil,
	)
}

func (c *Client) BindQueue(queueName, exchange, routingKey string) error {
	return c.ch.QueueBind(queueName, routingKey, exchange, false, nil)
}

type HandlerFunc func(ctx context.Context, body []byte) error

// ConsumeWithRetry processes deliveries one at a time until ctx is cancelled
// or the delivery channel closes. A failed message is requeued up to
// maxRetries times with retryDelay between attempts, then dropped.
func (c *Client) ConsumeWithRetry(ctx context.Context, queue string, handler HandlerFunc, maxRetries int, retryDelay time.Duration) error {
	msgs, err := c.ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			if err := handler(ctx, msg.Body); err == nil {
				_ = msg.Ack(false)
				continue
			}
			if err := c.requeue(ctx, queue, msg, maxRetries, retryDelay); err != nil {
				return err
			}
		}
	}
}

// requeue republishes a failed delivery with a bumped retry counter, or drops
// it once the retry budget is spent.
func (c *Client) requeue(ctx context.Context, queue string, msg amqp.Delivery, maxRetries int, retryDelay time.Duration) error {
	attempt := retryCount(msg.Headers)
	if attempt >= maxRetries {
		_ = msg.Nack(false, false)
		return nil
	}

	select {
	case <-ctx.Done():
		_ = msg.Nack(false, true)
		return ctx.Err()
	case <-time.After(retryDelay):
	}

	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retry-count"] = attempt + 1

	err := c.ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType: msg.ContentType,
		Body:        msg.Body,
		Headers:     headers,
		Timestamp:   time.Now(),
	})
	if err != nil {
		return err
	}
	return msg.Ack(false)
}

func retryCount(headers amqp.Table) int {
	switch n := headers["x-retry-count"].(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
