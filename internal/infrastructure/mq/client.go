// Package mq carries print jobs over RabbitMQ.
package mq

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Config holds the broker address and the queue names.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
	Queue    string
}

// URL returns the AMQP connection string.
func (c Config) URL() string {
	vhost := c.VHost
	if vhost == "" {
		vhost = "/"
	}
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + url.PathEscape(vhost),
	}
	if vhost == "/" {
		u.Path = "/"
	}
	return u.String()
}

// Names derived from the job queue.
func deadLetterExchange(queue string) string { return queue + ".dlx" }
func deadLetterQueue(queue string) string    { return queue + ".dlq" }

// Client owns one connection with a confirm-mode channel for publishing and
// a separate channel for consuming.
type Client struct {
	conn  *amqp.Connection
	pub   *amqp.Channel
	sub   *amqp.Channel
	acks  <-chan amqp.Confirmation
	mu    sync.Mutex
	queue string
}

// Dial connects, enables publisher confirms and declares the job topology.
func Dial(cfg Config) (*Client, error) {
	if cfg.Queue == "" {
		return nil, errors.New("mq: queue name is empty")
	}
	conn, err := amqp.Dial(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("mq: dial: %w", err)
	}

	pub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq: open channel: %w", err)
	}
	if err := pub.Confirm(false); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq: confirm mode: %w", err)
	}
	sub, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mq: open channel: %w", err)
	}

	c := &Client{
		conn:  conn,
		pub:   pub,
		sub:   sub,
		acks:  pub.NotifyPublish(make(chan amqp.Confirmation, 1)),
		queue: cfg.Queue,
	}
	if err := c.declare(); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) declare() error {
	dlx := deadLetterExchange(c.queue)
	if err := c.pub.ExchangeDeclare(dlx, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("mq: declare %s: %w", dlx, err)
	}
	if _, err := c.pub.QueueDeclare(deadLetterQueue(c.queue), true, false, false, false, nil); err != nil {
		return fmt.Errorf("mq: declare dead letter queue: %w", err)
	}
	if err := c.pub.QueueBind(deadLetterQueue(c.queue), c.queue, dlx, false, nil); err != nil {
		return fmt.Errorf("mq: bind dead letter queue: %w", err)
	}
	_, err := c.pub.QueueDeclare(c.queue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    dlx,
		"x-dead-letter-routing-key": c.queue,
	})
	if err != nil {
		return fmt.Errorf("mq: declare %s: %w", c.queue, err)
	}
	return nil
}

// Ping reports whether the connection is still open.
func (c *Client) Ping() error {
	if c.conn == nil || c.conn.IsClosed() {
		return errors.New("mq: connection is closed")
	}
	return nil
}

// Close closes both channels and the connection.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.sub != nil {
		_ = c.sub.Close()
	}
	if c.pub != nil {
		_ = c.pub.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// Publish sends a persistent JSON message to the job queue and waits for the
// broker confirm.
func (c *Client) Publish(ctx context.Context, id string, body []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.pub.PublishWithContext(ctx, "", c.queue, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    id,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("mq: publish: %w", err)
	}

	select {
	case conf, ok := <-c.acks:
		if !ok {
			return errors.New("mq: confirm channel closed")
		}
		if !conf.Ack {
			return errors.New("mq: publish NACK from broker")
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Consume delivers jobs to h one at a time until ctx is cancelled or the
// channel closes.
func (c *Client) Consume(ctx context.Context, consumer string, h Handler) error {
	if err := c.sub.Qos(1, 0, false); err != nil {
		return fmt.Errorf("mq: qos: %w", err)
	}
	msgs, err := c.sub.Consume(c.queue, consumer, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("mq: consume %s: %w", c.queue, err)
	}
	return Serve(ctx, msgs, h)
}
