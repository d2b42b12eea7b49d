package mq

import (
	"context"
	"errors"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler outcomes besides nil (ack).
var (
	ErrRequeue = errors.New("requeue")     // nack, requeue
	ErrDLQ     = errors.New("dead_letter") // nack, dead letter
)

// Message is the part of a delivery a handler sees.
type Message struct {
	ID          string
	Body        []byte
	Redelivered bool
}

// Handler processes one message.
type Handler func(ctx context.Context, m Message) error

// Serve settles every delivery from msgs with the handler's outcome. Errors
// other than ErrRequeue are dead-lettered.
func Serve(ctx context.Context, msgs <-chan amqp.Delivery, h Handler) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("mq: delivery channel closed")
			}
			settle(ctx, d, h)
		}
	}
}

func settle(ctx context.Context, d amqp.Delivery, h Handler) {
	err := h(ctx, Message{ID: d.MessageId, Body: d.Body, Redelivered: d.Redelivered})
	switch {
	case err == nil:
		err = d.Ack(false)
	case errors.Is(err, ErrRequeue):
		slog.Warn("print job requeued", "message_id", d.MessageId)
		err = d.Nack(false, true)
	default:
		slog.Error("print job dead-lettered", "message_id", d.MessageId, "error", err)
		err = d.Nack(false, false)
	}
	if err != nil {
		slog.Error("failed to settle delivery", "message_id", d.MessageId, "error", err)
	}
}
