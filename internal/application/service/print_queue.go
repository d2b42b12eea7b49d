package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/infrastructure/mq"
	"github.com/sangkips/posprint/internal/receipt"
	"github.com/sangkips/posprint/pkg/apperror"
)

// PrintMessage is a print request carried over the job queue.
type PrintMessage struct {
	ID         string           `json:"id"`
	Document   string           `json:"document"`
	Role       enum.PrinterRole `json:"role"`
	Bill       *entity.BillData `json:"bill,omitempty"`
	KOT        *entity.KOTData  `json:"kot,omitempty"`
	EnqueuedAt time.Time        `json:"enqueued_at"`
	// Numbered is set when Bill.BillNumber was assigned at enqueue time.
	Numbered bool `json:"numbered,omitempty"`
}

// Publisher sends an encoded message to the job queue.
type Publisher interface {
	Publish(ctx context.Context, id string, body []byte) error
}

// PrintQueue accepts print requests for asynchronous dispatch. New bills get
// their display number here, once, so redeliveries print the same number.
type PrintQueue struct {
	pub     Publisher
	numbers receipt.BillNumberer
}

// NewPrintQueue creates a queue backed by pub. With numbers nil bills keep
// the number they carry.
func NewPrintQueue(pub Publisher, numbers receipt.BillNumberer) *PrintQueue {
	return &PrintQueue{pub: pub, numbers: numbers}
}

// Enqueue validates and publishes msg, returning its id.
func (q *PrintQueue) Enqueue(ctx context.Context, msg *PrintMessage) (string, error) {
	switch msg.Document {
	case entity.DocumentBill:
		if msg.Bill == nil {
			return "", apperror.NewBadRequestError("bill is required")
		}
	case entity.DocumentKOT:
		if msg.KOT == nil {
			return "", apperror.NewBadRequestError("kot is required")
		}
	default:
		return "", apperror.NewBadRequestError(fmt.Sprintf("unknown document %q", msg.Document))
	}

	if msg.Document == entity.DocumentBill && !msg.Bill.IsReprint && q.numbers != nil {
		n, err := q.numbers.NextBillNumber(ctx)
		if err != nil {
			return "", apperror.NewUnavailableError("Bill number unavailable", err)
		}
		bill := *msg.Bill
		bill.BillNumber = n
		msg.Bill = &bill
		msg.Numbered = true
	}

	msg.ID = uuid.NewString()
	msg.EnqueuedAt = time.Now().UTC()
	body, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	if err := q.pub.Publish(ctx, msg.ID, body); err != nil {
		return "", apperror.NewUnavailableError("Print queue unavailable", err)
	}
	return msg.ID, nil
}

// PrintWorker dispatches queued print requests.
type PrintWorker struct {
	dispatcher *PrintDispatcher
	log        *slog.Logger
}

// NewPrintWorker creates a worker.
func NewPrintWorker(d *PrintDispatcher, log *slog.Logger) *PrintWorker {
	if log == nil {
		log = slog.Default()
	}
	return &PrintWorker{dispatcher: d, log: log}
}

// Handle prints one queued job. A retryable failure is requeued once, then
// dead-lettered along with malformed and permanently failing jobs.
func (w *PrintWorker) Handle(ctx context.Context, m mq.Message) error {
	var msg PrintMessage
	if err := json.Unmarshal(m.Body, &msg); err != nil {
		w.log.Error("malformed print job", "message_id", m.ID, "error", err)
		return mq.ErrDLQ
	}

	var res DispatchResult
	switch msg.Document {
	case entity.DocumentBill:
		if msg.Numbered {
			res = w.dispatcher.DispatchNumberedBill(ctx, msg.Role, msg.Bill)
		} else {
			res = w.dispatcher.DispatchBill(ctx, msg.Role, msg.Bill)
		}
	case entity.DocumentKOT:
		res = w.dispatcher.DispatchKOT(ctx, msg.Role, msg.KOT)
	default:
		w.log.Error("unknown print document", "message_id", m.ID, "document", msg.Document)
		return mq.ErrDLQ
	}

	if res.Success {
		return nil
	}
	if res.Retryable() && !m.Redelivered {
		return mq.ErrRequeue
	}
	return fmt.Errorf("%w: %s", mq.ErrDLQ, res.Error)
}
