package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
)

// EbookSender performs the actual delivery of a queued message.
type EbookSender interface {
	Execute(ctx context.Context, prospect *entity.Prospect) error
}

type Worker struct {
	Channel *amqp.Channel
	Sender  EbookSender
	log     *zap.SugaredLogger
}

func NewWorker(ch *amqp.Channel, sender EbookSender, log *zap.SugaredLogger) *Worker {
	return &Worker{
		Channel: ch,
		Sender:  sender,
		log:     log,
	}
}

// Start consumes queueName until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.log.Infow("ebook delivery worker waiting", "queue", queueName)

	for {
		select {
		case <-ctx.Done():
			w.log.Infow("ebook delivery worker stopped", "queue", queueName)
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.Handle(ctx, d.Body, d)
		}
	}
}

// Acknowledger is satisfied by amqp.Delivery.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *Worker) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	var payload EbookDeliveryPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		w.log.Errorw("❌ invalid delivery payload, dead-lettering", "error", err)
		ack.Nack(false, false)
		return
	}

	if err := w.Sender.Execute(ctx, payload.Prospect()); err != nil {
		w.log.Errorw("❌ ebook delivery failed", "prospect_id", payload.ProspectID, "email", payload.Email, "error", err)
		ack.Nack(false, false)
		return
	}

	ack.Ack(false)
}
