package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/sniperbusiness/ebook-funnel/internal/entity"
	"github.com/sniperbusiness/ebook-funnel/internal/infra/metrics"
)

type EbookDeliveryPayload struct {
	ProspectID string `json:"prospect_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Whatsapp   string `json:"whatsapp"`
	EbookID    string `json:"ebook_id"`
	AdminID    string `json:"admin_id,omitempty"`
}

func NewEbookDeliveryPayload(p *entity.Prospect) EbookDeliveryPayload {
	return EbookDeliveryPayload{
		ProspectID: p.ID,
		FirstName:  p.FirstName,
		LastName:   p.LastName,
		Email:      p.Email,
		Whatsapp:   p.Whatsapp,
		EbookID:    p.EbookID,
		AdminID:    p.AdminID,
	}
}

// Prospect rebuilds the fields of the prospect the delivery needs.
func (p EbookDeliveryPayload) Prospect() *entity.Prospect {
	return &entity.Prospect{
		ID:        p.ProspectID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Whatsapp:  p.Whatsapp,
		EbookID:   p.EbookID,
		AdminID:   p.AdminID,
	}
}

// Publisher is the subset of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch Publisher
}

func NewProducer(ch Publisher) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

// Dispatch hands the ebook delivery of a freshly created prospect to the queue worker.
func (p *RabbitMQProducer) Dispatch(ctx context.Context, prospect *entity.Prospect) error {
	body, err := json.Marshal(NewEbookDeliveryPayload(prospect))
	if err != nil {
		return fmt.Errorf("marshal delivery payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish to rabbitmq: %w", err)
	}

	metrics.RecordEbookDelivery("queued")
	return nil
}
