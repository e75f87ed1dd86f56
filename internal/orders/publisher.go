package orders

import (
	"context"
	"strconv"
	"time"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

const eventVersion = 1

// Sink is where envelopes go; *kafkax.Producer in production.
type Sink interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers ...kafkago.Header) error
}

type Publisher struct {
	Sink    Sink
	Service string
}

func (p *Publisher) OrderPlaced(ctx context.Context, o Order) error {
	return p.publish(ctx, TopicOrderPlaced, EventOrderPlaced, o.ID.String(), OrderPlacedPayload{
		OrderID:       o.ID.String(),
		UserID:        o.UserID.String(),
		Items:         o.Products,
		Total:         o.Total,
		Address:       o.Address,
		PaymentMethod: o.PaymentMethod,
	})
}

func (p *Publisher) StatusChanged(ctx context.Context, o Order, from Status) error {
	return p.publish(ctx, TopicOrderStatusChanged, EventOrderStatusChanged, o.ID.String(), OrderStatusChangedPayload{
		OrderID: o.ID.String(),
		UserID:  o.UserID.String(),
		From:    from,
		To:      o.Status,
	})
}

func (p *Publisher) publish(ctx context.Context, topic, eventType, orderID string, payload any) error {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  eventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	return p.Sink.Publish(ctx, topic, PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(eventVersion))},
	)
}
