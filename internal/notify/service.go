// Package notify turns order events into customer notices. It runs inside
// the notifier binary as a Kafka consumer handler.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/money"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Deduper remembers which event ids were already handled.
type Deduper interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

type RedisDedup struct {
	Redis *redis.Client
	Scope string
}

func (d RedisDedup) Claim(ctx context.Context, eventID string) (bool, error) {
	return redisx.Claim(ctx, d.Redis, fmt.Sprintf(redisx.KeyDedup, d.Scope, eventID), redisx.TTLDedup)
}

func (d RedisDedup) Release(ctx context.Context, eventID string) error {
	return redisx.Release(ctx, d.Redis, fmt.Sprintf(redisx.KeyDedup, d.Scope, eventID))
}

type Notice struct {
	OrderID string
	UserID  string
	Subject string
	Body    string
}

type Service struct {
	Dedup   Deduper
	Money   *money.Formatter
	Log     *zap.Logger
	// Deliver sends the notice; nil logs it.
	Deliver func(ctx context.Context, n Notice) error
}

// Handle is the consumer handler for both order topics. Unknown event
// types and duplicates are acknowledged without a notice.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return fmt.Errorf("decode envelope at offset %d: %w", m.Offset, err)
	}

	var (
		n   Notice
		err error
	)
	switch env.EventType {
	case orders.EventOrderPlaced:
		n, err = s.placed(env)
	case orders.EventOrderStatusChanged:
		n, err = s.statusChanged(env)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	fresh, err := s.Dedup.Claim(ctx, env.EventID)
	if err != nil {
		return fmt.Errorf("dedup %s: %w", env.EventID, err)
	}
	if !fresh {
		s.Log.Debug("duplicate event", zap.String("event_id", env.EventID))
		return nil
	}
	if err := s.deliver(ctx, n); err != nil {
		if rerr := s.Dedup.Release(ctx, env.EventID); rerr != nil {
			s.Log.Warn("dedup release failed", zap.String("event_id", env.EventID), zap.Error(rerr))
		}
		return err
	}
	return nil
}

func (s *Service) placed(env orders.Envelope) (Notice, error) {
	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return Notice{}, err
	}
	items := 0
	for _, l := range p.Items {
		items += l.Quantity
	}
	return Notice{
		OrderID: p.OrderID,
		UserID:  p.UserID,
		Subject: fmt.Sprintf("Order #%s confirmed", p.OrderID),
		Body: fmt.Sprintf("Thank you for your order. %d item(s), total %s, paid by %s, shipping to %s.",
			items, s.Money.Format(p.Total), p.PaymentMethod, p.Address),
	}, nil
}

func (s *Service) statusChanged(env orders.Envelope) (Notice, error) {
	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		return Notice{}, err
	}
	return Notice{
		OrderID: p.OrderID,
		UserID:  p.UserID,
		Subject: fmt.Sprintf("Order #%s is now %s", p.OrderID, p.To),
		Body:    fmt.Sprintf("Your order moved from %s to %s.", p.From, p.To),
	}, nil
}

func (s *Service) deliver(ctx context.Context, n Notice) error {
	if s.Deliver != nil {
		return s.Deliver(ctx, n)
	}
	s.Log.Info("customer notice",
		zap.String("order_id", n.OrderID),
		zap.String("user_id", n.UserID),
		zap.String("subject", n.Subject),
		zap.String("body", n.Body),
		zap.Time("at", time.Now().UTC()))
	return nil
}
