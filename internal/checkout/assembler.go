// Package checkout turns the cart and the checkout form into an order and
// submits it.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrSubmitFailed = errors.New("order could not be placed")
)

// ClearError reports an order the backend created while the local cart
// could not be cleared. Order is the confirmed order; submitting again would
// duplicate it.
type ClearError struct {
	Order orders.Order
	Err   error
}

func (e *ClearError) Error() string {
	return fmt.Sprintf("order %s placed but cart not cleared: %v", e.Order.ID, e.Err)
}

func (e *ClearError) Unwrap() error { return e.Err }

type OrderCreator interface {
	CreateOrder(ctx context.Context, o orders.Order) (orders.Order, error)
}

// PlacedPublisher announces confirmed orders. Optional.
type PlacedPublisher interface {
	OrderPlaced(ctx context.Context, o orders.Order) error
}

type Identities interface {
	Current() (session.Identity, bool)
}

type Assembler struct {
	Cart    *cart.Engine
	Session Identities
	Backend OrderCreator
	Events  PlacedPublisher
	Pricing Pricing
	Log     *zap.Logger
	Now     func() time.Time
}

// BuildOrderPayload copies the lines (product, quantity, price snapshot)
// into a pending order priced with a.Pricing. Lines must not be empty.
func (a *Assembler) BuildOrderPayload(identity session.Identity, lines []cart.Line, form ShippingForm) (orders.Order, error) {
	if len(lines) == 0 {
		return orders.Order{}, ErrEmptyCart
	}
	items := make([]orders.Line, 0, len(lines))
	for _, l := range lines {
		items = append(items, orders.Line{ProductID: l.ProductID, Quantity: l.Quantity, Price: l.Price})
	}
	return orders.Order{
		UserID:        identity.ID,
		Products:      items,
		Total:         a.Pricing.Breakdown(cart.Subtotal(lines)).Total,
		Status:        orders.StatusPending,
		Date:          a.now(),
		Address:       form.ShippingAddress(),
		PaymentMethod: form.PaymentMethod.Label(),
	}, nil
}

// Submit sends the order once. The cart is cleared only after the backend
// confirms; on failure the cart is untouched and ErrSubmitFailed is returned.
// A cart that cannot be cleared yields the created order and a *ClearError.
func (a *Assembler) Submit(ctx context.Context, payload orders.Order) (orders.Order, error) {
	created, err := a.Backend.CreateOrder(ctx, payload)
	if err != nil {
		a.Log.Warn("order submission failed", zap.String("user_id", payload.UserID.String()), zap.Error(err))
		return orders.Order{}, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	a.Log.Info("order placed",
		zap.String("order_id", created.ID.String()),
		zap.String("user_id", created.UserID.String()),
		zap.String("total", created.Total.StringFixed(2)))

	clearErr := a.Cart.Clear(ctx)
	if a.Events != nil {
		if err := a.Events.OrderPlaced(ctx, created); err != nil {
			a.Log.Warn("order event not published", zap.String("order_id", created.ID.String()), zap.Error(err))
		}
	}
	if clearErr != nil {
		a.Log.Error("cart not cleared after order", zap.String("order_id", created.ID.String()), zap.Error(clearErr))
		return created, &ClearError{Order: created, Err: clearErr}
	}
	return created, nil
}

// Checkout is the whole user action: signed-in identity, non-empty cart,
// valid form, then build and submit.
func (a *Assembler) Checkout(ctx context.Context, form ShippingForm) (orders.Order, error) {
	identity, ok := a.Session.Current()
	if !ok {
		return orders.Order{}, session.ErrNotAuthenticated
	}
	lines := a.Cart.Lines()
	if len(lines) == 0 {
		return orders.Order{}, ErrEmptyCart
	}
	if err := form.Validate(); err != nil {
		return orders.Order{}, err
	}
	payload, err := a.BuildOrderPayload(identity, lines, form)
	if err != nil {
		return orders.Order{}, err
	}
	return a.Submit(ctx, payload)
}

func (a *Assembler) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}
