// Package storefront assembles the stores and services of one console
// session on top of a backend client and a local storage driver.
package storefront

import (
	"context"

	"github.com/ariefcatur/go-storefront/internal/admin"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/consent"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Backend is everything the console asks of the REST backend;
// *api.Client implements it.
type Backend interface {
	catalog.Backend
	session.Backend
	admin.Backend
	checkout.OrderCreator
}

type Options struct {
	Backend Backend
	Local   storage.Storage
	TaxRate decimal.Decimal
	// Events is nil when order events are disabled.
	Events  *orders.Publisher
	Log     *zap.Logger
}

type App struct {
	Catalog  *catalog.Store
	Cart     *cart.Engine
	Session  *session.Store
	History  *orders.History
	Checkout *checkout.Assembler
	Admin    *admin.Console
	Consent  *consent.Store
	Pricing  checkout.Pricing
	Log      *zap.Logger
}

// Open restores local state. It does not contact the backend; call
// Catalog.Refresh for that.
func Open(ctx context.Context, opts Options) (*App, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	cat, err := catalog.Open(ctx, opts.Backend, opts.Local, log.Named("catalog"))
	if err != nil {
		return nil, err
	}
	c, err := cart.Open(ctx, opts.Local)
	if err != nil {
		return nil, err
	}
	sess, err := session.Open(ctx, opts.Local, opts.Backend, log.Named("session"))
	if err != nil {
		return nil, err
	}
	cons, err := consent.Open(ctx, opts.Local)
	if err != nil {
		return nil, err
	}

	pricing := checkout.Pricing{TaxRate: opts.TaxRate}
	asm := &checkout.Assembler{
		Cart:    c,
		Session: sess,
		Backend: opts.Backend,
		Pricing: pricing,
		Log:     log.Named("checkout"),
	}
	console := &admin.Console{
		Backend: opts.Backend,
		Catalog: cat,
		Log:     log.Named("admin"),
	}
	// leave the interfaces nil rather than holding a nil pointer
	if opts.Events != nil {
		asm.Events = opts.Events
		console.Events = opts.Events
	}

	return &App{
		Catalog:  cat,
		Cart:     c,
		Session:  sess,
		History:  &orders.History{Backend: opts.Backend},
		Checkout: asm,
		Admin:    console,
		Consent:  cons,
		Pricing:  pricing,
		Log:      log,
	}, nil
}
