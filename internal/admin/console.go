// Package admin implements the administrator console: dashboard figures,
// the customer and order lists, order status changes and catalog edits.
package admin

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentOrders = 5

type Backend interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	ListOrders(ctx context.Context, userID jsonid.ID) ([]orders.Order, error)
	GetOrder(ctx context.Context, id jsonid.ID) (orders.Order, error)
	UpdateOrderStatus(ctx context.Context, id jsonid.ID, status orders.Status) (orders.Order, error)
	ListUsers(ctx context.Context) ([]session.Identity, error)
}

type StatusPublisher interface {
	StatusChanged(ctx context.Context, o orders.Order, from orders.Status) error
}

type Console struct {
	Backend Backend
	Catalog *catalog.Store
	Events  StatusPublisher // optional
	Log     *zap.Logger
}

type Dashboard struct {
	Products     int             `json:"totalProducts"`
	Orders       int             `json:"totalOrders"`
	Customers    int             `json:"totalCustomers"`
	Revenue      decimal.Decimal `json:"totalRevenue"`
	RecentOrders []orders.Order  `json:"recentOrders"`
}

// Dashboard loads products, orders and users in parallel. Any failed fetch
// fails the whole dashboard.
func (c *Console) Dashboard(ctx context.Context) (Dashboard, error) {
	var (
		products []catalog.Product
		list     []orders.Order
		users    []session.Identity
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = c.Backend.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		list, err = c.Backend.ListOrders(gctx, "")
		return err
	})
	g.Go(func() (err error) {
		users, err = c.Backend.ListUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("load dashboard: %w", err)
	}

	d := Dashboard{
		Products:  len(products),
		Orders:    len(list),
		Customers: len(customers(users)),
		Revenue:   decimal.Zero,
	}
	for _, o := range list {
		d.Revenue = d.Revenue.Add(o.Total)
	}
	orders.SortNewestFirst(list)
	if len(list) > recentOrders {
		list = list[:recentOrders]
	}
	d.RecentOrders = list
	return d, nil
}

// Customers lists every non-admin account, without passwords.
func (c *Console) Customers(ctx context.Context) ([]session.Identity, error) {
	users, err := c.Backend.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers(users), nil
}

func customers(users []session.Identity) []session.Identity {
	out := make([]session.Identity, 0, len(users))
	for _, u := range users {
		if !u.IsAdmin() {
			out = append(out, u.Public())
		}
	}
	return out
}

// Orders lists all orders, newest first.
func (c *Console) Orders(ctx context.Context) ([]orders.Order, error) {
	list, err := c.Backend.ListOrders(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	orders.SortNewestFirst(list)
	return list, nil
}

// UpdateOrderStatus sets any known status. Moves outside the usual workflow
// are allowed but logged as a warning.
func (c *Console) UpdateOrderStatus(ctx context.Context, id jsonid.ID, to orders.Status) (orders.Order, error) {
	if _, err := orders.ParseStatus(string(to)); err != nil {
		return orders.Order{}, err
	}
	current, err := c.Backend.GetOrder(ctx, id)
	if err != nil {
		return orders.Order{}, fmt.Errorf("load order %s: %w", id, err)
	}
	if !orders.CanTransition(current.Status, to) {
		c.Log.Warn("order status set outside workflow",
			zap.String("order_id", id.String()),
			zap.String("from", string(current.Status)),
			zap.String("to", string(to)),
			zap.Bool("off_workflow", true))
	}
	updated, err := c.Backend.UpdateOrderStatus(ctx, id, to)
	if err != nil {
		return orders.Order{}, fmt.Errorf("update order %s: %w", id, err)
	}
	c.Log.Info("order status changed",
		zap.String("order_id", id.String()),
		zap.String("from", string(current.Status)),
		zap.String("to", string(updated.Status)))

	if c.Events != nil {
		if err := c.Events.StatusChanged(ctx, updated, current.Status); err != nil {
			c.Log.Warn("status event not published", zap.String("order_id", id.String()), zap.Error(err))
		}
	}
	return updated, nil
}

func (c *Console) AddProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return c.Catalog.Add(ctx, p)
}

func (c *Console) UpdateProduct(ctx context.Context, id int, patch catalog.ProductPatch) (catalog.Product, error) {
	return c.Catalog.Update(ctx, id, patch)
}

func (c *Console) RemoveProduct(ctx context.Context, id int) error {
	return c.Catalog.Remove(ctx, id)
}
