package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListProducts drops records that fail catalog validation instead of
// failing the whole listing.
func (c *Client) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	var raw []catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &raw); err != nil {
		return nil, err
	}
	out := raw[:0]
	for _, p := range raw {
		if err := p.Validate(); err != nil {
			c.log.Warn("skipping product", zap.Int("product_id", p.ID), zap.Error(err))
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int) (catalog.Product, error) {
	var p catalog.Product
	if err := c.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, p.Validate()
}

func (c *Client) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	// id is assigned by the backend
	body := struct {
		Name        string          `json:"name"`
		Price       decimal.Decimal `json:"price"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Image       string          `json:"image"`
		Stock       int             `json:"stock"`
	}{p.Name, p.Price, p.Category, p.Description, p.Image, p.Stock}
	var created catalog.Product
	if err := c.do(ctx, http.MethodPost, "/products", body, &created); err != nil {
		return catalog.Product{}, err
	}
	return created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int, patch catalog.ProductPatch) (catalog.Product, error) {
	var p catalog.Product
	if err := c.do(ctx, http.MethodPatch, "/products/"+strconv.Itoa(id), patch, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, "/products/"+strconv.Itoa(id), nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	var cs []catalog.Category
	if err := c.do(ctx, http.MethodGet, "/categories", nil, &cs); err != nil {
		return nil, err
	}
	return cs, nil
}

// ListOrders filters by owner; a zero userID lists every order.
func (c *Client) ListOrders(ctx context.Context, userID jsonid.ID) ([]orders.Order, error) {
	path := "/orders"
	if !userID.IsZero() {
		path += "?" + url.Values{"userId": {userID.String()}}.Encode()
	}
	var list []orders.Order
	if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) GetOrder(ctx context.Context, id jsonid.ID) (orders.Order, error) {
	var o orders.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+escape(id.String()), nil, &o); err != nil {
		return orders.Order{}, err
	}
	return o, nil
}

func (c *Client) CreateOrder(ctx context.Context, o orders.Order) (orders.Order, error) {
	o.ID = ""
	var created orders.Order
	if err := c.do(ctx, http.MethodPost, "/orders", o, &created); err != nil {
		return orders.Order{}, err
	}
	return created, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id jsonid.ID, status orders.Status) (orders.Order, error) {
	var o orders.Order
	body := map[string]orders.Status{"status": status}
	if err := c.do(ctx, http.MethodPatch, "/orders/"+escape(id.String()), body, &o); err != nil {
		return orders.Order{}, err
	}
	return o, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]session.Identity, error) {
	var us []session.Identity
	if err := c.do(ctx, http.MethodGet, "/users", nil, &us); err != nil {
		return nil, err
	}
	return us, nil
}

func (c *Client) UpdateUser(ctx context.Context, id jsonid.ID, upd session.ProfileUpdate) (session.Identity, error) {
	var u session.Identity
	if err := c.do(ctx, http.MethodPatch, "/users/"+escape(id.String()), upd, &u); err != nil {
		return session.Identity{}, err
	}
	return u, nil
}
