package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

type memBackend struct {
	mu        sync.Mutex
	products  []catalog.Product
	orders    []orders.Order
	failOrder bool
}

func (b *memBackend) ListProducts(context.Context) ([]catalog.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]catalog.Product(nil), b.products...), nil
}

func (b *memBackend) GetProduct(_ context.Context, id int) (catalog.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, fmt.Errorf("GET /products/%d: %w", id, api.ErrNotFound)
}

func (b *memBackend) CreateProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p.ID = len(b.products) + 1
	b.products = append(b.products, p)
	return p, nil
}

func (b *memBackend) UpdateProduct(_ context.Context, id int, patch catalog.ProductPatch) (catalog.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.products {
		if p.ID == id {
			if patch.Stock != nil {
				p.Stock = *patch.Stock
			}
			if patch.Price != nil {
				p.Price = *patch.Price
			}
			b.products[i] = p
			return p, nil
		}
	}
	return catalog.Product{}, api.ErrNotFound
}

func (b *memBackend) DeleteProduct(context.Context, int) error { return nil }

func (b *memBackend) ListCategories(context.Context) ([]catalog.Category, error) {
	return []catalog.Category{{ID: "1", Name: "electronics"}}, nil
}

func (b *memBackend) ListUsers(context.Context) ([]session.Identity, error) {
	return []session.Identity{
		{ID: "1", Username: "admin", Role: session.RoleAdmin},
		{ID: "2", Username: "user", Role: session.RoleUser},
		{ID: "9", Username: "luigi", Password: "luigi99", Role: session.RoleUser, Email: "luigi@example.com", Name: "Luigi"},
	}, nil
}

func (b *memBackend) UpdateUser(_ context.Context, id jsonid.ID, upd session.ProfileUpdate) (session.Identity, error) {
	return session.Identity{ID: id, Name: upd.Name, Email: upd.Email, Address: upd.Address, Phone: upd.Phone}, nil
}

func (b *memBackend) ListOrders(_ context.Context, userID jsonid.ID) ([]orders.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []orders.Order
	for _, o := range b.orders {
		if userID.IsZero() || o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (b *memBackend) GetOrder(_ context.Context, id jsonid.ID) (orders.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, o := range b.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return orders.Order{}, api.ErrNotFound
}

func (b *memBackend) UpdateOrderStatus(_ context.Context, id jsonid.ID, s orders.Status) (orders.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.orders {
		if b.orders[i].ID == id {
			b.orders[i].Status = s
			return b.orders[i], nil
		}
	}
	return orders.Order{}, api.ErrNotFound
}

func (b *memBackend) CreateOrder(_ context.Context, o orders.Order) (orders.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failOrder {
		return orders.Order{}, &api.StatusError{Code: http.StatusServiceUnavailable, Method: http.MethodPost, Path: "/orders"}
	}
	o.ID = jsonid.ID(strconv.Itoa(len(b.orders) + 1))
	b.orders = append(b.orders, o)
	return o, nil
}

func (b *memBackend) setFailOrder(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failOrder = v
}

func (b *memBackend) setOrders(list []orders.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = list
}

// keyFailer fails writes to one key once armed.
type keyFailer struct {
	storage.Storage
	key   string
	armed atomic.Bool
}

func (k *keyFailer) Set(ctx context.Context, key string, value []byte) error {
	if key == k.key && k.armed.Load() {
		return errors.New("disk full")
	}
	return k.Storage.Set(ctx, key, value)
}

type harness struct {
	t   *testing.T
	srv *httptest.Server
	be  *memBackend
	app *storefront.App
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, storage.NewMemory())
}

func newHarnessWith(t *testing.T, local storage.Storage) *harness {
	t.Helper()
	be := &memBackend{products: []catalog.Product{
		{ID: 1, Name: "Mug", Price: decimal.RequireFromString("10.00"), Stock: 5},
		{ID: 2, Name: "Socks", Price: decimal.RequireFromString("5.00"), Stock: 1},
	}}
	app, err := storefront.Open(context.Background(), storefront.Options{
		Backend: be,
		Local:   local,
		TaxRate: decimal.RequireFromString("0.10"),
		Log:     zap.NewNop(),
	})
	require.NoError(t, err)
	r := NewRouter(zap.NewNop())
	(&Handler{App: app}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &harness{t: t, srv: srv, be: be, app: app}
}

func (h *harness) do(method, path string, body any) (int, map[string]any) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, h.srv.URL+path, &buf)
	require.NoError(h.t, err)
	resp, err := h.srv.Client().Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (h *harness) login(user, pass string) {
	h.t.Helper()
	code, _ := h.do(http.MethodPost, "/session/login", map[string]string{"username": user, "password": pass})
	require.Equal(h.t, http.StatusOK, code)
}

func shippingForm() map[string]string {
	return map[string]string{
		"name": "Regular User", "email": "user@example.com", "address": "123 User St",
		"city": "Springfield", "state": "IL", "zipCode": "62701", "phone": "555-1234",
		"paymentMethod": "paypal",
	}
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 1, "quantity": 2})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["itemCount"])

	code, body = h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 2, "quantity": 1})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 25, body["subtotal"])
	assert.EqualValues(t, 2.5, body["tax"])
	assert.EqualValues(t, 27.5, body["total"])

	code, _ = h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 2, "quantity": 1})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 99, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 1, "quantity": -3})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = h.do(http.MethodPut, "/cart/items/1", map[string]int{"quantity": 0})
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["itemCount"])

	code, body = h.do(http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["items"])
}

func TestCheckoutRequiresLogin(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(http.MethodPost, "/checkout", shippingForm())
	assert.Equal(t, http.StatusUnauthorized, code)

	code, body := h.do(http.MethodPost, "/session/login", map[string]string{"username": "user", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid username or password", body["error"])
}

func TestCheckoutFlow(t *testing.T) {
	h := newHarness(t)
	h.login("user", "user123")

	code, _ := h.do(http.MethodPost, "/checkout", shippingForm())
	assert.Equal(t, http.StatusUnprocessableEntity, code, "empty cart")

	h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 1, "quantity": 2})
	h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 2, "quantity": 1})

	bad := shippingForm()
	bad["email"] = "nope"
	code, body := h.do(http.MethodPost, "/checkout", bad)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, body["fields"], "email")

	h.be.setFailOrder(true)
	code, _ = h.do(http.MethodPost, "/checkout", shippingForm())
	assert.Equal(t, http.StatusBadGateway, code)
	assert.Equal(t, 3, h.app.Cart.ItemCount())

	h.be.setFailOrder(false)
	code, body = h.do(http.MethodPost, "/checkout", shippingForm())
	require.Equal(t, http.StatusCreated, code)
	assert.EqualValues(t, 27.5, body["total"])
	assert.EqualValues(t, 3, body["itemCount"])
	assert.Equal(t, "PayPal", body["paymentMethod"])
	assert.True(t, h.app.Cart.IsEmpty())

	code, _ = h.do(http.MethodGet, "/orders/1", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestCheckoutKeepsOrderWhenCartNotCleared(t *testing.T) {
	local := &keyFailer{Storage: storage.NewMemory(), key: storage.KeyCart}
	h := newHarnessWith(t, local)
	h.login("user", "user123")
	h.do(http.MethodPost, "/cart/items", map[string]int{"productId": 1, "quantity": 2})

	local.armed.Store(true)
	code, body := h.do(http.MethodPost, "/checkout", shippingForm())
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "1", body["id"])
	assert.NotEmpty(t, body["warning"])
	assert.Equal(t, 2, h.app.Cart.ItemCount())

	local.armed.Store(false)
	code, body = h.do(http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, body["items"])

	code, _ = h.do(http.MethodGet, "/orders/1", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestBackendOnlyUserCanLogIn(t *testing.T) {
	h := newHarness(t)
	require.Len(t, h.app.Session.Roster(), 2)

	code, body := h.do(http.MethodPost, "/session/login", map[string]string{"username": "luigi", "password": "luigi99"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "luigi@example.com", body["user"].(map[string]any)["email"])
	assert.Len(t, h.app.Session.Roster(), 3)

	code, _ = h.do(http.MethodPost, "/session/login", map[string]string{"username": "luigi", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestOrdersAreScopedToUser(t *testing.T) {
	h := newHarness(t)
	h.be.setOrders([]orders.Order{
		{ID: "1", UserID: "1", Status: orders.StatusPending, Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "2", UserID: "2", Status: orders.StatusPending, Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
	})
	h.login("user", "user123")

	code, _ := h.do(http.MethodGet, "/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(http.MethodGet, "/orders/2", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	h.be.setOrders([]orders.Order{{ID: "5", UserID: "2", Status: orders.StatusPending, Total: decimal.RequireFromString("27.50")}})

	code, _ := h.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	h.login("user", "user123")
	code, _ = h.do(http.MethodGet, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusForbidden, code)

	h.login("admin", "admin123")
	code, body := h.do(http.MethodGet, "/admin/dashboard", nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 2, body["totalProducts"])
	assert.EqualValues(t, 2, body["totalCustomers"])
	assert.EqualValues(t, 27.5, body["totalRevenue"])

	code, body = h.do(http.MethodPatch, "/admin/orders/5", map[string]string{"status": "delivered"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "delivered", body["status"])
	code, _ = h.do(http.MethodPatch, "/admin/orders/5", map[string]string{"status": "lost"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	code, body = h.do(http.MethodPatch, "/admin/orders/5", map[string]string{"status": "processing"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "processing", body["status"])
	code, _ = h.do(http.MethodPatch, "/admin/orders/404", map[string]string{"status": "shipped"})
	assert.Equal(t, http.StatusNotFound, code)

	code, body = h.do(http.MethodPost, "/admin/products", map[string]any{"name": "Lamp", "price": 39.99, "stock": 3})
	require.Equal(t, http.StatusCreated, code)
	assert.EqualValues(t, 3, body["id"])

	code, _ = h.do(http.MethodPatch, "/admin/products/3", map[string]any{"stock": -1})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, _ = h.do(http.MethodDelete, "/admin/products/3", nil)
	assert.Equal(t, http.StatusNoContent, code)
}

func TestRegisterAndProfile(t *testing.T) {
	h := newHarness(t)
	form := map[string]string{
		"username": "user", "password": "secret1", "confirmPassword": "secret1",
		"email": "new@example.com", "name": "New",
	}
	code, body := h.do(http.MethodPost, "/session/register", form)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Username already exists", body["error"])

	form["username"] = "newbie"
	code, body = h.do(http.MethodPost, "/session/register", form)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, true, body["authenticated"])
	user := body["user"].(map[string]any)
	assert.NotContains(t, user, "password")

	code, body = h.do(http.MethodPatch, "/session/profile", map[string]string{"name": "Newer", "email": "newer@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Newer", body["user"].(map[string]any)["name"])

	code, body = h.do(http.MethodPost, "/session/logout", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["authenticated"])
}

func TestConsentRoutes(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(http.MethodGet, "/consent", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["chosen"])

	code, _ = h.do(http.MethodPut, "/consent", map[string]string{"choice": "maybe"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = h.do(http.MethodPut, "/consent", map[string]string{"choice": "accepted"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "accepted", body["choice"])
}

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("disk full")))
	assert.Equal(t, http.StatusNotFound, statusOf(fmt.Errorf("x: %w", api.ErrNotFound)))
	assert.Equal(t, http.StatusBadGateway, statusOf(&api.StatusError{Code: 500}))
}
