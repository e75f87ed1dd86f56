package storefront

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	decimal.MarshalJSONWithoutQuotes = true
	os.Exit(m.Run())
}

func jsonServer(t *testing.T) string {
	t.Helper()
	r := chi.NewRouter()
	r.Get("/products", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"name":"Mug","price":10,"stock":5},{"id":2,"name":"Socks","price":5,"stock":9}]`)
	})
	r.Post("/orders", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		// json-server echoes the record with an id
		_, _ = w.Write(append([]byte(`{"id":"42",`), body[1:]...))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	cfg := config.Defaults()

	cfg.StorageDriver = "memory"
	s, closeFn, err := OpenStorage(ctx, cfg)
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &storage.Memory{}, s)

	cfg.StorageDriver = "file"
	cfg.StorageDir = t.TempDir()
	s, closeFn, err = OpenStorage(ctx, cfg)
	require.NoError(t, err)
	closeFn()
	assert.IsType(t, &storage.File{}, s)

	cfg.StorageDriver = "etcd"
	_, _, err = OpenStorage(ctx, cfg)
	assert.Error(t, err)
}

func TestEndToEndCheckout(t *testing.T) {
	ctx := context.Background()
	local := storage.NewMemory()
	app, err := Open(ctx, Options{
		Backend: api.New(jsonServer(t), time.Second, zap.NewNop()),
		Local:   local,
		TaxRate: decimal.RequireFromString("0.10"),
	})
	require.NoError(t, err)
	require.NoError(t, app.Catalog.Refresh(ctx))

	_, ok, err := app.Session.Login(ctx, "user", "user123")
	require.NoError(t, err)
	require.True(t, ok)

	mug, _ := app.Catalog.Product(1)
	socks, _ := app.Catalog.Product(2)
	require.NoError(t, app.Cart.AddItem(ctx, mug, 2))
	require.NoError(t, app.Cart.AddItem(ctx, socks, 1))
	assert.Equal(t, "27.50", app.Pricing.Breakdown(app.Cart.Subtotal()).Total.StringFixed(2))

	placed, err := app.Checkout.Checkout(ctx, checkout.ShippingForm{
		Name: "Regular User", Email: "user@example.com", Address: "123 User St",
		City: "Springfield", State: "IL", ZipCode: "62701", Phone: "555-1234",
		PaymentMethod: checkout.PaymentPayPal,
	})
	require.NoError(t, err)
	assert.Equal(t, "42", placed.ID.String())
	assert.Equal(t, "27.50", placed.Total.StringFixed(2))
	assert.True(t, app.Cart.IsEmpty())

	// a fresh console over the same local state sees the empty cart and
	// the signed-in user
	again, err := Open(ctx, Options{Backend: api.New(jsonServer(t), time.Second, zap.NewNop()), Local: local})
	require.NoError(t, err)
	assert.True(t, again.Cart.IsEmpty())
	assert.True(t, again.Session.IsAuthenticated())
}
