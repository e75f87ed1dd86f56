package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ariefcatur/go-storefront/internal/storefront"
	"github.com/go-chi/chi/v5"
)

// Handler serves the console's local API over one storefront.App.
type Handler struct {
	App *storefront.App
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Get("/categories", h.listCategories)

	r.Get("/cart", h.getCart)
	r.Post("/cart/items", h.addCartItem)
	r.Put("/cart/items/{productId}", h.setCartQuantity)
	r.Delete("/cart/items/{productId}", h.removeCartItem)
	r.Delete("/cart", h.clearCart)

	r.Get("/session", h.getSession)
	r.Post("/session/login", h.login)
	r.Post("/session/register", h.register)
	r.Post("/session/logout", h.logout)

	r.Get("/consent", h.getConsent)
	r.Put("/consent", h.setConsent)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)
		r.Patch("/session/profile", h.updateProfile)
		r.Post("/checkout", h.checkout)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/dashboard", h.dashboard)
		r.Get("/customers", h.customers)
		r.Get("/orders", h.adminOrders)
		r.Patch("/orders/{id}", h.updateOrderStatus)
		r.Post("/products", h.addProduct)
		r.Patch("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.removeProduct)
	})
}

func (h *Handler) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.App.Session.IsAuthenticated() {
			writeError(w, errUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case !h.App.Session.IsAuthenticated():
			writeError(w, errUnauthenticated)
		case !h.App.Session.IsAdmin():
			writeError(w, errForbidden)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func intParam(r *http.Request, name string) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", errBadRequest, name)
	}
	return n, nil
}
