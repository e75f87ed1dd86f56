package httpx

import (
	"errors"
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/consent"
	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

// listProducts serves the cached list, fetching it on first use or when
// ?refresh=1 is given.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" || len(h.App.Catalog.Products()) == 0 {
		if err := h.App.Catalog.Refresh(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.App.Catalog.Products())
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := h.App.Catalog.Fetch(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("refresh") == "1" || len(h.App.Catalog.Categories()) == 0 {
		if err := h.App.Catalog.RefreshCategories(r.Context()); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, h.App.Catalog.Categories())
}

type cartView struct {
	Items     []cart.Line `json:"items"`
	ItemCount int         `json:"itemCount"`
	checkout.Breakdown
}

func (h *Handler) cartView() cartView {
	lines := h.App.Cart.Lines()
	if lines == nil {
		lines = []cart.Line{}
	}
	return cartView{
		Items:     lines,
		ItemCount: cart.ItemCount(lines),
		Breakdown: h.App.Pricing.Breakdown(cart.Subtotal(lines)),
	}
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.cartView())
}

type addItemReq struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// addCartItem resolves the product from the catalog (fetching it when it
// is not cached) and refuses quantities beyond its stock.
func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	p, ok := h.App.Catalog.Product(req.ProductID)
	if !ok {
		var err error
		if p, err = h.App.Catalog.Fetch(r.Context(), req.ProductID); err != nil {
			writeError(w, err)
			return
		}
	}
	if err := h.App.Cart.AddItemWithinStock(r.Context(), p, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setCartQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}
	var req quantityReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.App.Cart.SetQuantity(r.Context(), id, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "productId")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.App.Cart.RemoveItem(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.App.Cart.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.cartView())
}

type sessionView struct {
	Authenticated bool              `json:"authenticated"`
	User          *session.Identity `json:"user,omitempty"`
}

func (h *Handler) sessionView() sessionView {
	id, ok := h.App.Session.Current()
	if !ok {
		return sessionView{}
	}
	pub := id.Public()
	return sessionView{Authenticated: true, User: &pub}
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessionView())
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	_, ok, err := h.App.Session.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Invalid username or password"})
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var form session.RegistrationForm
	if err := decode(r, &form); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.App.Session.Register(r.Context(), form); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.sessionView())
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.App.Session.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var upd session.ProfileUpdate
	if err := decode(r, &upd); err != nil {
		writeError(w, err)
		return
	}
	if _, err := h.App.Session.UpdateProfile(r.Context(), upd); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionView())
}

type orderView struct {
	orders.Order
	ItemCount int                `json:"itemCount"`
	Breakdown checkout.Breakdown `json:"breakdown"`
	Warning   string             `json:"warning,omitempty"`
}

func (h *Handler) orderView(o orders.Order) orderView {
	return orderView{Order: o, ItemCount: o.ItemCount(), Breakdown: h.App.Pricing.ForOrder(o)}
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var form checkout.ShippingForm
	if err := decode(r, &form); err != nil {
		writeError(w, err)
		return
	}
	placed, err := h.App.Checkout.Checkout(r.Context(), form)
	var ce *checkout.ClearError
	if errors.As(err, &ce) {
		v := h.orderView(ce.Order)
		v.Warning = "Order placed, but the cart could not be emptied. Please clear it before ordering again."
		writeJSON(w, http.StatusCreated, v)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.orderView(placed))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	me, _ := h.App.Session.Current()
	list, err := h.App.History.ForUser(r.Context(), me.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]orderView, 0, len(list))
	for _, o := range list {
		out = append(out, h.orderView(o))
	}
	writeJSON(w, http.StatusOK, out)
}

// getOrder hides other customers' orders behind a 404; admins see all.
func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.App.History.Get(r.Context(), jsonid.ID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	me, _ := h.App.Session.Current()
	if o.UserID != me.ID && !me.IsAdmin() {
		writeError(w, errNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h.orderView(o))
}

type consentView struct {
	Choice consent.Choice `json:"choice,omitempty"`
	Chosen bool           `json:"chosen"`
}

func (h *Handler) getConsent(w http.ResponseWriter, r *http.Request) {
	c, ok := h.App.Consent.Choice()
	writeJSON(w, http.StatusOK, consentView{Choice: c, Chosen: ok})
}

func (h *Handler) setConsent(w http.ResponseWriter, r *http.Request) {
	var req consentView
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if _, err := consent.ParseChoice(string(req.Choice)); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
		return
	}
	if err := h.App.Consent.Set(r.Context(), req.Choice); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, consentView{Choice: req.Choice, Chosen: true})
}
