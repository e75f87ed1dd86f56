package httpx

import (
	"net/http"

	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/go-chi/chi/v5"
)

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.App.Admin.Dashboard(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) customers(w http.ResponseWriter, r *http.Request) {
	cs, err := h.App.Admin.Customers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
	list, err := h.App.Admin.Orders(r.Context())
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

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusReq
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	o, err := h.App.Admin.UpdateOrderStatus(r.Context(), jsonid.ID(chi.URLParam(r, "id")), orders.Status(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.orderView(o))
}

func (h *Handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decode(r, &p); err != nil {
		writeError(w, err)
		return
	}
	created, err := h.App.Admin.AddProduct(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var patch catalog.ProductPatch
	if err := decode(r, &patch); err != nil {
		writeError(w, err)
		return
	}
	updated, err := h.App.Admin.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) removeProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.App.Admin.RemoveProduct(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
