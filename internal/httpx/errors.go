package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ariefcatur/go-storefront/internal/api"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/ariefcatur/go-storefront/internal/validation"
)

var (
	errUnauthenticated = fmt.Errorf("%w: please log in", session.ErrNotAuthenticated)
	errForbidden       = errors.New("admin access required")
	errBadRequest      = errors.New("invalid request body")
	errNotFound        = errors.New("not found")
)

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusOf(err error) int {
	var (
		ve validation.Errors
		re *session.RegistrationError
		se *api.StatusError
		ue *url.Error
	)
	switch {
	case errors.As(err, &ve),
		errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, orders.ErrUnknownStatus):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, api.ErrNotFound), errors.Is(err, errNotFound):
		return http.StatusNotFound
	case errors.As(err, &re), errors.Is(err, cart.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, checkout.ErrSubmitFailed), errors.As(err, &se), errors.As(err, &ue):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var ve validation.Errors
	if errors.As(err, &ve) {
		body.Fields = ve
	}
	writeJSON(w, statusOf(err), body)
}
