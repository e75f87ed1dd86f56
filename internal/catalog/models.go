package catalog

import (
	"errors"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/shopspring/decimal"
)

var ErrInvalidProduct = errors.New("invalid product")

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
}

// Validate checks the invariants a product must hold when it comes off the
// wire: a name, a non-negative price and non-negative stock.
func (p Product) Validate() error {
	switch {
	case p.Name == "":
		return fmt.Errorf("%w %d: empty name", ErrInvalidProduct, p.ID)
	case p.Price.IsNegative():
		return fmt.Errorf("%w %d: negative price %s", ErrInvalidProduct, p.ID, p.Price)
	case p.Stock < 0:
		return fmt.Errorf("%w %d: negative stock %d", ErrInvalidProduct, p.ID, p.Stock)
	}
	return nil
}

// ProductPatch carries the fields an admin edit changes. Nil fields are left
// untouched by the backend.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *string          `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Image       *string          `json:"image,omitempty"`
	Stock       *int             `json:"stock,omitempty"`
}

type Category struct {
	ID          jsonid.ID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
}
