package orders

import (
	"time"

	"github.com/ariefcatur/go-storefront/internal/jsonid"
	"github.com/shopspring/decimal"
)

// Order is the record the backend stores. Line items never change once
// created; Status is the only field an admin updates afterwards.
type Order struct {
	ID            jsonid.ID       `json:"id,omitempty"`
	UserID        jsonid.ID       `json:"userId"`
	Products      []Line          `json:"products"`
	Total         decimal.Decimal `json:"total"`
	Status        Status          `json:"status"`
	Date          time.Time       `json:"date"`
	Address       string          `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
}

type Line struct {
	ProductID int             `json:"productId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (o Order) ItemCount() int {
	n := 0
	for _, l := range o.Products {
		n += l.Quantity
	}
	return n
}

// Subtotal recomputes Σ price×quantity from the stored lines.
func (o Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range o.Products {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}
