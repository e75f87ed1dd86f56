package checkout

import (
	"github.com/ariefcatur/go-storefront/internal/money"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/shopspring/decimal"
)

// Pricing applies the one configured tax rate. Every total shown or
// submitted goes through the same Pricing value.
type Pricing struct {
	TaxRate decimal.Decimal
}

type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	TaxRate  decimal.Decimal `json:"taxRate"`
}

// Breakdown computes total = round2(subtotal × (1 + rate)); tax is the
// difference so the three figures always add up.
func (p Pricing) Breakdown(subtotal decimal.Decimal) Breakdown {
	total := money.Round(subtotal.Mul(decimal.NewFromInt(1).Add(p.TaxRate)))
	return Breakdown{
		Subtotal: subtotal,
		Tax:      total.Sub(subtotal),
		Total:    total,
		TaxRate:  p.TaxRate,
	}
}

// ForOrder rebuilds the breakdown of a placed order from its line items.
func (p Pricing) ForOrder(o orders.Order) Breakdown {
	return p.Breakdown(o.Subtotal())
}
