// Package money holds the rounding and display rules for prices.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Round rounds to cents, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

type Formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewFormatter parses an ISO 4217 code such as "EUR".
func NewFormatter(code string, tag language.Tag) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, err
	}
	return &Formatter{unit: unit, printer: message.NewPrinter(tag)}, nil
}

func (f *Formatter) Format(d decimal.Decimal) string {
	v, _ := Round(d).Float64()
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}
