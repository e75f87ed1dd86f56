package checkout

import (
	"fmt"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/validation"
)

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "credit-card"
	PaymentPayPal     PaymentMethod = "paypal"
)

// Label is the human-readable name stored on the order.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCreditCard:
		return "Credit Card"
	case PaymentPayPal:
		return "PayPal"
	}
	return string(m)
}

// ShippingForm is what the checkout page collects. Card fields matter only
// for PaymentCreditCard and are never sent to the backend.
type ShippingForm struct {
	Name          string        `json:"name" validate:"notblank"`
	Email         string        `json:"email" validate:"notblank,email"`
	Address       string        `json:"address" validate:"notblank"`
	City          string        `json:"city" validate:"notblank"`
	State         string        `json:"state" validate:"notblank"`
	ZipCode       string        `json:"zipCode" validate:"notblank"`
	Phone         string        `json:"phone" validate:"notblank"`
	PaymentMethod PaymentMethod `json:"paymentMethod" validate:"oneof=credit-card paypal"`
	CardNumber    string        `json:"cardNumber,omitempty" validate:"required_if=PaymentMethod credit-card,omitempty,len=16,numeric"`
	CardExpiry    string        `json:"cardExpiry,omitempty" validate:"required_if=PaymentMethod credit-card,omitempty,datetime=01/06"`
	CardCVC       string        `json:"cardCVC,omitempty" validate:"required_if=PaymentMethod credit-card,omitempty,numeric,min=3,max=4"`
}

var shippingMessages = validation.Messages{
	"cardNumber":    "Please enter a valid 16-digit card number",
	"cardExpiry":    "Please enter a valid expiration date (MM/YY)",
	"cardCVC":       "Please enter a valid CVC/CVV code (3-4 digits)",
	"paymentMethod": fmt.Sprintf("Please choose %s or %s", PaymentCreditCard, PaymentPayPal),
}

// Validate checks the form. Spaces in the card number are ignored and card
// fields are skipped unless paying by card.
func (f ShippingForm) Validate() error {
	if f.PaymentMethod == PaymentCreditCard {
		f.CardNumber = strings.ReplaceAll(f.CardNumber, " ", "")
	} else {
		f.CardNumber, f.CardExpiry, f.CardCVC = "", "", ""
	}
	return validation.Struct(f, shippingMessages)
}

// ShippingAddress joins the address fields the way orders store them.
func (f ShippingForm) ShippingAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", f.Address, f.City, f.State, f.ZipCode)
}
