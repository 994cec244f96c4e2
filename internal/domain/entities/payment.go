package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when a payment is created without a currency.
const DefaultCurrency = "EUR"

// Payment is the payment record persisted by the payment-service.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (order_id-index): order_id, created_at
//   - GSI2 (user_id-index): user_id, created_at
//
// Card data:
//   - The full card number and the CVV are never stored. Only the detected
//     brand and the last four digits are kept.
//   - CardBrand, CardLastFour and ValidationResult are nil for cardless payments.
type Payment struct {
	ID       string          `json:"id"`
	OrderID  string          `json:"order_id,omitempty"`
	UserID   string          `json:"user_id,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Status   PaymentStatus   `json:"status"`

	CardBrand    *CardBrand `json:"card_brand"`
	CardLastFour *string    `json:"card_last_four"`
	ExpiryMonth  *int       `json:"expiry_month"`
	ExpiryYear   *int       `json:"expiry_year"`

	ValidationResult *ValidationResult `json:"validation_result"`
	Metadata         map[string]any    `json:"metadata"`

	// Version is incremented on every write and guards conditional updates.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCard reports whether card data was supplied at creation.
func (p Payment) HasCard() bool {
	return p.CardLastFour != nil
}

// StatusUpdate describes a conditional status change.
//
// The write only applies when the stored record still has ExpectedVersion
// and From as its status.
type StatusUpdate struct {
	From            PaymentStatus
	To              PaymentStatus
	ExpectedVersion int64
	Metadata        map[string]any
}
