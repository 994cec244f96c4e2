package response

import (
	"time"

	"payment_service/internal/domain/entities"

	"github.com/shopspring/decimal"
)

// PaymentResponse is the public view of a payment record.
type PaymentResponse struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Amount   string `json:"amount" example:"49.99"`
	Currency string `json:"currency" example:"EUR"`
	Status   string `json:"status" example:"validated"`

	CardBrand    *string `json:"card_brand"`
	CardLastFour *string `json:"card_last_four"`
	ExpiryMonth  *int    `json:"expiry_month"`
	ExpiryYear   *int    `json:"expiry_year"`

	ValidationResult *entities.ValidationResult `json:"validation_result"`
	Metadata         map[string]any             `json:"metadata"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func FromPayment(p entities.Payment) PaymentResponse {
	out := PaymentResponse{
		ID:               p.ID,
		OrderID:          p.OrderID,
		UserID:           p.UserID,
		Amount:           formatAmount(p.Amount),
		Currency:         p.Currency,
		Status:           string(p.Status),
		ValidationResult: p.ValidationResult,
		Metadata:         p.Metadata,
		Version:          p.Version,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
	if p.HasCard() {
		out.CardLastFour = p.CardLastFour
		out.ExpiryMonth = p.ExpiryMonth
		out.ExpiryYear = p.ExpiryYear
		if p.CardBrand != nil {
			brand := string(*p.CardBrand)
			out.CardBrand = &brand
		}
	}
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	return out
}

// formatAmount pads to two decimals without rounding away finer precision.
func formatAmount(d decimal.Decimal) string {
	if d.Exponent() < -2 {
		return d.String()
	}
	return d.StringFixed(2)
}

func FromPayments(payments []entities.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, FromPayment(p))
	}
	return out
}

// PaymentResult wraps the outcome of create, validate and lifecycle calls.
type PaymentResult struct {
	Success    bool                       `json:"success"`
	Message    string                     `json:"message"`
	Payment    *PaymentResponse           `json:"payment,omitempty"`
	Validation *entities.ValidationResult `json:"validation,omitempty"`
	Errors     []string                   `json:"errors,omitempty"`
}

// NewPaymentResult builds the envelope. Validation errors are copied to
// Errors when the validation failed.
func NewPaymentResult(message string, p *entities.Payment, validation *entities.ValidationResult) PaymentResult {
	out := PaymentResult{Success: true, Message: message, Validation: validation}
	if p != nil {
		resp := FromPayment(*p)
		out.Payment = &resp
	}
	if validation != nil && !validation.Overall.Valid {
		out.Success = false
		out.Errors = validation.Overall.Errors
	}
	return out
}

// HealthResponse is returned by /health and /v1/ping.
type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
