package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"payment_service/internal/usecase"

	"github.com/shopspring/decimal"
)

// FlexString accepts a JSON string or number. Order and user ids are
// numeric in some callers and strings in others.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = FlexString(n.String())
	return nil
}

// FlexInt accepts a JSON integer or a numeric string such as "07".
type FlexInt int

func (i *FlexInt) UnmarshalJSON(data []byte) error {
	var s FlexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	v := strings.TrimSpace(string(s))
	if v == "" {
		*i = 0
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("expected integer, got %q", v)
	}
	*i = FlexInt(n)
	return nil
}

// PaymentRequest is the body of POST /payments and POST /payments/validate.
//
// Card fields are optional on create; without cardNumber the payment is
// stored as created.
type PaymentRequest struct {
	CardNumber  string           `json:"cardNumber" example:"4111111111111111"`
	ExpiryMonth FlexInt          `json:"expiryMonth" swaggertype:"integer" example:"12"`
	ExpiryYear  FlexInt          `json:"expiryYear" swaggertype:"integer" example:"2030"`
	CVV         FlexString       `json:"cvv" swaggertype:"string" example:"123"`
	Amount      *decimal.Decimal `json:"amount" swaggertype:"number" example:"49.99"`
	OrderID     FlexString       `json:"orderId" swaggertype:"string" example:"1"`
	UserID      FlexString       `json:"userId" swaggertype:"string" example:"42"`
	Currency    string           `json:"currency" example:"EUR"`
	Metadata    map[string]any   `json:"metadata"`
}

func (r PaymentRequest) ToInput() usecase.PaymentInput {
	return usecase.PaymentInput{
		CardNumber:  r.CardNumber,
		ExpiryMonth: int(r.ExpiryMonth),
		ExpiryYear:  int(r.ExpiryYear),
		CVV:         string(r.CVV),
		Amount:      r.Amount,
		OrderID:     string(r.OrderID),
		UserID:      string(r.UserID),
		Currency:    r.Currency,
		Metadata:    r.Metadata,
	}
}

// StatusUpdateRequest is the body of PUT /payments/:id/status.
type StatusUpdateRequest struct {
	Status   string         `json:"status" example:"captured"`
	Metadata map[string]any `json:"metadata"`
}

// RefundRequest is the body of POST /payments/refund. A missing amount
// refunds the full payment.
type RefundRequest struct {
	PaymentID FlexString       `json:"paymentId" swaggertype:"string" example:"5f0c3c1e-8a4b-4c55-9d43-3f1f0f6f8a01"`
	Amount    *decimal.Decimal `json:"amount" swaggertype:"number" example:"10.00"`
	Reason    string           `json:"reason" example:"customer request"`
}
