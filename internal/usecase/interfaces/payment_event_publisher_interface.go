package interfaces

import (
	"context"
	"time"

	"payment_service/internal/domain/entities"
)

type PaymentEventType string

const (
	PaymentEventCreated       PaymentEventType = "payment.created"
	PaymentEventStatusChanged PaymentEventType = "payment.status_changed"
)

// PaymentEvent is the lifecycle notification fanned out to other services.
// It never carries card data.
type PaymentEvent struct {
	Type           PaymentEventType       `json:"type"`
	PaymentID      string                 `json:"payment_id"`
	OrderID        string                 `json:"order_id,omitempty"`
	UserID         string                 `json:"user_id,omitempty"`
	Status         entities.PaymentStatus `json:"status"`
	PreviousStatus entities.PaymentStatus `json:"previous_status,omitempty"`
	CorrelationID  string                 `json:"correlation_id,omitempty"`
	OccurredAt     time.Time              `json:"occurred_at"`
}

// IPaymentEventPublisher abstracts the lifecycle event channel (Redis Pub/Sub).
//
//go:generate mockgen -source=payment_event_publisher_interface.go -destination=mocks/mock_payment_event_publisher.go -package=mock_interfaces

type IPaymentEventPublisher interface {
	Publish(ctx context.Context, event PaymentEvent) error
}
