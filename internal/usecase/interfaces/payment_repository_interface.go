package interfaces

import (
	"context"
	"errors"

	"payment_service/internal/domain/entities"
)

// ErrStaleWrite is returned by UpdateStatus when the stored record no longer
// matches the expected version or status.
var ErrStaleWrite = errors.New("payment record changed since it was read")

// IPaymentRepository abstracts DynamoDB persistence for Payment.
//
// Lookups return a zero-value Payment (empty ID) when the record does not exist.
//
//go:generate mockgen -source=payment_repository_interface.go -destination=mocks/mock_payment_repository.go -package=mock_interfaces

type IPaymentRepository interface {
	Create(ctx context.Context, p entities.Payment) (entities.Payment, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	ListByOrderID(ctx context.Context, orderID string) ([]entities.Payment, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]entities.Payment, error)
	UpdateStatus(ctx context.Context, id string, update entities.StatusUpdate) (entities.Payment, error)
}
