package interfaces

import "payment_service/internal/domain/entities"

// IPaymentMetrics records validation outcomes and status transitions.
//
//go:generate mockgen -source=payment_metrics_interface.go -destination=mocks/mock_payment_metrics.go -package=mock_interfaces

type IPaymentMetrics interface {
	ObserveValidation(brand entities.CardBrand, valid bool)
	ObserveTransition(from, to entities.PaymentStatus, result string)
}
