package metrics

import (
	"payment_service/internal/domain/entities"
	"payment_service/internal/usecase/interfaces"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

// PaymentMetrics records validation and lifecycle counters.
type PaymentMetrics struct {
	validations *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

var _ interfaces.IPaymentMetrics = (*PaymentMetrics)(nil)

// NewPaymentMetrics registers the payment counters on reg. A nil registerer
// yields a recorder that drops every observation.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_validations_total",
		Help: "Card validations by outcome and detected brand.",
	}, []string{"outcome", "brand"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_status_transitions_total",
		Help: "Requested payment status transitions by result.",
	}, []string{"from", "to", "result"})
	reg.MustRegister(validations, transitions)
	return &PaymentMetrics{
		validations: validations,
		transitions: transitions,
	}
}

func (m *PaymentMetrics) ObserveValidation(brand entities.CardBrand, valid bool) {
	if m == nil || m.validations == nil {
		return
	}
	outcome := OutcomeInvalid
	if valid {
		outcome = OutcomeValid
	}
	m.validations.WithLabelValues(outcome, normalizeLabel(string(brand))).Inc()
}

func (m *PaymentMetrics) ObserveTransition(from, to entities.PaymentStatus, result string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(string(from)), normalizeLabel(string(to)), normalizeLabel(result)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
