package entities

// PaymentStatus represents the lifecycle of a payment record.
//
// Records start as created (cardless) or validated / validation_failed
// (card supplied). Deletion is logical: deleted records stay readable by id.
type PaymentStatus string

const (
	PaymentStatusPending          PaymentStatus = "pending"
	PaymentStatusCreated          PaymentStatus = "created"
	PaymentStatusValidated        PaymentStatus = "validated"
	PaymentStatusValidationFailed PaymentStatus = "validation_failed"
	PaymentStatusCaptured         PaymentStatus = "captured"
	PaymentStatusRefunded         PaymentStatus = "refunded"
	PaymentStatusCancelled        PaymentStatus = "cancelled"
	PaymentStatusDeleted          PaymentStatus = "deleted"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {
		PaymentStatusPending,
		PaymentStatusCreated,
		PaymentStatusValidated,
		PaymentStatusValidationFailed,
		PaymentStatusCancelled,
		PaymentStatusDeleted,
	},
	PaymentStatusCreated: {
		PaymentStatusCreated,
		PaymentStatusCaptured,
		PaymentStatusCancelled,
		PaymentStatusDeleted,
	},
	PaymentStatusValidated: {
		PaymentStatusValidated,
		PaymentStatusCaptured,
		PaymentStatusCancelled,
		PaymentStatusDeleted,
	},
	PaymentStatusValidationFailed: {
		PaymentStatusValidationFailed,
		PaymentStatusCancelled,
		PaymentStatusDeleted,
	},
	PaymentStatusCaptured:  {PaymentStatusRefunded, PaymentStatusDeleted},
	PaymentStatusRefunded:  {PaymentStatusDeleted},
	PaymentStatusCancelled: {PaymentStatusDeleted},
	PaymentStatusDeleted:   nil,
}

// ParsePaymentStatus returns the status for s and whether it is a known value.
func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	st := PaymentStatus(s)
	return st, st.IsValid()
}

// IsValid reports whether s belongs to the PaymentStatus domain.
func (s PaymentStatus) IsValid() bool {
	_, ok := paymentTransitions[s]
	return ok
}

// CanTransitionTo reports whether a record in status s may move to target.
//
// Self-transitions are only allowed before the payment is settled, so that
// callers can annotate metadata without changing state.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}
