package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payment_service/internal/domain/cardvalidation"
	"payment_service/internal/domain/entities"
	"payment_service/internal/infrastructure/logging"
	"payment_service/internal/usecase/interfaces"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	ErrAmountRequired          = errors.New("amount is required")
	ErrInvalidAmount           = errors.New("amount must be a non-negative number")
	ErrInvalidPaymentID        = errors.New("payment id is required")
	ErrStatusRequired          = errors.New("status is required")
	ErrInvalidStatus           = errors.New("invalid payment status")
	ErrInvalidRefundAmount     = errors.New("refund amount must be between zero and the payment amount")
	ErrInvalidOrderID          = errors.New("order id is required")
	ErrInvalidUserID           = errors.New("user id is required")
	ErrInvalidPagination       = errors.New("invalid pagination parameters")
	ErrInvalidMetadataKey      = errors.New("metadata keys must not be empty")
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrPaymentConcurrentUpdate = errors.New("payment was modified concurrently")
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Transition results reported to metrics.
const (
	transitionApplied  = "applied"
	transitionRejected = "rejected"
	transitionConflict = "conflict"
	transitionNotFound = "not_found"
	transitionFailed   = "error"
)

// PaymentInput is the raw payment intent submitted by a caller.
//
// CardNumber and CVV are only used for validation and are never persisted.
type PaymentInput struct {
	CardNumber  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string

	Amount   *decimal.Decimal
	OrderID  string
	UserID   string
	Currency string
	Metadata map[string]any
}

// hasCard treats any non-empty card number as present, so a blank-looking
// number still goes through validation and fails on length.
func (in PaymentInput) hasCard() bool {
	return in.CardNumber != ""
}

func (in PaymentInput) card() cardvalidation.Input {
	return cardvalidation.Input{
		CardNumber:  in.CardNumber,
		ExpiryMonth: in.ExpiryMonth,
		ExpiryYear:  in.ExpiryYear,
		CVV:         in.CVV,
	}
}

// IPaymentUseCase validates payment intents and governs the payment lifecycle.
//
//go:generate mockgen -source=payment_usecase.go -destination=../adapter/http/handlers/mocks/mock_payment_usecase.go -package=mocks

type IPaymentUseCase interface {
	Validate(ctx context.Context, in PaymentInput) entities.ValidationResult
	ValidatePayment(ctx context.Context, in PaymentInput) (entities.Payment, entities.ValidationResult, error)
	Create(ctx context.Context, in PaymentInput) (entities.Payment, *entities.ValidationResult, error)
	GetByID(ctx context.Context, id string) (entities.Payment, error)
	ListByOrderID(ctx context.Context, orderID string) ([]entities.Payment, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]entities.Payment, error)
	SetStatus(ctx context.Context, id, status string, metadata map[string]any) (entities.Payment, error)
	Capture(ctx context.Context, id string) (entities.Payment, error)
	Refund(ctx context.Context, id string, amount *decimal.Decimal, reason string) (entities.Payment, error)
	Cancel(ctx context.Context, id string) (entities.Payment, error)
	SoftDelete(ctx context.Context, id string) (entities.Payment, error)
}

type PaymentUseCase struct {
	repo    interfaces.IPaymentRepository
	events  interfaces.IPaymentEventPublisher
	metrics interfaces.IPaymentMetrics

	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
	newID           func() string
}

var _ IPaymentUseCase = (*PaymentUseCase)(nil)

// NewPaymentUseCase builds the use case. events and metrics may be nil.
func NewPaymentUseCase(repo interfaces.IPaymentRepository, events interfaces.IPaymentEventPublisher, metrics interfaces.IPaymentMetrics) *PaymentUseCase {
	if events == nil {
		events = noopPublisher{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &PaymentUseCase{
		repo:            repo,
		events:          events,
		metrics:         metrics,
		defaultPageSize: DefaultPageSize,
		maxPageSize:     MaxPageSize,
		now:             func() time.Time { return time.Now().UTC() },
		newID:           uuid.NewString,
	}
}

// WithPageSizes overrides the ListByUserID defaults. Non-positive values are ignored.
func (u *PaymentUseCase) WithPageSizes(defaultSize, maxSize int) *PaymentUseCase {
	if defaultSize > 0 {
		u.defaultPageSize = defaultSize
	}
	if maxSize > 0 {
		u.maxPageSize = maxSize
	}
	if u.defaultPageSize > u.maxPageSize {
		u.defaultPageSize = u.maxPageSize
	}
	return u
}

// Validate runs the card checks without persisting anything.
func (u *PaymentUseCase) Validate(ctx context.Context, in PaymentInput) entities.ValidationResult {
	res := cardvalidation.ValidateAt(in.card(), u.now())
	u.metrics.ObserveValidation(res.CardNumber.Brand, res.Overall.Valid)
	log.Ctx(ctx).Debug().
		Str("brand", string(res.CardNumber.Brand)).
		Bool("valid", res.Overall.Valid).
		Int("errors", len(res.Overall.Errors)).
		Msg("[payment][usecase] card validated")
	return res
}

// ValidatePayment validates the card data and persists the outcome as a
// validated or validation_failed payment. A failed validation is not an error.
func (u *PaymentUseCase) ValidatePayment(ctx context.Context, in PaymentInput) (entities.Payment, entities.ValidationResult, error) {
	amount, err := checkAmount(in.Amount)
	if err != nil {
		return entities.Payment{}, entities.ValidationResult{}, err
	}

	res := u.Validate(ctx, in)

	status := entities.PaymentStatusValidationFailed
	if res.Overall.Valid {
		status = entities.PaymentStatusValidated
	}

	p := u.newPayment(in, amount, status)
	brand := res.CardNumber.Brand
	lastFour := cardvalidation.LastFour(in.CardNumber)
	snapshot := res
	p.CardBrand = &brand
	p.CardLastFour = &lastFour
	p.ExpiryMonth = optionalInt(in.ExpiryMonth)
	p.ExpiryYear = optionalInt(in.ExpiryYear)
	p.ValidationResult = &snapshot

	saved, err := u.persist(ctx, p)
	if err != nil {
		return entities.Payment{}, res, err
	}
	return saved, res, nil
}

// Create persists a payment. With card data it takes the validation path;
// without it the payment is stored as created with no card summary.
func (u *PaymentUseCase) Create(ctx context.Context, in PaymentInput) (entities.Payment, *entities.ValidationResult, error) {
	if in.hasCard() {
		p, res, err := u.ValidatePayment(ctx, in)
		if err != nil {
			return entities.Payment{}, nil, err
		}
		return p, &res, nil
	}

	amount, err := checkAmount(in.Amount)
	if err != nil {
		return entities.Payment{}, nil, err
	}

	saved, err := u.persist(ctx, u.newPayment(in, amount, entities.PaymentStatusCreated))
	if err != nil {
		return entities.Payment{}, nil, err
	}
	return saved, nil, nil
}

func (u *PaymentUseCase) GetByID(ctx context.Context, id string) (entities.Payment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Payment{}, ErrInvalidPaymentID
	}
	p, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Payment{}, err
	}
	if p.ID == "" {
		return entities.Payment{}, ErrPaymentNotFound
	}
	return p, nil
}

func (u *PaymentUseCase) ListByOrderID(ctx context.Context, orderID string) ([]entities.Payment, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}
	return u.repo.ListByOrderID(ctx, orderID)
}

// ListByUserID pages through the user's payments, newest first. A zero
// limit selects the default page size and limits above the maximum are capped.
func (u *PaymentUseCase) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]entities.Payment, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidUserID
	}
	if limit < 0 || offset < 0 {
		return nil, ErrInvalidPagination
	}
	if limit == 0 {
		limit = u.defaultPageSize
	}
	if limit > u.maxPageSize {
		limit = u.maxPageSize
	}
	return u.repo.ListByUserID(ctx, userID, limit, offset)
}

// SetStatus moves the payment to status and merges metadata into the stored
// metadata. Only transitions allowed by PaymentStatus.CanTransitionTo apply.
func (u *PaymentUseCase) SetStatus(ctx context.Context, id, status string, metadata map[string]any) (entities.Payment, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return entities.Payment{}, ErrStatusRequired
	}
	target, ok := entities.ParsePaymentStatus(status)
	if !ok {
		return entities.Payment{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	for k := range metadata {
		if strings.TrimSpace(k) == "" {
			return entities.Payment{}, ErrInvalidMetadataKey
		}
	}
	return u.transition(ctx, id, target, func(entities.Payment) (map[string]any, error) {
		return metadata, nil
	})
}

func (u *PaymentUseCase) Capture(ctx context.Context, id string) (entities.Payment, error) {
	return u.transition(ctx, id, entities.PaymentStatusCaptured, func(entities.Payment) (map[string]any, error) {
		return map[string]any{"captured_at": u.timestamp()}, nil
	})
}

// Refund marks a captured payment as refunded. A nil amount refunds the
// full payment amount.
func (u *PaymentUseCase) Refund(ctx context.Context, id string, amount *decimal.Decimal, reason string) (entities.Payment, error) {
	if amount != nil && amount.IsNegative() {
		return entities.Payment{}, ErrInvalidRefundAmount
	}
	return u.transition(ctx, id, entities.PaymentStatusRefunded, func(current entities.Payment) (map[string]any, error) {
		refund := current.Amount
		if amount != nil {
			if amount.GreaterThan(current.Amount) {
				return nil, ErrInvalidRefundAmount
			}
			refund = *amount
		}
		return map[string]any{
			"refunded_at":   u.timestamp(),
			"refund_amount": refund.String(),
			"refund_reason": reason,
		}, nil
	})
}

func (u *PaymentUseCase) Cancel(ctx context.Context, id string) (entities.Payment, error) {
	return u.transition(ctx, id, entities.PaymentStatusCancelled, func(entities.Payment) (map[string]any, error) {
		return map[string]any{"cancelled_at": u.timestamp()}, nil
	})
}

// SoftDelete marks the payment deleted. The record stays readable by id.
func (u *PaymentUseCase) SoftDelete(ctx context.Context, id string) (entities.Payment, error) {
	return u.transition(ctx, id, entities.PaymentStatusDeleted, func(entities.Payment) (map[string]any, error) {
		return map[string]any{"deleted_at": u.timestamp()}, nil
	})
}

// transition reads the payment, checks the move to target and writes it
// conditionally on the version that was read.
func (u *PaymentUseCase) transition(ctx context.Context, id string, target entities.PaymentStatus, metadataFor func(current entities.Payment) (map[string]any, error)) (entities.Payment, error) {
	logger := log.Ctx(ctx).With().Str("payment_id", id).Str("to", string(target)).Logger()

	current, err := u.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			u.metrics.ObserveTransition("", target, transitionNotFound)
		}
		return entities.Payment{}, err
	}

	if !current.Status.CanTransitionTo(target) {
		u.metrics.ObserveTransition(current.Status, target, transitionRejected)
		logger.Info().Str("from", string(current.Status)).Msg("[payment][usecase] status transition rejected")
		return entities.Payment{}, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, target)
	}

	metadata, err := metadataFor(current)
	if err != nil {
		return entities.Payment{}, err
	}

	updated, err := u.repo.UpdateStatus(ctx, current.ID, entities.StatusUpdate{
		From:            current.Status,
		To:              target,
		ExpectedVersion: current.Version,
		Metadata:        metadata,
	})
	if err != nil {
		if errors.Is(err, interfaces.ErrStaleWrite) {
			u.metrics.ObserveTransition(current.Status, target, transitionConflict)
			logger.Warn().Int64("version", current.Version).Msg("[payment][usecase] concurrent update detected")
			return entities.Payment{}, ErrPaymentConcurrentUpdate
		}
		u.metrics.ObserveTransition(current.Status, target, transitionFailed)
		logger.Error().Err(err).Msg("[payment][usecase] status update failed")
		return entities.Payment{}, err
	}
	if updated.ID == "" {
		u.metrics.ObserveTransition(current.Status, target, transitionNotFound)
		return entities.Payment{}, ErrPaymentNotFound
	}

	u.metrics.ObserveTransition(current.Status, target, transitionApplied)
	logger.Info().Str("from", string(current.Status)).Int64("version", updated.Version).Msg("[payment][usecase] status updated")

	u.publish(ctx, interfaces.PaymentEventStatusChanged, updated, current.Status)
	return updated, nil
}

func (u *PaymentUseCase) newPayment(in PaymentInput, amount decimal.Decimal, status entities.PaymentStatus) entities.Payment {
	now := u.now()

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = entities.DefaultCurrency
	}

	metadata := make(map[string]any, len(in.Metadata)+1)
	for k, v := range in.Metadata {
		metadata[k] = v
	}
	metadata["created_at"] = now.Format(time.RFC3339Nano)

	return entities.Payment{
		ID:        u.newID(),
		OrderID:   strings.TrimSpace(in.OrderID),
		UserID:    strings.TrimSpace(in.UserID),
		Amount:    amount,
		Currency:  currency,
		Status:    status,
		Metadata:  metadata,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (u *PaymentUseCase) persist(ctx context.Context, p entities.Payment) (entities.Payment, error) {
	saved, err := u.repo.Create(ctx, p)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("payment_id", p.ID).Msg("[payment][usecase] failed persisting payment")
		return entities.Payment{}, err
	}
	log.Ctx(ctx).Info().
		Str("payment_id", saved.ID).
		Str("status", string(saved.Status)).
		Str("order_id", saved.OrderID).
		Msg("[payment][usecase] payment created")

	u.publish(ctx, interfaces.PaymentEventCreated, saved, "")
	return saved, nil
}

// publish never fails the operation; the record is already stored.
func (u *PaymentUseCase) publish(ctx context.Context, typ interfaces.PaymentEventType, p entities.Payment, previous entities.PaymentStatus) {
	event := interfaces.PaymentEvent{
		Type:           typ,
		PaymentID:      p.ID,
		OrderID:        p.OrderID,
		UserID:         p.UserID,
		Status:         p.Status,
		PreviousStatus: previous,
		CorrelationID:  logging.CorrelationID(ctx),
		OccurredAt:     u.now(),
	}
	if err := u.events.Publish(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("payment_id", p.ID).Str("event", string(typ)).Msg("[payment][usecase] failed publishing event")
	}
}

func (u *PaymentUseCase) timestamp() string {
	return u.now().Format(time.RFC3339Nano)
}

// optionalInt maps an absent (zero) expiry field to nil.
func optionalInt(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

func checkAmount(amount *decimal.Decimal) (decimal.Decimal, error) {
	if amount == nil {
		return decimal.Decimal{}, ErrAmountRequired
	}
	if amount.IsNegative() {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return *amount, nil
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, interfaces.PaymentEvent) error { return nil }

type noopMetrics struct{}

func (noopMetrics) ObserveValidation(entities.CardBrand, bool) {}
func (noopMetrics) ObserveTransition(entities.PaymentStatus, entities.PaymentStatus, string) {}
