package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zemen-travel/ms-go-payments/app/entity"
	"github.com/zemen-travel/ms-go-payments/app/notifier"
	"github.com/zemen-travel/ms-go-payments/app/provider"
	"github.com/zemen-travel/ms-go-payments/app/repository"
	"github.com/zemen-travel/ms-go-payments/app/types"
	"github.com/zemen-travel/ms-go-payments/config"
)

const (
	defaultCurrency  = "ETB"
	defaultBatchSize = int32(100)

	checkoutTitle       = "Zemen Travel Booking"
	checkoutDescription = "Payment for travel booking"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	UpdateStatus(ctx context.Context, payment *entity.Payment, expectedStatus int32) error
	FindByTxRef(ctx context.Context, txRef string) (*entity.Payment, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, error)
	ListStalePending(ctx context.Context, before time.Time, limit int32) ([]*entity.Payment, error)
}

type paymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
}

type confirmationDispatcher interface {
	EnqueueConfirmation(c notifier.Confirmation)
}

type PaymentService struct {
	paymentRepo paymentRepository
	eventRepo   paymentEventRepository
	gateway     provider.Gateway
	notifier    confirmationDispatcher
	paymentsCfg config.PaymentsConfig
}

func NewPaymentService(
	paymentRepo paymentRepository,
	eventRepo paymentEventRepository,
	gateway provider.Gateway,
	dispatcher confirmationDispatcher,
	paymentsCfg config.PaymentsConfig,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		gateway:     gateway,
		notifier:    dispatcher,
		paymentsCfg: paymentsCfg,
	}
}

// InitiatePayment generates a fresh reference, asks the gateway for a
// checkout URL, and records the attempt as PENDING. A gateway failure
// leaves no trace in the store.
func (s *PaymentService) InitiatePayment(ctx context.Context, req *types.InitiatePaymentRequest) (*entity.Payment, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.defaultCurrency()
	}

	txRef := newTxRef()

	output, err := s.gateway.InitializeTransaction(ctx, &provider.InitializeInput{
		TxRef:       txRef,
		Amount:      req.Amount,
		Currency:    currency,
		Email:       req.Email,
		FirstName:   req.FullName,
		LastName:    "",
		PhoneNumber: req.PhoneNumber,
		Title:       checkoutTitle,
		Description: checkoutDescription,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &entity.Payment{
		TxRef:       txRef,
		Amount:      req.Amount,
		Currency:    currency,
		Email:       req.Email,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Status:      entity.StatusPending,
		CheckoutURL: normalizeOptionalString(output.CheckoutURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, repository.ErrPaymentAlreadyExists) {
			return nil, ErrPaymentAlreadyExists
		}
		return nil, err
	}

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: payment.ID,
		EventType: "payment_initiated",
		NewStatus: payment.Status,
		CreatedAt: now,
	})

	return payment, nil
}

// VerifyPayment asks the gateway for the transaction's status and
// applies the resulting transition to the stored record. The gateway is
// consulted before the lookup so an unknown reference still surfaces
// gateway outages as such.
func (s *PaymentService) VerifyPayment(ctx context.Context, txRef string) (*entity.Payment, *provider.VerifyOutput, error) {
	txRef = strings.TrimSpace(txRef)
	if txRef == "" {
		return nil, nil, ErrInvalidRequest
	}

	output, err := s.gateway.VerifyTransaction(ctx, txRef)
	if err != nil {
		return nil, nil, err
	}

	payment, err := s.paymentRepo.FindByTxRef(ctx, txRef)
	if err != nil {
		return nil, nil, err
	}
	if payment == nil {
		return nil, nil, ErrPaymentNotFound
	}

	payment, err = s.applyGatewayStatus(ctx, payment, output, false)
	if err != nil {
		return nil, nil, err
	}

	return payment, output, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, req *types.ListPaymentsRequest) ([]*entity.Payment, error) {
	filter := repository.PaymentFilter{
		Email:  strings.TrimSpace(req.Email),
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if req.HasStatus {
		status, ok := statusCode(req.Status)
		if !ok {
			return nil, ErrInvalidRequest
		}
		filter.HasStatus = true
		filter.Status = status
	}

	return s.paymentRepo.List(ctx, filter)
}

// applyGatewayStatus moves a PENDING payment to its terminal state
// based on what the gateway reported. Terminal records and unknown
// gateway statuses are left untouched. The update is guarded by the
// status read here, so two concurrent verifies cannot both transition;
// the loser returns the stored record as-is and enqueues nothing.
func (s *PaymentService) applyGatewayStatus(ctx context.Context, payment *entity.Payment, output *provider.VerifyOutput, reconciled bool) (*entity.Payment, error) {
	if entity.TerminalStatus(payment.Status) {
		return payment, nil
	}

	var newStatus int32
	switch output.Status {
	case "success":
		newStatus = entity.StatusCompleted
	case "failed", "cancelled":
		newStatus = entity.StatusFailed
	default:
		return payment, nil
	}

	now := time.Now().UTC()
	oldStatus := payment.Status

	if newStatus == entity.StatusCompleted && output.GatewayTransactionID != nil {
		payment.GatewayTransactionID = output.GatewayTransactionID
	}
	payment.Status = newStatus
	payment.UpdatedAt = now

	if err := s.paymentRepo.UpdateStatus(ctx, payment, oldStatus); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			current, findErr := s.paymentRepo.FindByTxRef(ctx, payment.TxRef)
			if findErr != nil {
				return nil, findErr
			}
			if current == nil {
				return nil, ErrPaymentNotFound
			}
			return current, nil
		}
		return nil, err
	}

	eventType := "payment_completed"
	if newStatus == entity.StatusFailed {
		eventType = "payment_failed"
	}
	if reconciled {
		eventType = "payment_reconciled"
	}

	gatewayStatus := output.Status
	event := &entity.PaymentEvent{
		PaymentID:     payment.ID,
		EventType:     eventType,
		OldStatus:     &oldStatus,
		NewStatus:     newStatus,
		GatewayStatus: &gatewayStatus,
		CreatedAt:     now,
	}
	if len(output.Raw) > 0 {
		payloadJSON := string(output.Raw)
		event.PayloadJSON = &payloadJSON
	}
	_ = s.eventRepo.Create(ctx, event)

	if newStatus == entity.StatusCompleted {
		s.notifier.EnqueueConfirmation(notifier.Confirmation{
			Email:    payment.Email,
			TxRef:    payment.TxRef,
			Amount:   payment.Amount,
			Currency: payment.Currency,
		})
	}

	return payment, nil
}

func (s *PaymentService) defaultCurrency() string {
	if c := strings.ToUpper(strings.TrimSpace(s.paymentsCfg.DefaultCurrency)); c != "" {
		return c
	}
	return defaultCurrency
}

func (s *PaymentService) batchSize() int32 {
	if s.paymentsCfg.JobBatchSize > 0 {
		return s.paymentsCfg.JobBatchSize
	}
	return defaultBatchSize
}

func newTxRef() string {
	return "TRX_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}

func statusCode(name string) (int32, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "PENDING":
		return entity.StatusPending, true
	case "COMPLETED":
		return entity.StatusCompleted, true
	case "FAILED":
		return entity.StatusFailed, true
	default:
		return 0, false
	}
}

func normalizeOptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
