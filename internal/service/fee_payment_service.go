package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"campus/internal/domain"
	"campus/internal/models"
	"campus/pkg/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidRequest   = errors.New("missing required payment fields")
	ErrInvalidSignature = errors.New("payment signature verification failed")
	ErrNotFound         = errors.New("record not found")
	ErrForbidden        = errors.New("assignment does not belong to student")
)

// ErrMalformedPayload is the webhook-body shape error, surfaced from the
// gateway boundary parser.
var ErrMalformedPayload = gateway.ErrMalformedPayload

type InitiateResult struct {
	PaymentID      uint    `json:"payment_id"`
	GatewayOrderID string  `json:"order_id"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Status         string  `json:"status"`
}

// FeePaymentService initiates gateway payments, verifies signed client
// confirmations and keeps fee-assignment status consistent with the
// payments actually received.
type FeePaymentService struct {
	ledger   FeeLedger
	gw       gateway.Client
	verifier *gateway.SignatureVerifier
	currency string
	log      *zap.Logger
}

func NewFeePaymentService(ledger FeeLedger, gw gateway.Client, verifier *gateway.SignatureVerifier, currency string, log *zap.Logger) *FeePaymentService {
	return &FeePaymentService{ledger: ledger, gw: gw, verifier: verifier, currency: currency, log: log}
}

// InitiateOnlinePayment creates a gateway order and records a pending
// FeePayment carrying the order id. Each call creates a fresh payment row;
// callers must not re-invoke it for the same attempt. No row is written if
// the gateway call fails.
func (s *FeePaymentService) InitiateOnlinePayment(ctx context.Context, studentID, assignmentID uint, amount float64, gatewayName string) (*InitiateResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidRequest
	}
	fa, err := s.ledger.GetAssignment(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if fa.StudentID != studentID {
		return nil, ErrForbidden
	}
	receipt := newReceiptNumber()
	orderID, err := s.gw.CreateOrder(ctx, toMinorUnits(amount), s.currency, receipt)
	if err != nil {
		return nil, err
	}
	p := &models.FeePayment{
		FeeAssignmentID: fa.ID,
		StudentID:       studentID,
		Amount:          amount,
		Currency:        s.currency,
		PaymentMethod:   domain.MethodOnline,
		PaymentStatus:   domain.PaymentPending,
		TransactionID:   orderID,
		Gateway:         gatewayName,
		ReceiptNumber:   receipt,
	}
	if err := s.ledger.CreatePayment(p); err != nil {
		return nil, err
	}
	s.log.Info("fee payment initiated",
		zap.Uint("payment_id", p.ID),
		zap.Uint("assignment_id", fa.ID),
		zap.String("order_id", orderID),
		zap.Float64("amount", amount))
	return &InitiateResult{
		PaymentID:      p.ID,
		GatewayOrderID: orderID,
		Amount:         amount,
		Currency:       s.currency,
		Status:         domain.PaymentPending,
	}, nil
}

// VerifyPayment is the synchronous confirmation path. The signature covers
// "orderID|gatewayPaymentID"; a mismatch aborts with no ledger access at
// all, so a forged confirmation can never complete a payment. The signed
// order must be the one the payment was created with and the payment must
// belong to the requesting student: a valid signature only attests to its
// own order, never to someone else's payment row.
func (s *FeePaymentService) VerifyPayment(studentID uint, orderID, gatewayPaymentID string, paymentID uint, signature string) error {
	if orderID == "" || gatewayPaymentID == "" || signature == "" || paymentID == 0 {
		return ErrInvalidRequest
	}
	message := orderID + "|" + gatewayPaymentID
	if !s.verifier.Verify([]byte(message), signature) {
		s.log.Warn("payment confirmation signature mismatch",
			zap.String("order_id", orderID),
			zap.Uint("payment_id", paymentID))
		return ErrInvalidSignature
	}
	p, err := s.ledger.GetPaymentByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if p.TransactionID != orderID {
		s.log.Warn("confirmation order does not match payment",
			zap.Uint("payment_id", paymentID),
			zap.String("order_id", orderID))
		return ErrInvalidRequest
	}
	if p.StudentID != studentID {
		return ErrForbidden
	}
	if _, err := s.ledger.CompletePayment(p.ID, gatewayPaymentID); err != nil {
		return err
	}
	s.log.Info("fee payment verified",
		zap.Uint("payment_id", p.ID),
		zap.String("order_id", orderID),
		zap.String("gateway_payment_id", gatewayPaymentID))
	if err := s.Reconcile(p.FeeAssignmentID); err != nil {
		// Payment stays completed; the next event or an on-demand
		// recomputation re-derives the status.
		s.log.Error("reconciliation failed after verification",
			zap.Uint("assignment_id", p.FeeAssignmentID), zap.Error(err))
	}
	return nil
}

// RecordOfflinePayment records a staff-entered cash or cheque payment.
// There is no gateway confirmation to verify, so it goes straight to
// completed and reconciles.
func (s *FeePaymentService) RecordOfflinePayment(assignmentID uint, amount float64, method string, processedBy uint, reference string) (*models.FeePayment, error) {
	if amount <= 0 || method == "" {
		return nil, ErrInvalidRequest
	}
	fa, err := s.ledger.GetAssignment(assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if reference == "" {
		reference = "offline_" + uuid.New().String()
	}
	now := time.Now()
	p := &models.FeePayment{
		FeeAssignmentID: fa.ID,
		StudentID:       fa.StudentID,
		Amount:          amount,
		Currency:        s.currency,
		PaymentMethod:   method,
		PaymentStatus:   domain.PaymentCompleted,
		TransactionID:   reference,
		ReceiptNumber:   newReceiptNumber(),
		ProcessedBy:     &processedBy,
		CompletedAt:     &now,
	}
	if err := s.ledger.CreatePayment(p); err != nil {
		return nil, err
	}
	s.log.Info("offline fee payment recorded",
		zap.Uint("payment_id", p.ID),
		zap.Uint("assignment_id", fa.ID),
		zap.String("method", method),
		zap.Uint("processed_by", processedBy))
	if err := s.Reconcile(fa.ID); err != nil {
		s.log.Error("reconciliation failed after offline payment",
			zap.Uint("assignment_id", fa.ID), zap.Error(err))
	}
	return p, nil
}

// Reconcile re-derives the assignment status from the ledger. It is
// idempotent and is the single choke point both confirmation paths go
// through, so whichever path completes a payment second becomes a no-op.
func (s *FeePaymentService) Reconcile(assignmentID uint) error {
	return s.ledger.ReconcileStatus(assignmentID, DeriveStatus)
}

// DeriveStatus computes assignment status from scratch. Pure; status is a
// function of the current ledger, never patched incrementally.
func DeriveStatus(amount, waiver, totalCompleted float64) string {
	remaining := amount - totalCompleted - waiver
	if remaining <= 0 {
		return domain.AssignmentPaid
	}
	if totalCompleted > 0 {
		return domain.AssignmentPartial
	}
	return domain.AssignmentUnpaid
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func newReceiptNumber() string {
	return "rcpt_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}
