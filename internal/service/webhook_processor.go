package service

import (
	"errors"

	"campus/pkg/gateway"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WebhookProcessor authenticates and dispatches asynchronous gateway
// events. It runs concurrently with the client confirmation path and with
// redeliveries of its own events; every branch is idempotent because
// payment completion is keyed off the gateway order id.
type WebhookProcessor struct {
	ledger   FeeLedger
	verifier *gateway.SignatureVerifier
	log      *zap.Logger
}

func NewWebhookProcessor(ledger FeeLedger, verifier *gateway.SignatureVerifier, log *zap.Logger) *WebhookProcessor {
	return &WebhookProcessor{ledger: ledger, verifier: verifier, log: log}
}

// Process verifies the raw body signature, then parses and applies the
// event. Verification comes first: an unauthenticated caller must not learn
// which orders exist.
func (p *WebhookProcessor) Process(body []byte, signature string) error {
	if !p.verifier.Verify(body, signature) {
		p.log.Warn("webhook signature verification failed")
		return ErrInvalidSignature
	}
	evt, err := gateway.ParseWebhookEvent(body)
	if err != nil {
		p.log.Warn("webhook payload malformed", zap.Error(err))
		return ErrMalformedPayload
	}
	switch e := evt.(type) {
	case gateway.PaymentCaptured:
		return p.completeByOrder(e.OrderID, e.PaymentID)
	case gateway.OrderPaid:
		return p.completeByOrder(e.OrderID, "")
	case gateway.PaymentFailed:
		return p.failByOrder(e.OrderID)
	case gateway.UnknownEvent:
		// Forward compatible: new gateway event types are acked and ignored.
		p.log.Debug("ignoring unknown webhook event", zap.String("event", e.Type))
		return nil
	default:
		return nil
	}
}

func (p *WebhookProcessor) completeByOrder(orderID, gatewayPaymentID string) error {
	payment, err := p.ledger.CompletePaymentByOrderID(orderID, gatewayPaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.log.Warn("webhook for unknown order", zap.String("order_id", orderID))
			return ErrNotFound
		}
		return err
	}
	p.log.Info("webhook completed payment",
		zap.Uint("payment_id", payment.ID),
		zap.String("order_id", orderID),
		zap.String("gateway_payment_id", gatewayPaymentID))
	if err := p.ledger.ReconcileStatus(payment.FeeAssignmentID, DeriveStatus); err != nil {
		// Payment stays completed; the next event re-derives the status.
		p.log.Error("reconciliation failed after webhook",
			zap.Uint("assignment_id", payment.FeeAssignmentID), zap.Error(err))
	}
	return nil
}

func (p *WebhookProcessor) failByOrder(orderID string) error {
	payment, err := p.ledger.FailPaymentByOrderID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p.log.Warn("failure webhook for unknown order", zap.String("order_id", orderID))
			return ErrNotFound
		}
		return err
	}
	// A failed attempt never changes what is owed; assignment status is
	// left alone.
	p.log.Info("webhook failed payment",
		zap.Uint("payment_id", payment.ID),
		zap.String("order_id", orderID))
	return nil
}
