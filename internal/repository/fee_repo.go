package repository

import (
	"time"

	"campus/internal/domain"
	"campus/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FeeRepository is the persistence side of the fee ledger. Payment status
// transitions are guarded in SQL (pending-only updates) so redelivered
// webhooks and racing confirmation calls cannot double-apply.
type FeeRepository struct {
	db *gorm.DB
}

func NewFeeRepository(db *gorm.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

func (r *FeeRepository) GetAssignment(id uint) (*models.FeeAssignment, error) {
	var fa models.FeeAssignment
	err := r.db.First(&fa, id).Error
	if err != nil {
		return nil, err
	}
	return &fa, nil
}

func (r *FeeRepository) CreatePayment(p *models.FeePayment) error {
	return r.db.Create(p).Error
}

func (r *FeeRepository) GetPaymentByID(id uint) (*models.FeePayment, error) {
	var p models.FeePayment
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *FeeRepository) GetPaymentByOrderID(orderID string) (*models.FeePayment, error) {
	var p models.FeePayment
	err := r.db.Where("transaction_id = ?", orderID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CompletePayment marks a pending payment completed and backfills the
// gateway payment id. An already-terminal payment keeps its status, but a
// completed payment that never learned its gateway payment id (order.paid
// carries none) still picks it up here.
func (r *FeeRepository) CompletePayment(paymentID uint, gatewayPaymentID string) (*models.FeePayment, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": domain.PaymentCompleted,
		"completed_at":   &now,
	}
	if gatewayPaymentID != "" {
		updates["gateway_payment_id"] = gatewayPaymentID
	}
	res := r.db.Model(&models.FeePayment{}).
		Where("id = ? AND payment_status = ?", paymentID, domain.PaymentPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if gatewayPaymentID != "" {
		if err := r.backfillGatewayPaymentID("id = ?", paymentID, gatewayPaymentID); err != nil {
			return nil, err
		}
	}
	return r.GetPaymentByID(paymentID)
}

// CompletePaymentByOrderID is the webhook path: the gateway only knows its
// own order id. Keying the pending-only update off transaction_id makes a
// redelivered event a no-op.
func (r *FeeRepository) CompletePaymentByOrderID(orderID, gatewayPaymentID string) (*models.FeePayment, error) {
	now := time.Now()
	updates := map[string]interface{}{
		"payment_status": domain.PaymentCompleted,
		"completed_at":   &now,
	}
	if gatewayPaymentID != "" {
		updates["gateway_payment_id"] = gatewayPaymentID
	}
	res := r.db.Model(&models.FeePayment{}).
		Where("transaction_id = ? AND payment_status = ?", orderID, domain.PaymentPending).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if gatewayPaymentID != "" {
		if err := r.backfillGatewayPaymentID("transaction_id = ?", orderID, gatewayPaymentID); err != nil {
			return nil, err
		}
	}
	return r.GetPaymentByOrderID(orderID)
}

// backfillGatewayPaymentID records the gateway payment id on an already
// completed payment that has none, leaving status untouched.
func (r *FeeRepository) backfillGatewayPaymentID(cond string, key interface{}, gatewayPaymentID string) error {
	return r.db.Model(&models.FeePayment{}).
		Where(cond, key).
		Where("payment_status = ? AND (gateway_payment_id IS NULL OR gateway_payment_id = '')", domain.PaymentCompleted).
		Update("gateway_payment_id", gatewayPaymentID).Error
}

// FailPaymentByOrderID marks a pending payment failed. Completed payments
// are terminal and never regress.
func (r *FeeRepository) FailPaymentByOrderID(orderID string) (*models.FeePayment, error) {
	res := r.db.Model(&models.FeePayment{}).
		Where("transaction_id = ? AND payment_status = ?", orderID, domain.PaymentPending).
		Update("payment_status", domain.PaymentFailed)
	if res.Error != nil {
		return nil, res.Error
	}
	return r.GetPaymentByOrderID(orderID)
}

func (r *FeeRepository) GetTotalPaidAmount(assignmentID uint) (float64, error) {
	var total float64
	err := r.db.Model(&models.FeePayment{}).
		Where("fee_assignment_id = ? AND payment_status = ?", assignmentID, domain.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	return total, err
}

// ReconcileStatus recomputes and writes the assignment status inside one
// transaction, holding a row lock on the assignment so two concurrent
// reconciliations cannot read a stale completed-payments sum.
func (r *FeeRepository) ReconcileStatus(assignmentID uint, derive func(amount, waiver, totalCompleted float64) string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var fa models.FeeAssignment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&fa, assignmentID).Error; err != nil {
			return err
		}
		var total float64
		if err := tx.Model(&models.FeePayment{}).
			Where("fee_assignment_id = ? AND payment_status = ?", assignmentID, domain.PaymentCompleted).
			Select("COALESCE(SUM(amount), 0)").
			Scan(&total).Error; err != nil {
			return err
		}
		status := derive(fa.Amount, fa.WaiverAmount, total)
		if status == fa.Status {
			return nil
		}
		return tx.Model(&fa).Update("status", status).Error
	})
}
