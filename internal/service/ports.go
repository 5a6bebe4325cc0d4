package service

import "campus/internal/models"

// FeeLedger is the persistence contract the payment engine writes through.
// Implementations must make terminal payment transitions pending-only and
// run ReconcileStatus with read-modify-write atomicity per assignment.
type FeeLedger interface {
	GetAssignment(id uint) (*models.FeeAssignment, error)
	CreatePayment(p *models.FeePayment) error
	GetPaymentByID(id uint) (*models.FeePayment, error)
	CompletePayment(paymentID uint, gatewayPaymentID string) (*models.FeePayment, error)
	CompletePaymentByOrderID(orderID, gatewayPaymentID string) (*models.FeePayment, error)
	FailPaymentByOrderID(orderID string) (*models.FeePayment, error)
	GetTotalPaidAmount(assignmentID uint) (float64, error)
	ReconcileStatus(assignmentID uint, derive func(amount, waiver, totalCompleted float64) string) error
}
