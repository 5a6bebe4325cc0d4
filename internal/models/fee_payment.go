package models

import (
	"time"

	"gorm.io/gorm"
)

// FeePayment is a single payment attempt against a FeeAssignment.
// TransactionID holds the gateway order id from creation; GatewayPaymentID
// is backfilled when the gateway confirms capture. Rows are written only by
// the payment service and the webhook processor.
type FeePayment struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	FeeAssignmentID  uint           `gorm:"not null;index" json:"fee_assignment_id"`
	StudentID        uint           `gorm:"not null;index" json:"student_id"`
	Amount           float64        `gorm:"not null" json:"amount"`
	Currency         string         `gorm:"size:3;default:'INR'" json:"currency"`
	PaymentMethod    string         `gorm:"size:20;not null" json:"payment_method"`
	PaymentStatus    string         `gorm:"size:20;not null;index" json:"payment_status"` // pending, completed, failed
	TransactionID    string         `gorm:"size:255;uniqueIndex" json:"transaction_id"`
	GatewayPaymentID string         `gorm:"size:255" json:"gateway_payment_id,omitempty"`
	Gateway          string         `gorm:"size:50" json:"gateway,omitempty"`
	ReceiptNumber    string         `gorm:"size:100" json:"receipt_number,omitempty"`
	ProcessedBy      *uint          `json:"processed_by,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	FeeAssignment FeeAssignment `gorm:"foreignKey:FeeAssignmentID" json:"-"`
}

func (FeePayment) TableName() string {
	return "fee_payments"
}
