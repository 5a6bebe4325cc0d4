package models

import (
	"time"

	"gorm.io/gorm"
)

// FeeStructure is the fee template an assignment references. Template CRUD
// lives outside this service; the engine only reads the reference.
type FeeStructure struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	AcademicYear string         `gorm:"size:20;index" json:"academic_year"`
	Amount       float64        `gorm:"not null" json:"amount"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (FeeStructure) TableName() string {
	return "fee_structures"
}

// FeeAssignment is one student's ledger entry for one fee structure.
// Status is never accepted from client input; reconciliation derives it from
// amount, waiver and the sum of completed payments.
type FeeAssignment struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	StudentID      uint           `gorm:"not null;index" json:"student_id"`
	FeeStructureID uint           `gorm:"not null;index" json:"fee_structure_id"`
	Amount         float64        `gorm:"not null" json:"amount"`
	WaiverAmount   float64        `gorm:"default:0" json:"waiver_amount"`
	WaiverReason   string         `gorm:"size:255" json:"waiver_reason,omitempty"`
	DueDate        *time.Time     `json:"due_date,omitempty"`
	Status         string         `gorm:"size:20;not null;default:'unpaid';index" json:"status"` // unpaid, partial, paid
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	Student      User         `gorm:"foreignKey:StudentID" json:"-"`
	FeeStructure FeeStructure `gorm:"foreignKey:FeeStructureID" json:"-"`
}

func (FeeAssignment) TableName() string {
	return "fee_assignments"
}
