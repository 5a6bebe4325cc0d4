package domain

const (
	RoleStudent = "STUDENT"
	RoleStaff   = "STAFF"
	RoleAdmin   = "ADMIN"
)

// FeeAssignment.Status values. Status is written only by reconciliation;
// it moves unpaid -> partial -> paid and a failed payment never regresses it.
const (
	AssignmentUnpaid  = "unpaid"
	AssignmentPartial = "partial"
	AssignmentPaid    = "paid"
)

// FeePayment.PaymentStatus values. A payment is created pending and
// transitions exactly once to a terminal state.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

const (
	MethodOnline = "online"
	MethodCash   = "cash"
	MethodCheque = "cheque"
)
