package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campus/internal/domain"
	"campus/internal/models"

	"gorm.io/gorm"
)

// mockLedger is an in-memory FeeLedger. It mirrors the SQL guards of the
// real repository: terminal payment transitions are pending-only, and
// ReconcileStatus runs under the same lock as the completed-payments sum.
type mockLedger struct {
	mu          sync.Mutex
	assignments map[uint]*models.FeeAssignment
	payments    map[uint]*models.FeePayment
	nextID      uint

	lookups      int
	writes       int
	reconcileErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		assignments: make(map[uint]*models.FeeAssignment),
		payments:    make(map[uint]*models.FeePayment),
	}
}

func (m *mockLedger) addAssignment(fa *models.FeeAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if fa.Status == "" {
		fa.Status = domain.AssignmentUnpaid
	}
	m.assignments[fa.ID] = fa
}

func (m *mockLedger) GetAssignment(id uint) (*models.FeeAssignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	fa, ok := m.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *fa
	return &cp, nil
}

func (m *mockLedger) CreatePayment(p *models.FeePayment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.nextID++
	p.ID = m.nextID
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockLedger) GetPaymentByID(id uint) (*models.FeePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups++
	p, ok := m.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockLedger) CompletePayment(paymentID uint, gatewayPaymentID string) (*models.FeePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	m.completeLocked(p, gatewayPaymentID)
	cp := *p
	return &cp, nil
}

func (m *mockLedger) CompletePaymentByOrderID(orderID, gatewayPaymentID string) (*models.FeePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.findByOrderLocked(orderID)
	if p == nil {
		return nil, gorm.ErrRecordNotFound
	}
	m.completeLocked(p, gatewayPaymentID)
	cp := *p
	return &cp, nil
}

// completeLocked mirrors the repository guards: only pending payments
// transition, and a completed payment missing its gateway payment id can
// still have it backfilled.
func (m *mockLedger) completeLocked(p *models.FeePayment, gatewayPaymentID string) {
	if p.PaymentStatus == domain.PaymentPending {
		m.writes++
		now := time.Now()
		p.PaymentStatus = domain.PaymentCompleted
		p.CompletedAt = &now
		if gatewayPaymentID != "" {
			p.GatewayPaymentID = gatewayPaymentID
		}
		return
	}
	if p.PaymentStatus == domain.PaymentCompleted && p.GatewayPaymentID == "" && gatewayPaymentID != "" {
		m.writes++
		p.GatewayPaymentID = gatewayPaymentID
	}
}

func (m *mockLedger) FailPaymentByOrderID(orderID string) (*models.FeePayment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.findByOrderLocked(orderID)
	if p == nil {
		return nil, gorm.ErrRecordNotFound
	}
	if p.PaymentStatus == domain.PaymentPending {
		m.writes++
		p.PaymentStatus = domain.PaymentFailed
	}
	cp := *p
	return &cp, nil
}

func (m *mockLedger) findByOrderLocked(orderID string) *models.FeePayment {
	m.lookups++
	for _, p := range m.payments {
		if p.TransactionID == orderID {
			return p
		}
	}
	return nil
}

func (m *mockLedger) GetTotalPaidAmount(assignmentID uint) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalCompletedLocked(assignmentID), nil
}

func (m *mockLedger) totalCompletedLocked(assignmentID uint) float64 {
	var total float64
	for _, p := range m.payments {
		if p.FeeAssignmentID == assignmentID && p.PaymentStatus == domain.PaymentCompleted {
			total += p.Amount
		}
	}
	return total
}

func (m *mockLedger) ReconcileStatus(assignmentID uint, derive func(amount, waiver, totalCompleted float64) string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.reconcileErr != nil {
		return m.reconcileErr
	}
	fa, ok := m.assignments[assignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	fa.Status = derive(fa.Amount, fa.WaiverAmount, m.totalCompletedLocked(assignmentID))
	return nil
}

func (m *mockLedger) assignmentStatus(id uint) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assignments[id].Status
}

func (m *mockLedger) payment(id uint) models.FeePayment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.payments[id]
}

// mockGateway hands out sequential order ids, or fails when told to.
type mockGateway struct {
	mu     sync.Mutex
	orders int
	err    error
}

func (g *mockGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	g.orders++
	return fmt.Sprintf("order_%d", g.orders), nil
}
