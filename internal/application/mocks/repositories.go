package mocks

import (
	"context"
	"sync"

	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/google/uuid"
)

// MockPaymentRepository is an in-memory PaymentRepository with the same
// optimistic version check as the postgres one.
type MockPaymentRepository struct {
	mu        sync.RWMutex
	payments  map[uuid.UUID]*domain.Payment
	saveCalls int

	SaveFn     func(ctx context.Context, payment *domain.Payment) (*domain.Payment, error)
	FindByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[uuid.UUID]*domain.Payment),
	}
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	m.mu.Lock()
	m.saveCalls++
	m.mu.Unlock()

	if m.SaveFn != nil {
		return m.SaveFn(ctx, payment)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := payment.ID.String()
	existing, ok := m.payments[payment.ID]
	switch {
	case payment.Version == 0 && ok:
		return nil, domain.NewConcurrentModificationError(id, nil)
	case payment.Version != 0 && (!ok || existing.Version != payment.Version):
		return nil, domain.NewConcurrentModificationError(id, nil)
	}

	stored := payment.Clone()
	stored.Version++
	m.payments[payment.ID] = stored
	return stored.Clone(), nil
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		return p.Clone(), nil
	}
	return nil, domain.NewPaymentNotFoundError(id.String())
}

// Put stores a payment as-is, bypassing the version check.
func (m *MockPaymentRepository) Put(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment.Clone()
}

func (m *MockPaymentRepository) SaveCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saveCalls
}

// MockTransactionLogRepository keeps logs in insertion order.
type MockTransactionLogRepository struct {
	mu   sync.RWMutex
	logs []*domain.TransactionLog

	SaveFn func(ctx context.Context, log *domain.TransactionLog) (*domain.TransactionLog, error)
}

func NewMockTransactionLogRepository() *MockTransactionLogRepository {
	return &MockTransactionLogRepository{}
}

func (m *MockTransactionLogRepository) Save(ctx context.Context, log *domain.TransactionLog) (*domain.TransactionLog, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, log)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *log
	m.logs = append(m.logs, &stored)
	return log, nil
}

func (m *MockTransactionLogRepository) FindByPaymentID(ctx context.Context, paymentID uuid.UUID) ([]*domain.TransactionLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.TransactionLog
	for _, l := range m.logs {
		if l.PaymentID == paymentID {
			c := *l
			result = append(result, &c)
		}
	}
	return result, nil
}

// Codes returns the status codes logged for a payment, oldest first.
func (m *MockTransactionLogRepository) Codes(paymentID uuid.UUID) []int {
	logs, _ := m.FindByPaymentID(context.Background(), paymentID)
	codes := make([]int, 0, len(logs))
	for _, l := range logs {
		codes = append(codes, l.StatusCode)
	}
	return codes
}
