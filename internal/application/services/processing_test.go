package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/application/mocks"
	"github.com/DanielPopoola/ficmart-payment-core/internal/application/services"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/idempotency"
	"github.com/DanielPopoola/ficmart-payment-core/internal/infrastructure/locking"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type processingFixture struct {
	payments *mocks.MockPaymentRepository
	logs     *mocks.MockTransactionLogRepository
	gateway  *mocks.MockGateway
	store    application.IdempotencyStore
	locker   *locking.KeyedMutex
	service  *services.PaymentProcessingService
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newProcessingFixture(t *testing.T) *processingFixture {
	t.Helper()
	f := &processingFixture{
		payments: mocks.NewMockPaymentRepository(),
		logs:     mocks.NewMockTransactionLogRepository(),
		gateway:  mocks.NewMockGateway(t),
		store:    idempotency.NewMemoryStore(),
		locker:   locking.NewKeyedMutex(),
	}
	f.rebuild()
	return f
}

func (f *processingFixture) rebuild() {
	f.service = services.NewPaymentProcessingService(
		f.payments,
		f.logs,
		f.gateway,
		f.store,
		f.locker,
		services.RetryPolicy{MaxAttempts: 3, Backoff: time.Millisecond},
		discardLogger(),
	)
}

// newUnprocessedPayment mirrors a caller-built payment whose status is not set yet.
func newUnprocessedPayment(t *testing.T) *domain.Payment {
	t.Helper()
	amount, err := domain.ParseMoney("100.00", "USD")
	require.NoError(t, err)

	now := time.Now().UTC().Add(-time.Second)
	return &domain.Payment{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		Amount:        amount,
		PaymentMethod: "credit_card",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func approved(raw string) *application.AuthorizationResult {
	return &application.AuthorizationResult{Approved: true, Reference: "gw-ref-1", RawResponse: raw}
}

func declined() *application.AuthorizationResult {
	return &application.AuthorizationResult{Approved: false, RawResponse: `{"success":false,"error_code":"card_declined"}`}
}

// ============================================================================
// PROCESS PAYMENT
// ============================================================================

func TestProcessPayment_ApprovedEndToEnd(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).Return(approved(`{"success":true}`), nil).Once()

	result, err := f.service.ProcessPayment(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Equal(t, p.ID, result.ID)
	assert.Equal(t, []int{100, 200}, f.logs.Codes(p.ID))

	stored, err := f.payments.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, stored.Status)
	assert.Equal(t, domain.StatusUnset, p.Status, "caller's payment must not be mutated")
}

func TestProcessPayment_Declined(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).Return(declined(), nil).Once()

	result, err := f.service.ProcessPayment(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, result.Status)
	assert.Equal(t, []int{100, 400}, f.logs.Codes(p.ID))
}

func TestProcessPayment_GatewaySeesPendingPayment(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)
	f.gateway.EXPECT().
		Authorize(mock.Anything, mock.MatchedBy(func(sent *domain.Payment) bool {
			return sent.ID == p.ID && sent.Status == domain.StatusPending
		})).
		Return(approved(""), nil).
		Once()

	_, err := f.service.ProcessPayment(context.Background(), p)

	require.NoError(t, err)
}

func TestProcessPayment_SanitizesGatewayResponse(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).
		Return(approved(`{"card":"4111111111111111","cvv":"123"}`), nil).Once()

	_, err := f.service.ProcessPayment(context.Background(), p)
	require.NoError(t, err)

	logs, err := f.logs.FindByPaymentID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, `{"card":"****-****-****-****","cvv":"***"}`, logs[1].GatewayResponse)
	assert.Equal(t, services.MsgProcessingSucceeded, logs[1].Message)
	assert.Equal(t, services.MsgProcessingInitiated, logs[0].Message)
}

func TestProcessPayment_ValidationPrecedesPersistence(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *domain.Payment)
		wantErr error
	}{
		{"missing order", func(p *domain.Payment) { p.OrderID = uuid.Nil }, domain.ErrMissingField},
		{"amount too large", func(p *domain.Payment) {
			p.Amount, _ = domain.ParseMoney("2000000", "USD")
		}, domain.ErrOutOfRange},
		{"unsupported method", func(p *domain.Payment) { p.PaymentMethod = "cheque" }, domain.ErrUnsupportedMethod},
		{"future timestamp", func(p *domain.Payment) {
			p.CreatedAt = time.Now().Add(time.Hour)
			p.UpdatedAt = p.CreatedAt
		}, domain.ErrInvalidTimestamp},
		{"already terminal", func(p *domain.Payment) { p.Status = domain.StatusSuccess }, domain.ErrTerminalState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProcessingFixture(t)
			p := newUnprocessedPayment(t)
			tt.mutate(p)

			_, err := f.service.ProcessPayment(context.Background(), p)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, application.IsRejection(err))
			assert.Zero(t, f.payments.SaveCalls())
			assert.Empty(t, f.logs.Codes(p.ID))
		})
	}
}

func TestProcessPayment_IdempotentReprocessing(t *testing.T) {
	f := newProcessingFixture(t)
	ctx := context.Background()
	first := newUnprocessedPayment(t)
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).Return(approved(""), nil).Once()

	firstResult, err := f.service.ProcessPayment(ctx, first)
	require.NoError(t, err)

	retry := first.Clone()
	retry.ID = uuid.New()

	secondResult, err := f.service.ProcessPayment(ctx, retry)

	require.NoError(t, err)
	assert.Equal(t, firstResult.ID, secondResult.ID)
	assert.Equal(t, domain.StatusSuccess, secondResult.Status)
	assert.Equal(t, 2, f.payments.SaveCalls(), "replay must not persist anything")
	assert.Empty(t, f.logs.Codes(retry.ID))
}

func TestProcessPayment_DifferentCreatedAtIsNotAReplay(t *testing.T) {
	f := newProcessingFixture(t)
	ctx := context.Background()
	first := newUnprocessedPayment(t)
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).Return(approved(""), nil).Twice()

	_, err := f.service.ProcessPayment(ctx, first)
	require.NoError(t, err)

	second := first.Clone()
	second.ID = uuid.New()
	second.CreatedAt = first.CreatedAt.Add(time.Millisecond)
	second.UpdatedAt = second.CreatedAt

	result, err := f.service.ProcessPayment(ctx, second)

	require.NoError(t, err)
	assert.Equal(t, second.ID, result.ID)
}

func TestProcessPayment_GatewayFailureLeavesPendingPayment(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).
		Return(nil, &application.GatewayError{Code: "internal_error", StatusCode: 503}).Once()

	_, err := f.service.ProcessPayment(context.Background(), p)

	require.Error(t, err)
	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeSystem, svcErr.Code)
	assert.False(t, application.IsRejection(err))
	_, isGateway := application.IsGatewayError(err)
	assert.True(t, isGateway)

	stored, err := f.payments.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Equal(t, []int{100}, f.logs.Codes(p.ID))

	_, found, err := f.store.Lookup(context.Background(), services.IdempotencyKey(p))
	require.NoError(t, err)
	assert.False(t, found, "partial failures must not be recorded as done")
}

func TestProcessPayment_RepositoryFailureIsSystemError(t *testing.T) {
	f := newProcessingFixture(t)
	f.payments.SaveFn = func(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
		return nil, errors.New("connection reset")
	}
	p := newUnprocessedPayment(t)

	_, err := f.service.ProcessPayment(context.Background(), p)

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeSystem, svcErr.Code)
	assert.Contains(t, err.Error(), p.ID.String())
}

func TestProcessPayment_RecordedKeyWithMissingPayment(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)
	require.NoError(t, f.store.Record(context.Background(), services.IdempotencyKey(p), uuid.New()))

	_, err := f.service.ProcessPayment(context.Background(), p)

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok, "a dangling idempotency record is a system error, got %v", err)
	assert.Equal(t, application.ErrCodeSystem, svcErr.Code)
	assert.False(t, errors.Is(err, domain.ErrPaymentNotFound))
	assert.Equal(t, application.CategoryInfrastructure, application.CategorizeError(err))
	assert.Equal(t, http.StatusServiceUnavailable, application.ToHTTPStatus(err))
	assert.Equal(t, application.ErrCodeSystem, application.ToErrorCode(err))
	assert.False(t, application.IsRejection(err))
	assert.Zero(t, f.payments.SaveCalls())
}

type failingStore struct {
	lookupErr error
	recordErr error
}

func (s failingStore) Lookup(context.Context, string) (uuid.UUID, bool, error) {
	return uuid.Nil, false, s.lookupErr
}

func (s failingStore) Record(context.Context, string, uuid.UUID) error {
	return s.recordErr
}

func TestProcessPayment_RecordFailureStillReturnsPayment(t *testing.T) {
	f := newProcessingFixture(t)
	f.store = failingStore{recordErr: errors.New("redis down")}
	f.rebuild()
	p := newUnprocessedPayment(t)
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).Return(approved(""), nil).Once()

	result, err := f.service.ProcessPayment(context.Background(), p)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, result.Status)
}

func TestProcessPayment_LookupFailureIsSystemError(t *testing.T) {
	f := newProcessingFixture(t)
	f.store = failingStore{lookupErr: errors.New("redis down")}
	f.rebuild()

	_, err := f.service.ProcessPayment(context.Background(), newUnprocessedPayment(t))

	_, ok := application.IsServiceError(err)
	assert.True(t, ok)
	assert.Zero(t, f.payments.SaveCalls())
}

func TestProcessPayment_CancelledWhileWaitingForLock(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)

	unlock, err := f.locker.Lock(context.Background(), p.ID.String())
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = f.service.ProcessPayment(ctx, p)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, f.payments.SaveCalls())
}

// ============================================================================
// UPDATE PAYMENT STATUS
// ============================================================================

func storedPendingPayment(t *testing.T, f *processingFixture) *domain.Payment {
	t.Helper()
	p := newUnprocessedPayment(t)
	p.Status = domain.StatusPending
	saved, err := f.payments.Save(context.Background(), p)
	require.NoError(t, err)
	return saved
}

func TestUpdatePaymentStatus(t *testing.T) {
	t.Run("pending to success", func(t *testing.T) {
		f := newProcessingFixture(t)
		p := storedPendingPayment(t, f)

		updated, err := f.service.UpdatePaymentStatus(context.Background(), p.ID, domain.StatusSuccess)

		require.NoError(t, err)
		assert.Equal(t, domain.StatusSuccess, updated.Status)
		assert.Equal(t, []int{200}, f.logs.Codes(p.ID))

		logs, _ := f.logs.FindByPaymentID(context.Background(), p.ID)
		assert.Equal(t, "Payment status updated to SUCCESS", logs[0].Message)
	})

	t.Run("pending to failure logs 400", func(t *testing.T) {
		f := newProcessingFixture(t)
		p := storedPendingPayment(t, f)

		_, err := f.service.UpdatePaymentStatus(context.Background(), p.ID, domain.StatusFailure)

		require.NoError(t, err)
		assert.Equal(t, []int{400}, f.logs.Codes(p.ID))
	})

	t.Run("pending to pending is rejected", func(t *testing.T) {
		f := newProcessingFixture(t)
		p := storedPendingPayment(t, f)

		_, err := f.service.UpdatePaymentStatus(context.Background(), p.ID, domain.StatusPending)

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Empty(t, f.logs.Codes(p.ID))
	})

	t.Run("unknown payment", func(t *testing.T) {
		f := newProcessingFixture(t)

		_, err := f.service.UpdatePaymentStatus(context.Background(), uuid.New(), domain.StatusSuccess)

		assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
	})

	t.Run("empty status", func(t *testing.T) {
		f := newProcessingFixture(t)
		p := storedPendingPayment(t, f)

		_, err := f.service.UpdatePaymentStatus(context.Background(), p.ID, domain.StatusUnset)

		assert.ErrorIs(t, err, domain.ErrNullStatus)
	})
}

func TestUpdatePaymentStatus_TerminalStateIsMonotonic(t *testing.T) {
	f := newProcessingFixture(t)
	ctx := context.Background()
	p := storedPendingPayment(t, f)

	_, err := f.service.UpdatePaymentStatus(ctx, p.ID, domain.StatusFailure)
	require.NoError(t, err)

	for _, next := range []domain.PaymentStatus{domain.StatusSuccess, domain.StatusPending, domain.StatusFailure} {
		_, err := f.service.UpdatePaymentStatus(ctx, p.ID, next)
		assert.ErrorIs(t, err, domain.ErrTerminalState)

		stored, err := f.payments.FindByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusFailure, stored.Status)
	}
	assert.Equal(t, []int{400}, f.logs.Codes(p.ID))
}

func TestUpdatePaymentStatus_RetriesConcurrentModification(t *testing.T) {
	f := newProcessingFixture(t)
	backing := mocks.NewMockPaymentRepository()
	p := newUnprocessedPayment(t)
	p.Status = domain.StatusPending
	saved, err := backing.Save(context.Background(), p)
	require.NoError(t, err)

	var attempts atomic.Int32
	f.payments.FindByIDFn = backing.FindByID
	f.payments.SaveFn = func(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
		if attempts.Add(1) == 1 {
			return nil, domain.NewConcurrentModificationError(p.ID.String(), nil)
		}
		return backing.Save(ctx, p)
	}

	updated, err := f.service.UpdatePaymentStatus(context.Background(), saved.ID, domain.StatusSuccess)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, updated.Status)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, []int{200}, f.logs.Codes(saved.ID))
}

func TestUpdatePaymentStatus_GivesUpAfterMaxAttempts(t *testing.T) {
	f := newProcessingFixture(t)
	p := storedPendingPayment(t, f)

	var attempts atomic.Int32
	f.payments.SaveFn = func(ctx context.Context, p *domain.Payment) (*domain.Payment, error) {
		attempts.Add(1)
		return nil, domain.NewConcurrentModificationError(p.ID.String(), nil)
	}

	_, err := f.service.UpdatePaymentStatus(context.Background(), p.ID, domain.StatusSuccess)

	assert.ErrorIs(t, err, domain.ErrConcurrentModification)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Empty(t, f.logs.Codes(p.ID))
}

// ============================================================================
// QUERIES
// ============================================================================

func TestGetPaymentDetails(t *testing.T) {
	f := newProcessingFixture(t)
	p := storedPendingPayment(t, f)

	got, err := f.service.GetPaymentDetails(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = f.service.GetPaymentDetails(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func TestTransactionLogs_UnknownPayment(t *testing.T) {
	f := newProcessingFixture(t)

	_, err := f.service.TransactionLogs(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

// ============================================================================
// CONCURRENCY
// ============================================================================

func TestProcessPayment_ConcurrentSamePaymentIsSerialized(t *testing.T) {
	f := newProcessingFixture(t)
	p := newUnprocessedPayment(t)

	// Every execution touches the repository while holding the payment lock:
	// the first one saves, the rest load the recorded payment.
	var holders, maxHolders, entries atomic.Int32
	enter := func() func() {
		entries.Add(1)
		n := holders.Add(1)
		for {
			cur := maxHolders.Load()
			if n <= cur || maxHolders.CompareAndSwap(cur, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		return func() { holders.Add(-1) }
	}
	backing := mocks.NewMockPaymentRepository()
	f.payments.SaveFn = func(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
		defer enter()()
		return backing.Save(ctx, payment)
	}
	f.payments.FindByIDFn = func(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
		defer enter()()
		return backing.FindByID(ctx, id)
	}
	f.gateway.EXPECT().Authorize(mock.Anything, mock.Anything).Return(approved(""), nil).Once()

	const numRequests = 10
	var wg sync.WaitGroup
	results := make(chan *domain.Payment, numRequests)
	errs := make(chan error, numRequests)

	for i := 0; i < numRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.service.ProcessPayment(context.Background(), p)
			if err != nil {
				errs <- err
				return
			}
			results <- result
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	count := 0
	for r := range results {
		count++
		assert.Equal(t, p.ID, r.ID)
		assert.Equal(t, domain.StatusSuccess, r.Status)
	}
	assert.Equal(t, numRequests, count)
	assert.GreaterOrEqual(t, entries.Load(), int32(numRequests))
	assert.Equal(t, int32(1), maxHolders.Load())
	assert.Equal(t, []int{100, 200}, f.logs.Codes(p.ID))
	assert.Equal(t, 0, f.locker.Len())
}

func TestUpdatePaymentStatus_ConcurrentUpdatesApplyOnce(t *testing.T) {
	f := newProcessingFixture(t)
	p := storedPendingPayment(t, f)

	const numRequests = 20
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		terminal  atomic.Int32
	)

	for i := 0; i < numRequests; i++ {
		target := domain.StatusSuccess
		if i%2 == 1 {
			target = domain.StatusFailure
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.UpdatePaymentStatus(context.Background(), p.ID, target)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, domain.ErrTerminalState):
				terminal.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(numRequests-1), terminal.Load())
	assert.Len(t, f.logs.Codes(p.ID), 1)
	assert.Equal(t, 0, f.locker.Len())
}
