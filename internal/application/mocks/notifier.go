package mocks

import (
	"context"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	mock "github.com/stretchr/testify/mock"
)

// MockNotifier is a mock type for the application.Notifier type
type MockNotifier struct {
	mock.Mock
}

type MockNotifier_Expecter struct {
	mock *mock.Mock
}

func (_m *MockNotifier) EXPECT() *MockNotifier_Expecter {
	return &MockNotifier_Expecter{mock: &_m.Mock}
}

// NotifyOutcome provides a mock function with given fields: ctx, outcome
func (_m *MockNotifier) NotifyOutcome(ctx context.Context, outcome application.Outcome) error {
	ret := _m.Called(ctx, outcome)

	if len(ret) == 0 {
		panic("no return value specified for NotifyOutcome")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, application.Outcome) error); ok {
		r0 = rf(ctx, outcome)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

type MockNotifier_NotifyOutcome_Call struct {
	*mock.Call
}

// NotifyOutcome is a helper method to define mock.On call
//   - ctx context.Context
//   - outcome application.Outcome
func (_e *MockNotifier_Expecter) NotifyOutcome(ctx interface{}, outcome interface{}) *MockNotifier_NotifyOutcome_Call {
	return &MockNotifier_NotifyOutcome_Call{Call: _e.mock.On("NotifyOutcome", ctx, outcome)}
}

func (_c *MockNotifier_NotifyOutcome_Call) Run(run func(ctx context.Context, outcome application.Outcome)) *MockNotifier_NotifyOutcome_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(application.Outcome))
	})
	return _c
}

func (_c *MockNotifier_NotifyOutcome_Call) Return(err error) *MockNotifier_NotifyOutcome_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MockNotifier_NotifyOutcome_Call) RunAndReturn(run func(context.Context, application.Outcome) error) *MockNotifier_NotifyOutcome_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockNotifier creates a new instance of MockNotifier. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockNotifier(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockNotifier {
	m := &MockNotifier{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
