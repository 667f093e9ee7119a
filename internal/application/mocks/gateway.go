package mocks

import (
	"context"

	"github.com/DanielPopoola/ficmart-payment-core/internal/application"
	"github.com/DanielPopoola/ficmart-payment-core/internal/domain"
	mock "github.com/stretchr/testify/mock"
)

// MockGateway is a mock type for the application.Gateway type
type MockGateway struct {
	mock.Mock
}

type MockGateway_Expecter struct {
	mock *mock.Mock
}

func (_m *MockGateway) EXPECT() *MockGateway_Expecter {
	return &MockGateway_Expecter{mock: &_m.Mock}
}

// Authorize provides a mock function with given fields: ctx, payment
func (_m *MockGateway) Authorize(ctx context.Context, payment *domain.Payment) (*application.AuthorizationResult, error) {
	ret := _m.Called(ctx, payment)

	if len(ret) == 0 {
		panic("no return value specified for Authorize")
	}

	var r0 *application.AuthorizationResult
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Payment) (*application.AuthorizationResult, error)); ok {
		return rf(ctx, payment)
	}
	if rf, ok := ret.Get(0).(func(context.Context, *domain.Payment) *application.AuthorizationResult); ok {
		r0 = rf(ctx, payment)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*application.AuthorizationResult)
	}

	if rf, ok := ret.Get(1).(func(context.Context, *domain.Payment) error); ok {
		r1 = rf(ctx, payment)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

type MockGateway_Authorize_Call struct {
	*mock.Call
}

// Authorize is a helper method to define mock.On call
//   - ctx context.Context
//   - payment *domain.Payment
func (_e *MockGateway_Expecter) Authorize(ctx interface{}, payment interface{}) *MockGateway_Authorize_Call {
	return &MockGateway_Authorize_Call{Call: _e.mock.On("Authorize", ctx, payment)}
}

func (_c *MockGateway_Authorize_Call) Run(run func(ctx context.Context, payment *domain.Payment)) *MockGateway_Authorize_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(*domain.Payment))
	})
	return _c
}

func (_c *MockGateway_Authorize_Call) Return(result *application.AuthorizationResult, err error) *MockGateway_Authorize_Call {
	_c.Call.Return(result, err)
	return _c
}

func (_c *MockGateway_Authorize_Call) RunAndReturn(run func(context.Context, *domain.Payment) (*application.AuthorizationResult, error)) *MockGateway_Authorize_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockGateway creates a new instance of MockGateway. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockGateway(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockGateway {
	m := &MockGateway{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
