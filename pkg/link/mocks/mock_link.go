package mocks

import (
	mock "github.com/stretchr/testify/mock"
)

// NewMockLink creates a new instance of MockLink. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockLink(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockLink {
	mock := &MockLink{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockLink is an autogenerated mock type for the Link type
type MockLink struct {
	mock.Mock
}

type MockLink_Expecter struct {
	mock *mock.Mock
}

func (_m *MockLink) EXPECT() *MockLink_Expecter {
	return &MockLink_Expecter{mock: &_m.Mock}
}

// IsConnected provides a mock function for the type MockLink
func (_mock *MockLink) IsConnected() bool {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for IsConnected")
	}

	var r0 bool
	if returnFunc, ok := ret.Get(0).(func() bool); ok {
		r0 = returnFunc()
	} else {
		r0 = ret.Get(0).(bool)
	}
	return r0
}

// MockLink_IsConnected_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'IsConnected'
type MockLink_IsConnected_Call struct {
	*mock.Call
}

// IsConnected is a helper method to define mock.On call
func (_e *MockLink_Expecter) IsConnected() *MockLink_IsConnected_Call {
	return &MockLink_IsConnected_Call{Call: _e.mock.On("IsConnected")}
}

func (_c *MockLink_IsConnected_Call) Run(run func()) *MockLink_IsConnected_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockLink_IsConnected_Call) Return(b bool) *MockLink_IsConnected_Call {
	_c.Call.Return(b)
	return _c
}

func (_c *MockLink_IsConnected_Call) RunAndReturn(run func() bool) *MockLink_IsConnected_Call {
	_c.Call.Return(run)
	return _c
}
