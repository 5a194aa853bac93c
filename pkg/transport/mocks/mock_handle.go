package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"
)

// NewMockHandle creates a new instance of MockHandle. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockHandle(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockHandle {
	mock := &MockHandle{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockHandle is an autogenerated mock type for the Handle type
type MockHandle struct {
	mock.Mock
}

type MockHandle_Expecter struct {
	mock *mock.Mock
}

func (_m *MockHandle) EXPECT() *MockHandle_Expecter {
	return &MockHandle_Expecter{mock: &_m.Mock}
}

// Close provides a mock function for the type MockHandle
func (_mock *MockHandle) Close() error {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	var r0 error
	if returnFunc, ok := ret.Get(0).(func() error); ok {
		r0 = returnFunc()
	} else {
		r0 = ret.Error(0)
	}
	return r0
}

// MockHandle_Close_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Close'
type MockHandle_Close_Call struct {
	*mock.Call
}

// Close is a helper method to define mock.On call
func (_e *MockHandle_Expecter) Close() *MockHandle_Close_Call {
	return &MockHandle_Close_Call{Call: _e.mock.On("Close")}
}

func (_c *MockHandle_Close_Call) Run(run func()) *MockHandle_Close_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockHandle_Close_Call) Return(err error) *MockHandle_Close_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MockHandle_Close_Call) RunAndReturn(run func() error) *MockHandle_Close_Call {
	_c.Call.Return(run)
	return _c
}

// Perform provides a mock function for the type MockHandle
func (_mock *MockHandle) Perform(ctx context.Context, body []byte, contentType string) (int, error) {
	ret := _mock.Called(ctx, body, contentType)

	if len(ret) == 0 {
		panic("no return value specified for Perform")
	}

	var r0 int
	var r1 error
	if returnFunc, ok := ret.Get(0).(func(context.Context, []byte, string) (int, error)); ok {
		return returnFunc(ctx, body, contentType)
	}
	if returnFunc, ok := ret.Get(0).(func(context.Context, []byte, string) int); ok {
		r0 = returnFunc(ctx, body, contentType)
	} else {
		r0 = ret.Get(0).(int)
	}
	if returnFunc, ok := ret.Get(1).(func(context.Context, []byte, string) error); ok {
		r1 = returnFunc(ctx, body, contentType)
	} else {
		r1 = ret.Error(1)
	}
	return r0, r1
}

// MockHandle_Perform_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Perform'
type MockHandle_Perform_Call struct {
	*mock.Call
}

// Perform is a helper method to define mock.On call
//   - ctx context.Context
//   - body []byte
//   - contentType string
func (_e *MockHandle_Expecter) Perform(ctx interface{}, body interface{}, contentType interface{}) *MockHandle_Perform_Call {
	return &MockHandle_Perform_Call{Call: _e.mock.On("Perform", ctx, body, contentType)}
}

func (_c *MockHandle_Perform_Call) Run(run func(ctx context.Context, body []byte, contentType string)) *MockHandle_Perform_Call {
	_c.Call.Run(func(args mock.Arguments) {
		var arg0 context.Context
		if args[0] != nil {
			arg0 = args[0].(context.Context)
		}
		var arg1 []byte
		if args[1] != nil {
			arg1 = args[1].([]byte)
		}
		var arg2 string
		if args[2] != nil {
			arg2 = args[2].(string)
		}
		run(
			arg0,
			arg1,
			arg2,
		)
	})
	return _c
}

func (_c *MockHandle_Perform_Call) Return(n int, err error) *MockHandle_Perform_Call {
	_c.Call.Return(n, err)
	return _c
}

func (_c *MockHandle_Perform_Call) RunAndReturn(run func(ctx context.Context, body []byte, contentType string) (int, error)) *MockHandle_Perform_Call {
	_c.Call.Return(run)
	return _c
}

// SetHeader provides a mock function for the type MockHandle
func (_mock *MockHandle) SetHeader(key string, value string) {
	_mock.Called(key, value)
	return
}

// MockHandle_SetHeader_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'SetHeader'
type MockHandle_SetHeader_Call struct {
	*mock.Call
}

// SetHeader is a helper method to define mock.On call
//   - key string
//   - value string
func (_e *MockHandle_Expecter) SetHeader(key interface{}, value interface{}) *MockHandle_SetHeader_Call {
	return &MockHandle_SetHeader_Call{Call: _e.mock.On("SetHeader", key, value)}
}

func (_c *MockHandle_SetHeader_Call) Run(run func(key string, value string)) *MockHandle_SetHeader_Call {
	_c.Call.Run(func(args mock.Arguments) {
		var arg0 string
		if args[0] != nil {
			arg0 = args[0].(string)
		}
		var arg1 string
		if args[1] != nil {
			arg1 = args[1].(string)
		}
		run(
			arg0,
			arg1,
		)
	})
	return _c
}

func (_c *MockHandle_SetHeader_Call) Return() *MockHandle_SetHeader_Call {
	_c.Call.Return()
	return _c
}

func (_c *MockHandle_SetHeader_Call) RunAndReturn(run func(key string, value string)) *MockHandle_SetHeader_Call {
	_c.Run(run)
	return _c
}
