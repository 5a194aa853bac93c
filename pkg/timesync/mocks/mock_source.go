package mocks

import (
	"time"

	mock "github.com/stretchr/testify/mock"
)

// NewMockSource creates a new instance of MockSource. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockSource(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSource {
	mock := &MockSource{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockSource is an autogenerated mock type for the Source type
type MockSource struct {
	mock.Mock
}

type MockSource_Expecter struct {
	mock *mock.Mock
}

func (_m *MockSource) EXPECT() *MockSource_Expecter {
	return &MockSource_Expecter{mock: &_m.Mock}
}

// Now provides a mock function for the type MockSource
func (_mock *MockSource) Now() time.Time {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for Now")
	}

	var r0 time.Time
	if returnFunc, ok := ret.Get(0).(func() time.Time); ok {
		r0 = returnFunc()
	} else {
		r0 = ret.Get(0).(time.Time)
	}
	return r0
}

// MockSource_Now_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Now'
type MockSource_Now_Call struct {
	*mock.Call
}

// Now is a helper method to define mock.On call
func (_e *MockSource_Expecter) Now() *MockSource_Now_Call {
	return &MockSource_Now_Call{Call: _e.mock.On("Now")}
}

func (_c *MockSource_Now_Call) Run(run func()) *MockSource_Now_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockSource_Now_Call) Return(time1 time.Time) *MockSource_Now_Call {
	_c.Call.Return(time1)
	return _c
}

func (_c *MockSource_Now_Call) RunAndReturn(run func() time.Time) *MockSource_Now_Call {
	_c.Call.Return(run)
	return _c
}

// StartSync provides a mock function for the type MockSource
func (_mock *MockSource) StartSync() error {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for StartSync")
	}

	var r0 error
	if returnFunc, ok := ret.Get(0).(func() error); ok {
		r0 = returnFunc()
	} else {
		r0 = ret.Error(0)
	}
	return r0
}

// MockSource_StartSync_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'StartSync'
type MockSource_StartSync_Call struct {
	*mock.Call
}

// StartSync is a helper method to define mock.On call
func (_e *MockSource_Expecter) StartSync() *MockSource_StartSync_Call {
	return &MockSource_StartSync_Call{Call: _e.mock.On("StartSync")}
}

func (_c *MockSource_StartSync_Call) Run(run func()) *MockSource_StartSync_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockSource_StartSync_Call) Return(err error) *MockSource_StartSync_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MockSource_StartSync_Call) RunAndReturn(run func() error) *MockSource_StartSync_Call {
	_c.Call.Return(run)
	return _c
}

// Synced provides a mock function for the type MockSource
func (_mock *MockSource) Synced() bool {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for Synced")
	}

	var r0 bool
	if returnFunc, ok := ret.Get(0).(func() bool); ok {
		r0 = returnFunc()
	} else {
		r0 = ret.Get(0).(bool)
	}
	return r0
}

// MockSource_Synced_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Synced'
type MockSource_Synced_Call struct {
	*mock.Call
}

// Synced is a helper method to define mock.On call
func (_e *MockSource_Expecter) Synced() *MockSource_Synced_Call {
	return &MockSource_Synced_Call{Call: _e.mock.On("Synced")}
}

func (_c *MockSource_Synced_Call) Run(run func()) *MockSource_Synced_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockSource_Synced_Call) Return(b bool) *MockSource_Synced_Call {
	_c.Call.Return(b)
	return _c
}

func (_c *MockSource_Synced_Call) RunAndReturn(run func() bool) *MockSource_Synced_Call {
	_c.Call.Return(run)
	return _c
}
