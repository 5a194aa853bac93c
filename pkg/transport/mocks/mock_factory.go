package mocks

import (
	mock "github.com/stretchr/testify/mock"
	"github.com/weareqrystal/uplink-sdks/pkg/transport"
)

// NewMockFactory creates a new instance of MockFactory. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockFactory(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockFactory {
	mock := &MockFactory{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockFactory is an autogenerated mock type for the Factory type
type MockFactory struct {
	mock.Mock
}

type MockFactory_Expecter struct {
	mock *mock.Mock
}

func (_m *MockFactory) EXPECT() *MockFactory_Expecter {
	return &MockFactory_Expecter{mock: &_m.Mock}
}

// Open provides a mock function for the type MockFactory
func (_mock *MockFactory) Open(opts transport.Options) (transport.Handle, error) {
	ret := _mock.Called(opts)

	if len(ret) == 0 {
		panic("no return value specified for Open")
	}

	var r0 transport.Handle
	var r1 error
	if returnFunc, ok := ret.Get(0).(func(transport.Options) (transport.Handle, error)); ok {
		return returnFunc(opts)
	}
	if returnFunc, ok := ret.Get(0).(func(transport.Options) transport.Handle); ok {
		r0 = returnFunc(opts)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(transport.Handle)
		}
	}
	if returnFunc, ok := ret.Get(1).(func(transport.Options) error); ok {
		r1 = returnFunc(opts)
	} else {
		r1 = ret.Error(1)
	}
	return r0, r1
}

// MockFactory_Open_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Open'
type MockFactory_Open_Call struct {
	*mock.Call
}

// Open is a helper method to define mock.On call
//   - opts transport.Options
func (_e *MockFactory_Expecter) Open(opts interface{}) *MockFactory_Open_Call {
	return &MockFactory_Open_Call{Call: _e.mock.On("Open", opts)}
}

func (_c *MockFactory_Open_Call) Run(run func(opts transport.Options)) *MockFactory_Open_Call {
	_c.Call.Run(func(args mock.Arguments) {
		var arg0 transport.Options
		if args[0] != nil {
			arg0 = args[0].(transport.Options)
		}
		run(
			arg0,
		)
	})
	return _c
}

func (_c *MockFactory_Open_Call) Return(handle transport.Handle, err error) *MockFactory_Open_Call {
	_c.Call.Return(handle, err)
	return _c
}

func (_c *MockFactory_Open_Call) RunAndReturn(run func(opts transport.Options) (transport.Handle, error)) *MockFactory_Open_Call {
	_c.Call.Return(run)
	return _c
}
