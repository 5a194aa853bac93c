package log

import (
	"time"
)

// Event is a single captured uplink event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the connection handle epoch (UUID).
	// Empty when no connection existed.
	ConnectionID string `cbor:"2,keyasint,omitempty"`

	// Category classifies the event.
	Category Category `cbor:"3,keyasint"`

	// DeviceID is the device identifier of the credentials in use.
	DeviceID string `cbor:"4,keyasint,omitempty"`

	// RunID identifies the background scheduler run, if any.
	RunID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Attempt     *AttemptEvent     `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryAttempt indicates an uplink attempt.
	CategoryAttempt Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryAttempt:
		return "ATTEMPT"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Stage names the step of the uplink pipeline an event relates to.
type Stage uint8

const (
	StageLink Stage = iota
	StageTime
	StageCredentials
	StageConnection
	StageRequest
	StageScheduler
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageLink:
		return "LINK"
	case StageTime:
		return "TIME"
	case StageCredentials:
		return "CREDENTIALS"
	case StageConnection:
		return "CONNECTION"
	case StageRequest:
		return "REQUEST"
	case StageScheduler:
		return "SCHEDULER"
	default:
		return "UNKNOWN"
	}
}

// AttemptEvent captures one uplink attempt.
type AttemptEvent struct {
	// Result is the outcome name (e.g. "OK", "TIME_NOT_READY").
	Result string `cbor:"1,keyasint"`

	// Stage is the pipeline step that produced the result.
	Stage Stage `cbor:"2,keyasint"`

	// StatusCode is the HTTP status, zero when no response was received.
	StatusCode int `cbor:"3,keyasint,omitempty"`

	// Duration is the wall time of the attempt, stored as nanoseconds.
	Duration time.Duration `cbor:"4,keyasint"`

	// PayloadSize is the request body size in bytes.
	PayloadSize int `cbor:"5,keyasint,omitempty"`

	// Reused is true when the attempt ran over an existing connection handle.
	Reused bool `cbor:"6,keyasint,omitempty"`
}

// StateChangeEvent captures a lifecycle transition.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection cache change.
	StateEntityConnection StateEntity = 0
	// StateEntityTimeSync indicates a time sync gate change.
	StateEntityTimeSync StateEntity = 1
	// StateEntityScheduler indicates a background scheduler change.
	StateEntityScheduler StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityTimeSync:
		return "TIME_SYNC"
	case StateEntityScheduler:
		return "SCHEDULER"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures an error at any stage.
type ErrorEventData struct {
	// Stage where the error occurred.
	Stage Stage `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Stale is set for transport errors that look like a peer closing an
	// idle keep-alive connection.
	Stale bool `cbor:"3,keyasint,omitempty"`
}

// NewStateChange builds a state event stamped with the current time.
func NewStateChange(entity StateEntity, oldState, newState, reason string) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewError builds an error event stamped with the current time.
func NewError(stage Stage, err error, stale bool) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  CategoryError,
		Error: &ErrorEventData{
			Stage:   stage,
			Message: err.Error(),
			Stale:   stale,
		},
	}
}
