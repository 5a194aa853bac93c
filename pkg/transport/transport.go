package transport

import (
	"context"
	"errors"
	"time"

	"github.com/weareqrystal/uplink-sdks/pkg/cert"
)

// Transport errors.
var (
	ErrClosed         = errors.New("handle closed")
	ErrInvalidURL     = errors.New("invalid endpoint URL")
	ErrInsecureScheme = errors.New("endpoint must use https")
)

// DefaultTimeout bounds one request including connection setup.
const DefaultTimeout = 30 * time.Second

// Handle is a reusable connection bound to a fixed method and URL.
// A Handle is not safe for concurrent Perform calls.
type Handle interface {
	// SetHeader sets a header sent with every subsequent request.
	SetHeader(key, value string)

	// Perform sends one request and returns the HTTP status code.
	// A non-nil error means no response was received.
	Perform(ctx context.Context, body []byte, contentType string) (int, error)

	// Close tears down the connection. Further Perform calls fail with ErrClosed.
	Close() error
}

// Factory creates handles.
type Factory interface {
	Open(opts Options) (Handle, error)
}

// Options configures a Handle.
type Options struct {
	// URL is the absolute https endpoint.
	URL string

	// Method defaults to POST.
	Method string

	// KeepAlive configures TCP keep-alive probing. Nil disables probing.
	KeepAlive *KeepAliveConfig

	// Bundle provides trusted roots. Nil uses the system pool.
	Bundle cert.Bundle

	// Timeout bounds one request. Zero uses DefaultTimeout.
	Timeout time.Duration

	// InsecureSkipVerify disables certificate verification.
	// Only for testing - never use in production!
	InsecureSkipVerify bool
}
