package credentials

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Validation errors.
var (
	ErrEmpty           = errors.New("empty credentials")
	ErrMalformed       = errors.New("malformed credentials")
	ErrInvalidDeviceID = errors.New("invalid device id")
	ErrInvalidToken    = errors.New("invalid token")
)

// Length limits.
const (
	// MinDeviceIDLength is the shortest accepted device ID.
	MinDeviceIDLength = 10

	// MaxDeviceIDLength is the longest accepted device ID.
	MaxDeviceIDLength = 40

	// MinTokenLength is the shortest accepted token.
	MinTokenLength = 5

	// Separator splits the device ID from the token.
	Separator = ":"
)

// Bounds holds the inclusive device ID length range and the minimum token length.
type Bounds struct {
	MinDeviceID int
	MaxDeviceID int
	MinToken    int
}

// DefaultBounds returns the canonical length bounds.
func DefaultBounds() Bounds {
	return Bounds{
		MinDeviceID: MinDeviceIDLength,
		MaxDeviceID: MaxDeviceIDLength,
		MinToken:    MinTokenLength,
	}
}

// withDefaults fills zero fields from DefaultBounds.
func (b Bounds) withDefaults() Bounds {
	def := DefaultBounds()
	if b.MinDeviceID <= 0 {
		b.MinDeviceID = def.MinDeviceID
	}
	if b.MaxDeviceID <= 0 {
		b.MaxDeviceID = def.MaxDeviceID
	}
	if b.MinToken <= 0 {
		b.MinToken = def.MinToken
	}
	return b
}

// Credentials is a parsed device ID and bearer token pair.
type Credentials struct {
	DeviceID string
	Token    string
}

// Parse splits raw into device ID and token and validates their lengths.
// Zero fields in bounds fall back to DefaultBounds.
func Parse(raw string, bounds Bounds) (Credentials, error) {
	if raw == "" {
		return Credentials{}, ErrEmpty
	}

	idx := strings.Index(raw, Separator)
	if idx < 0 {
		return Credentials{}, fmt.Errorf("%w: missing %q separator", ErrMalformed, Separator)
	}
	if idx == 0 {
		return Credentials{}, fmt.Errorf("%w: empty device id", ErrMalformed)
	}

	b := bounds.withDefaults()
	deviceID := raw[:idx]
	token := raw[idx+len(Separator):]

	if n := len(deviceID); n < b.MinDeviceID || n > b.MaxDeviceID {
		return Credentials{}, fmt.Errorf("%w: length %d (expected %d-%d)", ErrInvalidDeviceID, n, b.MinDeviceID, b.MaxDeviceID)
	}
	if n := len(token); n < b.MinToken {
		return Credentials{}, fmt.Errorf("%w: length %d (expected >= %d)", ErrInvalidToken, n, b.MinToken)
	}

	return Credentials{DeviceID: deviceID, Token: token}, nil
}

// String returns the raw "deviceId:token" form.
func (c Credentials) String() string {
	return c.DeviceID + Separator + c.Token
}

// BearerValue returns the Authorization header value for the token.
func (c Credentials) BearerValue() string {
	return "Bearer " + c.Token
}

// Fingerprint returns a short, stable digest of the token that is safe to log.
func Fingerprint(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:4])
}
