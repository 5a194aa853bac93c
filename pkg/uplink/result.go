package uplink

// Result is the outcome of one uplink attempt.
type Result uint8

const (
	// ResultOK indicates the server accepted the heartbeat (2xx).
	ResultOK Result = iota

	// ResultNoLink indicates the device has no network link.
	ResultNoLink

	// ResultTimeNotReady indicates the clock is not yet trustworthy.
	ResultTimeNotReady

	// ResultEmptyCredentials indicates an empty credentials string.
	ResultEmptyCredentials

	// ResultMalformedCredentials indicates a missing separator or empty device ID.
	ResultMalformedCredentials

	// ResultInvalidDeviceID indicates a device ID of invalid length.
	ResultInvalidDeviceID

	// ResultInvalidToken indicates a token that is too short.
	ResultInvalidToken

	// ResultClientInitFailed indicates the connection could not be created.
	ResultClientInitFailed

	// ResultTransportError indicates the request got no response.
	ResultTransportError

	// ResultServerRejected indicates a non-2xx response.
	ResultServerRejected
)

var resultNames = [...]string{
	ResultOK:                   "OK",
	ResultNoLink:               "NO_LINK",
	ResultTimeNotReady:         "TIME_NOT_READY",
	ResultEmptyCredentials:     "EMPTY_CREDENTIALS",
	ResultMalformedCredentials: "MALFORMED_CREDENTIALS",
	ResultInvalidDeviceID:      "INVALID_DEVICE_ID",
	ResultInvalidToken:         "INVALID_TOKEN",
	ResultClientInitFailed:     "CLIENT_INIT_FAILED",
	ResultTransportError:       "TRANSPORT_ERROR",
	ResultServerRejected:       "SERVER_REJECTED",
}

// String returns the stable upper-case result name.
func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "UNKNOWN"
}

// Description returns a short human-readable explanation.
func (r Result) Description() string {
	switch r {
	case ResultOK:
		return "heartbeat sent successfully"
	case ResultNoLink:
		return "network link not connected"
	case ResultTimeNotReady:
		return "time sync not complete, retry shortly"
	case ResultEmptyCredentials:
		return "credentials are empty"
	case ResultMalformedCredentials:
		return "credentials format invalid, expected deviceId:token"
	case ResultInvalidDeviceID:
		return "device ID has invalid length"
	case ResultInvalidToken:
		return "token is too short"
	case ResultClientInitFailed:
		return "could not create connection"
	case ResultTransportError:
		return "request failed, connection will be rebuilt"
	case ResultServerRejected:
		return "server returned an error, check credentials"
	default:
		return "unknown result"
	}
}

// ParseResult maps a result name back to its value.
func ParseResult(name string) (Result, bool) {
	for i, n := range resultNames {
		if n == name {
			return Result(i), true
		}
	}
	return 0, false
}

// AllResults returns every result in declaration order.
func AllResults() []Result {
	out := make([]Result, len(resultNames))
	for i := range resultNames {
		out[i] = Result(i)
	}
	return out
}
