// Package credentials parses and validates uplink device credentials.
//
// Credentials are a single opaque string of the form:
//
//	<deviceId>:<token>
//
// The first ':' separates the device ID from the token; the token itself
// may contain further ':' characters. Only lengths are validated here.
// The server enforces stricter rules on both parts.
//
// # Bounds
//
//   - Device ID: 10 to 40 characters inclusive (DefaultBounds)
//   - Token: at least 5 characters
package credentials
