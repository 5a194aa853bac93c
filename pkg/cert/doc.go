// Package cert provides the certificate trust bundle used to verify the
// uplink endpoint.
//
// A Bundle yields the root CA pool handed to the TLS client. The system
// pool is the default; devices that ship their own CA list use a PEM file
// or embedded PEM bytes instead.
package cert
