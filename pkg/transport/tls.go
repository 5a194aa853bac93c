package transport

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
)

// TLSConfig holds configuration for uplink TLS connections.
type TLSConfig struct {
	// RootCAs is the pool of trusted CA certificates.
	RootCAs *x509.CertPool

	// ServerName is the expected server name. Empty derives it from the URL.
	ServerName string

	// InsecureSkipVerify disables certificate verification.
	// Only for testing - never use in production!
	InsecureSkipVerify bool
}

// NewClientTLSConfig creates a TLS configuration for the uplink client.
func NewClientTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("TLSConfig is required")
	}
	if cfg.RootCAs == nil && !cfg.InsecureSkipVerify {
		return nil, fmt.Errorf("root CA pool is required")
	}

	return &tls.Config{
		// TLS 1.2 minimum.
		MinVersion: tls.VersionTLS12,

		RootCAs:    cfg.RootCAs,
		ServerName: cfg.ServerName,

		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},

		// For testing only
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, nil
}
