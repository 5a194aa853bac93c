package cert

import (
	"crypto/x509"
	"fmt"
	"os"
)

// Bundle provides the pool of trusted root certificates.
type Bundle interface {
	// CertPool returns the roots used to verify the server.
	CertPool() (*x509.CertPool, error)
}

// SystemBundle trusts the host's root certificates.
type SystemBundle struct{}

// CertPool returns the system certificate pool.
func (SystemBundle) CertPool() (*x509.CertPool, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("system cert pool: %w", err)
	}
	return pool, nil
}

// FileBundle trusts the certificates in a PEM file.
// The file is read on every CertPool call so that a rotated bundle is
// picked up when the next connection is created.
type FileBundle struct {
	Path string
}

// CertPool reads and parses the bundle file.
func (b FileBundle) CertPool() (*x509.CertPool, error) {
	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadFile, b.Path, err)
	}
	return PEMBundle(data).CertPool()
}

// PEMBundle trusts the certificates in PEM-encoded bytes, e.g. an
// embedded CA list.
type PEMBundle []byte

// CertPool parses the PEM data.
func (b PEMBundle) CertPool() (*x509.CertPool, error) {
	certs, err := DecodeCertsPEM(b)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool, nil
}

// PoolBundle wraps an existing pool.
type PoolBundle struct {
	Pool *x509.CertPool
}

// CertPool returns the wrapped pool.
func (b PoolBundle) CertPool() (*x509.CertPool, error) {
	if b.Pool == nil {
		return nil, ErrEmptyBundle
	}
	return b.Pool, nil
}

var (
	_ Bundle = SystemBundle{}
	_ Bundle = FileBundle{}
	_ Bundle = PEMBundle(nil)
	_ Bundle = PoolBundle{}
)
