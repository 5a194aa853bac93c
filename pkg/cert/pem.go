package cert

import (
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// PEM decoding errors.
var (
	ErrInvalidPEM  = errors.New("invalid PEM data")
	ErrEmptyBundle = errors.New("bundle contains no certificates")
	ErrReadFile    = errors.New("failed to read file")
)

// EncodeCertPEM encodes an X.509 certificate to PEM format.
func EncodeCertPEM(cert *x509.Certificate) []byte {
	return pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert.Raw,
	})
}

// DecodeCertsPEM decodes every CERTIFICATE block in data.
// Blocks of other types are skipped.
func DecodeCertsPEM(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		c, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPEM, err)
		}
		certs = append(certs, c)
	}
	if len(certs) == 0 {
		return nil, ErrEmptyBundle
	}
	return certs, nil
}

// WriteBundleFile writes certificates as a PEM bundle.
func WriteBundleFile(path string, certs ...*x509.Certificate) error {
	var out []byte
	for _, c := range certs {
		out = append(out, EncodeCertPEM(c)...)
	}
	return os.WriteFile(path, out, 0644)
}
