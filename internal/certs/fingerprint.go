// Package certs derives signing certificate fingerprints of the local
// application, in the format used by Digital Asset Links.
package certs

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/darmiel/zenkey/internal/core"
)

// PublicKeyOf parses signature as a DER encoded X.509 certificate and returns
// the SHA-256 digest of its encoded form.
func PublicKeyOf(signature []byte) ([]byte, error) {
	if len(signature) == 0 {
		return nil, &core.CertificateError{Err: fmt.Errorf("empty certificate")}
	}
	cert, err := x509.ParseCertificate(signature)
	if err != nil {
		return nil, &core.CertificateError{Err: err}
	}
	digest := sha256.Sum256(cert.Raw)
	return digest[:], nil
}

// FingerprintOf returns the formatted SHA-256 fingerprint of a certificate.
func FingerprintOf(signature []byte) (string, error) {
	digest, err := PublicKeyOf(signature)
	if err != nil {
		return "", err
	}
	return Format(digest), nil
}

// Format renders b as uppercase hex pairs joined by ':'.
func Format(b []byte) string {
	pairs := make([]string, len(b))
	for i := range b {
		pairs[i] = strings.ToUpper(hex.EncodeToString(b[i : i+1]))
	}
	return strings.Join(pairs, ":")
}
