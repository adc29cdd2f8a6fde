package core

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches any TransportError.
	ErrTransport = errors.New("transport error")
	// ErrMalformedEndpoint matches any MalformedEndpointError.
	ErrMalformedEndpoint = errors.New("malformed endpoint")
	// ErrMalformedResponse matches any MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrCertificate matches any CertificateError.
	ErrCertificate = errors.New("certificate error")
)

// TransportError is an I/O level failure: dial, timeout, connection reset or
// a failure while reading the response body.
type TransportError struct {
	Op  string
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Timeout reports whether the underlying failure was a timeout.
func (e *TransportError) Timeout() bool {
	var t interface{ Timeout() bool }
	return errors.As(e.Err, &t) && t.Timeout()
}

// MalformedEndpointError is returned before any request is sent, when an
// endpoint URL cannot be built.
type MalformedEndpointError struct {
	Endpoint string
	Err      error
}

func (e *MalformedEndpointError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed endpoint '%s'", e.Endpoint)
	}
	return fmt.Sprintf("malformed endpoint '%s': %v", e.Endpoint, e.Err)
}

func (e *MalformedEndpointError) Unwrap() error {
	return e.Err
}

func (e *MalformedEndpointError) Is(target error) bool {
	return target == ErrMalformedEndpoint
}

// MalformedResponseError is returned when a response body does not have the
// expected shape. StatusCode is 0 if the error is not tied to a response.
type MalformedResponseError struct {
	StatusCode int
	Err        error
}

func (e *MalformedResponseError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("malformed response: %v", e.Err)
	}
	return fmt.Sprintf("malformed response (status %d): %v", e.StatusCode, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// CertificateError is returned when signing certificate bytes cannot be
// parsed or digested.
type CertificateError struct {
	Err error
}

func (e *CertificateError) Error() string {
	return fmt.Sprintf("invalid certificate: %v", e.Err)
}

func (e *CertificateError) Unwrap() error {
	return e.Err
}

func (e *CertificateError) Is(target error) bool {
	return target == ErrCertificate
}
