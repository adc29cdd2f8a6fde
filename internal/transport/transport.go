package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/darmiel/zenkey/internal/core"
)

const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second

	// MaxBodySize bounds how much of a response body is read.
	MaxBodySize = 1 << 20
)

// Transport executes requests. All network operations of the discovery and
// verification code run over this interface.
type Transport interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// Func adapts a function to the Transport interface.
type Func func(ctx context.Context, req *Request) (*Response, error)

func (f Func) Execute(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Request describes an outbound call. Build it with NewRequest.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

// Response is a fully read response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type RequestOption func(*Request)

// WithTimeouts overrides the default timeouts. Zero values keep the default.
func WithTimeouts(connect, read time.Duration) RequestOption {
	return func(r *Request) {
		if connect > 0 {
			r.ConnectTimeout = connect
		}
		if read > 0 {
			r.ReadTimeout = read
		}
	}
}

// WithQuery adds a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(r *Request) {
		q := r.URL.Query()
		q.Add(key, value)
		r.URL.RawQuery = q.Encode()
	}
}

// WithRequestHeader sets a header on the request.
func WithRequestHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.Header.Set(key, value)
	}
}

// NewRequest builds a request for rawURL, which must be an absolute URL.
func NewRequest(method, rawURL string, opts ...RequestOption) (*Request, error) {
	u, err := ParseAbsolute(rawURL)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Method:         method,
		URL:            u,
		Header:         make(http.Header),
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(req)
	}
	return req, nil
}

// Get is shorthand for NewRequest(http.MethodGet, ...).
func Get(rawURL string, opts ...RequestOption) (*Request, error) {
	return NewRequest(http.MethodGet, rawURL, opts...)
}

// ParseAbsolute parses rawURL and requires a scheme and a host.
func ParseAbsolute(rawURL string) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &core.MalformedEndpointError{Endpoint: rawURL, Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &core.MalformedEndpointError{
			Endpoint: rawURL,
			Err:      fmt.Errorf("url must be absolute"),
		}
	}
	return u, nil
}
