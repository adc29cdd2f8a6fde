package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/darmiel/zenkey/internal/core"
)

type connectTimeoutKey struct{}

// HTTPTransport executes requests with net/http. The connect timeout of a
// request bounds the dial, the read timeout bounds everything after it.
type HTTPTransport struct {
	client *http.Client
}

var _ Transport = (*HTTPTransport)(nil)

func NewHTTPTransport() *HTTPTransport {
	dialer := &net.Dialer{KeepAlive: 30 * time.Second}
	rt := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if timeout, ok := ctx.Value(connectTimeoutKey{}).(time.Duration); ok && timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			return dialer.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPTransport{client: &http.Client{Transport: rt}}
}

// NewHTTPTransportWithClient uses the given client as is. Connect timeouts
// are only honoured if the client's transport dials through DialContext of
// this package, read timeouts always are.
func NewHTTPTransportWithClient(client *http.Client) *HTTPTransport {
	return &HTTPTransport{client: client}
}

// Client exposes the underlying client, e.g. for the oauth2 token exchange.
func (t *HTTPTransport) Client() *http.Client {
	return t.client
}

func (t *HTTPTransport) Execute(ctx context.Context, req *Request) (*Response, error) {
	ctx = context.WithValue(ctx, connectTimeoutKey{}, req.ConnectTimeout)
	if total := req.ConnectTimeout + req.ReadTimeout; total > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, total)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), nil)
	if err != nil {
		return nil, &core.MalformedEndpointError{Endpoint: req.URL.String(), Err: err}
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, &core.TransportError{Op: req.Method, URL: req.URL.String(), Err: err}
	}
	defer func(body io.ReadCloser) {
		_ = body.Close()
	}(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, &core.TransportError{Op: "read body", URL: req.URL.String(), Err: err}
	}
	if len(body) > MaxBodySize {
		return nil, &core.TransportError{
			Op:  "read body",
			URL: req.URL.String(),
			Err: fmt.Errorf("body exceeds %d bytes", MaxBodySize),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var te *core.TransportError
	if errors.As(err, &te) {
		return te.Timeout() || errors.Is(te.Err, context.DeadlineExceeded)
	}
	return false
}
