package transport

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// RoundTripper applies the behaviour of WithHeader and WithLogging to a plain
// http.Client, for libraries such as oauth2 that need one.
type RoundTripper struct {
	Next   http.RoundTripper
	Header http.Header
	Logger *zerolog.Logger
}

var _ http.RoundTripper = (*RoundTripper)(nil)

func (t *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}

	// a RoundTripper must not modify the caller's request
	req = req.Clone(req.Context())
	for key, values := range t.Header {
		if req.Header.Get(key) != "" {
			continue
		}
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if t.Logger == nil {
		return next.RoundTrip(req)
	}

	start := time.Now()
	l := t.Logger.With().
		Str("method", req.Method).
		Str("url", req.URL.String()).
		Logger()

	l.Debug().Msg("request.sent")
	resp, err := next.RoundTrip(req)
	if err != nil {
		l.Debug().Err(err).Dur("duration", time.Since(start)).Msg("request.failed")
		return nil, err
	}
	l.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request.completed")
	return resp, nil
}
