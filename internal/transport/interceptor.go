package transport

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Interceptor wraps a Transport, e.g. to add headers or logging.
type Interceptor func(next Transport) Transport

// Chain wraps t with the interceptors. The first interceptor is the outermost.
func Chain(t Transport, interceptors ...Interceptor) Transport {
	for i := len(interceptors) - 1; i >= 0; i-- {
		t = interceptors[i](t)
	}
	return t
}

// WithHeader sets a static header on every request that does not set it yet.
func WithHeader(key, value string) Interceptor {
	return func(next Transport) Transport {
		return Func(func(ctx context.Context, req *Request) (*Response, error) {
			if req.Header == nil {
				req.Header = make(http.Header)
			}
			if req.Header.Get(key) == "" {
				req.Header.Set(key, value)
			}
			return next.Execute(ctx, req)
		})
	}
}

// WithLogging logs every request and its outcome on debug level.
func WithLogging(logger zerolog.Logger) Interceptor {
	return func(next Transport) Transport {
		return Func(func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			l := logger.With().
				Str("method", req.Method).
				Str("url", req.URL.String()).
				Logger()

			l.Debug().Msg("request.sent")
			resp, err := next.Execute(ctx, req)
			if err != nil {
				l.Debug().Err(err).Dur("duration", time.Since(start)).Msg("request.failed")
				return nil, err
			}
			l.Debug().
				Int("status", resp.StatusCode).
				Int("bytes", len(resp.Body)).
				Dur("duration", time.Since(start)).
				Msg("request.completed")
			return resp, nil
		})
	}
}

// Metrics holds the collectors used by WithMetrics.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the transport collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zenkey",
		Subsystem: "transport",
		Name:      "requests_total",
		Help:      "Outbound requests by host and outcome.",
	}, []string{"host", "outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "zenkey",
		Subsystem: "transport",
		Name:      "request_duration_seconds",
		Help:      "Outbound request latency by host.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"host"}))
	if err != nil {
		return nil, err
	}
	return &Metrics{requests: requests, duration: duration}, nil
}

// register registers c, or returns the collector registered before it.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// WithMetrics records request counts and latencies. Outcome is the status
// code, or "error" for transport failures.
func WithMetrics(m *Metrics) Interceptor {
	return func(next Transport) Transport {
		return Func(func(ctx context.Context, req *Request) (*Response, error) {
			start := time.Now()
			resp, err := next.Execute(ctx, req)
			host := req.URL.Host
			m.duration.WithLabelValues(host).Observe(time.Since(start).Seconds())
			if err != nil {
				m.requests.WithLabelValues(host, "error").Inc()
				return nil, err
			}
			m.requests.WithLabelValues(host, strconv.Itoa(resp.StatusCode)).Inc()
			return resp, nil
		})
	}
}
