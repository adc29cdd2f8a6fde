package middleware

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts and times requests per handler.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zenkey",
			Subsystem: "sandbox",
			Name:      "requests_total",
			Help:      "Requests served by the sandbox carrier, by handler and status code.",
		}, []string{"handler", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "zenkey",
			Subsystem: "sandbox",
			Name:      "request_duration_seconds",
			Help:      "Latency of requests served by the sandbox carrier.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler"}),
	}
	var err error
	if m.requests, err = reuse(reg, m.requests); err != nil {
		return nil, err
	}
	if m.duration, err = reuse(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// reuse registers c or returns the identical collector registered before.
func reuse[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
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

// Instrument wraps h so its requests are recorded under name.
func (m *Metrics) Instrument(name string, h http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": name}
	return promhttp.InstrumentHandlerDuration(
		m.duration.MustCurryWith(labels),
		promhttp.InstrumentHandlerCounter(m.requests.MustCurryWith(labels), h),
	)
}
