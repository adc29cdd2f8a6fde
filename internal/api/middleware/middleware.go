package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// quietPaths are only logged when they fail.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// levelFor logs server errors as errors and rejected carrier lookups as
// warnings.
func levelFor(status int) zerolog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zerolog.ErrorLevel
	case status >= http.StatusBadRequest:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}

func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lc := log.With().
			Str("correlation_id", CorrelationCtx(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path)
		if mccMnc := r.URL.Query().Get("mcc_mnc"); mccMnc != "" {
			lc = lc.Str("mcc_mnc", mccMnc)
		}
		l := lc.Logger()

		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(l.WithContext(r.Context())))

		if quietPaths[r.URL.Path] && rec.status < http.StatusBadRequest {
			return
		}
		l.WithLevel(levelFor(rec.status)).
			Int("status", rec.status).
			Int("bytes", rec.written).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request.handled")
	})
}

type panicResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// RecoverMiddleware turns a handler panic into a server_error response. It
// sits outside the correlation middleware, so the id is taken from the
// response header.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}
			id := w.Header().Get(CorrelationIDHeader)
			log.Error().
				Str("correlation_id", id).
				Str("path", r.URL.Path).
				Interface("panic", err).
				Bytes("stack", debug.Stack()).
				Msg("panic.recovered")

			if rec.wroteHeader {
				// too late for an error body
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(panicResponse{Error: "server_error", CorrelationID: id})
		}()
		next.ServeHTTP(rec, r)
	})
}

type responseRecorder struct {
	http.ResponseWriter
	status      int
	written     int
	wroteHeader bool
}

func (w *responseRecorder) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.written += n
	return n, err
}

func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
