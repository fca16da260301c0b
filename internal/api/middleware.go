package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"fleet-route-service/internal/platform/metrics"
	"fleet-route-service/internal/platform/obs"
)

// statusWriter captures the final HTTP status code and number of bytes written.
// This helps distinguish "handler returned 200" from "client received a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware tags each request with an id, logs end-to-end
// duration and response size, and feeds the request counter. The
// counter is labelled with the mux's matched pattern, not the raw URL
// path, to keep label cardinality bounded.
func loggingMiddleware(mux *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := uuid.NewString()
		r = r.WithContext(context.WithValue(r.Context(), obs.RequestIDKey, reqID))

		sw := &statusWriter{
			ResponseWriter: w,
			status:         0,
		}

		mux.ServeHTTP(sw, r)

		duration := time.Since(start).Milliseconds()

		_, pattern := mux.Handler(r)
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()

		log.Printf(
			"req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
			reqID, r.Method, r.URL.RequestURI(), sw.status, sw.bytes, duration,
		)
	})
}
