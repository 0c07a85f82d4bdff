package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// routeUnmatched labels requests that matched no registered pattern, so
// path scans cannot mint unbounded label values.
const routeUnmatched = "unmatched"

// Middleware returns an HTTP middleware that records request metrics,
// labeled by the mux pattern the request matched.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(recorder, r)

		// The mux fills r.Pattern during dispatch; it is empty when no
		// route matched.
		route := r.Pattern
		if route == "" {
			route = routeUnmatched
		}
		RecordRequest(route, strconv.Itoa(recorder.statusCode), time.Since(start))
	})
}
