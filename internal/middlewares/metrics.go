package middlewares

import (
	"expvar"
	"net/http"
	"strconv"
	"time"
)

// expvar panics on duplicate names, so the counters are registered once per
// process no matter how many routers are built.
var (
	totalRequestsReceived           = expvar.NewInt("total_requests_received")
	totalResponsesSent              = expvar.NewInt("total_responses_sent")
	totalBytesSent                  = expvar.NewInt("total_bytes_sent")
	totalProcessingTimeMicroseconds = expvar.NewInt("total_processing_time_micro_sec")
	totalResponsesSentByStatus      = expvar.NewMap("total_responses_sent_by_status")
)

// metricsResponseWriter wraps an http.ResponseWriter and records the status
// code and the number of body bytes written.
type metricsResponseWriter struct {
	wrapped       http.ResponseWriter
	statusCode    int
	bytesWritten  int64
	headerWritten bool
}

func newMetricsResponseWriter(w http.ResponseWriter) *metricsResponseWriter {
	return &metricsResponseWriter{
		wrapped:    w,
		statusCode: http.StatusOK,
	}
}

func (mw *metricsResponseWriter) Header() http.Header {
	return mw.wrapped.Header()
}

// WriteHeader records only the first status code, matching what the client sees.
func (mw *metricsResponseWriter) WriteHeader(statusCode int) {
	mw.wrapped.WriteHeader(statusCode)
	if !mw.headerWritten {
		mw.statusCode = statusCode
		mw.headerWritten = true
	}
}

func (mw *metricsResponseWriter) Write(b []byte) (int, error) {
	mw.headerWritten = true
	n, err := mw.wrapped.Write(b)
	mw.bytesWritten += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (mw *metricsResponseWriter) Unwrap() http.ResponseWriter {
	return mw.wrapped
}

// Metrics publishes request counts, status codes, bytes sent and processing time via expvar.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		totalRequestsReceived.Add(1)
		mw := newMetricsResponseWriter(w)

		next.ServeHTTP(mw, r)

		totalResponsesSent.Add(1)
		totalBytesSent.Add(mw.bytesWritten)
		totalResponsesSentByStatus.Add(strconv.Itoa(mw.statusCode), 1)
		totalProcessingTimeMicroseconds.Add(time.Since(start).Microseconds())
	})
}
