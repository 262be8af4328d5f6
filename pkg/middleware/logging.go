package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/orgchart/pkg/composables"
)

type statusCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
}

func (w *statusCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusCaptureWriter) Write(b []byte) (int, error) {
	if !w.statusWritten {
		w.statusCode = http.StatusOK
		w.statusWritten = true
	}
	return w.ResponseWriter.Write(b)
}

// WithLogger logs every request with a generated request id, duration, and
// response status, and recovers panics into 500 responses.
func WithLogger(logger *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.NewString()
			capture := &statusCaptureWriter{ResponseWriter: w, statusCode: http.StatusOK}

			entry := logger.WithFields(logrus.Fields{
				"request_id": requestID,
				"method":     r.Method,
				"path":       r.URL.Path,
			})

			defer func() {
				if rec := recover(); rec != nil {
					entry.WithField("stack", string(debug.Stack())).Errorf("panic: %v", rec)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				entry.WithFields(logrus.Fields{
					"status":   capture.statusCode,
					"duration": time.Since(start).String(),
				}).Info("request completed")
			}()

			ctx := composables.WithLogger(r.Context(), logger)
			next.ServeHTTP(capture, r.WithContext(ctx))
		})
	}
}
