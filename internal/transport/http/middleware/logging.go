package middleware

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is needed by the websocket upgrade, which asserts http.Hijacker
// on the writer it is given.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("middleware: response writer cannot be hijacked")
	}
	return hj.Hijack()
}

// Logging writes one access-log line per request.
func Logging(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			)
		})
	}
}

// Recover turns handler panics into a 500 envelope. The stack is only
// exposed when withStack is set.
func Recover(log logging.Logger, withStack bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					if v == http.ErrAbortHandler {
						panic(v)
					}
					stack := string(debug.Stack())
					log.Error(r.Context(), "panic in handler", "panic", fmt.Sprint(v), "path", r.URL.Path, "stack", stack)

					env := apierr.Envelope{
						Status:  http.StatusInternalServerError,
						Type:    apierr.TypeInternal,
						Message: "Something went wrong",
					}
					if withStack {
						env.Stack = stack
					}
					apierr.WriteEnvelope(w, env)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
