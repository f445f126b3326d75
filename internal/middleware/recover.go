package middleware

import (
	"log/slog"
	"net/http"

	"github.com/tallowmere/minegen/internal/mines"
)

// Recover catches a panicking handler and replies 500 instead of
// crashing the process. An [mines.AssertionError] means the engine hit
// an internal invariant violation; anything else is logged the same
// way but re-panicked isn't useful here since net/http already
// recovers per-connection, so it's simply logged and turned into a
// response too.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(mines.AssertionError); ok {
					logger.Error("engine assertion failed", slog.Any("error", err), slog.String("uri", r.URL.RequestURI()))
				} else {
					logger.Error("panic in handler", slog.Any("panic", rec), slog.String("uri", r.URL.RequestURI()))
				}
				w.WriteHeader(http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
