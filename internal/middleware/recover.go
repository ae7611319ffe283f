package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/baharkarakas/tradebinder/internal/api/httpx"
	"github.com/baharkarakas/tradebinder/internal/logger"
)

// Recover turns a handler panic into a 500 envelope. The request id is echoed
// in the details so a client report can be matched to the logged stack.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.FromContext(r.Context()).Error("panic serving request",
				"method", r.Method, "path", r.URL.Path, "err", rec, "stack", string(debug.Stack()))

			var details any
			if id := RequestIDFrom(r.Context()); id != "" {
				details = map[string]string{"requestId": id}
			}
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", details)
		}()
		next.ServeHTTP(w, r)
	})
}
