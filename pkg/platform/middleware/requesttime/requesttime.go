// Package requesttime pins one "now" per request so the timestamps a request
// writes to a status list and to its audit events agree.
package requesttime

import (
	"net/http"
	"time"

	"statusreg/pkg/requestcontext"
)

// Middleware stores the request start time in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
