package middleware

import (
	"context"
	"net/http"
)

// HTMX marks requests coming from htmx so handlers can answer with fragments.
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		if r.Header.Get("HX-History-Restore-Request") == "true" {
			ctx = context.WithValue(ctx, ctxKeyRestore, true)
		}
		// Full pages and fragments differ per request type.
		w.Header().Add("Vary", "HX-Request")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
