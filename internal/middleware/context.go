// Package middleware carries per-request state for the page handlers: htmx detection,
// CSRF tokens and the resolved UI language.
package middleware

import "context"

type ctxKey string

const (
	ctxKeyIsHTMX  ctxKey = "is_htmx"
	ctxKeyRestore ctxKey = "htmx_restore"
	ctxKeyCSRF    ctxKey = "csrf"
	ctxKeyLang    ctxKey = "lang"
)

// WithHTMX marks the request as coming from htmx.
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX reports whether this is an htmx request.
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// IsHistoryRestore reports whether htmx is restoring a page from browser history.
func IsHistoryRestore(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyRestore).(bool)
	return v
}

// WithCSRFToken stores the request's CSRF token.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, ctxKeyCSRF, token)
}

// CSRFToken returns the token issued for this request.
func CSRFToken(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyCSRF).(string)
	return v
}

// WithLang stores the resolved UI language.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKeyLang, lang)
}

// Lang returns the resolved UI language, or "" when Locale did not run.
func Lang(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyLang).(string)
	return v
}
