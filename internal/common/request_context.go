package common

import (
	"context"
	"net/http"
	"slices"
	"strings"
)

type localeKey struct{}

type localePrefixKey struct{}

// WithLocale stores the negotiated request locale.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, localeKey{}, locale)
}

// LocaleFromContext returns the negotiated locale, if any.
func LocaleFromContext(ctx context.Context) (string, bool) {
	l, ok := ctx.Value(localeKey{}).(string)
	return l, ok && l != ""
}

// LocalePrefixFromContext returns the path prefix ("/ca") the locale was
// negotiated from, or "" when the default locale applies.
func LocalePrefixFromContext(ctx context.Context) string {
	p, _ := ctx.Value(localePrefixKey{}).(string)
	return p
}

// LocaleMiddleware negotiates the request locale from an optional leading
// path segment ("/ca/gateway/..."). A recognised prefix is stripped before
// routing; otherwise the default locale applies. It must run before the
// router matches, i.e. be installed with Use on the top-level mux.
func LocaleMiddleware(locales []string, defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := defaultLocale
			ctx := r.Context()
			trimmed := strings.TrimPrefix(r.URL.Path, "/")
			first, rest, _ := strings.Cut(trimmed, "/")
			if first != "" && slices.Contains(locales, first) {
				locale = first
				ctx = context.WithValue(ctx, localePrefixKey{}, "/"+first)
				r2 := r.Clone(ctx)
				r2.URL.Path = "/" + rest
				r2.URL.RawPath = ""
				r = r2
			}
			next.ServeHTTP(w, r.WithContext(WithLocale(ctx, locale)))
		})
	}
}
