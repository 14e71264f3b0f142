package common

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type seenLocale struct {
	locale, prefix, path string
}

func localeRouter(seen *seenLocale) http.Handler {
	r := chi.NewRouter()
	r.Use(LocaleMiddleware([]string{"en", "ca"}, "en"))
	r.Get("/gateway/*", func(w http.ResponseWriter, req *http.Request) {
		seen.locale, _ = LocaleFromContext(req.Context())
		seen.prefix = LocalePrefixFromContext(req.Context())
		seen.path = req.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestLocaleMiddleware(t *testing.T) {
	tests := []struct {
		name, path string
		expected   seenLocale
		status     int
	}{
		{"Default", "/gateway/node/article", seenLocale{"en", "", "/gateway/node/article"}, http.StatusOK},
		{"Prefixed", "/ca/gateway/node/article", seenLocale{"ca", "/ca", "/gateway/node/article"}, http.StatusOK},
		{"DefaultPrefixed", "/en/gateway/node/article", seenLocale{"en", "/en", "/gateway/node/article"}, http.StatusOK},
		{"UnknownPrefix", "/de/gateway/node/article", seenLocale{}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen seenLocale
			rec := httptest.NewRecorder()
			localeRouter(&seen).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.expected, seen)
		})
	}
}

func TestLocaleFromContextEmpty(t *testing.T) {
	_, ok := LocaleFromContext(context.Background())
	assert.False(t, ok)
	_, ok = LocaleFromContext(WithLocale(context.Background(), ""))
	assert.False(t, ok)
	assert.Empty(t, LocalePrefixFromContext(context.Background()))
}
