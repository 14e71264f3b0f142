package policy

import (
	"context"
	"log"
	"net/http"

	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
)

type snapshotKey struct{}

// WithSnapshot pins cfg as the settings document of the request.
func WithSnapshot(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, snapshotKey{}, cfg)
}

// SnapshotFromContext returns the pinned settings document, if any.
func SnapshotFromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(snapshotKey{}).(*Config)
	return cfg, ok && cfg != nil
}

// Snapshot returns the document pinned on ctx or loads one from store.
func Snapshot(ctx context.Context, store Store) (*Config, error) {
	if cfg, ok := SnapshotFromContext(ctx); ok {
		return cfg, nil
	}
	return store.Load(ctx)
}

// SnapshotMiddleware loads the settings once per request and pins them on the
// request context, so every decision of one request sees the same document.
func SnapshotMiddleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg, err := store.Load(r.Context())
			if err != nil {
				log.Printf("❌ GW-POLICY-LOAD: %v", err)
				resp := common.NewErrorResponse(err, http.StatusInternalServerError, "Gateway", "Policy", "LoadFailed")
				w.Header().Set("Content-Type", "application/json; charset=UTF-8")
				w.WriteHeader(resp.Code)
				if body, mErr := common.Marshal(resp.Body); mErr == nil {
					_, _ = w.Write(body)
				}
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSnapshot(r.Context(), cfg)))
		})
	}
}
