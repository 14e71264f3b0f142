// Package main implements the JSON:API gateway service. It serves the
// filtered gateway namespace, the unfiltered standard namespace and the
// administrative settings API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	gatewaydocu "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/docu/gateway"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common"
	auth "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/common/security"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/access"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/content"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/policy"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/resource"
	"github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gateway/routing"
	api "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/internal/gatewayservice/api"
	gatewayapi "github.com/eclipse-basyx/basyx-go-jsonapi-gateway/pkg/gatewayapi"
)

// standardRoutePrefix names the routes of the unfiltered namespace.
const standardRoutePrefix = "jsonapi"

// dependencies are the backends the router is assembled from.
type dependencies struct {
	catalog  resource.Catalog
	settings policy.Store
	content  content.Store
	perms    access.PermissionChecker
}

// newRouter assembles middleware, the document APIs and the admin API.
func newRouter(cfg *common.Config, deps dependencies) (*chi.Mux, error) {
	base := common.NormalizeBasePath(cfg.Server.ContextPath)
	if base == "/" {
		base = ""
	}

	r := chi.NewRouter()
	r.Use(common.LocaleMiddleware(cfg.Gateway.Locales, cfg.Gateway.DefaultLocale))
	if cfg.Metrics.Enabled {
		r.Use(common.InstrumentHTTP)
	}
	r.Use(common.RateLimitMiddleware(cfg.Server.RateLimit, cfg.Server.RateBurst))
	common.AddCors(r, cfg)

	common.AddHealthEndpoint(r, cfg)
	common.AddMetricsEndpoint(r, cfg)
	if cfg.Swagger.Enabled {
		spec, err := gatewaydocu.OpenAPIYAML()
		if err != nil {
			return nil, fmt.Errorf("GW-SWAGGER: %w", err)
		}
		common.AddSwaggerUIFromConfig(r, spec, cfg)
	}

	evaluator := access.NewEntityEvaluator(deps.catalog, deps.perms)
	gatewayPath := common.JoinPath(base, cfg.Gateway.BasePath)
	gatewayRoutes := routing.NewBuilder(deps.catalog, deps.settings, access.NamespaceGateway, cfg.Gateway.Namespace, gatewayPath)
	builders := routing.Builders{gatewayRoutes}

	authenticator := auth.NewAuthenticator(cfg.Auth)
	r.Group(func(r chi.Router) {
		r.Use(authenticator.Middleware)
		r.Use(policy.SnapshotMiddleware(deps.settings))

		gatewaySvc := api.NewGatewayAPIService(api.GatewayAPIServiceOptions{
			Namespace:     access.NamespaceGateway,
			DefaultLocale: cfg.Gateway.DefaultLocale,
			Catalog:       deps.catalog,
			Content:       deps.content,
			Settings:      deps.settings,
			Routes:        gatewayRoutes,
			Evaluator:     evaluator,
		})
		r.Mount(gatewayPath, gatewayapi.NewRouter(gatewayapi.NewGatewayAPIController(gatewaySvc)))
		log.Printf("🧩 Gateway namespace mounted at %s", gatewayPath)

		if cfg.Gateway.StandardBasePath == "" {
			return
		}
		standardPath := common.JoinPath(base, cfg.Gateway.StandardBasePath)
		standardRoutes := routing.NewBuilder(deps.catalog, deps.settings, access.NamespaceStandard, standardRoutePrefix, standardPath)
		builders = append(builders, standardRoutes)
		standardSvc := api.NewGatewayAPIService(api.GatewayAPIServiceOptions{
			Namespace:     access.NamespaceStandard,
			DefaultLocale: cfg.Gateway.DefaultLocale,
			Catalog:       deps.catalog,
			Content:       deps.content,
			Settings:      deps.settings,
			Routes:        standardRoutes,
			Evaluator:     evaluator,
		})
		r.Mount(standardPath, gatewayapi.NewRouter(gatewayapi.NewGatewayAPIController(standardSvc)))
		log.Printf("🧩 Standard namespace mounted at %s", standardPath)
	})

	admin := policy.NewAdministrator(deps.settings, deps.catalog, builders)
	adminSvc := api.NewAdminAPIService(admin, deps.catalog, cfg.Gateway.Namespace, builders...)
	adminRouter := gatewayapi.NewRouter(gatewayapi.NewAdminAPIController(adminSvc))
	r.Group(func(r chi.Router) {
		r.Use(authenticator.Middleware)
		r.Use(auth.RequireAdministrator(deps.perms))
		r.Mount(common.JoinPath(base, "/admin"), adminRouter)
	})
	return r, nil
}

func openSettingsStore(ctx context.Context, cfg *common.Config) (policy.Store, func(), error) {
	var (
		store   policy.Store
		cleanup = func() {}
	)
	switch cfg.Policy.Backend {
	case "postgres":
		db, err := common.InitializeDatabase(ctx, cfg.Postgres, policy.PostgresSchema(cfg.Policy.TableName))
		if err != nil {
			return nil, nil, err
		}
		store = policy.NewPostgresStore(db, cfg.Policy.TableName)
		cleanup = func() { _ = db.Close() }
	case "s3":
		client, err := policy.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, nil, err
		}
		store = policy.NewS3Store(client, cfg.S3.Bucket, cfg.Policy.ObjectKey)
		log.Printf("🪣 Gateway settings stored in s3://%s/%s", cfg.S3.Bucket, cfg.Policy.ObjectKey)
	default:
		store = policy.NewMemoryStore(nil)
	}
	if cfg.Server.CacheEnabled && cfg.Policy.Backend != "memory" {
		cached := policy.NewCachedStore(store)
		cached.OnSave(func() { log.Printf("🔄 Gateway settings snapshot refreshed (%s)", cfg.Policy.Backend) })
		store = cached
	}

	if cfg.Policy.SeedPath != "" {
		seed, err := policy.LoadSeed(cfg.Policy.SeedPath)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := policy.SeedIfEmpty(ctx, store, seed); err != nil {
			cleanup()
			return nil, nil, err
		}
	}
	return store, cleanup, nil
}

func openContentStore(ctx context.Context, cfg *common.Config) (content.Store, func(), error) {
	if cfg.Content.Backend == "mongo" {
		store, err := content.NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = store.Close(closeCtx)
		}, nil
	}

	store := content.NewMemoryStore()
	if cfg.Content.SeedPath != "" {
		if err := store.LoadSeed(cfg.Content.SeedPath); err != nil {
			return nil, nil, err
		}
	}
	return store, func() {}, nil
}

func runServer(ctx context.Context, configPath string) error {
	log.Default().Println("Loading JSON:API Gateway Service...")
	log.Default().Println("Config Path:", configPath)

	cfg, err := common.LoadConfig(configPath)
	if err != nil {
		return err
	}

	catalog, err := resource.LoadContentModel(cfg.Gateway.ContentModelPath)
	if err != nil {
		return err
	}
	settings, closeSettings, err := openSettingsStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSettings()
	entities, closeContent, err := openContentStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeContent()
	perms, err := access.NewCasbinPermissions(cfg.Permissions.ModelPath, cfg.Permissions.PolicyPath)
	if err != nil {
		return err
	}

	r, err := newRouter(cfg, dependencies{catalog: catalog, settings: settings, content: entities, perms: perms})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("▶️ JSON:API Gateway listening on %s (contextPath=%q)\n", addr, cfg.Server.ContextPath)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := ""
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()
	if err := runServer(ctx, configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
