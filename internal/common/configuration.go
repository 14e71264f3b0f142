// Package common provides configuration management, error helpers and HTTP
// endpoint utilities shared by the gateway packages. It includes support for
// YAML configuration files, environment variable overrides, CORS setup,
// health, metrics and Swagger endpoints.
package common

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
)

// Config represents the complete configuration of the gateway service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" json:"server"`           // HTTP server configuration
	Postgres    PostgresConfig    `mapstructure:"postgres" json:"postgres"`       // PostgreSQL settings for the policy store
	CorsConfig  CorsConfig        `mapstructure:"cors" json:"cors"`               // CORS policy configuration
	Auth        AuthConfig        `mapstructure:"auth" json:"auth"`               // Bearer token authentication
	Gateway     GatewayConfig     `mapstructure:"gateway" json:"gateway"`         // Document API layout and locales
	Policy      PolicyConfig      `mapstructure:"policy" json:"policy"`           // Where gateway settings are persisted
	S3          S3Config          `mapstructure:"s3" json:"s3"`                   // Object storage for the s3 policy backend
	Content     ContentConfig     `mapstructure:"content" json:"content"`         // Content backend selection
	Mongo       MongoConfig       `mapstructure:"mongo" json:"mongo"`             // MongoDB content backend
	Permissions PermissionsConfig `mapstructure:"permissions" json:"permissions"` // Casbin permission model
	Metrics     MetricsConfig     `mapstructure:"metrics" json:"metrics"`         // Prometheus endpoint
	Swagger     SwaggerConfig     `mapstructure:"swagger" json:"swagger"`         // Swagger UI
}

// ServerConfig contains HTTP server configuration parameters.
type ServerConfig struct {
	Port                   int     `mapstructure:"port" json:"port"`                                     // HTTP server port (default: 5080)
	ContextPath            string  `mapstructure:"contextPath" json:"contextPath"`                       // Base path for all endpoints
	CacheEnabled           bool    `mapstructure:"cacheEnabled" json:"cacheEnabled"`                     // Cache policy snapshots between saves
	RateLimit              float64 `mapstructure:"rateLimit" json:"rateLimit"`                           // Requests per second per client, 0 disables
	RateBurst              int     `mapstructure:"rateBurst" json:"rateBurst"`                           // Token bucket burst
	ShutdownTimeoutSeconds int     `mapstructure:"shutdownTimeoutSeconds" json:"shutdownTimeoutSeconds"` // Graceful shutdown budget
}

// PostgresConfig contains PostgreSQL database connection parameters.
// It includes connection pooling settings for optimal performance.
type PostgresConfig struct {
	Host                   string `mapstructure:"host" json:"host"`                                     // Database host address
	Port                   int    `mapstructure:"port" json:"port"`                                     // Database port (default: 5432)
	User                   string `mapstructure:"user" json:"user"`                                     // Database username
	Password               string `mapstructure:"password" json:"password"`                             // Database password
	DBName                 string `mapstructure:"dbname" json:"dbname"`                                 // Database name
	MaxOpenConnections     int    `mapstructure:"maxOpenConnections" json:"maxOpenConnections"`         // Maximum open connections
	MaxIdleConnections     int    `mapstructure:"maxIdleConnections" json:"maxIdleConnections"`         // Maximum idle connections
	ConnMaxLifetimeMinutes int    `mapstructure:"connMaxLifetimeMinutes" json:"connMaxLifetimeMinutes"` // Connection lifetime in minutes
}

// DSN renders the lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable", p.User, p.Password, p.Host, p.Port, p.DBName)
}

// RedactedDSN renders the connection string with the password masked.
func (p PostgresConfig) RedactedDSN() string {
	return fmt.Sprintf("postgres://%s:****@%s:%d/%s?sslmode=disable", p.User, p.Host, p.Port, p.DBName)
}

// CorsConfig contains Cross-Origin Resource Sharing (CORS) policy settings.
type CorsConfig struct {
	AllowedOrigins   []string `mapstructure:"allowedOrigins" json:"allowedOrigins"`     // Allowed origin domains
	AllowedMethods   []string `mapstructure:"allowedMethods" json:"allowedMethods"`     // Allowed HTTP methods
	AllowedHeaders   []string `mapstructure:"allowedHeaders" json:"allowedHeaders"`     // Allowed request headers
	AllowCredentials bool     `mapstructure:"allowCredentials" json:"allowCredentials"` // Allow credentials in requests
}

// AuthConfig configures bearer token authentication.
type AuthConfig struct {
	Enabled           bool     `mapstructure:"enabled" json:"enabled"`                     // Require valid tokens when a header is sent
	JWTSecret         string   `mapstructure:"jwtSecret" json:"jwtSecret"`                 // HS256 signing secret
	Issuer            string   `mapstructure:"issuer" json:"issuer"`                       // Expected iss claim, empty skips the check
	RolesClaim        string   `mapstructure:"rolesClaim" json:"rolesClaim"`               // Claim carrying the role ids
	AdminRoles        []string `mapstructure:"adminRoles" json:"adminRoles"`               // Roles flagged as administrators
	AnonymousRole     string   `mapstructure:"anonymousRole" json:"anonymousRole"`         // Role given to requests without a token
	AuthenticatedRole string   `mapstructure:"authenticatedRole" json:"authenticatedRole"` // Role added to every verified token
}

// GatewayConfig describes the document API surface.
type GatewayConfig struct {
	BasePath         string   `mapstructure:"basePath" json:"basePath"`                 // Mount point of the filtered namespace
	StandardBasePath string   `mapstructure:"standardBasePath" json:"standardBasePath"` // Mount point of the unfiltered namespace, empty disables it
	Namespace        string   `mapstructure:"namespace" json:"namespace"`               // Name used in synthetic permission names
	Locales          []string `mapstructure:"locales" json:"locales"`                   // Locales accepted as path prefix
	DefaultLocale    string   `mapstructure:"defaultLocale" json:"defaultLocale"`       // Locale used without prefix
	ContentModelPath string   `mapstructure:"contentModelPath" json:"contentModelPath"` // YAML content model
}

// PolicyConfig selects the settings backend.
type PolicyConfig struct {
	Backend   string `mapstructure:"backend" json:"backend"`     // memory | postgres | s3
	TableName string `mapstructure:"tableName" json:"tableName"` // postgres table
	ObjectKey string `mapstructure:"objectKey" json:"objectKey"` // s3 object key
	SeedPath  string `mapstructure:"seedPath" json:"seedPath"`   // optional YAML seed applied to an empty store
}

// S3Config contains object storage connection parameters.
type S3Config struct {
	Endpoint     string `mapstructure:"endpoint" json:"endpoint"`
	Region       string `mapstructure:"region" json:"region"`
	Bucket       string `mapstructure:"bucket" json:"bucket"`
	AccessKey    string `mapstructure:"accessKey" json:"accessKey"`
	SecretKey    string `mapstructure:"secretKey" json:"secretKey"`
	UsePathStyle bool   `mapstructure:"usePathStyle" json:"usePathStyle"`
}

// ContentConfig selects the content backend.
type ContentConfig struct {
	Backend  string `mapstructure:"backend" json:"backend"`   // memory | mongo
	SeedPath string `mapstructure:"seedPath" json:"seedPath"` // YAML entities loaded into the memory backend
}

// MongoConfig contains MongoDB connection parameters.
type MongoConfig struct {
	URI        string `mapstructure:"uri" json:"uri"`
	Database   string `mapstructure:"database" json:"database"`
	Collection string `mapstructure:"collection" json:"collection"`
}

// PermissionsConfig points at the casbin model and policy files.
type PermissionsConfig struct {
	ModelPath  string `mapstructure:"modelPath" json:"modelPath"`
	PolicyPath string `mapstructure:"policyPath" json:"policyPath"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" json:"path"`
}

// SwaggerConfig configures the Swagger UI.
type SwaggerConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	UIPath  string `mapstructure:"uiPath" json:"uiPath"`
}

// LoadConfig loads the configuration from YAML files and environment variables.
//
// The function supports multiple configuration sources with the following precedence:
// 1. Environment variables (highest priority)
// 2. Configuration file (if provided)
// 3. Default values (lowest priority)
//
// Environment variables should use underscore notation (e.g., SERVER_PORT for server.port).
//
// Example:
//
//	config, err := LoadConfig("config/gateway.yaml")
//	if err != nil {
//	    log.Fatal("Failed to load config:", err)
//	}
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		log.Printf("📁 Loading config from file: %s", configPath)
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		log.Println("📁 No config file provided, loading from environment variables only")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	PrintConfiguration(cfg)
	return cfg, nil
}

// setDefaults configures values that let the gateway run locally with the
// in-memory backends and no external services.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5080)
	v.SetDefault("server.contextPath", "")
	v.SetDefault("server.cacheEnabled", true)
	v.SetDefault("server.rateLimit", 0)
	v.SetDefault("server.rateBurst", 20)
	v.SetDefault("server.shutdownTimeoutSeconds", 10)

	v.SetDefault("postgres.host", "db")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "admin")
	v.SetDefault("postgres.password", "admin123")
	v.SetDefault("postgres.dbname", "basyxTestDB")
	v.SetDefault("postgres.maxOpenConnections", 20)
	v.SetDefault("postgres.maxIdleConnections", 10)
	v.SetDefault("postgres.connMaxLifetimeMinutes", 5)

	v.SetDefault("cors.allowedOrigins", []string{"*"})
	v.SetDefault("cors.allowedMethods", []string{"GET", "PUT", "POST", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"*"})
	v.SetDefault("cors.allowCredentials", true)

	v.SetDefault("auth.enabled", true)
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.issuer", "")
	v.SetDefault("auth.rolesClaim", "roles")
	v.SetDefault("auth.adminRoles", []string{"administrator"})
	v.SetDefault("auth.anonymousRole", "anonymous")
	v.SetDefault("auth.authenticatedRole", "authenticated")

	v.SetDefault("gateway.basePath", "/gateway")
	v.SetDefault("gateway.standardBasePath", "/jsonapi")
	v.SetDefault("gateway.namespace", "gateway")
	v.SetDefault("gateway.locales", []string{"en"})
	v.SetDefault("gateway.defaultLocale", "en")
	v.SetDefault("gateway.contentModelPath", "config/content-model.yaml")

	v.SetDefault("policy.backend", "memory")
	v.SetDefault("policy.tableName", "gateway_policy")
	v.SetDefault("policy.objectKey", "gateway/policy.json")
	v.SetDefault("policy.seedPath", "")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "basyx-gateway")
	v.SetDefault("s3.usePathStyle", true)

	v.SetDefault("content.backend", "memory")
	v.SetDefault("content.seedPath", "")

	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "basyx")
	v.SetDefault("mongo.collection", "entities")

	v.SetDefault("permissions.modelPath", "config/permissions/model.conf")
	v.SetDefault("permissions.policyPath", "config/permissions/policy.csv")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("swagger.enabled", true)
	v.SetDefault("swagger.uiPath", "/swagger")
}

func validateConfig(cfg *Config) error {
	switch cfg.Policy.Backend {
	case "memory", "postgres", "s3":
	default:
		return fmt.Errorf("GW-CONFIG-INVALID: unknown policy backend %q", cfg.Policy.Backend)
	}
	switch cfg.Content.Backend {
	case "memory", "mongo":
	default:
		return fmt.Errorf("GW-CONFIG-INVALID: unknown content backend %q", cfg.Content.Backend)
	}
	if cfg.Gateway.DefaultLocale == "" {
		return errors.New("GW-CONFIG-INVALID: gateway.defaultLocale must not be empty")
	}
	if strings.TrimSpace(cfg.Gateway.Namespace) == "" {
		return errors.New("GW-CONFIG-INVALID: gateway.namespace must not be empty")
	}
	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		log.Println("⚠️ auth.enabled without auth.jwtSecret: every bearer token will be rejected")
	}
	return nil
}

// PrintConfiguration prints the current configuration to the console with
// sensitive data redacted.
func PrintConfiguration(cfg *Config) {
	cfgCopy := *cfg

	if cfg.Postgres.Host != "" {
		cfgCopy.Postgres.Host = "****"
		cfgCopy.Postgres.User = "****"
		cfgCopy.Postgres.Password = "****"
	}
	if cfg.Auth.JWTSecret != "" {
		cfgCopy.Auth.JWTSecret = "****"
	}
	if cfg.S3.SecretKey != "" {
		cfgCopy.S3.AccessKey = "****"
		cfgCopy.S3.SecretKey = "****"
	}
	if cfg.Mongo.URI != "" {
		cfgCopy.Mongo.URI = "****"
	}

	configJSON, err := jsonCodec.MarshalIndent(cfgCopy, "", "  ")
	if err != nil {
		log.Printf("Unable to marshal configuration to JSON: %v", err)
		return
	}

	log.Printf("📜 Loaded configuration:\n%s", string(configJSON))
}

// AddCors configures Cross-Origin Resource Sharing (CORS) middleware for the router.
func AddCors(r *chi.Mux, config *Config) {
	c := cors.New(cors.Options{
		AllowedOrigins:   config.CorsConfig.AllowedOrigins,
		AllowedMethods:   config.CorsConfig.AllowedMethods,
		AllowedHeaders:   config.CorsConfig.AllowedHeaders,
		AllowCredentials: config.CorsConfig.AllowCredentials,
	})
	r.Use(c.Handler)
}
