// Package common provides shared utilities for the gateway components.
package common

import (
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// SwaggerUIConfig holds configuration for Swagger UI endpoint setup
type SwaggerUIConfig struct {
	UIPath      string // Path where Swagger UI will be served (e.g., "/swagger")
	SpecPath    string // Path where spec will be served (e.g., "/api-docs/openapi.yaml")
	SpecContent []byte // The OpenAPI spec content
	ServerURL   string // Server URL to use in OpenAPI spec (e.g., "http://localhost:5080")
}

var serversSection = regexp.MustCompile(`(?ms)^servers:\s*\n((?:[ \t]*-[^\n]*\n?|[ \t]+[^\n]*\n?)*)`)

var pathsSection = regexp.MustCompile(`(?m)^(paths:)`)

// injectServerURL replaces the servers section of the document with the
// configured URL, or inserts one in front of paths.
func injectServerURL(specContent []byte, serverURL string) []byte {
	if serverURL == "" {
		return specContent
	}
	newServers := fmt.Sprintf("servers:\n- url: '%s'\n  description: Auto-configured server\n", serverURL)
	if serversSection.Match(specContent) {
		return serversSection.ReplaceAll(specContent, []byte(newServers))
	}
	if pathsSection.Match(specContent) {
		return pathsSection.ReplaceAll(specContent, []byte(newServers+"$1"))
	}
	return append([]byte(newServers), specContent...)
}

// AddSwaggerUI serves the OpenAPI document at cfg.SpecPath and the Swagger UI
// under cfg.UIPath.
func AddSwaggerUI(r chi.Router, cfg SwaggerUIConfig) {
	specContent := injectServerURL(cfg.SpecContent, cfg.ServerURL)

	r.Get(cfg.SpecPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(specContent)
	})

	uiPath := strings.TrimSuffix(cfg.UIPath, "/")
	r.Get(uiPath, func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, uiPath+"/index.html", http.StatusFound)
	})
	r.Get(uiPath+"/*", httpSwagger.Handler(httpSwagger.URL(cfg.SpecPath)))

	log.Printf("📖 Swagger UI available at %s", uiPath)
	log.Printf("📄 OpenAPI spec available at %s", cfg.SpecPath)
}

// AddSwaggerUIFromConfig wires the Swagger UI below the context path when
// enabled in the configuration.
func AddSwaggerUIFromConfig(r chi.Router, spec []byte, config *Config) {
	if !config.Swagger.Enabled {
		return
	}
	contextPath := ""
	if config.Server.ContextPath != "" {
		contextPath = NormalizeBasePath(config.Server.ContextPath)
	}
	AddSwaggerUI(r, SwaggerUIConfig{
		UIPath:      contextPath + config.Swagger.UIPath,
		SpecPath:    contextPath + "/api-docs/openapi.yaml",
		SpecContent: spec,
		ServerURL:   fmt.Sprintf("http://localhost:%d%s", config.Server.Port, contextPath),
	})
}
