// Package gatewaydocu embeds the OpenAPI document of the gateway service.
package gatewaydocu

import (
	"embed"
	"io/fs"
)

//go:embed openapi.yaml
var openAPIAssets embed.FS

// OpenAPIYAML returns the OpenAPI document of the document and admin APIs.
func OpenAPIYAML() ([]byte, error) {
	return fs.ReadFile(openAPIAssets, "openapi.yaml")
}
