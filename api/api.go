// Package api embeds the OpenAPI description of the HTTP surface.
package api

import (
	_ "embed"
	"net/http"
)

// Spec is the OpenAPI 3 document, in YAML.
//
//go:embed openapi.yaml
var Spec []byte

// Handler serves Spec.
func Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(Spec)
	})
}
