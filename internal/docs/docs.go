package docs

import (
	"embed"
	"net/http"
)

//go:embed openapi.yaml swagger.html
var assets embed.FS

const (
	openAPIFile = "openapi.yaml"
	swaggerFile = "swagger.html"
)

// OpenAPIHandler sirve el contrato OpenAPI del inventario.
func OpenAPIHandler() http.HandlerFunc {
	return assetHandler(openAPIFile, "application/yaml; charset=utf-8")
}

// SwaggerUIHandler sirve la UI que consume /docs/openapi.yaml.
func SwaggerUIHandler() http.HandlerFunc {
	return assetHandler(swaggerFile, "text/html; charset=utf-8")
}

// assetHandler lee el archivo embebido en cada request; son chicos y no cambian.
func assetHandler(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := assets.ReadFile(name)
		if err != nil {
			http.Error(w, name+" not found", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
