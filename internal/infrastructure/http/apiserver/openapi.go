package apiserver

import (
	"embed"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/infrastructure/http/respond"
	"github.com/pantrypairing/server/pkg/errors"
)

//go:embed openapi.yaml
var openAPISpec embed.FS

// OpenAPIHandler serves the API description and a Swagger UI page.
type OpenAPIHandler struct {
	logger *zap.Logger
	spec   []byte
}

// NewOpenAPIHandler creates a new OpenAPI handler
func NewOpenAPIHandler(logger *zap.Logger) *OpenAPIHandler {
	spec, err := openAPISpec.ReadFile("openapi.yaml")
	if err != nil {
		logger.Error("Failed to read OpenAPI spec", zap.Error(err))
		spec = []byte("# OpenAPI spec not available\n")
	}
	return &OpenAPIHandler{logger: logger, spec: spec}
}

// ServeOpenAPISpec serves the OpenAPI specification in YAML format
func (h *OpenAPIHandler) ServeOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.spec)
}

// ServeSwaggerUI serves a Swagger UI page pointed at the YAML spec. It relaxes
// the API's CSP so the page can load its assets.
func (h *OpenAPIHandler) ServeSwaggerUI(w http.ResponseWriter, r *http.Request) {
	specURL := fmt.Sprintf("%s://%s/api/v1/openapi.yaml", scheme(r), r.Host)

	w.Header().Set("Content-Security-Policy", "default-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline' https://unpkg.com; script-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data: https:")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="ko">
<head>
    <meta charset="UTF-8">
    <title>Pantry Pairing API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css" />
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({ url: '%s', dom_id: '#swagger-ui', deepLinking: true });
        };
    </script>
</body>
</html>`, specURL)
}

func scheme(r *http.Request) string {
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		return "https"
	}
	return "http"
}

func respondNotFound(w http.ResponseWriter, r *http.Request, logger *zap.Logger) {
	respond.Error(w, r, logger, errors.NewAppError(errors.CodeNotFound, "요청한 경로를 찾을 수 없습니다.", r.URL.Path))
}
