// openapi.go — отдача OpenAPI-контракта API.
package handlers

import "net/http"

// OpenAPIHandler отдаёт встроенный OpenAPI-документ (YAML).
type OpenAPIHandler struct {
	doc []byte
}

// NewOpenAPIHandler создаёт обработчик для готового документа.
func NewOpenAPIHandler(doc []byte) *OpenAPIHandler {
	return &OpenAPIHandler{doc: doc}
}

// ServeHTTP — GET /api/openapi.yaml.
func (h *OpenAPIHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.doc)
}
