package api

import (
	"net/http"

	"github.com/okian/arete/internal/domain/catalog"
)

// CatalogDependencies exposes the static read models.
type CatalogDependencies interface {
	Catalog() []catalog.MetricDefinition
	Ranks() []catalog.Rank
}

// CatalogHandler serves metric definitions and the rank ladder.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type catalogResponse struct {
	Metrics []catalog.MetricDefinition `json:"metrics"`
	Ranks   []catalog.Rank             `json:"ranks"`
}

// HandleCatalog handles GET /catalog requests.
func (h *CatalogHandler) HandleCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Metrics: h.deps.Catalog(),
		Ranks:   h.deps.Ranks(),
	})
}
