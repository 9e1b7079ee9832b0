package handlers

import (
	"net/http"

	"github.com/dom/shopcook-api/internal/api/response"
	"github.com/dom/shopcook-api/internal/service"
)

type CatalogHandler struct {
	catalogService *service.CatalogService
}

func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogService.Categories(r.Context())
	if err != nil {
		writeError(w, "catalog.Categories", err)
		return
	}
	response.JSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) Ingredients(w http.ResponseWriter, r *http.Request) {
	ingredients, err := h.catalogService.Ingredients(r.Context())
	if err != nil {
		writeError(w, "catalog.Ingredients", err)
		return
	}
	response.JSON(w, http.StatusOK, ingredients)
}
