package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sellpoint/api/internal/application/catalog"
	"github.com/sellpoint/api/internal/pkg/validate"
	"github.com/sellpoint/api/internal/transport/http/middleware"
)

// CatalogHandler handles category, product and price-list endpoints.
type CatalogHandler struct {
	svc catalog.Service
}

func NewCatalogHandler(svc catalog.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

type UpsertCategoryRequest struct {
	Name          string `json:"name" validate:"required"`
	CatalogNumber int    `json:"catalog_number" validate:"required"`
}

func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// UpsertCategory creates a category or renames the one already holding
// the submitted catalog number.
func (h *CatalogHandler) UpsertCategory(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req UpsertCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	c, err := h.svc.UpsertCategory(r.Context(), actorFromClaims(claims), req.Name, req.CatalogNumber)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CatalogHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Products(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *CatalogHandler) PriceList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.PriceList(r.Context(), r.URL.Query().Get("shop"), r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
