package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sellpoint/api/internal/application/shop"
	"github.com/sellpoint/api/internal/transport/http/middleware"
)

// ShopHandler handles shop endpoints.
type ShopHandler struct {
	svc shop.Service
}

func NewShopHandler(svc shop.Service) *ShopHandler {
	return &ShopHandler{svc: svc}
}

func (h *ShopHandler) List(w http.ResponseWriter, r *http.Request) {
	shops, err := h.svc.List(r.Context(), r.URL.Query().Get("state"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shops)
}

func (h *ShopHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *ShopHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s, out, err := h.svc.Create(r.Context(), actorFromClaims(claims), raw)
	if err != nil {
		writeOutcome(w, err, out)
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

func (h *ShopHandler) FullUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, true)
}

func (h *ShopHandler) PartialUpdate(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, false)
}

func (h *ShopHandler) update(w http.ResponseWriter, r *http.Request, full bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	actor := actorFromClaims(claims)
	shopID := chi.URLParam(r, "id")

	if full {
		s, out, err := h.svc.FullUpdate(r.Context(), actor, shopID, raw)
		if err != nil {
			writeOutcome(w, err, out)
			return
		}
		writeJSON(w, http.StatusOK, s)
		return
	}
	s, out, err := h.svc.PartialUpdate(r.Context(), actor, shopID, raw)
	if err != nil {
		writeOutcome(w, err, out)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *ShopHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), actorFromClaims(claims), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
