package handler

import (
	"io"
	"net/http"

	"github.com/sellpoint/api/internal/application/partner"
	"github.com/sellpoint/api/internal/transport/http/middleware"
)

// Price lists are small YAML documents; anything bigger is suspect.
const maxPriceListBytes = 4 << 20

// PartnerHandler handles the supplier price-list import endpoint.
type PartnerHandler struct {
	svc partner.Service
}

func NewPartnerHandler(svc partner.Service) *PartnerHandler {
	return &PartnerHandler{svc: svc}
}

// Update ingests the raw YAML body. Authorization against the shop's
// purchasing manager happens in the service, after the shop is known.
func (h *PartnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	doc, err := io.ReadAll(io.LimitReader(r.Body, maxPriceListBytes))
	if err != nil || len(doc) == 0 {
		writeError(w, http.StatusBadRequest, "price list body required")
		return
	}
	report, err := h.svc.Import(r.Context(), actorFromClaims(claims), doc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}
