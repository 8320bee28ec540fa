package handler

import (
	"encoding/json"
	"net/http"

	"github.com/sellpoint/api/internal/application/account"
	"github.com/sellpoint/api/internal/pkg/keyref"
	"github.com/sellpoint/api/internal/pkg/validate"
	"github.com/sellpoint/api/internal/transport/http/middleware"
)

// AccountHandler handles authentication and account endpoints.
type AccountHandler struct {
	svc account.Service
}

func NewAccountHandler(svc account.Service) *AccountHandler {
	return &AccountHandler{svc: svc}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyRequest struct {
	Key64 string `json:"key64" validate:"required"`
	Token string `json:"token" validate:"required"`
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, bearer, refresh, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		AccessToken:  bearer,
		RefreshToken: refresh,
		Session:      sess,
		User:         sess.User,
	})
}

// Register accepts the raw field map so the pre-check pipeline can report
// on every submitted key, known or not.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, out, err := h.svc.Register(r.Context(), raw)
	if err != nil {
		writeOutcome(w, err, out)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{
		User:    u,
		Message: "Confirmation email sent.",
	})
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
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
	u, out, err := h.svc.Update(r.Context(), claims.UserID, raw)
	if err != nil {
		writeOutcome(w, err, out)
		return
	}
	env := AuthEnvelope{User: u}
	if !u.EmailVerified {
		env.Message = "Confirmation email sent to the new address."
	}
	writeJSON(w, http.StatusOK, env)
}

// RequestToken mails the confirmation that, once verified, revokes every
// session and reissues credentials.
func (h *AccountHandler) RequestToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.RequestToken(r.Context(), claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Confirmation email sent."})
}

func (h *AccountHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Verify(r.Context(), req.Key64, req.Token)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		AccessToken:  res.Bearer,
		RefreshToken: res.Refresh,
		Session:      res.Session,
		User:         res.User,
		Action:       res.Action,
		Message:      verifyMessage(res.Action),
	})
}

// verifyMessage names the operation a verification key confirmed.
func verifyMessage(action string) string {
	switch action {
	case keyref.ActionRegister:
		return "Registration confirmed."
	case keyref.ActionLogin:
		return "Email confirmed."
	case keyref.ActionUpdate:
		return "Updated details confirmed."
	case keyref.ActionToken:
		return "Credentials reissued."
	default:
		return "Verified."
	}
}

func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "refresh_token required")
		return
	}
	sess, bearer, refresh, err := h.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{
		AccessToken:  bearer,
		RefreshToken: refresh,
		Session:      sess,
		User:         sess.User,
	})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Logout(r.Context(), claims.SessionID); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) LookMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := h.svc.LookMe(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), claims.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Account deactivated."})
}
