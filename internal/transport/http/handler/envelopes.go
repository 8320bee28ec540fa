package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/precheck"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps login/verify/refresh responses. Action is set on
// verify responses to name the confirmed operation.
type AuthEnvelope struct {
	AccessToken  string          `json:"access_token,omitempty"`
	RefreshToken string          `json:"refresh_token,omitempty"`
	Session      *domain.Session `json:"session,omitempty"`
	User         *domain.User    `json:"user,omitempty"`
	Action       string          `json:"action,omitempty"`
	Message      string          `json:"message,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// PipelineEnvelope carries the field-validation payload of a rejected
// request: hard errors, enum-choice errors, advisory warnings and the
// fields that were silently dropped.
type PipelineEnvelope struct {
	Errors       map[string][]string `json:"errors,omitempty"`
	ChoiceErrors map[string][]string `json:"choice_errors,omitempty"`
	Warnings     map[string]string   `json:"warnings,omitempty"`
	Ignored      map[string]string   `json:"ignored,omitempty"`
	Error        string              `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeDomainError maps sentinel errors onto HTTP statuses. A
// PermissionError renders as a structured 403 carrying the per-field
// violations instead of a bare message.
func writeDomainError(w http.ResponseWriter, err error) {
	var perr *domain.PermissionError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusForbidden, PipelineEnvelope{Errors: perr.Fields, Error: perr.Error()})
		return
	}
	writeError(w, statusFromErr(err), err.Error())
}

// writeOutcome renders a rejected pipeline run with its full field payload.
func writeOutcome(w http.ResponseWriter, err error, out precheck.Outcome) {
	var perr *domain.PermissionError
	if errors.As(err, &perr) {
		writeJSON(w, http.StatusForbidden, PipelineEnvelope{Errors: perr.Fields, Error: perr.Error()})
		return
	}
	writeJSON(w, statusFromErr(err), PipelineEnvelope{
		Errors:       out.Errors,
		ChoiceErrors: out.ChoiceErrors,
		Warnings:     out.Warnings,
		Ignored:      out.Ignored,
		Error:        err.Error(),
	})
}

func statusFromErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrExpectationFailed):
		return http.StatusExpectationFailed
	default:
		return http.StatusInternalServerError
	}
}
