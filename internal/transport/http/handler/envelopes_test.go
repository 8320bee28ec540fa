package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/precheck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromErr(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", domain.ErrBadRequest), http.StatusBadRequest},
		{fmt.Errorf("x: %w", domain.ErrUnauthorized), http.StatusUnauthorized},
		{fmt.Errorf("x: %w", domain.ErrForbidden), http.StatusForbidden},
		{fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", domain.ErrConflict), http.StatusConflict},
		{fmt.Errorf("x: %w", domain.ErrExpectationFailed), http.StatusExpectationFailed},
		{fmt.Errorf("plain failure"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFromErr(tc.err), "err=%v", tc.err)
	}
}

func TestWriteDomainError_PermissionErrorIsStructured(t *testing.T) {
	rr := httptest.NewRecorder()
	writeDomainError(rr, &domain.PermissionError{
		Fields: map[string][]string{"name": {"Only an administrator may rename a shop."}},
	})

	assert.Equal(t, http.StatusForbidden, rr.Code)
	var body PipelineEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"Only an administrator may rename a shop."}, body.Errors["name"])
	assert.Equal(t, "permission denied", body.Error)
}

func TestWriteOutcome_CarriesFieldPayload(t *testing.T) {
	out := precheck.Outcome{
		Errors:       precheck.FieldErrors{"email": {"Missing required field."}},
		ChoiceErrors: precheck.FieldErrors{},
		Warnings:     map[string]string{},
		Ignored:      map[string]string{"role": "This field is not editable."},
	}
	rr := httptest.NewRecorder()
	writeOutcome(rr, fmt.Errorf("rejected: %w", domain.ErrBadRequest), out)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var body PipelineEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, []string{"Missing required field."}, body.Errors["email"])
	assert.Equal(t, "This field is not editable.", body.Ignored["role"])
}

func TestHealth_Ping(t *testing.T) {
	r := chi.NewRouter()
	h := NewHealthHandler()
	r.Get("/health-check/{action}", h.Ping)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "pong")

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health-check/nope", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
