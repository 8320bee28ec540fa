package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrBadRequest        = errors.New("bad request")
	ErrExpectationFailed = errors.New("expectation failed")
)

// PermissionError carries per-field permission violations so the handler
// can return a structured 403 body instead of a generic one.
type PermissionError struct {
	Fields map[string][]string
}

func (e *PermissionError) Error() string { return "permission denied" }

func (e *PermissionError) Unwrap() error { return ErrForbidden }
