// Package keyref encodes the opaque action+user reference mailed to users
// during email verification. The reference is URL-safe and reversible
// without any server-side lookup.
package keyref

import (
	"encoding/base64"
	"errors"
	"strings"
)

// Account actions that may require email confirmation.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
	ActionUpdate   = "update"
	ActionToken    = "token"
)

var actions = []string{ActionLogin, ActionRegister, ActionUpdate, ActionToken}

// ErrUnrecognizedAction is returned when a reference does not start with
// a known action keyword.
var ErrUnrecognizedAction = errors.New("unrecognized action")

// ErrMalformedReference is returned when the user id part cannot be decoded.
var ErrMalformedReference = errors.New("malformed reference")

// Encode builds the opaque reference: the action keyword followed by the
// base64url-encoded user id.
func Encode(action, userID string) string {
	return action + base64.RawURLEncoding.EncodeToString([]byte(userID))
}

// Decode splits a reference back into its action keyword and user id.
func Decode(key64 string) (action, userID string, err error) {
	for _, a := range actions {
		if strings.HasPrefix(key64, a) {
			raw, err := base64.RawURLEncoding.DecodeString(key64[len(a):])
			if err != nil || len(raw) == 0 {
				return "", "", ErrMalformedReference
			}
			return a, string(raw), nil
		}
	}
	return "", "", ErrUnrecognizedAction
}
