package precheck

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors raised by pipeline units. Services wrap these so handlers
// can map them to HTTP status codes.
var (
	ErrInvalidChoice = errors.New("invalid choice")
	ErrNoChanges     = errors.New("no changes submitted")
)

// FieldErrors collects human-readable messages keyed by field name.
// The pipeline accumulates across all fields in one pass instead of
// failing fast, so the caller can present every problem at once.
type FieldErrors map[string][]string

// Add appends a message to the given field's error list.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// Merge appends all messages from other into fe.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, msgs := range other {
		fe[field] = append(fe[field], msgs...)
	}
}

// Empty reports whether no errors were collected.
func (fe FieldErrors) Empty() bool { return len(fe) == 0 }

// Error renders the collected messages in a stable order.
func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", f, strings.Join(fe[f], " "))
	}
	return b.String()
}
