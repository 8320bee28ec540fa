package precheck

import "strings"

// Messages reported by the required-field checker.
const (
	msgMissing    = "Missing required field."
	msgEmpty      = "This field must not be empty."
	msgWhitespace = "This field must not consist of whitespace only."
)

// CheckRequired asserts presence and non-blank content for every name in
// fields. An empty result signals success.
func CheckRequired(data map[string]string, fields []string) FieldErrors {
	errs := FieldErrors{}
	for _, field := range fields {
		value, ok := data[field]
		switch {
		case !ok:
			errs.Add(field, msgMissing)
		case value == "":
			errs.Add(field, msgEmpty)
		case strings.TrimSpace(value) == "":
			errs.Add(field, msgWhitespace)
		}
	}
	return errs
}
