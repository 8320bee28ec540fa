package precheck

import "fmt"

// Ignore reasons reported for fields dropped by classification.
const (
	reasonUnknown     = "Unknown field. Ignored."
	reasonNotEditable = "This field is not editable."
)

// Normalize converts a raw decoded JSON object into the flat string map
// the pipeline operates on. Scalars are rendered with their natural
// formatting; nested objects and arrays are hard errors for the fields
// this pipeline governs.
func Normalize(raw map[string]any) (map[string]string, FieldErrors) {
	data := make(map[string]string, len(raw))
	errs := FieldErrors{}
	for field, value := range raw {
		switch v := value.(type) {
		case nil:
			data[field] = ""
		case string:
			data[field] = v
		case bool:
			data[field] = fmt.Sprintf("%t", v)
		case float64:
			// encoding/json decodes all numbers to float64.
			if v == float64(int64(v)) {
				data[field] = fmt.Sprintf("%d", int64(v))
			} else {
				data[field] = fmt.Sprintf("%g", v)
			}
		default:
			errs.Add(field, "Value must be a string or number.")
		}
	}
	return data, errs
}

// Classify partitions the incoming field map against the schema. Keys the
// entity does not declare at all are removed with an "unknown" notice;
// declared but non-editable keys are removed with a "not editable" notice.
// The returned map holds only editable keys. Pure function over its inputs.
func Classify(data map[string]string, schema Schema) (map[string]string, map[string]string) {
	cleaned := make(map[string]string, len(data))
	ignored := make(map[string]string)
	for field, value := range data {
		switch {
		case !schema.declared(field):
			ignored[field] = reasonUnknown
		case !schema.editable(field):
			ignored[field] = reasonNotEditable
		default:
			cleaned[field] = value
		}
	}
	return cleaned, ignored
}
