package precheck

import "fmt"

// Entity exposes the current persisted value of a named field. The second
// return reports whether the entity declares the field at all.
type Entity interface {
	Field(name string) (string, bool)
}

// Reconcile compares the cleaned field map against the entity's current
// values.
//
// Partial update: fields equal to the current value are silently dropped;
// if nothing differs the whole run fails with ErrNoChanges.
//
// Full update: the differing subset is kept and every editable field
// absent from the request is back-filled — nullable fields with nil,
// fields with a declared default with that default; a field with neither
// is a hard error, it must be supplied.
//
// The returned map uses nil to represent an explicit null.
func Reconcile(cleaned map[string]string, entity Entity, schema Schema, action Action) (map[string]any, FieldErrors, error) {
	changed := make(map[string]any, len(cleaned))
	for field, value := range cleaned {
		current, ok := entity.Field(field)
		if !ok || current != value {
			changed[field] = value
		}
	}
	if len(changed) == 0 {
		return nil, nil, fmt.Errorf("the submitted fields match the stored values: %w", ErrNoChanges)
	}

	if action == ActionFullUpdate {
		errs := FieldErrors{}
		for _, field := range schema.editableFields() {
			if _, submitted := cleaned[field]; submitted {
				continue
			}
			spec := schema.Fields[field]
			switch {
			case spec.Nullable:
				changed[field] = nil
			case spec.HasDefault:
				changed[field] = spec.Default
			default:
				errs.Add(field, msgMissing)
			}
		}
		if !errs.Empty() {
			return nil, errs, nil
		}
	}
	return changed, nil, nil
}
