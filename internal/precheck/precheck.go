// Package precheck validates incoming request field maps before they are
// handed to persistence: classification of unknown and non-editable keys,
// required-field presence, enum token coercion and diff-against-current
// reconciliation for update actions.
package precheck

import "errors"

// Outcome is the result of one pipeline run.
//
// Invariant: when Errors or ChoiceErrors is non-empty the caller must not
// persist Cleaned.
type Outcome struct {
	// Cleaned holds the validated fields to hand to persistence.
	// nil values represent explicit nulls produced by full-update backfill.
	Cleaned map[string]any
	// Errors are hard validation failures keyed by field.
	Errors FieldErrors
	// ChoiceErrors are enum-coercion failures keyed by field.
	ChoiceErrors FieldErrors
	// Warnings are advisory notices that do not fail the run by themselves.
	Warnings map[string]string
	// Ignored maps dropped fields to the reason they were dropped.
	Ignored map[string]string
}

// OK reports whether the cleaned data may be persisted.
func (o Outcome) OK() bool {
	return o.Errors.Empty() && o.ChoiceErrors.Empty()
}

// Run sequences the pipeline units over one incoming field map:
// normalization, classification, enum coercion, the required-field check
// and, for update actions, diff reconciliation against the entity.
//
// Short circuits: a failed required check on create or full update
// returns immediately with the field-requirement guidance; a no-op update
// returns immediately with a "nothing new" advisory.
func Run(raw map[string]any, schema Schema, action Action, entity Entity) Outcome {
	out := Outcome{
		Errors:       FieldErrors{},
		ChoiceErrors: FieldErrors{},
		Warnings:     map[string]string{},
		Ignored:      map[string]string{},
	}

	data, normErrs := Normalize(raw)
	out.Errors.Merge(normErrs)

	cleaned, ignored := Classify(data, schema)
	out.Ignored = ignored

	// Enum fields are checked for blankness before coercion so the caller
	// gets "set a valid value or omit the field for the default" instead
	// of a bare coercion failure.
	for field, enum := range schema.Enums {
		value, present := cleaned[field]
		if !present {
			continue
		}
		if blank := CheckRequired(cleaned, []string{field}); !blank.Empty() {
			for _, msg := range blank[field] {
				out.Errors.Add(field, msg)
			}
			out.Errors.Add(field, "Set a valid value or omit this field entirely to apply the default.")
			continue
		}
		coerced, err := enum.Coerce(value)
		if err != nil {
			out.ChoiceErrors.Add(field, err.Error())
			continue
		}
		cleaned[field] = coerced
	}

	required := schema.Required
	if action == ActionPartialUpdate {
		// A partial update may omit required fields; only submitted ones
		// are held to the non-blank rule.
		required = nil
		for _, field := range schema.Required {
			if _, ok := cleaned[field]; ok {
				required = append(required, field)
			}
		}
	}
	if reqErrs := CheckRequired(cleaned, required); !reqErrs.Empty() {
		out.Errors.Merge(reqErrs)
		if action == ActionCreate || action == ActionFullUpdate {
			return out
		}
	}
	if !out.OK() {
		return out
	}

	if action.IsUpdate() {
		changed, backfillErrs, err := Reconcile(cleaned, entity, schema, action)
		if err != nil {
			if errors.Is(err, ErrNoChanges) {
				out.Warnings["detail"] = "Nothing new was submitted."
				out.Errors.Add("detail", err.Error())
				return out
			}
			out.Errors.Add("detail", err.Error())
			return out
		}
		if !backfillErrs.Empty() {
			out.Errors.Merge(backfillErrs)
			return out
		}
		out.Cleaned = changed
		return out
	}

	result := make(map[string]any, len(cleaned))
	for field, value := range cleaned {
		result[field] = value
	}
	out.Cleaned = result
	return out
}
