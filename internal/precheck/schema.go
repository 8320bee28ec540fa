package precheck

import "fmt"

// FieldSpec describes one declared field of an entity for reconciliation
// purposes: whether a full update may back-fill it with null or a default.
type FieldSpec struct {
	Nullable   bool
	Default    string
	HasDefault bool
}

// Schema is the static description of an entity the pipeline validates
// against: which fields exist at all, which are required, which are
// optionally editable, and which are enum-typed. Schemas are built once
// at startup; there is no runtime reflection over entities.
type Schema struct {
	// Required fields must be present and non-blank on create and full update.
	Required []string
	// Additional fields are editable but optional.
	Additional []string
	// Fields declares every attribute the entity has, editable or not.
	Fields map[string]FieldSpec
	// Enums maps enum-typed field names to their variant tables.
	Enums map[string]EnumSpec
}

// Validate checks the schema's internal consistency. It is the startup
// invariant gate: required and additional fields must be declared, and
// enum specs must be bound to declared fields.
func (s Schema) Validate() error {
	for _, f := range append(append([]string{}, s.Required...), s.Additional...) {
		if _, ok := s.Fields[f]; !ok {
			return fmt.Errorf("schema: editable field %q is not declared", f)
		}
	}
	for f := range s.Enums {
		if _, ok := s.Fields[f]; !ok {
			return fmt.Errorf("schema: enum field %q is not declared", f)
		}
	}
	return nil
}

// MustValidate panics on an inconsistent schema; used for the static
// per-entity schema values.
func (s Schema) MustValidate() Schema {
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

func (s Schema) declared(field string) bool {
	_, ok := s.Fields[field]
	return ok
}

func (s Schema) editable(field string) bool {
	for _, f := range s.Required {
		if f == field {
			return true
		}
	}
	for _, f := range s.Additional {
		if f == field {
			return true
		}
	}
	return false
}

// editableFields returns required plus additional names in declaration order.
func (s Schema) editableFields() []string {
	out := make([]string, 0, len(s.Required)+len(s.Additional))
	out = append(out, s.Required...)
	out = append(out, s.Additional...)
	return out
}
