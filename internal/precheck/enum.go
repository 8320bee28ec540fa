package precheck

import (
	"fmt"
	"strings"
	"unicode"
)

// Variant is one member of an enumerated field: the constant name, the
// value persisted in storage and the human-readable label.
type Variant struct {
	Name  string
	Value string
	Label string
}

// EnumSpec declares the closed set of variants an enum field accepts.
type EnumSpec struct {
	field    string
	variants []Variant
}

// NewEnum builds an EnumSpec for the named field. The variant table is
// checked for case-folded token collisions, since coercion resolves
// tokens case-insensitively and the first match wins.
func NewEnum(field string, variants ...Variant) (EnumSpec, error) {
	e := EnumSpec{field: field, variants: variants}
	if err := e.validate(); err != nil {
		return EnumSpec{}, err
	}
	return e, nil
}

// MustEnum is NewEnum for static enum tables built at startup.
func MustEnum(field string, variants ...Variant) EnumSpec {
	e, err := NewEnum(field, variants...)
	if err != nil {
		panic(err)
	}
	return e
}

func (e EnumSpec) validate() error {
	if len(e.variants) == 0 {
		return fmt.Errorf("enum %s: no variants declared", e.field)
	}
	seen := make(map[string]string)
	for _, v := range e.variants {
		for _, token := range []string{v.Name, v.Value, v.Label} {
			folded := strings.ToUpper(token)
			if owner, ok := seen[folded]; ok && owner != v.Name {
				return fmt.Errorf("enum %s: token %q of %s collides with %s under case folding",
					e.field, token, v.Name, owner)
			}
			seen[folded] = v.Name
		}
	}
	return nil
}

// Coerce resolves a user-supplied token to the canonical stored value.
// Names and values match case-insensitively via upper-casing, labels via
// capitalisation. An unmatched token yields ErrInvalidChoice with every
// acceptable variant spelled out.
func (e EnumSpec) Coerce(raw string) (string, error) {
	upper := strings.ToUpper(raw)
	capitalised := capitalize(raw)
	for _, v := range e.variants {
		if upper == strings.ToUpper(v.Name) || upper == strings.ToUpper(v.Value) || capitalised == v.Label {
			return v.Value, nil
		}
	}
	return "", fmt.Errorf("acceptable variants are only `%s` (case-insensitive): %w",
		strings.Join(e.Tokens(), "`, `"), ErrInvalidChoice)
}

// Tokens returns every acceptable token, variant by variant, in the
// declared order: name, value, label.
func (e EnumSpec) Tokens() []string {
	tokens := make([]string, 0, len(e.variants)*3)
	for _, v := range e.variants {
		tokens = append(tokens, v.Name, v.Value, v.Label)
	}
	return tokens
}

// Field returns the field name this spec is declared for.
func (e EnumSpec) Field() string { return e.field }

// capitalize upper-cases the first rune and lower-cases the rest,
// matching how labels are written in the enum tables.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(strings.ToLower(s))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
