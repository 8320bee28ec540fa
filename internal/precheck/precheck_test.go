package precheck

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEntity is a map-backed Entity for reconciliation tests.
type fakeEntity map[string]string

func (f fakeEntity) Field(name string) (string, bool) {
	v, ok := f[name]
	return v, ok
}

var stateEnum = MustEnum("state",
	Variant{Name: "OPEN", Value: "OP", Label: "Open"},
	Variant{Name: "CLOSED", Value: "CL", Label: "Closed"},
)

func shopSchema() Schema {
	return Schema{
		Required:   []string{"name"},
		Additional: []string{"state", "filename"},
		Fields: map[string]FieldSpec{
			"id":       {},
			"name":     {},
			"state":    {Default: "OP", HasDefault: true},
			"filename": {Nullable: true},
		},
		Enums: map[string]EnumSpec{"state": stateEnum},
	}.MustValidate()
}

// --- required-field checker ---

func TestCheckRequired_EmptyMapReportsEveryField(t *testing.T) {
	errs := CheckRequired(map[string]string{}, []string{"email", "password"})

	require.Len(t, errs, 2)
	assert.Equal(t, []string{msgMissing}, errs["email"])
	assert.Equal(t, []string{msgMissing}, errs["password"])
}

func TestCheckRequired_EmptyAndBlankValues(t *testing.T) {
	data := map[string]string{"email": "", "password": "   ", "name": "ok"}
	errs := CheckRequired(data, []string{"email", "password", "name"})

	assert.Equal(t, []string{msgEmpty}, errs["email"])
	assert.Equal(t, []string{msgWhitespace}, errs["password"])
	assert.NotContains(t, errs, "name")
}

func TestCheckRequired_Success(t *testing.T) {
	errs := CheckRequired(map[string]string{"email": "a@b.c"}, []string{"email"})
	assert.True(t, errs.Empty())
}

// --- enum coercion ---

func TestEnumCoerce_TotalOverDeclaredTokens(t *testing.T) {
	for _, token := range []string{"OPEN", "open", "oPeN", "OP", "op", "Open", "OPEN"} {
		got, err := stateEnum.Coerce(token)
		require.NoError(t, err, "token %q", token)
		assert.Equal(t, "OP", got, "token %q", token)
	}
	for _, token := range []string{"CLOSED", "closed", "CL", "cl", "Closed", "cLoSeD"} {
		got, err := stateEnum.Coerce(token)
		require.NoError(t, err, "token %q", token)
		assert.Equal(t, "CL", got, "token %q", token)
	}
}

func TestEnumCoerce_InvalidChoiceListsEveryToken(t *testing.T) {
	_, err := stateEnum.Coerce("half-open")

	require.ErrorIs(t, err, ErrInvalidChoice)
	for _, token := range []string{"OPEN", "OP", "Open", "CLOSED", "CL", "Closed"} {
		assert.Contains(t, err.Error(), token)
	}
}

func TestNewEnum_RejectsCaseFoldedCollisions(t *testing.T) {
	_, err := NewEnum("position",
		Variant{Name: "SALES", Value: "SL", Label: "Sales"},
		Variant{Name: "SL", Value: "S2", Label: "Second"},
	)
	require.Error(t, err)
}

// --- classifier ---

func TestClassify_PartitionsEveryKey(t *testing.T) {
	data := map[string]string{
		"name":    "Alpha",
		"id":      "7",
		"ghost":   "boo",
		"state":   "open",
	}
	cleaned, ignored := Classify(data, shopSchema())

	assert.Equal(t, map[string]string{"name": "Alpha", "state": "open"}, cleaned)
	assert.Equal(t, reasonNotEditable, ignored["id"])
	assert.Equal(t, reasonUnknown, ignored["ghost"])
	// every key lands in exactly one partition
	assert.Len(t, cleaned, len(data)-len(ignored))
}

// --- normalization ---

func TestNormalize_ScalarsAndRejects(t *testing.T) {
	data, errs := Normalize(map[string]any{
		"name":   "Alpha",
		"count":  float64(3),
		"ratio":  1.5,
		"flag":   true,
		"none":   nil,
		"nested": map[string]any{"x": 1},
		"list":   []any{"a"},
	})

	assert.Equal(t, "Alpha", data["name"])
	assert.Equal(t, "3", data["count"])
	assert.Equal(t, "1.5", data["ratio"])
	assert.Equal(t, "true", data["flag"])
	assert.Equal(t, "", data["none"])
	assert.Contains(t, errs, "nested")
	assert.Contains(t, errs, "list")
}

// --- orchestrator ---

func TestRun_CreateMissingRequiredShortCircuits(t *testing.T) {
	out := Run(map[string]any{}, shopSchema(), ActionCreate, nil)

	require.False(t, out.OK())
	assert.Equal(t, []string{msgMissing}, out.Errors["name"])
	assert.Nil(t, out.Cleaned)
}

func TestRun_CreateCoercesEnumAndKeepsOptional(t *testing.T) {
	out := Run(map[string]any{"name": "Alpha", "state": "closed"}, shopSchema(), ActionCreate, nil)

	require.True(t, out.OK())
	assert.Equal(t, "Alpha", out.Cleaned["name"])
	assert.Equal(t, "CL", out.Cleaned["state"])
}

func TestRun_BlankEnumValueGetsGuidance(t *testing.T) {
	out := Run(map[string]any{"name": "Alpha", "state": " "}, shopSchema(), ActionCreate, nil)

	require.False(t, out.OK())
	require.Len(t, out.Errors["state"], 2)
	assert.Equal(t, msgWhitespace, out.Errors["state"][0])
}

func TestRun_InvalidChoiceReportedSeparately(t *testing.T) {
	out := Run(map[string]any{"name": "Alpha", "state": "wat"}, shopSchema(), ActionCreate, nil)

	require.False(t, out.OK())
	assert.True(t, out.Errors.Empty())
	require.Len(t, out.ChoiceErrors["state"], 1)
	assert.Contains(t, out.ChoiceErrors["state"][0], "CLOSED")
}

func TestRun_PartialUpdateCoercedNoopFails(t *testing.T) {
	// Stored state is "OP"; submitting "op" coerces to "OP" and the diff
	// finds nothing new.
	entity := fakeEntity{"name": "Alpha", "state": "OP", "filename": ""}
	out := Run(map[string]any{"state": "op"}, shopSchema(), ActionPartialUpdate, entity)

	require.False(t, out.OK())
	require.Len(t, out.Errors["detail"], 1)
	assert.Contains(t, out.Errors["detail"][0], ErrNoChanges.Error())
	assert.Contains(t, out.Warnings, "detail")
}

func TestRun_PartialUpdateDropsUnchangedFields(t *testing.T) {
	entity := fakeEntity{"name": "Alpha", "state": "OP", "filename": ""}
	out := Run(map[string]any{"name": "Alpha", "state": "closed"}, shopSchema(), ActionPartialUpdate, entity)

	require.True(t, out.OK())
	assert.Equal(t, map[string]any{"state": "CL"}, out.Cleaned)
}

func TestRun_PartialUpdateAllowsOmittedRequired(t *testing.T) {
	entity := fakeEntity{"name": "Alpha", "state": "OP", "filename": ""}
	out := Run(map[string]any{"filename": "price.yaml"}, shopSchema(), ActionPartialUpdate, entity)

	require.True(t, out.OK())
	assert.Equal(t, map[string]any{"filename": "price.yaml"}, out.Cleaned)
}

func TestRun_FullUpdateBackfillIsTotal(t *testing.T) {
	entity := fakeEntity{"name": "Alpha", "state": "OP", "filename": "old.yaml"}
	out := Run(map[string]any{"name": "Beta"}, shopSchema(), ActionFullUpdate, entity)

	require.True(t, out.OK())
	// every editable field appears: changed, defaulted or nulled
	assert.Equal(t, "Beta", out.Cleaned["name"])
	assert.Equal(t, "OP", out.Cleaned["state"])
	val, present := out.Cleaned["filename"]
	assert.True(t, present)
	assert.Nil(t, val)
}

func TestRun_FullUpdateMissingMandatoryField(t *testing.T) {
	schema := Schema{
		Required:   []string{"city"},
		Additional: []string{"street"},
		Fields: map[string]FieldSpec{
			"city":   {},
			"street": {}, // neither nullable nor defaulted
		},
	}.MustValidate()
	entity := fakeEntity{"city": "Riga", "street": "Main"}
	out := Run(map[string]any{"city": "Tartu"}, schema, ActionFullUpdate, entity)

	require.False(t, out.OK())
	assert.Equal(t, []string{msgMissing}, out.Errors["street"])
}

func TestRun_UnknownFieldsIgnoredWithNotice(t *testing.T) {
	entity := fakeEntity{"name": "Alpha", "state": "OP", "filename": ""}
	out := Run(map[string]any{"name": "Beta", "ghost": "x"}, shopSchema(), ActionPartialUpdate, entity)

	require.True(t, out.OK())
	assert.Equal(t, reasonUnknown, out.Ignored["ghost"])
	_, present := out.Cleaned["ghost"]
	assert.False(t, present)
}

func TestFieldErrors_ErrorIsStable(t *testing.T) {
	fe := FieldErrors{}
	fe.Add("b", "two")
	fe.Add("a", "one")
	assert.True(t, strings.HasPrefix(fe.Error(), "a: one"))
}
