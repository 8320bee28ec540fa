package domain

import (
	"time"

	"github.com/sellpoint/api/internal/precheck"
)

// Shop state values persisted in storage.
const (
	ShopOpen   = "OP"
	ShopClosed = "CL"
)

// Shop is a governed entity: which fields an actor may change on a
// partial update depends on their relationship to the shop (see the
// shop application package's field guard).
type Shop struct {
	ShopID    string    `json:"id" dynamodbav:"shop_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	State     string    `json:"state" dynamodbav:"state"` // ShopStateEnum value
	Filename  string    `json:"filename,omitempty" dynamodbav:"filename"`
	SellerID  string    `json:"seller,omitempty" dynamodbav:"seller_id"` // sales manager slot
	BuyerID   string    `json:"buyer,omitempty" dynamodbav:"buyer_id"`   // purchasing manager slot
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// ShopStateEnum declares the closed set of shop states.
var ShopStateEnum = precheck.MustEnum("state",
	precheck.Variant{Name: "OPEN", Value: ShopOpen, Label: "Open"},
	precheck.Variant{Name: "CLOSED", Value: ShopClosed, Label: "Closed"},
)

// ShopSchema governs the shop create/update pipeline.
var ShopSchema = precheck.Schema{
	Required:   []string{"name"},
	Additional: []string{"state", "filename", "seller", "buyer"},
	Fields: map[string]precheck.FieldSpec{
		"id":       {},
		"name":     {},
		"state":    {Default: ShopOpen, HasDefault: true},
		"filename": {Nullable: true},
		"seller":   {Nullable: true},
		"buyer":    {Nullable: true},
	},
	Enums: map[string]precheck.EnumSpec{"state": ShopStateEnum},
}.MustValidate()

// Field implements precheck.Entity.
func (s *Shop) Field(name string) (string, bool) {
	switch name {
	case "id":
		return s.ShopID, true
	case "name":
		return s.Name, true
	case "state":
		return s.State, true
	case "filename":
		return s.Filename, true
	case "seller":
		return s.SellerID, true
	case "buyer":
		return s.BuyerID, true
	default:
		return "", false
	}
}

// StateLabel returns the human-readable state for display serializers.
func (s *Shop) StateLabel() string {
	if s.State == ShopClosed {
		return "Closed"
	}
	return "Open"
}
