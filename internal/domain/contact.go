package domain

import (
	"fmt"
	"time"

	"github.com/sellpoint/api/internal/precheck"
)

// Contact is a delivery address owned by one user.
type Contact struct {
	ContactID string    `json:"id" dynamodbav:"contact_id"`
	UserID    string    `json:"-" dynamodbav:"user_id"`
	City      string    `json:"city" dynamodbav:"city"`
	Street    string    `json:"street" dynamodbav:"street"`
	House     string    `json:"house" dynamodbav:"house"`
	Structure string    `json:"structure,omitempty" dynamodbav:"structure"`
	Building  string    `json:"building,omitempty" dynamodbav:"building"`
	Apartment string    `json:"apartment,omitempty" dynamodbav:"apartment"`
	Phone     string    `json:"phone,omitempty" dynamodbav:"phone"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// ContactSchema governs the contact create/update pipeline. Contacts have
// no enum-typed fields.
var ContactSchema = precheck.Schema{
	Required:   []string{"city", "street", "house"},
	Additional: []string{"structure", "building", "apartment", "phone"},
	Fields: map[string]precheck.FieldSpec{
		"id":        {},
		"city":      {},
		"street":    {},
		"house":     {},
		"structure": {Nullable: true},
		"building":  {Nullable: true},
		"apartment": {Nullable: true},
		"phone":     {Nullable: true},
	},
}.MustValidate()

// Field implements precheck.Entity.
func (c *Contact) Field(name string) (string, bool) {
	switch name {
	case "id":
		return c.ContactID, true
	case "city":
		return c.City, true
	case "street":
		return c.Street, true
	case "house":
		return c.House, true
	case "structure":
		return c.Structure, true
	case "building":
		return c.Building, true
	case "apartment":
		return c.Apartment, true
	case "phone":
		return c.Phone, true
	default:
		return "", false
	}
}

// Short renders the compact address line used in order listings.
func (c *Contact) Short() string {
	return fmt.Sprintf("%s, %s %s. Phone %s", c.City, c.Street, c.House, c.Phone)
}
