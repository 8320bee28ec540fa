package domain

import (
	"time"

	"github.com/sellpoint/api/internal/precheck"
)

// Role names carried in JWT claims.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account authenticated by email. A freshly registered user is
// tentative: inactive and unverified until the emailed proof token is
// confirmed.
type User struct {
	UserID        string     `json:"id" dynamodbav:"user_id"`
	Email         string     `json:"email" dynamodbav:"email"`
	FirstName     string     `json:"first_name" dynamodbav:"first_name"`
	LastName      string     `json:"last_name" dynamodbav:"last_name"`
	Company       string     `json:"company,omitempty" dynamodbav:"company"`
	Position      string     `json:"position,omitempty" dynamodbav:"position"` // PositionEnum value
	PasswordHash  string     `json:"-" dynamodbav:"password_hash"`
	Role          string     `json:"role" dynamodbav:"role"`
	Active        bool       `json:"active" dynamodbav:"active"`
	EmailVerified bool       `json:"email_verified" dynamodbav:"email_verified"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty" dynamodbav:"deleted_at"`
	CreatedAt     time.Time  `json:"created" dynamodbav:"created_at"`
	UpdatedAt     time.Time  `json:"updated" dynamodbav:"updated_at"`
}

// PositionEnum is the manager position a user may hold at a shop.
var PositionEnum = precheck.MustEnum("position",
	precheck.Variant{Name: "SALES", Value: "SL", Label: "Sales manager"},
	precheck.Variant{Name: "BUYER", Value: "BR", Label: "Purchasing manager"},
)

// UserSchema governs the account-update pipeline. Only the personal
// fields are editable through the public update endpoint.
var UserSchema = precheck.Schema{
	Required:   []string{"email", "first_name", "last_name"},
	Additional: []string{"company", "position"},
	Fields: map[string]precheck.FieldSpec{
		"id":             {},
		"email":          {},
		"first_name":     {},
		"last_name":      {},
		"company":        {Nullable: true},
		"position":       {Nullable: true},
		"role":           {},
		"active":         {},
		"email_verified": {},
	},
	Enums: map[string]precheck.EnumSpec{"position": PositionEnum},
}.MustValidate()

// Field implements precheck.Entity.
func (u *User) Field(name string) (string, bool) {
	switch name {
	case "id":
		return u.UserID, true
	case "email":
		return u.Email, true
	case "first_name":
		return u.FirstName, true
	case "last_name":
		return u.LastName, true
	case "company":
		return u.Company, true
	case "position":
		return u.Position, true
	case "role":
		return u.Role, true
	default:
		return "", false
	}
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
