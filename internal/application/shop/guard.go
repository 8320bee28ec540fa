package shop

import "github.com/sellpoint/api/internal/domain"

// Per-field refusal messages returned inside the structured 403 body.
const (
	msgAdminOnlyName  = "Only an administrator may rename a shop."
	msgSellerOnly     = "Only the shop's sales manager may change its state."
	msgBuyerOnly      = "Only the shop's purchasing manager may change its file."
	msgSlotOccupied   = "This position is already occupied."
	msgAlreadyManages = "You already manage a shop."
	msgSelfAssignOnly = "You may only assign this position to yourself."
	msgOwnSlotOnly    = "You may only vacate your own position."
)

// guardFields evaluates which of the changed fields the actor is allowed
// to touch on a partial shop update. managing is the shop where the actor
// already occupies a manager slot, or nil. Violations accumulate per field;
// a non-nil result means nothing may be persisted.
func guardFields(actor *domain.User, target *domain.Shop, changed map[string]any, managing *domain.Shop) *domain.PermissionError {
	if actor.IsAdmin() {
		return nil
	}
	violations := map[string][]string{}

	for field, value := range changed {
		switch field {
		case "name":
			violations[field] = append(violations[field], msgAdminOnlyName)
		case "state":
			if target.SellerID != actor.UserID {
				violations[field] = append(violations[field], msgSellerOnly)
			}
		case "filename":
			if target.BuyerID != actor.UserID {
				violations[field] = append(violations[field], msgBuyerOnly)
			}
		case "seller":
			guardSlot(actor, target.SellerID, value, managing, violations, field)
		case "buyer":
			guardSlot(actor, target.BuyerID, value, managing, violations, field)
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return &domain.PermissionError{Fields: violations}
}

// guardSlot applies the manager-slot rules: a user may claim an empty slot
// for themselves (unless already managing a shop) and may vacate only
// their own slot. Assigning anyone else is an administrator's move.
func guardSlot(actor *domain.User, current string, value any, managing *domain.Shop, violations map[string][]string, field string) {
	requested := ""
	if s, ok := value.(string); ok {
		requested = s
	}

	switch {
	case requested == actor.UserID:
		if current != "" && current != actor.UserID {
			violations[field] = append(violations[field], msgSlotOccupied)
		}
		if managing != nil {
			violations[field] = append(violations[field], msgAlreadyManages)
		}
	case requested == "":
		if current != actor.UserID {
			violations[field] = append(violations[field], msgOwnSlotOnly)
		}
	default:
		violations[field] = append(violations[field], msgSelfAssignOnly)
	}
}
