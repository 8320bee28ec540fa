package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/pkg/id"
	"github.com/sellpoint/api/internal/precheck"
)

type Service interface {
	List(ctx context.Context, stateToken string) ([]domain.Shop, error)
	Get(ctx context.Context, shopID string) (*domain.Shop, error)
	Create(ctx context.Context, actor *domain.User, raw map[string]any) (*domain.Shop, precheck.Outcome, error)
	FullUpdate(ctx context.Context, actor *domain.User, shopID string, raw map[string]any) (*domain.Shop, precheck.Outcome, error)
	PartialUpdate(ctx context.Context, actor *domain.User, shopID string, raw map[string]any) (*domain.Shop, precheck.Outcome, error)
	Delete(ctx context.Context, actor *domain.User, shopID string) error
}

type shopStore interface {
	Put(ctx context.Context, s *domain.Shop) error
	Get(ctx context.Context, shopID string) (*domain.Shop, error)
	GetByName(ctx context.Context, name string) (*domain.Shop, error)
	List(ctx context.Context, state string) ([]domain.Shop, error)
	Update(ctx context.Context, shopID string, updates map[string]interface{}) error
	Delete(ctx context.Context, shopID string) error
	ManagedBy(ctx context.Context, userID string) (*domain.Shop, error)
}

type service struct {
	shops shopStore
}

func NewService(shops shopStore) Service {
	return &service{shops: shops}
}

func (s *service) List(ctx context.Context, stateToken string) ([]domain.Shop, error) {
	state := ""
	if stateToken != "" {
		coerced, err := domain.ShopStateEnum.Coerce(stateToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", err, domain.ErrBadRequest)
		}
		state = coerced
	}
	return s.shops.List(ctx, state)
}

func (s *service) Get(ctx context.Context, shopID string) (*domain.Shop, error) {
	return s.shops.Get(ctx, shopID)
}

func (s *service) Create(ctx context.Context, actor *domain.User, raw map[string]any) (*domain.Shop, precheck.Outcome, error) {
	if !actor.IsAdmin() {
		return nil, precheck.Outcome{}, fmt.Errorf("only administrators may create shops: %w", domain.ErrForbidden)
	}
	out := precheck.Run(raw, domain.ShopSchema, precheck.ActionCreate, nil)
	if !out.OK() {
		return nil, out, fmt.Errorf("shop rejected: %w", domain.ErrBadRequest)
	}
	name := asString(out.Cleaned["name"])
	if _, err := s.shops.GetByName(ctx, name); err == nil {
		return nil, out, fmt.Errorf("shop name already taken: %w", domain.ErrConflict)
	}

	state := asString(out.Cleaned["state"])
	if state == "" {
		state = domain.ShopOpen
	}
	now := time.Now().UTC()
	sh := &domain.Shop{
		ShopID:    id.New(),
		Name:      name,
		State:     state,
		Filename:  asString(out.Cleaned["filename"]),
		SellerID:  asString(out.Cleaned["seller"]),
		BuyerID:   asString(out.Cleaned["buyer"]),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.shops.Put(ctx, sh); err != nil {
		return nil, out, err
	}
	return sh, out, nil
}

func (s *service) FullUpdate(ctx context.Context, actor *domain.User, shopID string, raw map[string]any) (*domain.Shop, precheck.Outcome, error) {
	if !actor.IsAdmin() {
		return nil, precheck.Outcome{}, fmt.Errorf("only administrators may replace a shop: %w", domain.ErrForbidden)
	}
	return s.update(ctx, actor, shopID, raw, precheck.ActionFullUpdate)
}

// PartialUpdate runs the pipeline and then the field guard: the changed
// fields the actor may not touch are refused all together with a
// structured 403.
func (s *service) PartialUpdate(ctx context.Context, actor *domain.User, shopID string, raw map[string]any) (*domain.Shop, precheck.Outcome, error) {
	return s.update(ctx, actor, shopID, raw, precheck.ActionPartialUpdate)
}

func (s *service) update(ctx context.Context, actor *domain.User, shopID string, raw map[string]any, action precheck.Action) (*domain.Shop, precheck.Outcome, error) {
	sh, err := s.shops.Get(ctx, shopID)
	if err != nil {
		return nil, precheck.Outcome{}, fmt.Errorf("shop not found: %w", domain.ErrNotFound)
	}

	out := precheck.Run(raw, domain.ShopSchema, action, sh)
	if !out.OK() {
		return nil, out, fmt.Errorf("update rejected: %w", domain.ErrBadRequest)
	}

	if action == precheck.ActionPartialUpdate && !actor.IsAdmin() {
		managing, err := s.shops.ManagedBy(ctx, actor.UserID)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, out, err
			}
			managing = nil
		}
		if perr := guardFields(actor, sh, out.Cleaned, managing); perr != nil {
			return nil, out, perr
		}
	}

	if name, ok := out.Cleaned["name"].(string); ok {
		if other, err := s.shops.GetByName(ctx, name); err == nil && other.ShopID != shopID {
			return nil, out, fmt.Errorf("shop name already taken: %w", domain.ErrConflict)
		}
	}

	updates := make(map[string]interface{}, len(out.Cleaned))
	for field, value := range out.Cleaned {
		updates[storageField(field)] = value
	}
	if err := s.shops.Update(ctx, shopID, updates); err != nil {
		return nil, out, err
	}
	fresh, err := s.shops.Get(ctx, shopID)
	if err != nil {
		return nil, out, err
	}
	return fresh, out, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, shopID string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("only administrators may delete shops: %w", domain.ErrForbidden)
	}
	if _, err := s.shops.Get(ctx, shopID); err != nil {
		return fmt.Errorf("shop not found: %w", domain.ErrNotFound)
	}
	return s.shops.Delete(ctx, shopID)
}

// storageField maps pipeline field names onto DynamoDB attribute names.
// The manager slots are exposed as "seller"/"buyer" but stored by user id.
func storageField(field string) string {
	switch field {
	case "seller":
		return "seller_id"
	case "buyer":
		return "buyer_id"
	default:
		return field
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
