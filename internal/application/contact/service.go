package contact

import (
	"context"
	"fmt"
	"time"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/pkg/id"
	"github.com/sellpoint/api/internal/precheck"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Contact, error)
	Get(ctx context.Context, actor *domain.User, contactID string) (*domain.Contact, error)
	Create(ctx context.Context, userID string, raw map[string]any) (*domain.Contact, precheck.Outcome, error)
	Update(ctx context.Context, actor *domain.User, contactID string, raw map[string]any) (*domain.Contact, precheck.Outcome, error)
	Delete(ctx context.Context, actor *domain.User, contactID string) error
}

type contactStore interface {
	Put(ctx context.Context, c *domain.Contact) error
	Get(ctx context.Context, contactID string) (*domain.Contact, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Contact, error)
	Update(ctx context.Context, contactID string, updates map[string]interface{}) error
	Delete(ctx context.Context, contactID string) error
}

type service struct {
	contacts contactStore
}

func NewService(contacts contactStore) Service {
	return &service{contacts: contacts}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Contact, error) {
	return s.contacts.ListByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, actor *domain.User, contactID string) (*domain.Contact, error) {
	c, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("contact not found: %w", domain.ErrNotFound)
	}
	if c.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, fmt.Errorf("not your contact: %w", domain.ErrForbidden)
	}
	return c, nil
}

func (s *service) Create(ctx context.Context, userID string, raw map[string]any) (*domain.Contact, precheck.Outcome, error) {
	out := precheck.Run(raw, domain.ContactSchema, precheck.ActionCreate, nil)
	if !out.OK() {
		return nil, out, fmt.Errorf("contact rejected: %w", domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	c := &domain.Contact{
		ContactID: id.New(),
		UserID:    userID,
		City:      asString(out.Cleaned["city"]),
		Street:    asString(out.Cleaned["street"]),
		House:     asString(out.Cleaned["house"]),
		Structure: asString(out.Cleaned["structure"]),
		Building:  asString(out.Cleaned["building"]),
		Apartment: asString(out.Cleaned["apartment"]),
		Phone:     asString(out.Cleaned["phone"]),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.contacts.Put(ctx, c); err != nil {
		return nil, out, err
	}
	return c, out, nil
}

func (s *service) Update(ctx context.Context, actor *domain.User, contactID string, raw map[string]any) (*domain.Contact, precheck.Outcome, error) {
	c, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, precheck.Outcome{}, fmt.Errorf("contact not found: %w", domain.ErrNotFound)
	}
	if c.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, precheck.Outcome{}, fmt.Errorf("not your contact: %w", domain.ErrForbidden)
	}

	out := precheck.Run(raw, domain.ContactSchema, precheck.ActionPartialUpdate, c)
	if !out.OK() {
		return nil, out, fmt.Errorf("update rejected: %w", domain.ErrBadRequest)
	}

	updates := make(map[string]interface{}, len(out.Cleaned))
	for field, value := range out.Cleaned {
		updates[field] = value
	}
	if err := s.contacts.Update(ctx, contactID, updates); err != nil {
		return nil, out, err
	}
	fresh, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return nil, out, err
	}
	return fresh, out, nil
}

func (s *service) Delete(ctx context.Context, actor *domain.User, contactID string) error {
	c, err := s.contacts.Get(ctx, contactID)
	if err != nil {
		return fmt.Errorf("contact not found: %w", domain.ErrNotFound)
	}
	if c.UserID != actor.UserID && !actor.IsAdmin() {
		return fmt.Errorf("not your contact: %w", domain.ErrForbidden)
	}
	return s.contacts.Delete(ctx, contactID)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
