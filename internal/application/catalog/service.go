package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/pkg/id"
)

// PriceEntry is one row of the public price list: an in-stock offer from
// an open shop, joined with its product and shop names.
type PriceEntry struct {
	Shop          string                    `json:"shop"`
	Category      string                    `json:"category"`
	Product       string                    `json:"product"`
	ProductInfoID string                    `json:"product_info"`
	Model         string                    `json:"model"`
	Quantity      int                       `json:"quantity"`
	Price         int                       `json:"price"`
	PriceRRC      int                       `json:"price_rrc"`
	Parameters    []domain.ProductParameter `json:"product_parameters,omitempty"`
}

type Service interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	UpsertCategory(ctx context.Context, actor *domain.User, name string, catalogNumber int) (*domain.Category, error)
	Products(ctx context.Context, categoryID string) ([]domain.Product, error)
	PriceList(ctx context.Context, shopID, categoryID string) ([]PriceEntry, error)
}

type categoryStore interface {
	Put(ctx context.Context, c *domain.Category) error
	Get(ctx context.Context, categoryID string) (*domain.Category, error)
	GetByCatalogNumber(ctx context.Context, number int) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Update(ctx context.Context, categoryID string, updates map[string]interface{}) error
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type productInfoStore interface {
	List(ctx context.Context) ([]domain.ProductInfo, error)
}

type shopStore interface {
	List(ctx context.Context, state string) ([]domain.Shop, error)
}

type service struct {
	categories categoryStore
	products   productStore
	infos      productInfoStore
	shops      shopStore
}

func NewService(categories categoryStore, products productStore, infos productInfoStore, shops shopStore) Service {
	return &service{categories: categories, products: products, infos: infos, shops: shops}
}

func (s *service) Categories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

// UpsertCategory creates a category or, when the catalog number is already
// known, renames the existing one.
func (s *service) UpsertCategory(ctx context.Context, actor *domain.User, name string, catalogNumber int) (*domain.Category, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("only administrators may manage categories: %w", domain.ErrForbidden)
	}
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrBadRequest)
	}
	existing, err := s.categories.GetByCatalogNumber(ctx, catalogNumber)
	if err == nil {
		if existing.Name != name {
			if err := s.categories.Update(ctx, existing.CategoryID, map[string]interface{}{"name": name}); err != nil {
				return nil, err
			}
			existing.Name = name
		}
		return existing, nil
	}
	now := time.Now().UTC()
	c := &domain.Category{
		CategoryID:    id.New(),
		Name:          name,
		CatalogNumber: catalogNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.categories.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Products(ctx context.Context, categoryID string) ([]domain.Product, error) {
	if categoryID != "" {
		return s.products.ListByCategory(ctx, categoryID)
	}
	return s.products.List(ctx)
}

// PriceList joins every in-stock offer of an open shop with its product
// and category for the public price view. Non-empty shopID or categoryID
// narrow the view to that shop or category.
func (s *service) PriceList(ctx context.Context, shopID, categoryID string) ([]PriceEntry, error) {
	shops, err := s.shops.List(ctx, domain.ShopOpen)
	if err != nil {
		return nil, err
	}
	open := make(map[string]string, len(shops))
	for _, sh := range shops {
		if shopID != "" && sh.ShopID != shopID {
			continue
		}
		open[sh.ShopID] = sh.Name
	}

	infos, err := s.infos.List(ctx)
	if err != nil {
		return nil, err
	}

	categoryNames := map[string]string{}
	entries := make([]PriceEntry, 0, len(infos))
	for _, pi := range infos {
		shopName, ok := open[pi.ShopID]
		if !ok || pi.Quantity <= 0 {
			continue
		}
		p, err := s.products.Get(ctx, pi.ProductID)
		if err != nil {
			return nil, err
		}
		if categoryID != "" && p.CategoryID != categoryID {
			continue
		}
		categoryName, ok := categoryNames[p.CategoryID]
		if !ok {
			c, err := s.categories.Get(ctx, p.CategoryID)
			if err != nil {
				return nil, err
			}
			categoryName = c.Name
			categoryNames[p.CategoryID] = categoryName
		}
		entries = append(entries, PriceEntry{
			Shop:          shopName,
			Category:      categoryName,
			Product:       p.Name,
			ProductInfoID: pi.ProductInfoID,
			Model:         pi.Model,
			Quantity:      pi.Quantity,
			Price:         pi.Price,
			PriceRRC:      pi.PriceRRC,
			Parameters:    pi.Parameters,
		})
	}
	return entries, nil
}
