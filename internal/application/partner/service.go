package partner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sellpoint/api/internal/domain"
	"github.com/sellpoint/api/internal/pkg/id"
	"gopkg.in/yaml.v3"
)

// priceList is the partner upload format. Category and goods ids are the
// partner's external catalog numbers, not ours.
type priceList struct {
	Shop       string `yaml:"shop"`
	Categories []struct {
		ID   int    `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"categories"`
	Goods []struct {
		ID         int            `yaml:"id"`
		Category   int            `yaml:"category"`
		Model      string         `yaml:"model"`
		Name       string         `yaml:"name"`
		Price      int            `yaml:"price"`
		PriceRRC   int            `yaml:"price_rrc"`
		Quantity   int            `yaml:"quantity"`
		Parameters map[string]any `yaml:"parameters"`
	} `yaml:"goods"`
}

// ImportReport summarizes one price-list import.
type ImportReport struct {
	Shop     string            `json:"shop"`
	Received int               `json:"received"`
	Loaded   int               `json:"loaded"`
	Skipped  int               `json:"skipped"`
	Errors   map[string]string `json:"errors,omitempty"`
	Archive  string            `json:"archive,omitempty"`
}

type Service interface {
	Import(ctx context.Context, actor *domain.User, doc []byte) (*ImportReport, error)
}

type shopStore interface {
	GetByName(ctx context.Context, name string) (*domain.Shop, error)
	Update(ctx context.Context, shopID string, updates map[string]interface{}) error
}

type categoryStore interface {
	Put(ctx context.Context, c *domain.Category) error
	GetByCatalogNumber(ctx context.Context, number int) (*domain.Category, error)
	LinkShop(ctx context.Context, categoryID, shopID string) error
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	GetByName(ctx context.Context, categoryID, name string) (*domain.Product, error)
}

type productInfoStore interface {
	Put(ctx context.Context, pi *domain.ProductInfo) error
	DeleteByShop(ctx context.Context, shopID string) error
}

type archiveStore interface {
	UploadBytes(ctx context.Context, key string, data []byte) (string, error)
}

type service struct {
	shops      shopStore
	categories categoryStore
	products   productStore
	infos      productInfoStore
	archive    archiveStore
}

type ServiceDeps struct {
	ShopRepo        shopStore
	CategoryRepo    categoryStore
	ProductRepo     productStore
	ProductInfoRepo productInfoStore
	Archive         archiveStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		shops:      deps.ShopRepo,
		categories: deps.CategoryRepo,
		products:   deps.ProductRepo,
		infos:      deps.ProductInfoRepo,
		archive:    deps.Archive,
	}
}

// Import replaces the shop's published offers with the uploaded price
// list. Only the shop's purchasing manager may import. The raw document is
// archived to object storage before any catalog writes.
func (s *service) Import(ctx context.Context, actor *domain.User, doc []byte) (*ImportReport, error) {
	var list priceList
	if err := yaml.Unmarshal(doc, &list); err != nil {
		return nil, fmt.Errorf("malformed price list: %w", domain.ErrBadRequest)
	}
	if list.Shop == "" {
		return nil, fmt.Errorf("price list names no shop: %w", domain.ErrBadRequest)
	}

	sh, err := s.shops.GetByName(ctx, list.Shop)
	if err != nil {
		return nil, fmt.Errorf("shop %q not found: %w", list.Shop, domain.ErrNotFound)
	}
	if sh.BuyerID != actor.UserID {
		return nil, fmt.Errorf("only the shop's purchasing manager may import: %w", domain.ErrForbidden)
	}

	key := fmt.Sprintf("price-lists/%s/%d.yaml", sh.ShopID, time.Now().UTC().Unix())
	archiveURL, err := s.archive.UploadBytes(ctx, key, doc)
	if err != nil {
		return nil, fmt.Errorf("archive price list: %w", err)
	}
	if err := s.shops.Update(ctx, sh.ShopID, map[string]interface{}{"filename": key}); err != nil {
		return nil, err
	}

	// Upsert categories and remember our id per external catalog number.
	categoryIDs := make(map[int]string, len(list.Categories))
	for _, cat := range list.Categories {
		c, err := s.categories.GetByCatalogNumber(ctx, cat.ID)
		if err != nil {
			now := time.Now().UTC()
			c = &domain.Category{
				CategoryID:    id.New(),
				Name:          cat.Name,
				CatalogNumber: cat.ID,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.categories.Put(ctx, c); err != nil {
				return nil, err
			}
		}
		if err := s.categories.LinkShop(ctx, c.CategoryID, sh.ShopID); err != nil {
			return nil, err
		}
		categoryIDs[cat.ID] = c.CategoryID
	}

	// The previous offers are dropped wholesale: the price list is the
	// shop's complete current assortment.
	if err := s.infos.DeleteByShop(ctx, sh.ShopID); err != nil {
		return nil, err
	}

	report := &ImportReport{
		Shop:     sh.Name,
		Received: len(list.Goods),
		Errors:   map[string]string{},
		Archive:  archiveURL,
	}
	seen := map[int]bool{}
	for _, g := range list.Goods {
		extID := fmt.Sprintf("%d", g.ID)
		if seen[g.ID] {
			report.Errors[extID] = "duplicate external id"
			report.Skipped++
			continue
		}
		seen[g.ID] = true
		categoryID, ok := categoryIDs[g.Category]
		if !ok {
			report.Errors[extID] = fmt.Sprintf("unknown category %d", g.Category)
			report.Skipped++
			continue
		}
		if g.Name == "" || g.Quantity < 0 || g.Price < 0 {
			report.Errors[extID] = "invalid product data"
			report.Skipped++
			continue
		}

		p, err := s.products.GetByName(ctx, categoryID, g.Name)
		if err != nil {
			p = &domain.Product{
				ProductID:  id.New(),
				Name:       g.Name,
				CategoryID: categoryID,
				CreatedAt:  time.Now().UTC(),
			}
			if err := s.products.Put(ctx, p); err != nil {
				return nil, err
			}
		}

		params := make([]domain.ProductParameter, 0, len(g.Parameters))
		for name, value := range g.Parameters {
			params = append(params, domain.ProductParameter{
				Name:  name,
				Value: fmt.Sprintf("%v", value),
			})
		}
		now := time.Now().UTC()
		pi := &domain.ProductInfo{
			ProductInfoID: id.New(),
			ProductID:     p.ProductID,
			ShopID:        sh.ShopID,
			Model:         g.Model,
			CatalogNumber: g.ID,
			Quantity:      g.Quantity,
			Price:         g.Price,
			PriceRRC:      g.PriceRRC,
			Parameters:    params,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.infos.Put(ctx, pi); err != nil {
			return nil, err
		}
		report.Loaded++
	}

	slog.Info("price list imported",
		"shop", sh.Name, "received", report.Received,
		"loaded", report.Loaded, "skipped", report.Skipped)
	return report, nil
}
