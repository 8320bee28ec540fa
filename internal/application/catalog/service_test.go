package catalog

import (
	"context"
	"testing"

	"github.com/sellpoint/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCategoryStore struct{ mock.Mock }

func (m *mockCategoryStore) Put(ctx context.Context, c *domain.Category) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCategoryStore) Get(ctx context.Context, categoryID string) (*domain.Category, error) {
	args := m.Called(ctx, categoryID)
	if c, _ := args.Get(0).(*domain.Category); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryStore) GetByCatalogNumber(ctx context.Context, number int) (*domain.Category, error) {
	args := m.Called(ctx, number)
	if c, _ := args.Get(0).(*domain.Category); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	if cs, _ := args.Get(0).([]domain.Category); cs != nil {
		return cs, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryStore) Update(ctx context.Context, categoryID string, updates map[string]interface{}) error {
	return m.Called(ctx, categoryID, updates).Error(0)
}

type mockProductStore struct{ mock.Mock }

func (m *mockProductStore) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductStore) ListByCategory(ctx context.Context, categoryID string) ([]domain.Product, error) {
	args := m.Called(ctx, categoryID)
	if ps, _ := args.Get(0).([]domain.Product); ps != nil {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductStore) List(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	if ps, _ := args.Get(0).([]domain.Product); ps != nil {
		return ps, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockInfoStore struct{ mock.Mock }

func (m *mockInfoStore) List(ctx context.Context) ([]domain.ProductInfo, error) {
	args := m.Called(ctx)
	if pis, _ := args.Get(0).([]domain.ProductInfo); pis != nil {
		return pis, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockShopStore struct{ mock.Mock }

func (m *mockShopStore) List(ctx context.Context, state string) ([]domain.Shop, error) {
	args := m.Called(ctx, state)
	if shops, _ := args.Get(0).([]domain.Shop); shops != nil {
		return shops, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestService() (Service, *mockCategoryStore, *mockProductStore, *mockInfoStore, *mockShopStore) {
	categories := &mockCategoryStore{}
	products := &mockProductStore{}
	infos := &mockInfoStore{}
	shops := &mockShopStore{}
	return NewService(categories, products, infos, shops), categories, products, infos, shops
}

var admin = &domain.User{UserID: "adm", Role: domain.RoleAdmin}

func TestUpsertCategory_AdminOnly(t *testing.T) {
	svc, _, _, _, _ := newTestService()
	_, err := svc.UpsertCategory(context.Background(),
		&domain.User{UserID: "u1", Role: domain.RoleUser}, "Smartphones", 224)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpsertCategory_CreatesWhenUnknown(t *testing.T) {
	svc, categories, _, _, _ := newTestService()
	categories.On("GetByCatalogNumber", mock.Anything, 224).Return(nil, domain.ErrNotFound)
	categories.On("Put", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Smartphones" && c.CatalogNumber == 224
	})).Return(nil)

	c, err := svc.UpsertCategory(context.Background(), admin, "Smartphones", 224)
	require.NoError(t, err)
	assert.NotEmpty(t, c.CategoryID)
	categories.AssertExpectations(t)
}

func TestUpsertCategory_RenamesExisting(t *testing.T) {
	svc, categories, _, _, _ := newTestService()
	categories.On("GetByCatalogNumber", mock.Anything, 224).
		Return(&domain.Category{CategoryID: "cat1", Name: "Old", CatalogNumber: 224}, nil)
	categories.On("Update", mock.Anything, "cat1",
		map[string]interface{}{"name": "Smartphones"}).Return(nil)

	c, err := svc.UpsertCategory(context.Background(), admin, "Smartphones", 224)
	require.NoError(t, err)
	assert.Equal(t, "cat1", c.CategoryID)
	assert.Equal(t, "Smartphones", c.Name)
}

func TestUpsertCategory_SameNameIsNoop(t *testing.T) {
	svc, categories, _, _, _ := newTestService()
	categories.On("GetByCatalogNumber", mock.Anything, 224).
		Return(&domain.Category{CategoryID: "cat1", Name: "Smartphones", CatalogNumber: 224}, nil)

	_, err := svc.UpsertCategory(context.Background(), admin, "Smartphones", 224)
	require.NoError(t, err)
	categories.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestPriceList_FiltersClosedShopsAndOutOfStock(t *testing.T) {
	svc, categories, products, infos, shops := newTestService()
	shops.On("List", mock.Anything, domain.ShopOpen).
		Return([]domain.Shop{{ShopID: "sh1", Name: "Svyaznoy", State: domain.ShopOpen}}, nil)
	infos.On("List", mock.Anything).Return([]domain.ProductInfo{
		{ProductInfoID: "pi1", ProductID: "p1", ShopID: "sh1", Model: "a/b", Quantity: 3, Price: 100, PriceRRC: 120},
		{ProductInfoID: "pi2", ProductID: "p1", ShopID: "sh-closed", Quantity: 3, Price: 100},
		{ProductInfoID: "pi3", ProductID: "p1", ShopID: "sh1", Quantity: 0, Price: 100},
	}, nil)
	products.On("Get", mock.Anything, "p1").
		Return(&domain.Product{ProductID: "p1", Name: "iPhone", CategoryID: "cat1"}, nil)
	categories.On("Get", mock.Anything, "cat1").
		Return(&domain.Category{CategoryID: "cat1", Name: "Smartphones"}, nil)

	entries, err := svc.PriceList(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pi1", entries[0].ProductInfoID)
	assert.Equal(t, "Svyaznoy", entries[0].Shop)
	assert.Equal(t, "Smartphones", entries[0].Category)
	assert.Equal(t, "iPhone", entries[0].Product)
	// The category lookup is cached per id.
	categories.AssertNumberOfCalls(t, "Get", 1)
}

func TestPriceList_NarrowsByShopAndCategory(t *testing.T) {
	svc, categories, products, infos, shops := newTestService()
	shops.On("List", mock.Anything, domain.ShopOpen).Return([]domain.Shop{
		{ShopID: "sh1", Name: "Svyaznoy", State: domain.ShopOpen},
		{ShopID: "sh2", Name: "Evotor", State: domain.ShopOpen},
	}, nil)
	infos.On("List", mock.Anything).Return([]domain.ProductInfo{
		{ProductInfoID: "pi1", ProductID: "p1", ShopID: "sh1", Quantity: 3, Price: 100},
		{ProductInfoID: "pi2", ProductID: "p2", ShopID: "sh1", Quantity: 3, Price: 100},
		{ProductInfoID: "pi3", ProductID: "p1", ShopID: "sh2", Quantity: 3, Price: 100},
	}, nil)
	products.On("Get", mock.Anything, "p1").
		Return(&domain.Product{ProductID: "p1", Name: "iPhone", CategoryID: "cat1"}, nil)
	products.On("Get", mock.Anything, "p2").
		Return(&domain.Product{ProductID: "p2", Name: "Flash drive", CategoryID: "cat2"}, nil)
	categories.On("Get", mock.Anything, "cat1").
		Return(&domain.Category{CategoryID: "cat1", Name: "Smartphones"}, nil)

	entries, err := svc.PriceList(context.Background(), "sh1", "cat1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "pi1", entries[0].ProductInfoID)
	assert.Equal(t, "Svyaznoy", entries[0].Shop)
}

func TestProducts_ByCategoryOrAll(t *testing.T) {
	svc, _, products, _, _ := newTestService()
	products.On("ListByCategory", mock.Anything, "cat1").
		Return([]domain.Product{{ProductID: "p1"}}, nil)
	products.On("List", mock.Anything).
		Return([]domain.Product{{ProductID: "p1"}, {ProductID: "p2"}}, nil)

	byCat, err := svc.Products(context.Background(), "cat1")
	require.NoError(t, err)
	assert.Len(t, byCat, 1)

	all, err := svc.Products(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
