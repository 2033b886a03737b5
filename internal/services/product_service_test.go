package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pos/internal/models"
	"pos/internal/repositories"
	"pos/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testImagePrefix = "https://images.pexels.com/"

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, query repositories.ProductQuery) ([]models.Product, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// Update runs apply against a copy of the product the expectation returns.
func (m *MockProductRepository) Update(ctx context.Context, id string, apply func(product *models.Product) error) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	product := *args.Get(0).(*models.Product)
	if err := apply(&product); err != nil {
		return nil, err
	}
	return &product, args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) ReserveStock(ctx context.Context, items []models.LineItem) ([]models.Product, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

// MockCatalogCache is a mock implementation of cache.CatalogCache
type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) Get(ctx context.Context, key string) ([]models.Product, int64, bool) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Bool(2)
	}
	return args.Get(0).([]models.Product), args.Get(1).(int64), args.Bool(2)
}

func (m *MockCatalogCache) Set(ctx context.Context, key string, generation int64, products []models.Product) {
	m.Called(ctx, key, generation, products)
}

func (m *MockCatalogCache) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }
func strPtr(s string) *string     { return &s }

func TestProductService_ListProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), nil, 10)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", Price: 10.0, Stock: 100},
		{ID: "2", Name: "Product B", Price: 20.0, Stock: 50},
	}
	mockRepo.On("GetAll", ctx, repositories.ProductQuery{Name: "product"}).Return(expectedProducts, nil).Once()

	products, err := service.ListProducts(ctx, "product")
	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_ListProductsUsesCache(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCatalogCache)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), mockCache, 10)

	cached := []models.Product{{ID: "1", Name: "Cached", Stock: 3}}
	mockCache.On("Get", ctx, "list:tea").Return(cached, int64(4), true).Once()

	products, err := service.ListProducts(ctx, " Tea ")
	require.NoError(t, err)
	assert.Equal(t, cached, products)
	mockRepo.AssertNotCalled(t, "GetAll", mock.Anything, mock.Anything)

	fresh := []models.Product{{ID: "2", Name: "Fresh", Stock: 9}}
	// The miss is filled under the generation it was looked up in.
	mockCache.On("Get", ctx, "list:").Return(nil, int64(7), false).Once()
	mockRepo.On("GetAll", ctx, repositories.ProductQuery{}).Return(fresh, nil).Once()
	mockCache.On("Set", ctx, "list:", int64(7), fresh).Once()

	products, err = service.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, fresh, products)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProductService_ListLowStock(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), nil, 7)

	low := []models.Product{{ID: "1", Name: "Dark Chocolate", Stock: 2}}
	mockRepo.On("GetAll", ctx, repositories.ProductQuery{StockBelow: 7, NewestFirst: true}).Return(low, nil).Once()

	products, err := service.ListLowStock(ctx)
	assert.NoError(t, err)
	assert.Equal(t, low, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), nil, 10)

	expectedProduct := &models.Product{ID: "1", Name: "Product A", Price: 10.0, Stock: 100}

	// Test successful retrieval
	mockRepo.On("GetByID", ctx, "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProduct(ctx, "1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	// Test product not found
	mockRepo.On("GetByID", ctx, "99").Return(nil, &models.NotFoundError{ID: "99"}).Once()
	product, err = service.GetProduct(ctx, "99")
	assert.Nil(t, product)
	var notFound *models.NotFoundError
	assert.True(t, errors.As(err, &notFound))
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCatalogCache)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), mockCache, 10)

	req := models.CreateProductRequest{
		Name:    "  Rooibos  ",
		Price:   floatPtr(4.5),
		Stock:   intPtr(30),
		Variety: []string{"vanilla"},
		Images:  []string{testImagePrefix + "photos/1/rooibos.jpeg"},
	}

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.Name == "Rooibos" && p.Price == 4.5 && p.Stock == 30
	})).Return(nil).Once()
	mockCache.On("Invalidate", ctx).Once()

	product, err := service.CreateProduct(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Rooibos", product.Name)
	assert.Nil(t, product.Barcode)
	assert.Equal(t, []string{"vanilla"}, []string(product.Variety))
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)

	// Test creation failure (e.g., database error)
	mockRepo.On("Create", ctx, mock.Anything).Return(fmt.Errorf("database error")).Once()
	_, err = service.CreateProduct(ctx, req)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockCache.AssertNumberOfCalls(t, "Invalidate", 1)
}

func TestProductService_CreateProductRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), nil, 10)

	cases := []struct {
		name  string
		req   models.CreateProductRequest
		field string
	}{
		{"missing name", models.CreateProductRequest{Price: floatPtr(1), Stock: intPtr(1)}, "name"},
		{"blank name", models.CreateProductRequest{Name: "   ", Price: floatPtr(1), Stock: intPtr(1)}, "name"},
		{"missing price", models.CreateProductRequest{Name: "Tea", Stock: intPtr(1)}, "price"},
		{"negative price", models.CreateProductRequest{Name: "Tea", Price: floatPtr(-1), Stock: intPtr(1)}, "price"},
		{"missing stock", models.CreateProductRequest{Name: "Tea", Price: floatPtr(1)}, "stock"},
		{"negative stock", models.CreateProductRequest{Name: "Tea", Price: floatPtr(1), Stock: intPtr(-3)}, "stock"},
		{"untrusted image", models.CreateProductRequest{
			Name: "Tea", Price: floatPtr(1), Stock: intPtr(1),
			Images: []string{"https://example.com/tea.png"},
		}, "images[0]"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.CreateProduct(ctx, tc.req)
			var validationErr *models.ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
			assert.Contains(t, validationErr.Fields, tc.field)
		})
	}

	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_CreateProductDuplicateBarcode(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), nil, 10)

	mockRepo.On("Create", ctx, mock.Anything).Return(repositories.ErrDuplicateBarcode).Once()

	_, err := service.CreateProduct(ctx, models.CreateProductRequest{
		Name: "Tea", Price: floatPtr(1), Stock: intPtr(1), Barcode: strPtr("123"),
	})
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "must be unique", validationErr.Fields["barcode"])
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCatalogCache)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), mockCache, 10)

	// The repository hands over the record as currently stored, here after
	// a checkout took 3 of 5 units.
	current := &models.Product{ID: "1", Name: "Product A", Price: 10.0, Stock: 2, Variety: []string{"red"}}
	mockRepo.On("Update", ctx, "1").Return(current, nil).Once()
	mockCache.On("Invalidate", ctx).Once()

	product, err := service.UpdateProduct(ctx, "1", models.UpdateProductRequest{Price: floatPtr(12.0)})
	require.NoError(t, err)
	assert.Equal(t, 12.0, product.Price)
	assert.Equal(t, 2, product.Stock)
	assert.Equal(t, "Product A", product.Name)
	assert.Equal(t, []string{"red"}, []string(product.Variety))
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestProductService_UpdateProductValidatesMergedRecord(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCatalogCache)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), mockCache, 10)

	mockRepo.On("Update", ctx, "1").Return(&models.Product{ID: "1", Name: "Product A", Stock: 5}, nil).Once()

	_, err := service.UpdateProduct(ctx, "1", models.UpdateProductRequest{Stock: intPtr(-1)})
	var validationErr *models.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Fields, "stock")

	// Test update of a missing product
	mockRepo.On("Update", ctx, "99").Return(nil, &models.NotFoundError{ID: "99"}).Once()
	_, err = service.UpdateProduct(ctx, "99", models.UpdateProductRequest{Name: strPtr("Nope")})
	var notFound *models.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	// Test duplicate barcode
	mockRepo.On("Update", ctx, "1").Return(nil, repositories.ErrDuplicateBarcode).Once()
	_, err = service.UpdateProduct(ctx, "1", models.UpdateProductRequest{Barcode: strPtr("123")})
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, "must be unique", validationErr.Fields["barcode"])

	mockRepo.AssertExpectations(t)
	mockCache.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	mockCache := new(MockCatalogCache)
	service := services.NewProductService(mockRepo, services.NewValidator(testImagePrefix), mockCache, 10)

	// Test successful deletion
	mockRepo.On("Delete", ctx, "1").Return(nil).Once()
	mockCache.On("Invalidate", ctx).Once()
	err := service.DeleteProduct(ctx, "1")
	assert.NoError(t, err)

	// Test deletion failure (e.g., product not found)
	mockRepo.On("Delete", ctx, "99").Return(&models.NotFoundError{ID: "99"}).Once()
	err = service.DeleteProduct(ctx, "99")
	assert.EqualError(t, err, "Product 99 not found")
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}
