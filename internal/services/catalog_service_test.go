package services_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"
	"katalog/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(categoryID string) ([]models.Product, error) {
	args := m.Called(categoryID)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockCategoryRepository is a mock implementation of repositories.CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll() ([]models.Category, error) {
	args := m.Called()
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *MockCategoryRepository) GetByID(id string) (*models.Category, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(category *models.Category) error {
	args := m.Called(category)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCatalogEvent(event string, payload interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

func newCatalogService(productRepo *MockProductRepository, categoryRepo *MockCategoryRepository, publisher services.EventPublisher) (*services.CatalogService, *storage.MockUploader) {
	uploader := storage.NewMockUploader()
	return services.NewCatalogService(productRepo, categoryRepo, uploader, publisher), uploader
}

func validInput() services.ProductInput {
	return services.ProductInput{
		Name:       "Widget",
		Price:      1500,
		CategoryID: "cat-1",
		ImageURL:   "https://store/img1.jpeg",
	}
}

func TestCatalogService_ListProducts(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, _ := newCatalogService(mockProducts, mockCategories, nil)

	expected := []models.Product{
		{ID: "1", Name: "Espresso Blend", Price: 12000, CategoryID: "cat-1"},
		{ID: "2", Name: "Cold Brew Kit", Price: 25000, CategoryID: "cat-2"},
	}

	// The ALL sentinel maps to an unfiltered repository query.
	mockProducts.On("GetAll", "").Return(expected, nil).Once()
	products, err := service.ListProducts(services.CategoryFilterAll)
	assert.NoError(t, err)
	assert.Equal(t, expected, products)

	// A concrete category id is passed through as the filter.
	mockProducts.On("GetAll", "cat-1").Return(expected[:1], nil).Once()
	products, err = service.ListProducts("cat-1")
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "Espresso Blend", products[0].Name)

	mockProducts.AssertExpectations(t)
}

func TestCatalogService_ListCategories(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, _ := newCatalogService(mockProducts, mockCategories, nil)

	expected := []models.Category{
		{ID: "cat-1", Name: "Coffee"},
		{ID: "cat-2", Name: "Pastry"},
	}
	mockCategories.On("GetAll").Return(expected, nil).Once()

	categories, err := service.ListCategories()
	assert.NoError(t, err)
	assert.Equal(t, expected, categories)
	mockCategories.AssertExpectations(t)
}

func TestCatalogService_CreateProduct(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	mockPublisher := new(MockEventPublisher)
	service, _ := newCatalogService(mockProducts, mockCategories, mockPublisher)

	input := validInput()
	mockCategories.On("GetByID", "cat-1").Return(&models.Category{ID: "cat-1", Name: "Coffee"}, nil).Once()
	mockProducts.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockPublisher.On("PublishCatalogEvent", "catalog.product.created", mock.Anything).Return(nil).Once()

	product, err := service.CreateProduct(input)
	assert.NoError(t, err)
	assert.NotEmpty(t, product.ID)
	assert.Equal(t, "Widget", product.Name)
	assert.Equal(t, int64(1500), product.Price)
	assert.Equal(t, "cat-1", product.CategoryID)
	assert.Equal(t, "https://store/img1.jpeg", product.ImageURL)

	mockProducts.AssertExpectations(t)
	mockCategories.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_ValidationErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*services.ProductInput)
	}{
		{"name too short", func(in *services.ProductInput) { in.Name = "ab" }},
		{"name too long", func(in *services.ProductInput) { in.Name = strings.Repeat("x", 51) }},
		{"price below minimum", func(in *services.ProductInput) { in.Price = 999 }},
		{"price missing", func(in *services.ProductInput) { in.Price = 0 }},
		{"category missing", func(in *services.ProductInput) { in.CategoryID = "" }},
		{"image URL invalid", func(in *services.ProductInput) { in.ImageURL = "not-a-url" }},
		{"image URL missing", func(in *services.ProductInput) { in.ImageURL = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockProducts := new(MockProductRepository)
			mockCategories := new(MockCategoryRepository)
			service, _ := newCatalogService(mockProducts, mockCategories, nil)

			input := validInput()
			tc.mutate(&input)

			product, err := service.CreateProduct(input)
			assert.Nil(t, product)
			assert.ErrorIs(t, err, services.ErrValidation)

			// Validation failures must not reach any gateway.
			mockProducts.AssertNotCalled(t, "Create", mock.Anything)
			mockCategories.AssertNotCalled(t, "GetByID", mock.Anything)
		})
	}
}

func TestCatalogService_CreateProduct_CategoryDoesNotExist(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, _ := newCatalogService(mockProducts, mockCategories, nil)

	input := validInput()
	input.CategoryID = "cat-missing"
	mockCategories.On("GetByID", "cat-missing").
		Return(nil, fmt.Errorf("category cat-missing: %w", repositories.ErrNotFound)).Once()

	product, err := service.CreateProduct(input)
	assert.Nil(t, product)
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
	assert.NotErrorIs(t, err, services.ErrValidation)

	mockProducts.AssertNotCalled(t, "Create", mock.Anything)
	mockCategories.AssertExpectations(t)
}

func TestCatalogService_CreateProduct_PublishFailureDoesNotFailMutation(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	mockPublisher := new(MockEventPublisher)
	service, _ := newCatalogService(mockProducts, mockCategories, mockPublisher)

	mockCategories.On("GetByID", "cat-1").Return(&models.Category{ID: "cat-1"}, nil).Once()
	mockProducts.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockPublisher.On("PublishCatalogEvent", "catalog.product.created", mock.Anything).
		Return(fmt.Errorf("broker unavailable")).Once()

	product, err := service.CreateProduct(validInput())
	assert.NoError(t, err)
	assert.NotNil(t, product)
	mockPublisher.AssertExpectations(t)
}

func TestCatalogService_EditProduct(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	mockPublisher := new(MockEventPublisher)
	service, _ := newCatalogService(mockProducts, mockCategories, mockPublisher)

	existing := &models.Product{
		ID:         "prod-1",
		Name:       "Widget",
		Price:      1500,
		CategoryID: "cat-1",
		ImageURL:   "https://store/img1.jpeg",
	}
	input := validInput()
	input.Price = 2000

	mockProducts.On("GetByID", "prod-1").Return(existing, nil).Once()
	mockCategories.On("GetByID", "cat-1").Return(&models.Category{ID: "cat-1", Name: "Coffee"}, nil).Once()
	mockProducts.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	updated := &models.Product{
		ID:         "prod-1",
		Name:       "Widget",
		Price:      2000,
		CategoryID: "cat-1",
		Category:   &models.Category{ID: "cat-1", Name: "Coffee"},
		ImageURL:   "https://store/img1.jpeg",
	}
	mockProducts.On("GetByID", "prod-1").Return(updated, nil).Once()
	mockPublisher.On("PublishCatalogEvent", "catalog.product.updated", mock.Anything).Return(nil).Once()

	result, err := service.EditProduct("prod-1", input)
	assert.NoError(t, err)
	assert.Equal(t, int64(2000), result.Price)
	assert.Equal(t, "Widget", result.Name)
	assert.NotNil(t, result.Category)
	assert.Equal(t, "Coffee", result.Category.Name)

	mockProducts.AssertExpectations(t)
	mockCategories.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestCatalogService_EditProduct_NotFound(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, _ := newCatalogService(mockProducts, mockCategories, nil)

	mockProducts.On("GetByID", "prod-99").
		Return(nil, fmt.Errorf("product prod-99: %w", repositories.ErrNotFound)).Once()

	result, err := service.EditProduct("prod-99", validInput())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockProducts.AssertNotCalled(t, "Update", mock.Anything)
}

func TestCatalogService_EditProduct_CategoryDoesNotExist(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, _ := newCatalogService(mockProducts, mockCategories, nil)

	existing := &models.Product{ID: "prod-1", Name: "Widget", Price: 1500, CategoryID: "cat-1", ImageURL: "https://store/img1.jpeg"}
	input := validInput()
	input.CategoryID = "cat-missing"

	mockProducts.On("GetByID", "prod-1").Return(existing, nil).Once()
	mockCategories.On("GetByID", "cat-missing").
		Return(nil, fmt.Errorf("category cat-missing: %w", repositories.ErrNotFound)).Once()

	result, err := service.EditProduct("prod-1", input)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, services.ErrCategoryNotFound)
	mockProducts.AssertNotCalled(t, "Update", mock.Anything)
}

func TestCatalogService_DeleteProduct(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	mockPublisher := new(MockEventPublisher)
	service, _ := newCatalogService(mockProducts, mockCategories, mockPublisher)

	existing := &models.Product{ID: "prod-1", Name: "Widget", Price: 1500, CategoryID: "cat-1", ImageURL: "https://store/img1.jpeg"}
	mockProducts.On("GetByID", "prod-1").Return(existing, nil).Once()
	mockProducts.On("Delete", "prod-1").Return(nil).Once()
	mockPublisher.On("PublishCatalogEvent", "catalog.product.deleted", mock.Anything).Return(nil).Once()

	// Delete returns the record's prior state.
	deleted, err := service.DeleteProduct("prod-1")
	assert.NoError(t, err)
	assert.Equal(t, existing, deleted)

	mockProducts.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestCatalogService_DeleteProduct_NotFound(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, _ := newCatalogService(mockProducts, mockCategories, nil)

	mockProducts.On("GetByID", "prod-99").
		Return(nil, fmt.Errorf("product prod-99: %w", repositories.ErrNotFound)).Once()

	deleted, err := service.DeleteProduct("prod-99")
	assert.Nil(t, deleted)
	assert.ErrorIs(t, err, services.ErrProductNotFound)
	mockProducts.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestCatalogService_CreateProductImageUploadURL(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, uploader := newCatalogService(mockProducts, mockCategories, nil)

	first, err := service.CreateProductImageUploadURL(context.Background())
	assert.NoError(t, err)
	assert.NotEmpty(t, first.Token)
	assert.NotEmpty(t, first.SignedURL)
	assert.True(t, strings.HasSuffix(first.Path, ".jpeg"))

	second, err := service.CreateProductImageUploadURL(context.Background())
	assert.NoError(t, err)
	assert.NotEqual(t, first.Path, second.Path, "issued keys must be distinct")
	assert.Len(t, uploader.IssuedKeys(), 2)
}

func TestCatalogService_CreateProductImageUploadURL_GatewayFailure(t *testing.T) {
	mockProducts := new(MockProductRepository)
	mockCategories := new(MockCategoryRepository)
	service, uploader := newCatalogService(mockProducts, mockCategories, nil)
	uploader.Fail = true

	signed, err := service.CreateProductImageUploadURL(context.Background())
	assert.Nil(t, signed)
	assert.ErrorIs(t, err, services.ErrStorageUnavailable)
	assert.NotErrorIs(t, err, services.ErrValidation)
}
