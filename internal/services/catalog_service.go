package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/pkg/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CategoryFilterAll is the reserved sentinel meaning "no category filter".
const CategoryFilterAll = "ALL"

// ProductInput carries the client-writable fields of a product. Create and
// edit share it: edits are full replacements, every field must be resent.
type ProductInput struct {
	Name       string `json:"name" validate:"required,min=3,max=50"`
	Price      int64  `json:"price" validate:"required,min=1000"`
	CategoryID string `json:"categoryId" validate:"required"`
	ImageURL   string `json:"imageUrl" validate:"required,url"`
}

// EventPublisher publishes catalog mutation events. Satisfied by
// *rabbitmq.Client; a nil publisher disables eventing.
type EventPublisher interface {
	PublishCatalogEvent(event string, payload interface{}) error
}

// CatalogService handles business logic for the product catalog: input
// validation, referential checks, persistence, upload-URL issuance, and
// mutation events.
type CatalogService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	uploader     storage.Uploader
	publisher    EventPublisher
	validate     *validator.Validate
}

// NewCatalogService creates a new CatalogService. publisher may be nil.
func NewCatalogService(
	productRepo repositories.ProductRepository,
	categoryRepo repositories.CategoryRepository,
	uploader storage.Uploader,
	publisher EventPublisher,
) *CatalogService {
	return &CatalogService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		uploader:     uploader,
		publisher:    publisher,
		validate:     validator.New(),
	}
}

// ListProducts returns all products joined with their category, optionally
// filtered. An empty filter or CategoryFilterAll returns the full set.
func (s *CatalogService) ListProducts(categoryID string) ([]models.Product, error) {
	if categoryID == CategoryFilterAll {
		categoryID = ""
	}
	return s.productRepo.GetAll(categoryID)
}

// ListCategories returns the full set of categories.
func (s *CatalogService) ListCategories() ([]models.Category, error) {
	return s.categoryRepo.GetAll()
}

// GetProductByID retrieves a single product with its category joined.
func (s *CatalogService) GetProductByID(id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
		}
		return nil, err
	}
	return product, nil
}

// CreateProduct validates the input, checks the referenced category exists,
// and inserts a new product row. The image URL is stored as supplied; the
// service never fetches or verifies its content.
func (s *CatalogService) CreateProduct(input ProductInput) (*models.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, err := s.categoryRepo.GetByID(input.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, input.CategoryID)
		}
		return nil, err
	}

	product := &models.Product{
		ID:         uuid.New().String(),
		Name:       input.Name,
		Price:      input.Price,
		CategoryID: input.CategoryID,
		ImageURL:   input.ImageURL,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	s.publishEvent("catalog.product.created", product)
	return product, nil
}

// EditProduct validates the input and replaces every client-writable field
// of the target product. There is no partial-patch mode. Returns the updated
// record with its category joined.
func (s *CatalogService) EditProduct(productID string, input ProductInput) (*models.Product, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	existing, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}
	if _, err := s.categoryRepo.GetByID(input.CategoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, input.CategoryID)
		}
		return nil, err
	}

	existing.Name = input.Name
	existing.Price = input.Price
	existing.CategoryID = input.CategoryID
	existing.ImageURL = input.ImageURL
	if err := s.productRepo.Update(existing); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}

	// Re-read so the response carries the new category joined in.
	updated, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}

	s.publishEvent("catalog.product.updated", updated)
	return updated, nil
}

// DeleteProduct permanently removes a product and returns its prior state.
func (s *CatalogService) DeleteProduct(productID string) (*models.Product, error) {
	existing, err := s.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}
	if err := s.productRepo.Delete(productID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
		}
		return nil, err
	}

	s.publishEvent("catalog.product.deleted", existing)
	return existing, nil
}

// CreateProductImageUploadURL issues a signed upload location for a new
// product image. The key is a millisecond timestamp plus a uuid with a fixed
// jpeg extension. Issuance failure is a dependency error, never a validation
// one: the caller must not proceed to create/edit without a successful
// issuance.
func (s *CatalogService) CreateProductImageUploadURL(ctx context.Context) (*storage.SignedUpload, error) {
	key := fmt.Sprintf("%d-%s.jpeg", time.Now().UnixMilli(), uuid.New().String())
	signed, err := s.uploader.CreateSignedUploadURL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return signed, nil
}

// publishEvent sends a catalog mutation event. Publishing is best-effort: a
// missing client or a broker failure never fails the mutation itself.
func (s *CatalogService) publishEvent(event string, product *models.Product) {
	if s.publisher == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	payload := map[string]interface{}{
		"productId":  product.ID,
		"name":       product.Name,
		"price":      product.Price,
		"categoryId": product.CategoryID,
	}
	if err := s.publisher.PublishCatalogEvent(event, payload); err != nil {
		log.Printf("Warning: Failed to publish %s for product %s: %v", event, product.ID, err)
	}
}
