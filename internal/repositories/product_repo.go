package repositories

import (
	"katalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// GetAll takes a category filter; an empty string means no filter.
type ProductRepository interface {
	GetAll(categoryID string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
