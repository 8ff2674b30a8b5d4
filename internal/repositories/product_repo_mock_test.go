package repositories_test

import (
	"testing"
	"time"

	"katalog/internal/models"
	"katalog/internal/repositories"

	"github.com/stretchr/testify/assert"
)

func TestMockProductRepository(t *testing.T) {
	repo := repositories.NewMockProductRepository()
	base := time.Now()

	first := &models.Product{Name: "Espresso Blend", Price: 12000, CategoryID: "cat-1", ImageURL: "https://store/a.jpeg", CreatedAt: base}
	second := &models.Product{Name: "Croissant", Price: 3000, CategoryID: "cat-2", ImageURL: "https://store/b.jpeg", CreatedAt: base.Add(time.Second)}
	assert.NoError(t, repo.Create(first))
	assert.NoError(t, repo.Create(second))
	assert.NotEmpty(t, first.ID)

	// Unfiltered listing is ordered by creation time.
	all, err := repo.GetAll("")
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Espresso Blend", all[0].Name)
	assert.Equal(t, "Croissant", all[1].Name)

	// Category filter narrows the set.
	filtered, err := repo.GetAll("cat-2")
	assert.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)

	// Update replaces all fields.
	first.Price = 13000
	assert.NoError(t, repo.Update(first))
	got, err := repo.GetByID(first.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(13000), got.Price)

	// Missing rows surface the shared sentinel.
	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Update(&models.Product{ID: "missing"}), repositories.ErrNotFound)
	assert.ErrorIs(t, repo.Delete("missing"), repositories.ErrNotFound)

	assert.NoError(t, repo.Delete(first.ID))
	all, err = repo.GetAll("")
	assert.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestMockCategoryRepository(t *testing.T) {
	repo := repositories.NewMockCategoryRepository()

	pastry := &models.Category{Name: "Pastry"}
	coffee := &models.Category{Name: "Coffee"}
	assert.NoError(t, repo.Create(pastry))
	assert.NoError(t, repo.Create(coffee))

	// Listing is ordered by name, matching the GORM implementation.
	all, err := repo.GetAll()
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Coffee", all[0].Name)
	assert.Equal(t, "Pastry", all[1].Name)

	got, err := repo.GetByID(coffee.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Coffee", got.Name)

	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
