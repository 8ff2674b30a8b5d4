package models

import "time"

// Product represents a product in the catalog. Price is stored in the
// smallest currency unit (e.g. cents), never as a float.
type Product struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name       string    `json:"name" gorm:"type:varchar(50);not null" validate:"required,min=3,max=50"`
	Price      int64     `json:"price" gorm:"not null" validate:"required,min=1000"`
	CategoryID string    `json:"categoryId" gorm:"type:varchar(36);not null;index" validate:"required"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ImageURL   string    `json:"imageUrl" gorm:"type:varchar(2048);not null" validate:"required,url"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
