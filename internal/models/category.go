package models

import "time"

// Category represents a product category. Categories are referenced by
// products, never owned by them.
type Category struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=1,max=100"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
