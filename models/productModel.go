package models

import "time"

type Product struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Brand        *string   `gorm:"size:255" json:"brand"`
	Description  *string   `gorm:"type:text" json:"description"`
	Price        float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Category     *string   `gorm:"size:255;index" json:"category"`
	ImageURL     *string   `gorm:"type:text" json:"image_url"`
	InStock      bool      `gorm:"not null" json:"in_stock"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	DisplayPrice string    `gorm:"-" json:"displayPrice,omitempty"`
}

// ProductInput is the body accepted when creating or updating a product.
// Pointers distinguish "absent" from zero values.
type ProductInput struct {
	Name        *string  `json:"name"`
	Brand       *string  `json:"brand"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	ImageURL    *string  `json:"imageUrl"`
	InStock     *bool    `json:"inStock"`
}
