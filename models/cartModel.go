package models

import "time"

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	ProductID uint      `gorm:"not null;index" json:"productId"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Size      *string   `gorm:"size:50" json:"size"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Product   Product   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// CartLine is a cart row joined with its product
type CartLine struct {
	CartItemID uint    `json:"cartItemId"`
	Quantity   int     `json:"quantity"`
	Size       *string `json:"size"`
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Brand      *string `json:"brand"`
	Price      float64 `json:"price"`
	ImageURL   *string `json:"image_url"`
	InStock    bool    `json:"in_stock"`
}

type AddToCartData struct {
	ProductID FlexibleID `json:"productId"`
	Quantity  *int       `json:"quantity"`
	Size      *string    `json:"size"`
}

type UpdateCartData struct {
	Quantity int `json:"quantity"`
}
