package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

const (
	ProviderStripe   = "stripe"
	ProviderPaystack = "paystack"
)

type Order struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           *uint          `gorm:"index" json:"userId"`
	TotalAmount      float64        `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	Currency         string         `gorm:"size:10;not null;default:KES" json:"currency"`
	CustomerEmail    *string        `gorm:"size:255;index" json:"customerEmail"`
	ShippingAddress  *string        `gorm:"type:text" json:"shippingAddress"`
	ShippingCity     *string        `gorm:"size:255" json:"shippingCity"`
	ShippingState    *string        `gorm:"size:255" json:"shippingState"`
	ShippingZip      *string        `gorm:"size:20" json:"shippingZip"`
	ShippingCountry  *string        `gorm:"size:255" json:"shippingCountry"`
	PhoneNumber      *string        `gorm:"size:20" json:"phoneNumber"`
	PaymentStatus    string         `gorm:"size:50;not null;default:pending" json:"paymentStatus"`
	PaymentProvider  *string        `gorm:"size:20" json:"paymentProvider"`
	PaymentReference *string        `gorm:"size:255;uniqueIndex" json:"paymentReference"`
	Metadata         datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	OrderItems       []OrderItem    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

type OrderItem struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	OrderID         uint    `gorm:"not null;index" json:"orderId"`
	ProductID       uint    `gorm:"not null;index" json:"productId"`
	ProductName     string  `gorm:"size:255" json:"productName"`
	Quantity        int     `gorm:"not null" json:"quantity"`
	PriceAtPurchase float64 `gorm:"type:decimal(10,2);not null" json:"priceAtPurchase"`
	Product         Product `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

// OrderItemData is one line of an order request. Product IDs arrive as numbers or strings.
type OrderItemData struct {
	ProductID   FlexibleID `json:"productId"`
	Quantity    int        `json:"quantity"`
	Price       float64    `json:"price"`
	ProductName string     `json:"productName"`
	Name        string     `json:"name"`
}

type CreateOrderData struct {
	TotalAmount *float64        `json:"totalAmount"`
	Currency    string          `json:"currency"`
	Email       string          `json:"email"`
	Items       []OrderItemData `json:"items"`
}

// ShippingDetails are the buyer details collected by a payment gateway
type ShippingDetails struct {
	Email   string
	Address string
	City    string
	State   string
	Zip     string
	Country string
	Phone   string
}
