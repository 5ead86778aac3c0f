package models

import "time"

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	Email              string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password           string    `gorm:"size:255;not null" json:"-"`
	Name               *string   `gorm:"size:255" json:"name"`
	Role               string    `gorm:"size:20;not null;default:customer" json:"role"`
	EmailVerified      bool      `gorm:"not null;default:false" json:"emailVerified"`
	PasswordResetToken string    `gorm:"size:64;index" json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"-"`
}

type RegisterData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type LoginData struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user returned by the auth endpoints
type UserResponse struct {
	ID            uint       `json:"id"`
	Email         string     `json:"email"`
	Name          *string    `json:"name"`
	EmailVerified bool       `json:"emailVerified"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

// EmailVerification holds a pending verification code for an address
type EmailVerification struct {
	Email     string    `gorm:"primaryKey;size:255"`
	Code      string    `gorm:"size:6;not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}
