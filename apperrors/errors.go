package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error carrying the HTTP status it should be reported with
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches errors with the same code and message, so wrapped copies of the
// sentinels below still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Wrap returns a copy of the sentinel carrying err as its cause
func Wrap(sentinel *Error, err error) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Err: err}
}

// StatusOf returns the HTTP status for err and the message safe to show a client
func StatusOf(err error) (int, string) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code, appErr.Message
	}
	return http.StatusInternalServerError, ErrInternalServer.Message
}

var (
	ErrBadRequest         = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized       = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrForbidden          = New(http.StatusForbidden, "Forbidden", nil)
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer     = New(http.StatusInternalServerError, "Internal server error", nil)
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, "Service unavailable", nil)
)

// Order errors
var (
	ErrInvalidOrder     = New(http.StatusBadRequest, "Invalid order payload", nil)
	ErrOrderNotFound    = New(http.StatusNotFound, "Order not found", nil)
	ErrDatabaseTx       = New(http.StatusInternalServerError, "Failed to create order", nil)
	ErrProductInUse     = New(http.StatusConflict, "Product is referenced by existing orders and cannot be deleted", nil)
	ErrImageDataTooLong = New(http.StatusBadRequest, "The image data is too large to store. Please upload a smaller image or use a shorter image URL.", nil)
)

// Verification errors
var (
	ErrCodeNotFound = New(http.StatusBadRequest, "No verification code found for this email", nil)
	ErrCodeExpired  = New(http.StatusBadRequest, "Verification code has expired", nil)
	ErrCodeInvalid  = New(http.StatusBadRequest, "Invalid verification code", nil)
)

// Payment errors
var (
	ErrCheckoutDisabled = New(http.StatusInternalServerError, "Checkout is not configured. Please try again later.", nil)
	ErrPaymentGateway   = New(http.StatusBadGateway, "Payment gateway error", nil)
	ErrInvalidSignature = New(http.StatusUnauthorized, "Invalid signature", nil)
)
