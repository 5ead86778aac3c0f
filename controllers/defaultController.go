package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetHome(ctx *gin.Context) {
	message := `Welcome to the Nuthu Archive API.

The following are the endpoints for this API:

AUTH
- POST "/api/auth/register" - Create an account
- POST "/api/auth/login" - Sign in (sets the token cookie)
- POST "/api/auth/logout" - Sign out
- GET "/api/auth/me" - Current account
- POST "/api/auth/forgot-password" - Request a password reset link
- POST "/api/auth/reset-password/:resetToken" - Reset password

EMAIL
- POST "/api/email/send-verification" - Send a verification code
- POST "/api/email/verify-code" - Verify an email address

PRODUCTS
- GET "/api/products" - List products (?category, ?search, ?currency)
- GET "/api/products/:id" - Get a product
- POST "/api/products" - Create a product (admin)
- PUT "/api/products/:id" - Update a product (admin)
- DELETE "/api/products/:id" - Delete a product (admin)
- POST "/api/upload/image" - Upload a product image (admin)

CART
- GET "/api/cart" - Get the cart
- POST "/api/cart" - Add an item
- PUT "/api/cart/:cartItemId" - Change quantity
- DELETE "/api/cart/:cartItemId" - Remove an item
- DELETE "/api/cart" - Clear the cart

ORDERS
- POST "/api/orders" - Create an order
- GET "/api/orders/mine" - My orders
- GET "/api/orders/:id" - Get an order

CHECKOUT
- POST "/api/checkout/create-session" - Start a Stripe checkout
- GET "/api/checkout/session/:id" - Checkout session status
- POST "/api/checkout/create-payment-intent" - Stripe payment intent
- POST "/api/checkout/webhook" - Stripe webhook
- POST "/api/checkout/paystack/initialize" - Start a Paystack payment
- POST "/api/checkout/paystack/webhook" - Paystack webhook
- GET "/api/checkout/paystack/verify/:reference" - Verify a Paystack payment

MISC
- GET "/api/currencies" - Display currencies
- GET "/api/health" - Health check`

	ctx.JSON(http.StatusOK, gin.H{
		"message": message,
	})
}
