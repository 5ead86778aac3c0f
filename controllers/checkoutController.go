package controllers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/middlewares"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/services"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"
)

const (
	msgNoItems           = "No items to checkout"
	msgItemNeedsProduct  = "Each item must include a productId"
	msgOutOfStock        = "Product is out of stock"
	msgCheckoutFailed    = "Failed to start checkout"
	msgInvalidAmount     = "Invalid amount for payment intent"
	msgInvalidWebhook    = "Invalid webhook signature"
	msgWebhookDisabled   = "Webhook is not configured"
	msgPaymentFailed     = "Failed to start payment"
	msgSessionIDRequired = "Missing session id"
)

type checkoutItem struct {
	ProductID models.FlexibleID `json:"productId"`
	Name      string            `json:"name"`
	Price     float64           `json:"price"`
	Quantity  int               `json:"quantity"`
}

type createSessionBody struct {
	Items         []checkoutItem `json:"items"`
	Currency      string         `json:"currency"`
	CustomerEmail string         `json:"customerEmail"`
}

type paymentIntentBody struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

func minorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func checkoutCurrency(currency string) string {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		return "kes"
	}
	return currency
}

// validateCheckoutItems defaults quantities to 1, prices items from the catalog
// and answers 4xx itself on bad input
func validateCheckoutItems(ctx *gin.Context, items []checkoutItem) bool {
	if len(items) == 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgNoItems)
		return false
	}
	for i := range items {
		if items[i].ProductID == 0 {
			sendErrorResponse(ctx, http.StatusBadRequest, msgItemNeedsProduct)
			return false
		}
		if items[i].Quantity < 1 {
			items[i].Quantity = 1
		}
	}
	return priceFromCatalog(ctx, items)
}

// priceFromCatalog replaces the client's price and name of each item with the product's
func priceFromCatalog(ctx *gin.Context, items []checkoutItem) bool {
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, uint(item.ProductID))
	}

	var products []models.Product
	if err := initializers.DB.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error(ctx, "Checkout product lookup error", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgCheckoutFailed)
		return false
	}
	catalog := make(map[uint]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	for i := range items {
		product, ok := catalog[uint(items[i].ProductID)]
		if !ok {
			sendErrorResponse(ctx, http.StatusNotFound, msgProductNotFound)
			return false
		}
		if !product.InStock {
			sendErrorResponse(ctx, http.StatusBadRequest, msgOutOfStock)
			return false
		}
		items[i].Price = product.Price
		items[i].Name = product.Name
	}
	return true
}

// recordPendingOrder stores the order a hosted payment will settle
func recordPendingOrder(ctx *gin.Context, provider string, items []checkoutItem, currency, email string) (*models.Order, error) {
	total := 0.0
	orderItems := make([]services.OrderItemInput, 0, len(items))
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
		orderItems = append(orderItems, services.OrderItemInput{
			ProductID:   uint(item.ProductID),
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	total = math.Round(total*100) / 100

	input := services.OrderInput{
		TotalAmount:     &total,
		Currency:        currency,
		Email:           email,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentProvider: provider,
		Metadata:        map[string]any{"gateway": provider, "itemCount": len(items)},
		Items:           orderItems,
	}
	if claims, ok := middlewares.CurrentUser(ctx); ok {
		input.UserID = &claims.UserID
		if input.Email == "" {
			input.Email = claims.Email
		}
	}
	return deps.Orders.CreateOrder(ctx, input)
}

func discardOrder(ctx *gin.Context, orderID uint) {
	if err := deps.Orders.Discard(ctx, orderID); err != nil {
		logger.Error(ctx, "Failed to discard pending order", err, zap.Uint("order_id", orderID))
	}
}

func requireStripe(ctx *gin.Context) bool {
	if deps.Stripe == nil {
		sendAppError(ctx, "message", apperrors.ErrCheckoutDisabled)
		return false
	}
	return true
}

// CreateCheckoutSession starts a Stripe hosted checkout for the posted items
func CreateCheckoutSession(ctx *gin.Context) {
	if !requireStripe(ctx) {
		return
	}

	var body createSessionBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgNoItems)
		return
	}
	if !validateCheckoutItems(ctx, body.Items) {
		return
	}

	currency := checkoutCurrency(body.Currency)
	email := normalizeEmail(body.CustomerEmail)

	order, err := recordPendingOrder(ctx, models.ProviderStripe, body.Items, currency, email)
	if err != nil {
		sendAppError(ctx, "message", err)
		return
	}

	lines := make([]services.CheckoutLine, 0, len(body.Items))
	for _, item := range body.Items {
		lines = append(lines, services.CheckoutLine{
			Name:       item.Name,
			UnitAmount: minorUnits(item.Price),
			Quantity:   int64(item.Quantity),
		})
	}

	session, err := deps.Stripe.CreateCheckoutSession(ctx, services.CheckoutRequest{
		OrderID:          order.ID,
		Currency:         currency,
		Lines:            lines,
		CustomerEmail:    email,
		SuccessURL:       initializers.Env.ClientURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:        initializers.Env.ClientURL + "/checkout",
		AllowedCountries: services.AllowedShippingCountries(initializers.Env.StripeAllowedCountries),
	})
	if err != nil {
		logger.Error(ctx, "Error creating checkout session", err, zap.Uint("order_id", order.ID))
		discardOrder(ctx, order.ID)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgCheckoutFailed)
		return
	}

	if err := deps.Orders.SetPaymentReference(ctx, order.ID, session.ID); err != nil {
		logger.Error(ctx, "Error saving checkout session reference", err, zap.Uint("order_id", order.ID), zap.String("session_id", session.ID))
		discardOrder(ctx, order.ID)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgCheckoutFailed)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"url": session.URL, "id": session.ID})
}

// GetCheckoutSession reports a session's status after the Stripe redirect and settles paid orders
func GetCheckoutSession(ctx *gin.Context) {
	if !requireStripe(ctx) {
		return
	}

	id := strings.TrimSpace(ctx.Param("id"))
	if id == "" {
		sendErrorResponse(ctx, http.StatusBadRequest, msgSessionIDRequired)
		return
	}

	session, err := deps.Stripe.GetCheckoutSession(ctx, id)
	if err != nil {
		logger.Error(ctx, "Error retrieving checkout session", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to retrieve checkout session")
		return
	}

	if session.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid) {
		settlePaid(ctx, models.ProviderStripe, session.ID, session.Shipping)
	}

	var customerEmail any
	if session.CustomerEmail != "" {
		customerEmail = session.CustomerEmail
	}
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"id":            session.ID,
		"status":        session.Status,
		"paymentStatus": session.PaymentStatus,
		"amountTotal":   session.AmountTotal,
		"currency":      session.Currency,
		"customerEmail": customerEmail,
	})
}

// CreatePaymentIntent backs the on-site card form. Amount is in minor units.
func CreatePaymentIntent(ctx *gin.Context) {
	if !requireStripe(ctx) {
		return
	}

	var body paymentIntentBody
	if err := ctx.ShouldBindJSON(&body); err != nil || body.Amount == nil ||
		math.IsNaN(*body.Amount) || math.IsInf(*body.Amount, 0) || *body.Amount <= 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidAmount)
		return
	}

	clientSecret, err := deps.Stripe.CreatePaymentIntent(ctx, int64(math.Round(*body.Amount)), checkoutCurrency(body.Currency))
	if err != nil {
		logger.Error(ctx, "Error creating payment intent", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgPaymentFailed)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"clientSecret": clientSecret})
}

// StripeWebhook receives Stripe events on the raw request body
func StripeWebhook(ctx *gin.Context) {
	secret := initializers.Env.StripeWebhookSecret
	if secret == "" {
		sendErrorResponse(ctx, http.StatusInternalServerError, msgWebhookDisabled)
		return
	}

	payload, err := ctx.GetRawData()
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidWebhook)
		return
	}

	event, err := services.ParseStripeEvent(payload, ctx.GetHeader("Stripe-Signature"), secret)
	if err != nil {
		logger.Warn(ctx, "Stripe webhook signature verification failed", zap.Error(err))
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidWebhook)
		return
	}

	logger.Info(ctx, "Processing Stripe webhook", zap.String("event_type", string(event.Type)), zap.String("event_id", event.ID))

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logger.Error(ctx, "Failed to unmarshal checkout session", err)
			break
		}
		if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
			logger.Info(ctx, "Checkout session not paid yet", zap.String("session_id", sess.ID))
			break
		}
		settlePaid(ctx, models.ProviderStripe, sess.ID, services.FromStripeSession(&sess).Shipping)
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			logger.Error(ctx, "Failed to unmarshal checkout session", err)
			break
		}
		settleFailed(ctx, models.ProviderStripe, sess.ID)
	default:
		logger.Info(ctx, "Unhandled webhook event type", zap.String("event_type", string(event.Type)))
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"received": true})
}

// settlePaid marks the order paid. Unknown references are logged, not reported.
func settlePaid(ctx *gin.Context, provider, reference string, details models.ShippingDetails) *models.Order {
	order, _, err := deps.Orders.MarkPaid(ctx, provider, reference, details)
	if errors.Is(err, apperrors.ErrOrderNotFound) {
		logger.Warn(ctx, "No order for payment reference", zap.String("provider", provider), zap.String("reference", reference))
		return nil
	}
	if err != nil {
		logger.Error(ctx, "Failed to mark order paid", err, zap.String("reference", reference))
		return nil
	}
	return order
}

func settleFailed(ctx *gin.Context, provider, reference string) {
	err := deps.Orders.MarkFailed(ctx, provider, reference)
	if errors.Is(err, apperrors.ErrOrderNotFound) {
		logger.Warn(ctx, "No order for payment reference", zap.String("provider", provider), zap.String("reference", reference))
		return
	}
	if err != nil {
		logger.Error(ctx, "Failed to mark order failed", err, zap.String("reference", reference))
	}
}
