package controllers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/services"
	"go.uber.org/zap"
)

type paystackInitBody struct {
	Items    []checkoutItem `json:"items"`
	Currency string         `json:"currency"`
	Email    string         `json:"email"`
}

func requirePaystack(ctx *gin.Context) bool {
	if deps.Paystack == nil {
		sendAppError(ctx, "message", apperrors.ErrCheckoutDisabled)
		return false
	}
	return true
}

// InitializePaystack records a pending order and opens a Paystack transaction for it
func InitializePaystack(ctx *gin.Context) {
	if !requirePaystack(ctx) {
		return
	}

	var body paystackInitBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgNoItems)
		return
	}
	email := normalizeEmail(body.Email)
	if !strings.Contains(email, "@") {
		sendErrorResponse(ctx, http.StatusBadRequest, "Valid email is required")
		return
	}
	if !validateCheckoutItems(ctx, body.Items) {
		return
	}

	currency := checkoutCurrency(body.Currency)
	order, err := recordPendingOrder(ctx, models.ProviderPaystack, body.Items, currency, email)
	if err != nil {
		sendAppError(ctx, "message", err)
		return
	}

	reference := services.PaystackReference(order.ID, time.Now())
	if err := deps.Orders.SetPaymentReference(ctx, order.ID, reference); err != nil {
		logger.Error(ctx, "Error saving paystack reference", err, zap.Uint("order_id", order.ID))
		discardOrder(ctx, order.ID)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgCheckoutFailed)
		return
	}

	result, err := deps.Paystack.InitializeTransaction(ctx, services.PaystackInitRequest{
		Email:       email,
		Amount:      minorUnits(order.TotalAmount),
		Currency:    strings.ToUpper(currency),
		Reference:   reference,
		CallbackURL: initializers.Env.ClientURL + "/checkout/success?reference=" + reference,
		Metadata:    map[string]any{"order_id": order.ID},
	})
	if err != nil {
		logger.Error(ctx, "Paystack initialize error", err, zap.Uint("order_id", order.ID))
		discardOrder(ctx, order.ID)
		sendAppError(ctx, "message", apperrors.ErrPaymentGateway)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"authorizationUrl": result.AuthorizationURL,
		"accessCode":       result.AccessCode,
		"reference":        reference,
		"orderId":          order.ID,
	})
}

// PaystackWebhook handles signed Paystack events. Charges are re-verified with
// Paystack before the order is settled.
func PaystackWebhook(ctx *gin.Context) {
	if !requirePaystack(ctx) {
		return
	}

	payload, err := ctx.GetRawData()
	if err != nil || !deps.Paystack.ValidSignature(payload, ctx.GetHeader("x-paystack-signature")) {
		logger.Warn(ctx, "Paystack webhook signature verification failed")
		sendAppError(ctx, "message", apperrors.ErrInvalidSignature)
		return
	}

	var event services.PaystackEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid webhook payload")
		return
	}

	logger.Info(ctx, "Processing Paystack webhook", zap.String("event_type", event.Event), zap.String("reference", event.Data.Reference))

	if event.Event == "charge.success" && event.Data.Reference != "" {
		tx, err := deps.Paystack.VerifyTransaction(ctx, event.Data.Reference)
		if err != nil {
			logger.Error(ctx, "Paystack verify error", err, zap.String("reference", event.Data.Reference))
		} else if tx.Status == services.PaystackStatusSuccess {
			settlePaid(ctx, models.ProviderPaystack, tx.Reference, paystackDetails(tx))
		}
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"received": true})
}

// VerifyPaystack checks a transaction with Paystack after the redirect and settles its order
func VerifyPaystack(ctx *gin.Context) {
	if !requirePaystack(ctx) {
		return
	}

	reference := strings.TrimSpace(ctx.Param("reference"))
	tx, err := deps.Paystack.VerifyTransaction(ctx, reference)
	if err != nil {
		logger.Error(ctx, "Paystack verify error", err, zap.String("reference", reference))
		sendAppError(ctx, "message", apperrors.ErrPaymentGateway)
		return
	}

	switch tx.Status {
	case services.PaystackStatusSuccess:
		settlePaid(ctx, models.ProviderPaystack, reference, paystackDetails(tx))
	case services.PaystackStatusFailed, services.PaystackStatusAbandoned:
		settleFailed(ctx, models.ProviderPaystack, reference)
	}

	var orderID any
	if order, err := deps.Orders.FindByReference(ctx, models.ProviderPaystack, reference); err == nil {
		orderID = order.ID
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"reference": reference,
		"status":    tx.Status,
		"amount":    tx.Amount,
		"currency":  tx.Currency,
		"orderId":   orderID,
	})
}

func paystackDetails(tx *services.PaystackTransaction) models.ShippingDetails {
	return models.ShippingDetails{Email: tx.Customer.Email, Phone: tx.Customer.Phone}
}
