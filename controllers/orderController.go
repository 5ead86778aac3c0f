package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/middlewares"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/services"
)

func orderItemsFromRequest(items []models.OrderItemData) []services.OrderItemInput {
	out := make([]services.OrderItemInput, 0, len(items))
	for _, item := range items {
		name := item.ProductName
		if strings.TrimSpace(name) == "" {
			name = item.Name
		}
		out = append(out, services.OrderItemInput{
			ProductID:   uint(item.ProductID),
			ProductName: name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}
	return out
}

// CreateOrder records a paid order placed outside the hosted checkout flows
func CreateOrder(ctx *gin.Context) {
	var data models.CreateOrderData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		sendAppError(ctx, "message", apperrors.ErrInvalidOrder)
		return
	}

	input := services.OrderInput{
		TotalAmount:   data.TotalAmount,
		Currency:      data.Currency,
		Email:         data.Email,
		PaymentStatus: models.PaymentStatusPaid,
		Items:         orderItemsFromRequest(data.Items),
	}
	if claims, ok := middlewares.CurrentUser(ctx); ok {
		input.UserID = &claims.UserID
		if strings.TrimSpace(input.Email) == "" {
			input.Email = claims.Email
		}
	}

	order, err := deps.Orders.CreateOrder(ctx, input)
	if err != nil {
		sendAppError(ctx, "message", err)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"id": order.ID})
}

// GetMyOrders lists the caller's orders, including guest orders placed with the same email
func GetMyOrders(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	orders, err := deps.Orders.ListForUser(ctx, claims.UserID, claims.Email)
	if err != nil {
		sendAppError(ctx, "message", err)
		return
	}
	ctx.JSON(http.StatusOK, orders)
}

func GetOrder(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	id, ok := parseID(ctx, "id")
	if !ok {
		sendAppError(ctx, "message", apperrors.ErrOrderNotFound)
		return
	}

	order, err := deps.Orders.Get(ctx, id)
	if err != nil {
		sendAppError(ctx, "message", err)
		return
	}

	if claims.Role != models.RoleAdmin && !ownsOrder(claims.UserID, claims.Email, order) {
		sendAppError(ctx, "message", apperrors.ErrOrderNotFound)
		return
	}
	ctx.JSON(http.StatusOK, order)
}

func ownsOrder(userID uint, email string, order *models.Order) bool {
	if order.UserID != nil && *order.UserID == userID {
		return true
	}
	return order.CustomerEmail != nil && strings.EqualFold(*order.CustomerEmail, email)
}
