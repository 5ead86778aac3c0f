package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/middlewares"
	"github.com/nuthu-archive/storefront-api/models"
	"gorm.io/gorm"
)

const msgCartItemNotFound = "Cart item not found"

// findOwnedCartItem loads a cart item of the user, answering 404 or 500 itself when it cannot
func findOwnedCartItem(ctx *gin.Context, id, userID uint, failure string) (models.CartItem, bool) {
	var item models.CartItem
	err := initializers.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondWithError(ctx, http.StatusNotFound, msgCartItemNotFound)
		return item, false
	}
	if err != nil {
		logger.Error(ctx, "Cart item lookup error", err)
		respondWithError(ctx, http.StatusInternalServerError, failure)
		return item, false
	}
	return item, true
}

func GetCart(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	cartItems := []models.CartLine{}
	err := initializers.DB.WithContext(ctx).
		Table("cart_items AS ci").
		Select(`ci.id AS cart_item_id, ci.quantity, ci.size,
			p.id, p.name, p.brand, p.price, p.image_url, p.in_stock`).
		Joins("JOIN products p ON ci.product_id = p.id").
		Where("ci.user_id = ?", claims.UserID).
		Order("ci.created_at DESC").Order("ci.id DESC").
		Scan(&cartItems).Error
	if err != nil {
		logger.Error(ctx, "Get cart error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to fetch cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"cartItems": cartItems})
}

// AddToCart adds a product or bumps the quantity of the matching (product, size) line
func AddToCart(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	var data models.AddToCartData
	if err := ctx.ShouldBindJSON(&data); err != nil || data.ProductID == 0 {
		respondWithError(ctx, http.StatusBadRequest, "Product ID is required")
		return
	}

	quantity := 1
	if data.Quantity != nil {
		quantity = *data.Quantity
	}
	if quantity < 1 {
		respondWithError(ctx, http.StatusBadRequest, "Valid quantity is required")
		return
	}
	size := nullable(data.Size)

	var product models.Product
	if err := initializers.DB.WithContext(ctx).First(&product, uint(data.ProductID)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondWithError(ctx, http.StatusNotFound, msgProductNotFound)
			return
		}
		logger.Error(ctx, "Add to cart lookup error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}
	if !product.InStock {
		respondWithError(ctx, http.StatusBadRequest, "Product is out of stock")
		return
	}

	query := initializers.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", claims.UserID, product.ID)
	if size == nil {
		query = query.Where("size IS NULL")
	} else {
		query = query.Where("size = ?", *size)
	}

	var existing models.CartItem
	err := query.First(&existing).Error
	if err == nil {
		if err := initializers.DB.WithContext(ctx).Model(&existing).
			Update("quantity", gorm.Expr("quantity + ?", quantity)).Error; err != nil {
			logger.Error(ctx, "Cart update error", err)
			respondWithError(ctx, http.StatusInternalServerError, "Failed to add item to cart")
			return
		}
		sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart updated", "cartItemId": existing.ID})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error(ctx, "Cart lookup error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	item := models.CartItem{
		UserID:    claims.UserID,
		ProductID: product.ID,
		Quantity:  quantity,
		Size:      size,
	}
	if err := initializers.DB.WithContext(ctx).Omit("User", "Product").Create(&item).Error; err != nil {
		logger.Error(ctx, "Cart insert error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to add item to cart")
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "Item added to cart", "cartItemId": item.ID})
}

func UpdateCartItem(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	var data models.UpdateCartData
	if err := ctx.ShouldBindJSON(&data); err != nil || data.Quantity < 1 {
		respondWithError(ctx, http.StatusBadRequest, "Valid quantity is required")
		return
	}

	id, ok := parseID(ctx, "cartItemId")
	if !ok {
		respondWithError(ctx, http.StatusNotFound, msgCartItemNotFound)
		return
	}

	item, ok := findOwnedCartItem(ctx, id, claims.UserID, "Failed to update cart item")
	if !ok {
		return
	}

	if err := initializers.DB.WithContext(ctx).Model(&item).Update("quantity", data.Quantity).Error; err != nil {
		logger.Error(ctx, "Update cart error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to update cart item")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart item updated"})
}

func RemoveCartItem(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	id, ok := parseID(ctx, "cartItemId")
	if !ok {
		respondWithError(ctx, http.StatusNotFound, msgCartItemNotFound)
		return
	}

	item, ok := findOwnedCartItem(ctx, id, claims.UserID, "Failed to remove item from cart")
	if !ok {
		return
	}

	if err := initializers.DB.WithContext(ctx).Delete(&item).Error; err != nil {
		logger.Error(ctx, "Remove from cart error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to remove item from cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Item removed from cart"})
}

func ClearCart(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	if err := initializers.DB.WithContext(ctx).
		Where("user_id = ?", claims.UserID).
		Delete(&models.CartItem{}).Error; err != nil {
		logger.Error(ctx, "Clear cart error", err)
		respondWithError(ctx, http.StatusInternalServerError, "Failed to clear cart")
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": "Cart cleared"})
}
