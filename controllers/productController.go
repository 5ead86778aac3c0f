package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/utils"
	"gorm.io/gorm"
)

const (
	msgProductNotFound     = "Product not found"
	msgNameAndPriceMissing = "Name and price are required"
)

func nullable(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func withDisplayPrice(product *models.Product, currency string) {
	if currency != "" {
		product.DisplayPrice = utils.FormatPrice(product.Price, currency)
	}
}

func GetProducts(ctx *gin.Context) {
	products := []models.Product{}
	query := initializers.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC")

	if category := strings.TrimSpace(ctx.Query("category")); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR brand LIKE ?", like, like)
	}

	if err := query.Find(&products).Error; err != nil {
		logger.Error(ctx, "Error fetching products", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	currency := ctx.Query("currency")
	for i := range products {
		withDisplayPrice(&products[i], currency)
	}
	ctx.JSON(http.StatusOK, products)
}

func GetProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		sendErrorResponse(ctx, http.StatusNotFound, msgProductNotFound)
		return
	}

	var product models.Product
	if err := initializers.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgProductNotFound)
			return
		}
		logger.Error(ctx, "Error fetching product", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to fetch product")
		return
	}

	withDisplayPrice(&product, ctx.Query("currency"))
	ctx.JSON(http.StatusOK, product)
}

func CreateProduct(ctx *gin.Context) {
	var input models.ProductInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgNameAndPriceMissing)
		return
	}

	name := nullable(input.Name)
	if name == nil || input.Price == nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgNameAndPriceMissing)
		return
	}

	product := models.Product{
		Name:        *name,
		Brand:       nullable(input.Brand),
		Description: nullable(input.Description),
		Price:       *input.Price,
		Category:    nullable(input.Category),
		ImageURL:    nullable(input.ImageURL),
		InStock:     input.InStock == nil || *input.InStock,
	}

	if err := initializers.DB.WithContext(ctx).Create(&product).Error; err != nil {
		logger.Error(ctx, "Error creating product", err)
		if mysqlErrorNumber(err) == mysqlErrDataTooLong {
			sendAppError(ctx, "message", apperrors.ErrImageDataTooLong)
			return
		}
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to create product")
		return
	}

	ctx.JSON(http.StatusCreated, product)
}

// UpdateProduct applies the fields present in the body
func UpdateProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		sendErrorResponse(ctx, http.StatusNotFound, msgProductNotFound)
		return
	}

	var input models.ProductInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "Invalid request body")
		return
	}

	var product models.Product
	if err := initializers.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			sendErrorResponse(ctx, http.StatusNotFound, msgProductNotFound)
			return
		}
		logger.Error(ctx, "Error fetching product", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update product")
		return
	}

	updates := map[string]any{}
	if input.Name != nil {
		name := nullable(input.Name)
		if name == nil {
			sendErrorResponse(ctx, http.StatusBadRequest, msgNameAndPriceMissing)
			return
		}
		updates["name"] = *name
	}
	if input.Price != nil {
		updates["price"] = *input.Price
	}
	if input.Brand != nil {
		updates["brand"] = nullable(input.Brand)
	}
	if input.Description != nil {
		updates["description"] = nullable(input.Description)
	}
	if input.Category != nil {
		updates["category"] = nullable(input.Category)
	}
	if input.ImageURL != nil {
		updates["image_url"] = nullable(input.ImageURL)
	}
	if input.InStock != nil {
		updates["in_stock"] = *input.InStock
	}

	if len(updates) > 0 {
		if err := initializers.DB.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
			logger.Error(ctx, "Error updating product", err)
			if mysqlErrorNumber(err) == mysqlErrDataTooLong {
				sendAppError(ctx, "message", apperrors.ErrImageDataTooLong)
				return
			}
			sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update product")
			return
		}
	}

	if err := initializers.DB.WithContext(ctx).First(&product, id).Error; err != nil {
		logger.Error(ctx, "Error reloading product", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to update product")
		return
	}
	ctx.JSON(http.StatusOK, product)
}

func DeleteProduct(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		ctx.Status(http.StatusNoContent)
		return
	}

	err := initializers.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		logger.Error(ctx, "Error deleting product", err)
		if mysqlErrorNumber(err) == mysqlErrRowReferenced {
			sendAppError(ctx, "message", apperrors.ErrProductInUse)
			return
		}
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	ctx.Status(http.StatusNoContent)
}
