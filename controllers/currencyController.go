package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/utils"
)

func GetCurrencies(ctx *gin.Context) {
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"base":       utils.BaseCurrency,
		"currencies": utils.Currencies(),
	})
}
