package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
)

type columnInfo struct {
	ColumnName string `json:"column_name"`
	DataType   string `json:"data_type"`
}

// DebugSchema reruns the schema check and lists the orders columns
func DebugSchema(ctx *gin.Context) {
	logs, err := initializers.EnsureSchema(initializers.DB.WithContext(ctx))
	if err != nil {
		logger.Error(ctx, "Schema check failed", err)
		respondWithError(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	if logs == nil {
		logs = []string{}
	}

	columnTypes, err := initializers.DB.WithContext(ctx).Migrator().ColumnTypes(&models.Order{})
	if err != nil {
		respondWithError(ctx, http.StatusInternalServerError, err.Error())
		return
	}

	columns := make([]columnInfo, 0, len(columnTypes))
	for _, ct := range columnTypes {
		columns = append(columns, columnInfo{ColumnName: ct.Name(), DataType: ct.DatabaseTypeName()})
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message":        "Schema check completed",
		"logs":           logs,
		"currentColumns": columns,
	})
}

// DebugDBInfo reports the connected MySQL database, user and server version
func DebugDBInfo(ctx *gin.Context) {
	var info struct {
		DB      string `json:"db"`
		User    string `json:"user"`
		Version string `json:"version"`
	}
	if err := initializers.DB.WithContext(ctx).
		Raw("SELECT DATABASE() AS db, USER() AS user, VERSION() AS version").
		Scan(&info).Error; err != nil {
		respondWithError(ctx, http.StatusInternalServerError, err.Error())
		return
	}
	ctx.JSON(http.StatusOK, info)
}
