package controllers

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
)

// uploadFilename is <unix-millis>-<random><ext>, keeping the client extension
func uploadFilename(original string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%d-%d%s", now.UnixMilli(), rand.IntN(1e9), ext)
}

// UploadImage stores the multipart field "image" and returns where it is served
func UploadImage(ctx *gin.Context) {
	file, err := ctx.FormFile("image")
	if err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, "No file uploaded")
		return
	}

	f, err := file.Open()
	if err != nil {
		logger.Error(ctx, "Error opening uploaded file", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to upload image")
		return
	}
	defer f.Close()

	name := uploadFilename(file.Filename, time.Now())
	stored, err := deps.Storage.Save(ctx, name, f, file.Header.Get("Content-Type"))
	if err != nil {
		logger.Error(ctx, "Error storing uploaded file", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, "Failed to upload image")
		return
	}

	url := stored.URL
	if url == "" {
		base := initializers.Env.APIBaseURL
		if base == "" {
			base = scheme(ctx) + "://" + ctx.Request.Host
		}
		url = base + stored.Path
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"url": url, "path": stored.Path})
}
