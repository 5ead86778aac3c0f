package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/services"
	"github.com/nuthu-archive/storefront-api/utils"
)

// MySQL server error numbers
const (
	mysqlErrDataTooLong   = 1406
	mysqlErrRowReferenced = 1451
)

// Dependencies are the services shared by the handlers. Stripe and Paystack
// stay nil when their keys are not configured.
type Dependencies struct {
	Orders       *services.OrderService
	Verification *services.VerificationService
	Mailer       utils.Mailer
	Stripe       services.StripeGateway
	Paystack     *services.PaystackClient
	Storage      services.FileStorage
}

var deps Dependencies

// Configure installs the services used by the handlers
func Configure(d Dependencies) {
	if d.Mailer == nil {
		d.Mailer = utils.LogMailer{}
	}
	deps = d
}

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

// sendErrorResponse answers with {"message": ...}
func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"message": message})
}

// respondWithError answers with {"error": ...}
func respondWithError(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"error": message})
}

// sendAppError reports err under key ("message" or "error") with the status it carries
func sendAppError(ctx *gin.Context, key string, err error) {
	status, message := apperrors.StatusOf(err)
	sendJSONResponse(ctx, status, gin.H{key: message})
}

func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}
	return 0
}

func parseID(ctx *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(param), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func scheme(ctx *gin.Context) string {
	if proto := ctx.GetHeader("X-Forwarded-Proto"); proto != "" {
		return proto
	}
	if ctx.Request.TLS != nil {
		return "https"
	}
	return "http"
}

// Health reports liveness
func Health(ctx *gin.Context) {
	sendJSONResponse(ctx, http.StatusOK, gin.H{"status": "ok"})
}
