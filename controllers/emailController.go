package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/logger"
)

type sendVerificationBody struct {
	Email string `json:"email"`
}

type verifyCodeBody struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// SendVerification mails a fresh six digit code to the address
func SendVerification(ctx *gin.Context) {
	var body sendVerificationBody
	if err := ctx.ShouldBindJSON(&body); err != nil || !strings.Contains(body.Email, "@") {
		respondWithError(ctx, http.StatusBadRequest, "Valid email is required")
		return
	}

	if err := deps.Verification.SendCode(ctx, body.Email); err != nil {
		logger.Error(ctx, "Error sending verification email", err)
		sendJSONResponse(ctx, http.StatusInternalServerError, gin.H{
			"error":   "Failed to send verification email",
			"details": err.Error(),
		})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success": true,
		"message": "Verification code sent to your email",
	})
}

// VerifyCode checks a code sent by SendVerification
func VerifyCode(ctx *gin.Context) {
	var body verifyCodeBody
	if err := ctx.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.Email) == "" || strings.TrimSpace(body.Code) == "" {
		respondWithError(ctx, http.StatusBadRequest, "Email and code are required")
		return
	}

	if err := deps.Verification.VerifyCode(ctx, body.Email, body.Code); err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			sendAppError(ctx, "error", appErr)
			return
		}
		logger.Error(ctx, "Error verifying code", err)
		sendJSONResponse(ctx, http.StatusInternalServerError, gin.H{
			"error":   "Failed to verify code",
			"details": err.Error(),
		})
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"success": true,
		"message": "Email verified successfully",
	})
}
