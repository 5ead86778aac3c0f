package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/middlewares"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Standard response messages
	msgInvalidInput          = "Invalid request body"
	msgCredentialsRequired   = "Email and password are required"
	msgEmailRegistered       = "Email already registered"
	msgUserRegistered        = "User registered successfully. Please verify your email before logging in."
	msgRegisterFailed        = "Failed to register user"
	msgInvalidCredentials    = "Invalid email or password"
	msgEmailNotVerified      = "Please verify your email before logging in."
	msgLoginFailed           = "Failed to login"
	msgLoginSuccess          = "Login successful"
	msgLoggedOut             = "Logged out successfully"
	msgUserNotFound          = "User not found"
	msgGetUserFailed         = "Failed to get user"
	msgResetLinkSent         = "Check your email for a password reset link."
	msgResetTokenError       = "There was an error trying to generate password reset link. Try again later."
	msgUnableToResetPassword = "Unable to reset password"
	msgInvalidResetLink      = "Invalid or expired reset link"
	msgPasswordReset         = "Password reset successful"

	codeEmailNotVerified = "EMAIL_NOT_VERIFIED"
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func findUserByEmail(email string) (models.User, error) {
	var user models.User
	result := initializers.DB.Where("email = ?", email).First(&user)
	return user, result.Error
}

func userResponse(user models.User, withCreatedAt bool) models.UserResponse {
	resp := models.UserResponse{
		ID:            user.ID,
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
	}
	if withCreatedAt {
		createdAt := user.CreatedAt
		resp.CreatedAt = &createdAt
	}
	return resp
}

func setTokenCookie(ctx *gin.Context, token string, maxAge int) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.TokenCookie, token, maxAge, "/", "", initializers.Env.CookieSecure, true)
}

func sendPasswordResetEmail(ctx *gin.Context, user models.User, resetToken string) error {
	data := utils.EmailData{
		Message:         "You requested a password reset. Click the button below to reset your password.",
		VerificationURL: initializers.Env.ClientURL + "/reset-password?token=" + url.QueryEscape(resetToken),
	}
	if user.Name != nil {
		data.Name = *user.Name
	}

	subject, body, err := utils.RenderPasswordReset(data)
	if err != nil {
		return err
	}
	return deps.Mailer.Send(ctx, user.Email, subject, body)
}

// Register creates an unverified customer account
func Register(ctx *gin.Context) {
	var data models.RegisterData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	email := normalizeEmail(data.Email)
	if email == "" || data.Password == "" {
		respondWithError(ctx, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	if _, err := findUserByEmail(email); err == nil {
		respondWithError(ctx, http.StatusBadRequest, msgEmailRegistered)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Error(ctx, "Database error during user check", err)
		respondWithError(ctx, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	hashedPassword, err := utils.HashPassword(data.Password)
	if err != nil {
		logger.Error(ctx, "Password hashing error", err)
		respondWithError(ctx, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	user := models.User{
		Email:         email,
		Password:      hashedPassword,
		Role:          models.RoleCustomer,
		EmailVerified: false,
	}
	if name := strings.TrimSpace(data.Name); name != "" {
		user.Name = &name
	}
	if initializers.Env.IsAdminEmail(email) {
		user.Role = models.RoleAdmin
	}

	if result := initializers.DB.Create(&user); result.Error != nil {
		logger.Error(ctx, "User creation error", result.Error)
		respondWithError(ctx, http.StatusInternalServerError, msgRegisterFailed)
		return
	}

	logger.Info(ctx, "User registered", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	sendJSONResponse(ctx, http.StatusCreated, gin.H{
		"message":                   msgUserRegistered,
		"requiresEmailVerification": true,
		"user":                      userResponse(user, false),
	})
}

// Login checks credentials and issues the auth cookie and token
func Login(ctx *gin.Context) {
	var data models.LoginData
	if err := ctx.ShouldBindJSON(&data); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	email := normalizeEmail(data.Email)
	if email == "" || data.Password == "" {
		respondWithError(ctx, http.StatusBadRequest, msgCredentialsRequired)
		return
	}

	user, err := findUserByEmail(email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondWithError(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	} else if err != nil {
		logger.Error(ctx, "Login lookup error", err)
		respondWithError(ctx, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	if !user.EmailVerified {
		sendJSONResponse(ctx, http.StatusForbidden, gin.H{
			"error": msgEmailNotVerified,
			"code":  codeEmailNotVerified,
		})
		return
	}

	if err := utils.ComparePasswords(user.Password, data.Password); err != nil {
		respondWithError(ctx, http.StatusUnauthorized, msgInvalidCredentials)
		return
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.Role, initializers.Env.JWTSecret)
	if err != nil {
		logger.Error(ctx, "JWT generation error", err)
		respondWithError(ctx, http.StatusInternalServerError, msgLoginFailed)
		return
	}

	setTokenCookie(ctx, token, int(utils.TokenTTL.Seconds()))
	sendJSONResponse(ctx, http.StatusOK, gin.H{
		"message": msgLoginSuccess,
		"user":    userResponse(user, false),
		"token":   token,
	})
}

func Logout(ctx *gin.Context) {
	setTokenCookie(ctx, "", -1)
	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgLoggedOut})
}

// Me returns the account behind the auth token
func Me(ctx *gin.Context) {
	claims, _ := middlewares.CurrentUser(ctx)

	var user models.User
	if err := initializers.DB.First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondWithError(ctx, http.StatusNotFound, msgUserNotFound)
			return
		}
		logger.Error(ctx, "Get user error", err)
		respondWithError(ctx, http.StatusInternalServerError, msgGetUserFailed)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"user": userResponse(user, true)})
}

// SendPasswordResetLink stores a reset token and mails it to the user
func SendPasswordResetLink(ctx *gin.Context) {
	var body struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	email := normalizeEmail(body.Email)
	user, err := findUserByEmail(email)
	if err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgUserNotFound)
		return
	}

	resetToken, err := utils.GenerateCode(16)
	if err != nil {
		logger.Error(ctx, "Reset token generation error", err)
		respondWithError(ctx, http.StatusInternalServerError, msgResetTokenError)
		return
	}

	if result := initializers.DB.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("password_reset_token", resetToken); result.Error != nil {
		logger.Error(ctx, "Error saving reset token", result.Error)
		respondWithError(ctx, http.StatusInternalServerError, msgResetTokenError)
		return
	}

	if err := sendPasswordResetEmail(ctx, user, resetToken); err != nil {
		logger.Error(ctx, "Error sending password reset email", err)
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgResetLinkSent})
}

// ResetPassword replaces the password of the user holding the reset token
func ResetPassword(ctx *gin.Context) {
	var body struct {
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := ctx.ShouldBindJSON(&body); err != nil {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	resetToken := ctx.Param("resetToken")
	if resetToken == "" {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidResetLink)
		return
	}

	hashedPassword, err := utils.HashPassword(body.Password)
	if err != nil {
		logger.Error(ctx, "Password hashing error", err)
		respondWithError(ctx, http.StatusInternalServerError, msgUnableToResetPassword)
		return
	}

	result := initializers.DB.Model(&models.User{}).
		Where("password_reset_token = ?", resetToken).
		Updates(map[string]any{
			"password":             hashedPassword,
			"password_reset_token": "",
		})
	if result.Error != nil {
		logger.Error(ctx, "Error resetting password", result.Error)
		respondWithError(ctx, http.StatusInternalServerError, msgUnableToResetPassword)
		return
	}
	if result.RowsAffected == 0 {
		respondWithError(ctx, http.StatusBadRequest, msgInvalidResetLink)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"message": msgPasswordReset})
}
