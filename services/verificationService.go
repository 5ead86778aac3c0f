package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nuthu-archive/storefront-api/apperrors"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"github.com/nuthu-archive/storefront-api/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const VerificationCodeTTL = 10 * time.Minute

type VerificationService struct {
	db     *gorm.DB
	store  CodeStore
	mailer utils.Mailer
	now    func() time.Time
}

func NewVerificationService(db *gorm.DB, store CodeStore, mailer utils.Mailer) *VerificationService {
	if mailer == nil {
		mailer = utils.LogMailer{}
	}
	return &VerificationService{db: db, store: store, mailer: mailer, now: time.Now}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SendCode stores a fresh code for email and mails it
func (v *VerificationService) SendCode(ctx context.Context, email string) error {
	email = normalizeEmail(email)

	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return err
	}
	if err := v.store.Save(ctx, email, StoredCode{Code: code, ExpiresAt: v.now().Add(VerificationCodeTTL)}); err != nil {
		return err
	}

	subject, body, err := utils.RenderVerificationEmail(code)
	if err != nil {
		return err
	}
	if err := v.mailer.Send(ctx, email, subject, body); err != nil {
		return err
	}

	logger.Info(ctx, "Verification email sent", zap.String("email", email))
	return nil
}

// VerifyCode checks code against the stored one. A match consumes the code
// and marks any account with that email as verified.
func (v *VerificationService) VerifyCode(ctx context.Context, email, code string) error {
	email = normalizeEmail(email)

	stored, err := v.store.Get(ctx, email)
	if errors.Is(err, ErrNoCode) {
		return apperrors.ErrCodeNotFound
	}
	if err != nil {
		return err
	}

	if v.now().After(stored.ExpiresAt) {
		if err := v.store.Delete(ctx, email); err != nil {
			logger.Warn(ctx, "Failed to delete expired verification code", zap.Error(err))
		}
		return apperrors.ErrCodeExpired
	}

	if stored.Code != strings.TrimSpace(code) {
		return apperrors.ErrCodeInvalid
	}

	if err := v.store.Delete(ctx, email); err != nil {
		return err
	}

	res := v.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Update("email_verified", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logger.Info(ctx, "User email verified", zap.String("email", email))
	}
	return nil
}
