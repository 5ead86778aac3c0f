package initializers

import (
	"fmt"

	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// orderShippingColumns were added to orders after the first release
var orderShippingColumns = []string{
	"customer_email",
	"shipping_address",
	"shipping_city",
	"shipping_state",
	"shipping_zip",
	"shipping_country",
	"phone_number",
}

func SyncDatabase() {
	logs, err := EnsureSchema(DB)
	for _, line := range logs {
		logger.Log.Info(line)
	}
	if err != nil {
		logger.Log.Error("Failed to ensure DB schema", zap.Error(err))
		return
	}
	logger.Log.Info("Database synced successfully.")
}

// EnsureSchema inspects the live schema, migrates every model and backfills
// columns that older databases lack. It returns a log of what it changed.
func EnsureSchema(db *gorm.DB) ([]string, error) {
	var logs []string
	m := db.Migrator()

	usersExisted := m.HasTable(&models.User{})
	addVerified := usersExisted && !m.HasColumn(&models.User{}, "email_verified")

	var missingOrderColumns []string
	if m.HasTable(&models.Order{}) {
		for _, column := range orderShippingColumns {
			if !m.HasColumn(&models.Order{}, column) {
				missingOrderColumns = append(missingOrderColumns, column)
			}
		}
	} else {
		logs = append(logs, "orders table missing, creating it")
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.EmailVerification{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		return logs, fmt.Errorf("auto migrate: %w", err)
	}

	// Users created before verification existed must not be locked out.
	if addVerified {
		res := db.Model(&models.User{}).Where("email_verified = ?", false).Update("email_verified", true)
		if res.Error != nil {
			return logs, fmt.Errorf("backfill users.email_verified: %w", res.Error)
		}
		logs = append(logs, fmt.Sprintf("added users.email_verified, marked %d existing users verified", res.RowsAffected))
	}

	for _, column := range missingOrderColumns {
		logs = append(logs, "added orders."+column)
	}

	return logs, nil
}
