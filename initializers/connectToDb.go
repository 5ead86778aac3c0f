package initializers

import (
	"fmt"
	"time"

	"github.com/nuthu-archive/storefront-api/logger"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

func ConnectToDB() {
	dsn := fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		Env.DBUser, Env.DBPassword, Env.DBHost, Env.DBPort, Env.DBName,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Log.Fatal("Failed to access database pool", zap.Error(err))
	}
	sqlDB.SetMaxOpenConns(Env.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(Env.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = db
	logger.Log.Info("Connected to database", zap.String("host", Env.DBHost), zap.String("database", Env.DBName))
}

// CloseDB releases the connection pool
func CloseDB() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Log.Warn("db close error", zap.Error(err))
		}
	}
}
