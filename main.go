package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/nuthu-archive/storefront-api/controllers"
	"github.com/nuthu-archive/storefront-api/initializers"
	"github.com/nuthu-archive/storefront-api/logger"
	"github.com/nuthu-archive/storefront-api/middlewares"
	"github.com/nuthu-archive/storefront-api/routes"
	"github.com/nuthu-archive/storefront-api/services"
	"github.com/nuthu-archive/storefront-api/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func init() {
	initializers.LoadEnv()
	logger.Initialize(initializers.Env.AppEnv, initializers.Env.LogLevel)
	initializers.ConnectToDB()
	initializers.SyncDatabase()
}

func main() {
	defer logger.Log.Sync()
	env := initializers.Env

	if env.UsingDefaultJWTSecret() {
		logger.Log.Warn("JWT_SECRET is not set, using the development fallback")
	}
	if env.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	workers, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	var mailer utils.Mailer = utils.LogMailer{}
	if env.EmailUser != "" {
		mailer = utils.NewSMTPMailer(env.SMTPHost, env.SMTPPort, env.EmailUser, env.EmailAppPassword)
	} else {
		logger.Log.Warn("EMAIL_USER is not set, emails will only be logged")
	}

	var events services.EventPublisher = services.NoopPublisher{}
	if len(env.KafkaBrokers) > 0 {
		events = services.NewKafkaPublisher(env.KafkaBrokers, env.KafkaOrderTopic)
	}

	var codes services.CodeStore
	if env.RedisURL != "" {
		client, err := initializers.ConnectToRedis(workers, env.RedisURL)
		if err != nil {
			logger.Log.Fatal("Redis unavailable", zap.Error(err))
		}
		defer client.Close()
		codes = services.NewRedisCodeStore(client)
	} else {
		dbCodes := services.NewDBCodeStore(initializers.DB)
		go dbCodes.RunSweeper(workers, 5*time.Minute)
		codes = dbCodes
	}

	var storage services.FileStorage
	uploadsDir := ""
	if env.S3Bucket != "" {
		s3Storage, err := services.NewS3Storage(workers, env.S3Bucket, env.S3PublicURL)
		if err != nil {
			logger.Log.Fatal("Failed to configure S3", zap.Error(err))
		}
		storage = s3Storage
	} else {
		local, err := services.NewLocalStorage(env.UploadsDir)
		if err != nil {
			logger.Log.Fatal("Failed to prepare uploads directory", zap.Error(err))
		}
		storage = local
		uploadsDir = env.UploadsDir
	}

	deps := controllers.Dependencies{
		Orders:       services.NewOrderService(initializers.DB, mailer, events, env.ClientURL),
		Verification: services.NewVerificationService(initializers.DB, codes, mailer),
		Mailer:       mailer,
		Storage:      storage,
	}
	if env.StripeSecretKey != "" {
		deps.Stripe = services.NewStripeService(env.StripeSecretKey)
	} else {
		logger.Log.Warn("STRIPE_SECRET_KEY is not set. Checkout will be disabled.")
	}
	if env.PaystackSecretKey != "" {
		deps.Paystack = services.NewPaystackClient(env.PaystackBaseURL, env.PaystackSecretKey)
	}
	controllers.Configure(deps)

	limiter := middlewares.NewRateLimiter(rate.Every(time.Second), 10, 10*time.Minute)
	go limiter.Cleanup(workers)

	server := gin.New()
	if err := middlewares.TrustProxies(server, env.TrustedProxies); err != nil {
		logger.Log.Fatal("Invalid TRUSTED_PROXIES", zap.Error(err))
	}
	server.Use(gin.Recovery(), logger.RequestLogger())
	server.Use(cors.New(cors.Config{
		AllowOrigins:     []string{env.ClientURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	server.MaxMultipartMemory = 8 << 20
	routes.RegisterRoutes(server, limiter.Middleware(), uploadsDir)

	srv := &http.Server{
		Addr:              ":" + env.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("Server running", zap.String("port", env.Port), zap.String("env", env.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	stopWorkers()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if err := events.Close(); err != nil {
		logger.Log.Warn("event publisher close error", zap.Error(err))
	}
	initializers.CloseDB()
	logger.Log.Info("Server exited")
}
