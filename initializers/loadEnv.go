package initializers

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Port       string
	AppEnv     string
	LogLevel   string
	ClientURL  string
	APIBaseURL string

	TrustedProxies []string

	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBMaxOpenConns int

	JWTSecret    string
	CookieSecure bool
	AdminEmails  []string

	EmailUser        string
	EmailAppPassword string
	SMTPHost         string
	SMTPPort         string

	StripeSecretKey        string
	StripeWebhookSecret    string
	StripeAllowedCountries string

	PaystackSecretKey string
	PaystackBaseURL   string

	RedisURL string

	UploadsDir  string
	S3Bucket    string
	S3PublicURL string

	KafkaBrokers    []string
	KafkaOrderTopic string
}

// Env holds the configuration loaded by LoadEnv
var Env = Config{
	Port:            "4000",
	ClientURL:       "http://localhost:3000",
	JWTSecret:       defaultJWTSecret,
	UploadsDir:      "uploads",
	PaystackBaseURL: "https://api.paystack.co",
	KafkaOrderTopic: "order_events",
}

// LoadEnv reads .env, overlays .env.<APP_ENV> when present, then fills Env.
func LoadEnv() {
	_ = godotenv.Load(".env")
	if appEnv := strings.TrimSpace(os.Getenv("APP_ENV")); appEnv != "" {
		_ = godotenv.Overload(".env." + appEnv)
	}

	Env = Config{
		Port:       getEnv("PORT", "4000"),
		AppEnv:     getEnv("APP_ENV", "development"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		ClientURL:  strings.TrimSuffix(getEnv("CLIENT_URL", "http://localhost:3000"), "/"),
		APIBaseURL: strings.TrimSuffix(os.Getenv("API_BASE_URL"), "/"),

		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES"), nil),

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         os.Getenv("DB_USER"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         os.Getenv("DB_NAME"),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),

		JWTSecret:    getEnv("JWT_SECRET", defaultJWTSecret),
		CookieSecure: os.Getenv("COOKIE_SECURE") == "true",
		AdminEmails:  splitList(os.Getenv("ADMIN_EMAILS"), strings.ToLower),

		EmailUser:        os.Getenv("EMAIL_USER"),
		EmailAppPassword: os.Getenv("EMAIL_APP_PASSWORD"),
		SMTPHost:         getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:         getEnv("SMTP_PORT", "587"),

		StripeSecretKey:        stripeKey(os.Getenv("STRIPE_SECRET_KEY")),
		StripeWebhookSecret:    os.Getenv("STRIPE_WEBHOOK_SECRET"),
		StripeAllowedCountries: getEnv("STRIPE_ALLOWED_COUNTRIES", "ALL"),

		PaystackSecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
		PaystackBaseURL:   strings.TrimSuffix(getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"), "/"),

		RedisURL: os.Getenv("REDIS_URL"),

		UploadsDir:  getEnv("UPLOADS_DIR", "uploads"),
		S3Bucket:    os.Getenv("S3_BUCKET"),
		S3PublicURL: strings.TrimSuffix(os.Getenv("S3_PUBLIC_URL"), "/"),

		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS"), nil),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "order_events"),
	}
}

// UsingDefaultJWTSecret reports whether JWT_SECRET was left unset
func (c Config) UsingDefaultJWTSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// IsAdminEmail reports whether email is listed in ADMIN_EMAILS
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(raw string, normalize func(string) string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if normalize != nil {
			part = normalize(part)
		}
		out = append(out, part)
	}
	return out
}

// stripeKey treats the sample keys from .env.example as unset
func stripeKey(key string) string {
	v := strings.TrimSpace(key)
	if v == "" || strings.Contains(v, "your_key_here") {
		return ""
	}
	return v
}
