package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Email     EmailConfig
	SMS       SMSConfig
	Printer   PrinterConfig
	Redis     RedisConfig
	POS       POSConfig
	Admin     AdminConfig
	LogLevel  string
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	Timezone string
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type StorageConfig struct {
	Driver          string
	Path            string
	PublicURL       string
	Bucket          string
	CredentialsFile string
	UploadMaxSize   int64
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           time.Duration
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

type SMSConfig struct {
	GatewayURL    string
	APIToken      string
	SenderID      string
	DefaultRegion string
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// POSConfig tunes the register engine.
type POSConfig struct {
	StockPollInterval time.Duration
	BackendURL        string
	BackendToken      string
	RequestTimeout    time.Duration
	RetryAttempts     int
	MaxBackoff        time.Duration
	ReceiptWidth      int
}

type AdminConfig struct {
	Email    string
	Password string
	Name     string
	OTPTTL   time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.WithError(err).Warn(".env file not found, using environment variables")
	}
	viper.AutomaticEnv()
	setDefaults()

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Database: DatabaseConfig{
			Driver:   strings.ToLower(viper.GetString("DB_DRIVER")),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			SSLMode:  viper.GetString("DB_SSL_MODE"),
			Timezone: viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:             viper.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(viper.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		Storage: StorageConfig{
			Driver:          strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			Path:            viper.GetString("STORAGE_PATH"),
			PublicURL:       viper.GetString("STORAGE_PUBLIC_URL"),
			Bucket:          viper.GetString("GCS_BUCKET"),
			CredentialsFile: viper.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
			UploadMaxSize:   viper.GetInt64("UPLOAD_MAX_SIZE"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(viper.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(viper.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(viper.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetDuration("CORS_MAX_AGE"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromName:     viper.GetString("EMAIL_FROM_NAME"),
			FromEmail:    viper.GetString("EMAIL_FROM_ADDRESS"),
		},
		SMS: SMSConfig{
			GatewayURL:    viper.GetString("SMS_GATEWAY_URL"),
			APIToken:      viper.GetString("SMS_API_TOKEN"),
			SenderID:      viper.GetString("SMS_SENDER_ID"),
			DefaultRegion: viper.GetString("SMS_DEFAULT_REGION"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		POS: POSConfig{
			StockPollInterval: viper.GetDuration("POS_STOCK_POLL_INTERVAL"),
			BackendURL:        viper.GetString("POS_BACKEND_URL"),
			BackendToken:      viper.GetString("POS_BACKEND_TOKEN"),
			RequestTimeout:    viper.GetDuration("POS_REQUEST_TIMEOUT"),
			RetryAttempts:     viper.GetInt("POS_RETRY_ATTEMPTS"),
			MaxBackoff:        viper.GetDuration("POS_MAX_BACKOFF"),
			ReceiptWidth:      viper.GetInt("POS_RECEIPT_WIDTH"),
		},
		Admin: AdminConfig{
			Email:    viper.GetString("ADMIN_EMAIL"),
			Password: viper.GetString("ADMIN_PASSWORD"),
			Name:     viper.GetString("ADMIN_NAME"),
			OTPTTL:   viper.GetDuration("ADMIN_OTP_TTL"),
		},
		LogLevel: viper.GetString("LOG_LEVEL"),
	}
}

func setDefaults() {
	viper.SetDefault("APP_NAME", "tillpoint-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "tillpoint")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Nairobi")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("STORAGE_PUBLIC_URL", "/storage")
	viper.SetDefault("UPLOAD_MAX_SIZE", 10485760)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
	viper.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,Idempotency-Key,X-Request-ID")
	viper.SetDefault("CORS_EXPOSED_HEADERS", "Content-Disposition,X-Request-ID,X-Idempotency-Replayed")
	viper.SetDefault("CORS_ALLOW_CREDENTIALS", true)
	viper.SetDefault("CORS_MAX_AGE", "12h")
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("EMAIL_FROM_NAME", "Tillpoint")
	viper.SetDefault("SMS_DEFAULT_REGION", "KE")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("POS_STOCK_POLL_INTERVAL", "2s")
	viper.SetDefault("POS_REQUEST_TIMEOUT", "10s")
	viper.SetDefault("POS_RETRY_ATTEMPTS", 3)
	viper.SetDefault("POS_MAX_BACKOFF", "5s")
	viper.SetDefault("POS_RECEIPT_WIDTH", 48)
	viper.SetDefault("ADMIN_OTP_TTL", "10m")
	viper.SetDefault("LOG_LEVEL", "info")
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Name)
	}
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
