package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string   `mapstructure:"APP_PORT"`
	Env               string   `mapstructure:"ENV"`
	LogLevel          string   `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int      `mapstructure:"MAX_REQUESTS_PER_MIN"`
	CorsOrigins       []string `mapstructure:"CORS_ORIGINS"`
	TimeZone          string   `mapstructure:"TIMEZONE"`

	// MongoDB configuration.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Pricing and payment gateway.
	StripeKey          string        `mapstructure:"STRIPE_KEY"`
	PaymentCurrency    string        `mapstructure:"PAYMENT_CURRENCY"`
	PricingURL         string        `mapstructure:"PRICING_URL"`
	PricingAPIKey      string        `mapstructure:"PRICING_API_KEY"`
	GatewayTimeout     time.Duration `mapstructure:"GATEWAY_TIMEOUT"`
	SubmissionCacheTTL time.Duration `mapstructure:"SUBMISSION_CACHE_TTL"`

	// Wizard sessions.
	SessionTTL time.Duration `mapstructure:"SESSION_TTL"`

	// Address lookup: "google" or "manual".
	AddressLookup string `mapstructure:"ADDRESS_LOOKUP"`
	GoogleAPIKey  string `mapstructure:"GOOGLE_API_KEY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("CORS_ORIGINS", []string{"*"})
	viper.SetDefault("TIMEZONE", "America/New_York")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "quotewizard")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("PAYMENT_CURRENCY", "usd")
	viper.SetDefault("PRICING_URL", "")
	viper.SetDefault("PRICING_API_KEY", "")
	viper.SetDefault("GATEWAY_TIMEOUT", "20s")
	viper.SetDefault("SUBMISSION_CACHE_TTL", "24h")
	viper.SetDefault("SESSION_TTL", "1h")
	viper.SetDefault("ADDRESS_LOOKUP", "manual")
	viper.SetDefault("GOOGLE_API_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Env values arrive as a single comma separated string.
	if len(AppConfig.CorsOrigins) == 1 && strings.Contains(AppConfig.CorsOrigins[0], ",") {
		AppConfig.CorsOrigins = strings.Split(AppConfig.CorsOrigins[0], ",")
	}
	for i, o := range AppConfig.CorsOrigins {
		AppConfig.CorsOrigins[i] = strings.TrimSpace(o)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location returns the business time zone used to decide what "today" is.
func Location() *time.Location {
	loc, err := time.LoadLocation(AppConfig.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
