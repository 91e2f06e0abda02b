package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	Port              string `mapstructure:"PORT"`
	DatabaseURI       string `mapstructure:"DB_URI"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Frontend base URL used for payment return/cancel redirects.
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	// Payment gateway credentials.
	GatewayBaseURL     string `mapstructure:"GATEWAY_BASE_URL"`
	GatewayClientID    string `mapstructure:"GATEWAY_CLIENT_ID"`
	GatewayAPIKey      string `mapstructure:"GATEWAY_API_KEY"`
	GatewayChecksumKey string `mapstructure:"GATEWAY_CHECKSUM_KEY"`

	// WebhookLenient keeps the gateway-friendly behavior of answering 200 to
	// webhooks that fail signature verification, so the gateway does not retry
	// forged or corrupted deliveries forever.
	WebhookLenient bool `mapstructure:"WEBHOOK_LENIENT"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAsynqDB  int    `mapstructure:"REDIS_ASYNQ_DB"`
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
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("DB_URI", "mongodb://localhost:27017")
	viper.SetDefault("FRONTEND_URL", "http://localhost:3000")
	viper.SetDefault("GATEWAY_BASE_URL", "https://api-merchant.payos.vn")
	viper.SetDefault("GATEWAY_CLIENT_ID", "")
	viper.SetDefault("GATEWAY_API_KEY", "")
	viper.SetDefault("GATEWAY_CHECKSUM_KEY", "")
	viper.SetDefault("WEBHOOK_LENIENT", true)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_ASYNQ_DB", 1)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
