package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB   int    `mapstructure:"REDIS_CACHE_DB"`
	RedisTaskDB    int    `mapstructure:"REDIS_TASK_DB"`
	WorkerCount    int    `mapstructure:"WORKER_COUNT"`

	// Voice provider webhook.
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`

	// SMS provider.
	SMSBaseURL    string `mapstructure:"SMS_BASE_URL"`
	SMSAPIKey     string `mapstructure:"SMS_API_KEY"`
	SMSFromNumber string `mapstructure:"SMS_FROM_NUMBER"`

	// Booking marketplace.
	MarketplaceBaseURL string `mapstructure:"MARKETPLACE_BASE_URL"`
	MarketplaceAPIKey  string `mapstructure:"MARKETPLACE_API_KEY"`

	// Scheduling policy.
	SlotGranularityMin int `mapstructure:"SLOT_GRANULARITY_MIN"`
	MinSlotDurationMin int `mapstructure:"MIN_SLOT_DURATION_MIN"`
	AlternativeProbes  int `mapstructure:"ALTERNATIVE_PROBES"`

	// Notification retry policy.
	NotifyMaxAttempts  int `mapstructure:"NOTIFY_MAX_ATTEMPTS"`
	NotifyBaseDelaySec int `mapstructure:"NOTIFY_BASE_DELAY_SEC"`
	NotifyMaxDelaySec  int `mapstructure:"NOTIFY_MAX_DELAY_SEC"`

	// Booking reminders.
	ReminderLeadHours int `mapstructure:"REMINDER_LEAD_HOURS"`
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_TASK_DB", 1)
	viper.SetDefault("WORKER_COUNT", 10)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("SMS_BASE_URL", "https://api.46elks.com/a1")
	viper.SetDefault("MARKETPLACE_BASE_URL", "https://api.matchi.se")
	viper.SetDefault("SLOT_GRANULARITY_MIN", 30)
	viper.SetDefault("MIN_SLOT_DURATION_MIN", 30)
	viper.SetDefault("ALTERNATIVE_PROBES", 4)
	viper.SetDefault("NOTIFY_MAX_ATTEMPTS", 5)
	viper.SetDefault("NOTIFY_BASE_DELAY_SEC", 30)
	viper.SetDefault("NOTIFY_MAX_DELAY_SEC", 1800)
	viper.SetDefault("REMINDER_LEAD_HOURS", 24)

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

// SlotGranularity returns the configured slot alignment unit.
func SlotGranularity() time.Duration {
	return time.Duration(AppConfig.SlotGranularityMin) * time.Minute
}

// MinSlotDuration returns the configured minimum booking length.
func MinSlotDuration() time.Duration {
	return time.Duration(AppConfig.MinSlotDurationMin) * time.Minute
}
