/**
 * @description
 * This file manages application configuration for the reward-service using
 * Viper. Settings load from an optional app.env file and are overridden by
 * environment variables, so containerized deploys configure everything
 * through the environment.
 *
 * @dependencies
 * - github.com/spf13/viper: For configuration management.
 */

package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application, populated from
// environment variables or an app.env file.
type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	SchedulerPort string `mapstructure:"SCHEDULER_PORT"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	RabbitMQURL   string `mapstructure:"RABBITMQ_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// InternalAPIKey guards the internal lifecycle and reconciliation
	// endpoints. Boot fails without it.
	InternalAPIKey string `mapstructure:"INTERNAL_API_KEY"`

	// FallbackRedirectURL is where scanners land when no campaign pays for
	// the scan.
	FallbackRedirectURL string `mapstructure:"FALLBACK_REDIRECT_URL"`

	// ScanDuplicateWindow is the per-fingerprint cooldown on one campaign.
	ScanDuplicateWindow time.Duration `mapstructure:"SCAN_DUPLICATE_WINDOW"`

	ScanFingerprintRateLimit  int64         `mapstructure:"SCAN_FINGERPRINT_RATE_LIMIT"`
	ScanFingerprintRateWindow time.Duration `mapstructure:"SCAN_FINGERPRINT_RATE_WINDOW"`
	ScanIPRateLimit           int64         `mapstructure:"SCAN_IP_RATE_LIMIT"`
	ScanIPRateWindow          time.Duration `mapstructure:"SCAN_IP_RATE_WINDOW"`

	// Cron schedules for the scheduler binary.
	ActivateCampaignsSchedule string `mapstructure:"ACTIVATE_CAMPAIGNS_SCHEDULE"`
	CompleteCampaignsSchedule string `mapstructure:"COMPLETE_CAMPAIGNS_SCHEDULE"`
	ReconcileSchedule         string `mapstructure:"RECONCILE_SCHEDULE"`
}

// LoadConfig reads configuration from a file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.SetDefault("SERVER_PORT", "8086")
	viper.SetDefault("SCHEDULER_PORT", "8087")
	viper.SetDefault("FALLBACK_REDIRECT_URL", "https://adreach.app")
	viper.SetDefault("SCAN_DUPLICATE_WINDOW", "24h")
	viper.SetDefault("SCAN_FINGERPRINT_RATE_LIMIT", int64(10))
	viper.SetDefault("SCAN_FINGERPRINT_RATE_WINDOW", "1m")
	viper.SetDefault("SCAN_IP_RATE_LIMIT", int64(60))
	viper.SetDefault("SCAN_IP_RATE_WINDOW", "1m")
	viper.SetDefault("ACTIVATE_CAMPAIGNS_SCHEDULE", "@every 5m")
	viper.SetDefault("COMPLETE_CAMPAIGNS_SCHEDULE", "@every 10m")
	viper.SetDefault("RECONCILE_SCHEDULE", "@every 1h")

	viper.AutomaticEnv()

	// Explicit binds so AutomaticEnv picks up variables even when no config
	// file is present.
	for _, key := range []string{
		"SERVER_PORT", "SCHEDULER_PORT", "DATABASE_URL", "RABBITMQ_URL",
		"REDIS_ADDR", "REDIS_PASSWORD", "INTERNAL_API_KEY",
		"FALLBACK_REDIRECT_URL", "SCAN_DUPLICATE_WINDOW",
		"SCAN_FINGERPRINT_RATE_LIMIT", "SCAN_FINGERPRINT_RATE_WINDOW",
		"SCAN_IP_RATE_LIMIT", "SCAN_IP_RATE_WINDOW",
		"ACTIVATE_CAMPAIGNS_SCHEDULE", "COMPLETE_CAMPAIGNS_SCHEDULE",
		"RECONCILE_SCHEDULE",
	} {
		if bindErr := viper.BindEnv(key); bindErr != nil {
			return Config{}, fmt.Errorf("failed to bind env %s: %w", key, bindErr)
		}
	}

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		err = nil
	}

	if err = viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}

	config.DatabaseURL = strings.TrimSpace(config.DatabaseURL)
	config.RabbitMQURL = strings.TrimSpace(config.RabbitMQURL)
	config.RedisAddr = strings.TrimSpace(config.RedisAddr)
	config.InternalAPIKey = strings.TrimSpace(config.InternalAPIKey)
	config.FallbackRedirectURL = strings.TrimSpace(config.FallbackRedirectURL)

	if config.ScanDuplicateWindow <= 0 {
		log.Printf("level=warn component=config msg=\"invalid SCAN_DUPLICATE_WINDOW, using 24h\"")
		config.ScanDuplicateWindow = 24 * time.Hour
	}
	if config.ScanFingerprintRateWindow <= 0 {
		config.ScanFingerprintRateWindow = time.Minute
	}
	if config.ScanIPRateWindow <= 0 {
		config.ScanIPRateWindow = time.Minute
	}

	return config, nil
}
