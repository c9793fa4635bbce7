// Package config loads service settings from the environment and an optional file.
package config

import (
	"fmt"
	"time"

	"gudang/internal/database"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all runtime settings.
type Config struct {
	AppPort              string        `mapstructure:"APP_PORT" validate:"required"`
	DatabaseDriver       string        `mapstructure:"DATABASE_DRIVER" validate:"oneof=sqlite postgres memory"`
	DatabaseDSN          string        `mapstructure:"DATABASE_DSN" validate:"required_unless=DatabaseDriver memory"`
	DatabaseLogLevel     string        `mapstructure:"DATABASE_LOG_LEVEL" validate:"oneof=silent error warn info"`
	JWTSecret            string        `mapstructure:"JWT_SECRET" validate:"required"`
	TokenTTL             time.Duration `mapstructure:"TOKEN_TTL" validate:"gt=0"`
	RabbitMQURL          string        `mapstructure:"RABBITMQ_URL"`
	InvalidationExchange string        `mapstructure:"INVALIDATION_EXCHANGE" validate:"required"`
	LogLevel             string        `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat            string        `mapstructure:"LOG_FORMAT" validate:"oneof=text json"`
	MetricsEnabled       bool          `mapstructure:"METRICS_ENABLED"`
}

var keys = []string{
	"APP_PORT", "DATABASE_DRIVER", "DATABASE_DSN", "DATABASE_LOG_LEVEL", "JWT_SECRET",
	"TOKEN_TTL", "RABBITMQ_URL", "INVALIDATION_EXCHANGE", "LOG_LEVEL", "LOG_FORMAT",
	"METRICS_ENABLED",
}

// SetDefaults installs the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", database.DriverSQLite)
	v.SetDefault("DATABASE_DSN", "gudang.db")
	v.SetDefault("DATABASE_LOG_LEVEL", "error")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("INVALIDATION_EXCHANGE", "gudang.views")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("METRICS_ENABLED", true)
}

// Load reads settings from v. Environment variables override the file named by
// CONFIG_FILE, which overrides the defaults.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()
	// AutomaticEnv only reaches keys viper already knows about.
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
