package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gudang/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	v := viper.New()
	v.Set("JWT_SECRET", "test_jwt_secret")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "gudang.views", cfg.InvalidationExchange)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DRIVER", "memory")
	t.Setenv("TOKEN_TTL", "90m")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "memory", cfg.DatabaseDriver)
	assert.Equal(t, 90*time.Minute, cfg.TokenTTL)
	assert.False(t, cfg.MetricsEnabled)
}

func TestLoad_ConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "gudang.yaml")
	content := "APP_PORT: \":9090\"\nJWT_SECRET: file-secret\nLOG_FORMAT: json\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", file)

	cfg, err := config.Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	v := viper.New()
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("DATABASE_DRIVER", "oracle")

	_, err := config.Load(v)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")

	_, err = config.Load(viper.New())
	assert.Error(t, err, "JWT secret is required")
}
