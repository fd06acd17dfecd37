package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppName  string `mapstructure:"APP_NAME"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`

	// Storage backend: "memory" or "postgres".
	StoreBackend string `mapstructure:"STORE_BACKEND"`

	// PostgreSQL configuration
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     int    `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSL_MODE"`

	// Payment gateway: "simulated" or "http".
	GatewayMode        string        `mapstructure:"GATEWAY_MODE"`
	GatewayURL         string        `mapstructure:"GATEWAY_URL"`
	GatewayLatency     time.Duration `mapstructure:"GATEWAY_LATENCY"`
	GatewaySuccessRate float64       `mapstructure:"GATEWAY_SUCCESS_RATE"`
	GatewayTimeout     time.Duration `mapstructure:"GATEWAY_TIMEOUT"`

	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// DSN renders the postgres connection string from the DB_* settings.
func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// Load reads app.env from path when present, then overlays environment
// variables and defaults.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("APP_NAME", "shopcore")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")

	v.SetDefault("STORE_BACKEND", "memory")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "shopcore")
	v.SetDefault("DB_PASSWORD", "shopcore")
	v.SetDefault("DB_NAME", "shopcore")
	v.SetDefault("DB_SSL_MODE", "disable")

	v.SetDefault("GATEWAY_MODE", "simulated")
	v.SetDefault("GATEWAY_URL", "http://localhost:9090")
	v.SetDefault("GATEWAY_LATENCY", "100ms")
	v.SetDefault("GATEWAY_SUCCESS_RATE", 0.9)
	v.SetDefault("GATEWAY_TIMEOUT", "5s")

	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
