package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs from the environment.
type Config struct {
	Database DatabaseConfig
	App      AppConfig
	Auth     AuthConfig
}

// DatabaseConfig holds the MySQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// AppConfig holds server behaviour settings.
type AppConfig struct {
	Port              string
	AllowedOrigin     string
	AllowRegistration bool
	LowStockThreshold int
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	// A missing .env is fine in production; everything can come from the
	// real environment.
	_ = godotenv.Load()

	cfg := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "tienda"),
		},
		App: AppConfig{
			Port:              getEnv("APP_PORT", "8080"),
			AllowedOrigin:     getEnv("ALLOWED_ORIGIN", "http://localhost:5173"),
			AllowRegistration: getEnv("ALLOW_REGISTRATION", "false") == "true",
			LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 5),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
		},
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// DSN returns the MySQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
