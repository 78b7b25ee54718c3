package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

type Config struct {
	Port        string
	Environment string
	JWTSecret   string

	StorageDriver  string // file | postgres
	DataDir        string // для file
	DBDSN          string // для postgres
	MigrationsPath string

	LimitsEnabled bool

	AdminLogin       string
	AdminPassword    string
	OperatorLogin    string
	OperatorPassword string
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENV", "development"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		StorageDriver:  getEnv("STORAGE_DRIVER", StorageFile),
		DataDir:        getEnv("DATA_DIR", "./data"),
		DBDSN:          os.Getenv("DB_DSN"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		LimitsEnabled:  getEnvBool("LIMITS_ENABLED", true),

		AdminLogin:       getEnv("ADMIN_LOGIN", "admin"),
		AdminPassword:    getEnv("ADMIN_PASSWORD", "admin"),
		OperatorLogin:    getEnv("OPERATOR_LOGIN", "operator"),
		OperatorPassword: getEnv("OPERATOR_PASSWORD", "operator"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but not set")
	}
	switch cfg.StorageDriver {
	case StorageFile:
	case StoragePostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required when STORAGE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
