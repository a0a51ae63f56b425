package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL       string
	ServerPort        int
	TelegramBotToken  string
	GomafiaBaseURL    string
	JWTSecretKey      string
	AdminPasswordHash string
	SyncInterval      time.Duration

	// Архив снапшотов опционален: пустой AccountID выключает его.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	adminHash := os.Getenv("ADMIN_PASSWORD_HASH")
	if adminHash == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD_HASH environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	gomafiaURL := os.Getenv("GOMAFIA_BASE_URL")
	if gomafiaURL == "" {
		gomafiaURL = "https://gomafia.pro"
	}

	syncInterval := 5 * time.Minute
	if intervalStr := os.Getenv("SYNC_INTERVAL"); intervalStr != "" {
		syncInterval, err = time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL environment variable: %w", err)
		}
	}

	cfg := &Config{
		DatabaseURL:       dbURL,
		ServerPort:        port,
		TelegramBotToken:  botToken,
		GomafiaBaseURL:    gomafiaURL,
		JWTSecretKey:      jwtKey,
		AdminPasswordHash: adminHash,
		SyncInterval:      syncInterval,

		R2AccountID:       os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey: os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:      os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:   os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}
