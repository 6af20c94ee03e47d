package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Ai       AIConfig
	Storage  StorageConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	NatsEnabled        bool
	MaxUploadBytes     int64
}

type DatabaseConfig struct {
	Connection string
}

type AuthConfig struct {
	Enabled   bool
	JWTSecret string
}

type AIConfig struct {
	ServiceBaseURL string
	MistralAPIKey  string
	MistralModel   string
	OpenAIAPIKey   string
	OpenAIModel    string
	AttemptTimeout time.Duration
	CacheTTL       time.Duration
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			NatsEnabled:        getEnvAsBool("NATS_ENABLED", false),
			MaxUploadBytes:     getEnvAsInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Auth: AuthConfig{
			Enabled:   getEnvAsBool("AUTH_ENABLED", false),
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Ai: AIConfig{
			ServiceBaseURL: getEnv("AI_SERVICE_URL", "http://localhost:8001"),
			MistralAPIKey:  getEnv("MISTRAL_API_KEY", ""),
			MistralModel:   getEnv("MISTRAL_MODEL", "mistral-small-latest"),
			OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			AttemptTimeout: getEnvAsDuration("AI_ATTEMPT_TIMEOUT", 90*time.Second),
			CacheTTL:       getEnvAsDuration("AI_RESULT_CACHE_TTL", 15*time.Minute),
		},
		Storage: StorageConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "notesquest-uploads"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
