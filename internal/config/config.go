package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port      string
	MongoURI  string
	DBName    string
	JWTSecret string

	AccessTokenTTL time.Duration
	AdminEmail     string
	AdminPassword  string
	CORSOrigins    []string

	EvolutionAPIURL   string
	EvolutionInstance string
	EvolutionAPIKey   string
	ReceiptDir        string

	R2Endpoint  string
	R2AccessKey string
	R2SecretKey string
	R2Bucket    string
	R2Prefix    string

	TemporalHost    string
	NotifyTaskQueue string

	SessionIdleTTL time.Duration
	LogLevel       string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		Port:      getEnvOrDefault("PORT", "8080"),
		MongoURI:  getEnvOrDefault("MONGO_URI", ""),
		DBName:    getEnvOrDefault("DB_NAME", "marmitaria"),
		JWTSecret: getEnvOrDefault("JWT_SECRET", ""),

		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 60, time.Minute),
		AdminEmail:     strings.ToLower(getEnvOrDefault("ADMIN_EMAIL", "")),
		AdminPassword:  getEnvOrDefault("ADMIN_PASSWORD", ""),
		CORSOrigins:    getListEnv("CORS_ORIGINS", []string{"http://localhost:5173"}),

		EvolutionAPIURL:   getEnvOrDefault("EVOLUTION_API_URL", ""),
		EvolutionInstance: getEnvOrDefault("EVOLUTION_INSTANCE", "marmitaria"),
		EvolutionAPIKey:   getEnvOrDefault("EVOLUTION_API_KEY", ""),
		ReceiptDir:        getEnvOrDefault("RECEIPT_DIR", "receipts"),

		R2Endpoint:  getEnvOrDefault("R2_ENDPOINT", ""),
		R2AccessKey: getEnvOrDefault("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnvOrDefault("R2_SECRET_KEY", ""),
		R2Bucket:    getEnvOrDefault("R2_BUCKET_NAME", ""),
		R2Prefix:    getEnvOrDefault("R2_PREFIX", "receipts"),

		TemporalHost:    getEnvOrDefault("TEMPORAL_HOST", ""),
		NotifyTaskQueue: getEnvOrDefault("NOTIFY_TASK_QUEUE", "order-notify"),

		SessionIdleTTL: getDurationEnv("SESSION_IDLE_TTL", 120, time.Minute),
		LogLevel:       getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

// getListEnv splits a comma separated value, dropping empty entries.
func getListEnv(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
