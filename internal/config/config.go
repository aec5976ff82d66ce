package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	ServerPort   string
	AppEnv       string
	LogLevel     string
	ClientOrigin string

	// Storage is "postgres" or "memory".
	Storage    string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret    string
	TokenTTL     time.Duration
	CookieSecure bool

	S3Endpoint      string
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

func Load() *Config {
	return &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		AppEnv:       getEnv("APP_ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ClientOrigin: getEnv("CLIENT_ORIGIN", "http://localhost:5173"),

		Storage:    getEnv("STORAGE", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "chatty"),
		DBPassword: getEnv("DB_PASSWORD", "chatty_dev_password"),
		DBName:     getEnv("DB_NAME", "chatty"),

		JWTSecret:    getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:     getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),

		S3Endpoint:      getEnv("S3_ENDPOINT", "http://127.0.0.1:9000"),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Bucket:        getEnv("S3_BUCKET", "chatty"),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", "admin"),
		S3SecretKey:     getEnv("S3_SECRET_KEY", "secretpassword"),
		S3PublicBaseURL: getEnv("S3_PUBLIC_BASE_URL", "http://127.0.0.1:9000/chatty"),
	}
}

// IsDevelopment reports whether error responses may carry stack traces.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

// getEnvDuration accepts Go duration strings ("15m", "168h").
// Malformed values fall back to the default.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvBool(key string, fallback bool) bool {
	val, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return b
}
