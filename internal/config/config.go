// Package config handles loading and validation of service configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Logical service names used for address resolution and registration.
const (
	UserService         = "user-service"
	ComplaintService    = "complaint-service"
	MediaService        = "media-service"
	NotificationService = "notification-service"
)

const devJWTSecret = "dev-secret-change-in-production"

// Config holds the configuration of one service process
type Config struct {
	// Server settings
	Service     string
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database; empty outside production selects in-memory stores
	DatabaseURL string
	DBMaxConns  int
	DBMinConns  int

	// Redis (discovery registry & distributed rate limiting); empty disables
	RedisURL string

	// Security
	JWTSecret      string
	JWTTTL         time.Duration
	AuthRequired   bool
	AllowedOrigins []string
	RateLimitRPM   int

	// Inter-service calls
	ServiceCallTimeout time.Duration
	AsyncNotifications bool
	AdvertiseURL       string
	HeartbeatInterval  time.Duration
	ServiceURLs        map[string]string

	// File storage (media vault)
	StorageType    string // "local" | "s3"
	UploadDir      string
	S3Bucket       string
	S3Region       string
	MaxUploadBytes int64
}

// Load reads the configuration for the named service from the environment
func Load(service string) (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	defaultPort := map[string]int{
		UserService:         8081,
		ComplaintService:    8082,
		MediaService:        8083,
		NotificationService: 8084,
	}[service]
	if defaultPort == 0 {
		return nil, fmt.Errorf("unknown service %q", service)
	}

	cfg := &Config{
		Service:     service,
		Port:        getEnvInt("PORT", defaultPort),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),
		DBMinConns:  getEnvInt("DB_MIN_CONNS", 2),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret:      getEnv("JWT_SECRET", devJWTSecret),
		JWTTTL:         getEnvDuration("JWT_TTL", 24*time.Hour),
		AuthRequired:   getEnvBool("AUTH_REQUIRED", false),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),

		ServiceCallTimeout: getEnvDuration("SERVICE_CALL_TIMEOUT", 5*time.Second),
		AsyncNotifications: getEnvBool("ASYNC_NOTIFICATIONS", false),
		HeartbeatInterval:  getEnvDuration("HEARTBEAT_INTERVAL", 10*time.Second),
		ServiceURLs: map[string]string{
			UserService:         getEnv("USER_SERVICE_URL", "http://localhost:8081"),
			ComplaintService:    getEnv("COMPLAINT_SERVICE_URL", "http://localhost:8082"),
			MediaService:        getEnv("MEDIA_SERVICE_URL", "http://localhost:8083"),
			NotificationService: getEnv("NOTIFICATION_SERVICE_URL", "http://localhost:8084"),
		},

		StorageType:    getEnv("STORAGE_TYPE", "local"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		S3Bucket:       getEnv("STORAGE_S3_BUCKET", ""),
		S3Region:       getEnv("STORAGE_S3_REGION", ""),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 10)) << 20,
	}
	cfg.AdvertiseURL = getEnv("ADVERTISE_URL", fmt.Sprintf("http://localhost:%d", cfg.Port))

	if cfg.ServiceCallTimeout <= 0 {
		return nil, fmt.Errorf("SERVICE_CALL_TIMEOUT must be positive")
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == devJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
