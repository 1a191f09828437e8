package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Admin      AdminConfig
	CORS       CORSConfig
	Cache      CacheConfig
	Analytics  AnalyticsConfig
	Monitoring MonitoringConfig
	S3         S3Config
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig is optional; when Host is empty the cache stays in-process.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// AdminConfig seeds the first back-office account on an empty database
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type CacheConfig struct {
	DefaultTTL time.Duration
	ChartTTL   time.Duration
	MaxEntries int
	KeyPrefix  string
}

// AnalyticsConfig holds the baselines the alert evaluation pass compares against
type AnalyticsConfig struct {
	DefaultWindowDays     int
	ConfirmationThreshold int
	ResponseTimeBaseline  float64 // milliseconds
	ErrorRateBaseline     float64 // ratio, 0.01 = 1%
	AlertMinimumSeverity  string
}

type MonitoringConfig struct {
	SnapshotInterval  time.Duration
	SnapshotRetention int
	AlertInterval     time.Duration
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "toolchest"),
			Password: getEnv("DB_PASSWORD", "toolchest"),
			DBName:   getEnv("DB_NAME", "toolchest"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", "admin@toolchest.local"),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "ToolChest Admin"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Cache: CacheConfig{
			DefaultTTL: parseDuration(getEnv("CACHE_DEFAULT_TTL", "5m"), 5*time.Minute),
			ChartTTL:   parseDuration(getEnv("CACHE_CHART_TTL", "2m"), 2*time.Minute),
			MaxEntries: parseInt(getEnv("CACHE_MAX_ENTRIES", "1024"), 1024),
			KeyPrefix:  getEnv("CACHE_KEY_PREFIX", "toolchest:cache:"),
		},
		Analytics: AnalyticsConfig{
			DefaultWindowDays:     parseInt(getEnv("ANALYTICS_DEFAULT_WINDOW_DAYS", "30"), 30),
			ConfirmationThreshold: parseInt(getEnv("BULK_CONFIRMATION_THRESHOLD", "25"), 25),
			ResponseTimeBaseline:  parseFloat(getEnv("ALERT_RESPONSE_TIME_BASELINE_MS", "250"), 250),
			ErrorRateBaseline:     parseFloat(getEnv("ALERT_ERROR_RATE_BASELINE", "0.01"), 0.01),
			AlertMinimumSeverity:  getEnv("ALERT_MINIMUM_SEVERITY", "medium"),
		},
		Monitoring: MonitoringConfig{
			SnapshotInterval:  parseDuration(getEnv("MONITORING_SNAPSHOT_INTERVAL", "1m"), time.Minute),
			SnapshotRetention: parseInt(getEnv("MONITORING_SNAPSHOT_RETENTION", "1440"), 1440),
			AlertInterval:     parseDuration(getEnv("MONITORING_ALERT_INTERVAL", "5m"), 5*time.Minute),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "toolchest-assets"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
	}

	if config.Server.Environment == "production" && config.JWT.Secret == "your-secret-key" {
		return nil, fmt.Errorf("JWT_SECRET must be set in production")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// Enabled reports whether a redis host was configured
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return v
}

func parseFloat(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %v", s, fallback)
		return fallback
	}
	return v
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
