package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type R2 struct {
	AccountID  string
	AccessKey  string
	SecretKey  string
	BucketName string
}

type Coolify struct {
	APIURL    string
	APIToken  string
	Timeout   time.Duration
	RateLimit int
}

type Google struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

type Config struct {
	Port                  string
	PostgresURI           string
	RedisURI              string
	FrontendURL           string
	SecretKey             string
	CookieName            string
	CookieSecure          bool
	SessionTTL            time.Duration
	CronSecret            string
	CronSchedule          string
	ReconcilerConcurrency int
	BrowserTables         []string
	BackupArchiveEnabled  bool
	Coolify               Coolify
	Google                Google
	R2                    R2
}

func LoadConfig() *Config {
	return &Config{
		Port:                  getEnv("PORT", "3000"),
		PostgresURI:           getEnv("POSTGRES_URI", ""),
		RedisURI:              getEnv("REDIS_URI", "localhost:6379"),
		FrontendURL:           getEnv("FRONTEND_URL", "http://localhost:5173"),
		SecretKey:             getEnv("SECRET_KEY", ""),
		CookieName:            getEnv("COOKIE_NAME", "auth-token"),
		CookieSecure:          getEnvBool("COOKIE_SECURE", false),
		SessionTTL:            getEnvDuration("SESSION_TTL", 7*24*time.Hour),
		CronSecret:            getEnv("CRON_SECRET", ""),
		CronSchedule:          getEnv("CRON_SCHEDULE", "@every 1m"),
		ReconcilerConcurrency: getEnvInt("RECONCILER_CONCURRENCY", 10),
		BrowserTables:         getEnvList("DB_BROWSER_TABLES"),
		BackupArchiveEnabled:  getEnvBool("BACKUP_ARCHIVE_ENABLED", false),
		Coolify: Coolify{
			APIURL:    getEnv("COOLIFY_API_URL", "http://localhost:8000"),
			APIToken:  getEnv("COOLIFY_API_TOKEN", ""),
			Timeout:   getEnvDuration("COOLIFY_TIMEOUT", 30*time.Second),
			RateLimit: getEnvInt("COOLIFY_RATE_LIMIT", 10),
		},
		Google: Google{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("GOOGLE_REDIRECT_URI", "http://localhost:3000/api/auth/google/callback"),
		},
		R2: R2{
			AccountID:  getEnv("R2_ACCOUNT_ID", ""),
			AccessKey:  getEnv("R2_ACCESS_KEY", ""),
			SecretKey:  getEnv("R2_SECRET_KEY", ""),
			BucketName: getEnv("R2_BUCKET_NAME", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		slog.Warn("invalid boolean in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return d
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
