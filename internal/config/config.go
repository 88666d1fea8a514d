package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	// Database
	DatabaseDSN string

	// Server
	ServerPort string

	// Redis
	RedisAddr string

	// Object storage
	S3Bucket  string
	AWSRegion string

	// External signal processor
	SignalCloudURL    string
	SignalCloudAPIKey string

	// Orchestration
	PollInterval   time.Duration // interval between external job polls
	MaxPollWait    time.Duration // bounded wait before EXTERNAL_TIMEOUT
	StaleThreshold time.Duration // reconciliation cutoff for interrupted records
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		DatabaseDSN:       getEnv("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=signalflow port=5432 sslmode=disable"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		S3Bucket:          getEnv("S3_BUCKET", "signalflow-reports"),
		AWSRegion:         getEnv("AWS_REGION", "us-east-1"),
		SignalCloudURL:    getEnv("SIGNALCLOUD_URL", "http://localhost:9090"),
		SignalCloudAPIKey: getEnv("SIGNALCLOUD_API_KEY", ""),
		PollInterval:      getDuration("POLL_INTERVAL", 5*time.Second),
		MaxPollWait:       getDuration("MAX_POLL_WAIT", 5*time.Minute),
		StaleThreshold:    getDuration("STALE_THRESHOLD", 30*time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
