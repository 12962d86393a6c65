// Package config provides centralized default values for the Elias engine
package config

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		if _, err := os.Stat(".env"); err != nil {
			return
		}
		log.Println("Loading configuration overrides from .env file...")
		if err := godotenv.Load(); err != nil {
			log.Printf("Failed to load .env file: %v", err)
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%f (default: %f)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Analytics mode: "live" serves from tenant databases, "mock" serves
	// deterministic synthetic data.
	AnalyticsMode string

	// Capture agent: movement classification
	MoveDistanceThreshold float64
	MoveThrottleInterval  time.Duration
	DwellThreshold        time.Duration
	ViewerAttachTimeout   time.Duration
	ViewerPollInterval    time.Duration

	// Capture agent: batching transport
	FlushInterval      time.Duration
	MaxBatchSize       int
	MaxBufferedEvents  int
	HeartbeatInterval  time.Duration
	CaptureSendTimeout time.Duration

	// Ingestion
	MaxIngestBatchSize int

	// Heatmap aggregation
	HeatmapTTL        time.Duration
	HeatmapGridSize   int
	PeakZoneThreshold float64

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Live activity feed
	ActivityClientBuffer int
	ActivityWriteTimeout time.Duration

	// Multi-tenancy
	MultiTenantEnabled bool
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Analytics mode
	AnalyticsMode = getEnvString("ANALYTICS_MODE", "live")

	// Capture agent classification
	MoveDistanceThreshold = getEnvFloat("MOVE_DISTANCE_THRESHOLD", 0.5)
	MoveThrottleInterval = getEnvDuration("MOVE_THROTTLE_INTERVAL", 500*time.Millisecond)
	DwellThreshold = getEnvDuration("DWELL_THRESHOLD", 3*time.Second)
	ViewerAttachTimeout = getEnvDuration("VIEWER_ATTACH_TIMEOUT", 10*time.Second)
	ViewerPollInterval = getEnvDuration("VIEWER_POLL_INTERVAL", 200*time.Millisecond)

	// Capture agent transport
	FlushInterval = getEnvDuration("FLUSH_INTERVAL", 5*time.Second)
	MaxBatchSize = getEnvInt("MAX_BATCH_SIZE", 50)
	MaxBufferedEvents = getEnvInt("MAX_BUFFERED_EVENTS", 1000)
	HeartbeatInterval = getEnvDuration("HEARTBEAT_INTERVAL", 30*time.Second)
	CaptureSendTimeout = getEnvDuration("CAPTURE_SEND_TIMEOUT", 10*time.Second)

	// Ingestion
	MaxIngestBatchSize = getEnvInt("MAX_INGEST_BATCH_SIZE", 100)

	// Heatmap aggregation
	HeatmapTTL = time.Duration(getEnvInt("HEATMAP_TTL_MINUTES", 60)) * time.Minute
	HeatmapGridSize = getEnvInt("HEATMAP_GRID_SIZE", 20)
	PeakZoneThreshold = getEnvFloat("PEAK_ZONE_THRESHOLD", 0.7)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 500*time.Millisecond)

	// Live activity feed
	ActivityClientBuffer = getEnvInt("ACTIVITY_CLIENT_BUFFER", 32)
	ActivityWriteTimeout = getEnvDuration("ACTIVITY_WRITE_TIMEOUT", 10*time.Second)

	// Multi-tenancy
	MultiTenantEnabled = getEnvBool("ENABLE_MULTI_TENANT", false)
}
