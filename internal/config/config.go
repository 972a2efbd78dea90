package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Import pipeline configuration
	Import ImportConfig

	// Export configuration
	Export ExportConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// ImportConfig holds import pipeline settings
type ImportConfig struct {
	ChunkSize            int
	MaxFileSize          int64 // in bytes
	AllowedExtensions    []string
	UploadDir            string
	UpdateExisting       bool
	AutoCreateCategories bool
	SimilarityThreshold  float64
	DateFormats          []string
	AssetFetchTimeout    time.Duration
	Workers              int
}

// ExportConfig holds export settings
type ExportConfig struct {
	SheetName     string
	BatchSize     int
	LowStockLimit int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables.
// A .env file in the working directory is honored when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 300*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Name:         getEnv("DB_NAME", "vivacrm"),
			SSLMode:      getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns: getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
		},
		Import: ImportConfig{
			ChunkSize:            getIntEnv("IMPORT_CHUNK_SIZE", 500),
			MaxFileSize:          getInt64Env("IMPORT_MAX_FILE_SIZE", 100*1024*1024), // 100MB
			AllowedExtensions:    getSliceEnv("IMPORT_ALLOWED_EXTENSIONS", []string{".xlsx", ".csv"}),
			UploadDir:            getEnv("IMPORT_UPLOAD_DIR", "./data/uploads"),
			UpdateExisting:       getBoolEnv("IMPORT_UPDATE_EXISTING", true),
			AutoCreateCategories: getBoolEnv("IMPORT_AUTO_CREATE_CATEGORIES", true),
			SimilarityThreshold:  getFloatEnv("IMPORT_SIMILARITY_THRESHOLD", 0.85),
			DateFormats: getSliceEnv("IMPORT_DATE_FORMATS", []string{
				"2006-01-02", "02.01.2006", "02/01/2006", "01/02/2006",
				"2006-01-02 15:04:05", time.RFC3339,
			}),
			AssetFetchTimeout: getDurationEnv("IMPORT_ASSET_FETCH_TIMEOUT", 5*time.Second),
			Workers:           getIntEnv("IMPORT_WORKERS", 4),
		},
		Export: ExportConfig{
			SheetName:     getEnv("EXPORT_SHEET_NAME", "Sheet1"),
			BatchSize:     getIntEnv("EXPORT_BATCH_SIZE", 1000),
			LowStockLimit: getIntEnv("EXPORT_LOW_STOCK_LIMIT", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if c.Import.ChunkSize < 1 {
		return fmt.Errorf("IMPORT_CHUNK_SIZE must be at least 1")
	}
	if c.Import.MaxFileSize < 1 {
		return fmt.Errorf("IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.SimilarityThreshold <= 0 || c.Import.SimilarityThreshold > 1 {
		return fmt.Errorf("IMPORT_SIMILARITY_THRESHOLD must be in (0, 1]")
	}
	return nil
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
