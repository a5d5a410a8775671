package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store   StoreConfig
	Source  SourceConfig
	LLM     LLMConfig
	Forms   FormsConfig
	Scanner ScannerConfig
	Queue   QueueConfig
}

// StoreConfig selects and tunes the record store backend.
type StoreConfig struct {
	// Backend is one of "sqlite", "postgres", "redis", "memory".
	Backend     string
	DSN         string
	RedisAddr   string
	RedisDB     int
	DialTimeout time.Duration
}

// SourceConfig selects the content source backend.
type SourceConfig struct {
	// Backend is one of "gdrive", "localdir".
	Backend string
	// FolderID is the Drive folder (or local directory) holding transcripts.
	FolderID        string
	CredentialsFile string
}

// LLMConfig holds quiz-generation configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
	// ExtraInstructions is appended verbatim to the generation prompt.
	ExtraInstructions string
}

// FormsConfig holds form-publisher configuration
type FormsConfig struct {
	CredentialsFile string
	Timeout         time.Duration
}

// ScannerConfig drives the periodic folder scan.
type ScannerConfig struct {
	Interval      time.Duration
	QuestionCount int
	Watch         bool
	WatchDebounce time.Duration
}

// QueueConfig tunes the background processing queue.
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend:     getEnv("STORE_BACKEND", "sqlite"),
			DSN:         getEnv("STORE_DSN", "file:quizgen.db?_pragma=busy_timeout(5000)"),
			RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
			RedisDB:     getEnvAsInt("REDIS_DB", 0),
			DialTimeout: getEnvAsDuration("STORE_DIAL_TIMEOUT", 3*time.Second),
		},
		Source: SourceConfig{
			Backend:         getEnv("SOURCE_BACKEND", "gdrive"),
			FolderID:        getEnv("SOURCE_FOLDER_ID", ""),
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		},
		LLM: LLMConfig{
			Model:             getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			BaseURL:           getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Temperature:       getEnvAsFloat32("OPENAI_TEMPERATURE", 0.2),
			Timeout:           getEnvAsDuration("OPENAI_TIMEOUT", 90*time.Second),
			ExtraInstructions: getEnv("QUIZ_EXTRA_INSTRUCTIONS", ""),
		},
		Forms: FormsConfig{
			CredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
			Timeout:         getEnvAsDuration("FORMS_TIMEOUT", 30*time.Second),
		},
		Scanner: ScannerConfig{
			Interval:      getEnvAsDuration("SCAN_INTERVAL", 10*time.Minute),
			QuestionCount: getEnvAsInt("SCAN_QUESTION_COUNT", 5),
			Watch:         getEnvAsBool("SOURCE_WATCH", false),
			WatchDebounce: getEnvAsDuration("SOURCE_WATCH_DEBOUNCE", 2*time.Second),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 4),
			Size:           getEnvAsInt("QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 5*time.Minute),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "sqlite", "postgres":
		if c.Store.DSN == "" {
			return NewAppError("CONFIG_ERROR", "STORE_DSN is required", ErrInvalidInput)
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return NewAppError("CONFIG_ERROR", "REDIS_ADDR is required", ErrInvalidInput)
		}
	case "memory":
	default:
		return NewAppError("CONFIG_ERROR", "unknown STORE_BACKEND: "+c.Store.Backend, ErrInvalidInput)
	}
	if c.Source.FolderID == "" {
		return NewAppError("CONFIG_ERROR", "SOURCE_FOLDER_ID is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Scanner.QuestionCount <= 0 {
		return NewAppError("CONFIG_ERROR", "SCAN_QUESTION_COUNT must be positive", ErrInvalidInput)
	}
	return nil
}
