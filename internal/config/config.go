// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Store   StoreConfig
	Upload  UploadConfig
	Extract ExtractConfig
	CORS    CORSConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 5000)
	Port int `env:"SERVER_PORT" default:"5000"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m,
	// extraction requests are slow)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

// StoreConfig holds destination workbook settings.
type StoreConfig struct {
	// Path is the xlsx workbook holding the order tables (required)
	Path string `env:"STORE_PATH" required:"true"`
}

// UploadConfig holds invoice upload settings.
type UploadConfig struct {
	// Dir is where uploaded invoice files are saved (default: uploads)
	Dir string `env:"UPLOAD_DIR" default:"uploads"`

	// MaxFileSize is the maximum allowed file size in bytes (default: 20MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"20971520"`
}

// ExtractConfig holds extraction model settings.
type ExtractConfig struct {
	// APIKey authenticates against the extraction API (required)
	// Supports both OPENAI_API_KEY and EXTRACT_API_KEY env vars
	APIKey string `env:"OPENAI_API_KEY" envAlt:"EXTRACT_API_KEY" required:"true"`

	// BaseURL overrides the completions endpoint; empty uses OpenAI
	BaseURL string `env:"EXTRACT_BASE_URL"`

	// Model is the extraction model (default: gpt-4o-mini)
	Model string `env:"EXTRACT_MODEL" default:"gpt-4o-mini"`

	// Timeout bounds one extraction request (default: 60s)
	Timeout time.Duration `env:"EXTRACT_TIMEOUT" default:"60s"`

	// MaxConcurrent caps in-flight extraction requests (default: 4)
	MaxConcurrent int `env:"EXTRACT_MAX_CONCURRENT" default:"4"`

	// MaxWait is how long a request waits for an extraction slot
	// before being rejected (default: 10s)
	MaxWait time.Duration `env:"EXTRACT_MAX_WAIT" default:"10s"`
}

// CORSConfig holds cross-origin settings for the API.
type CORSConfig struct {
	// AllowedOrigins lists origins allowed to call the API,
	// comma-separated (default: local frontend dev servers)
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://127.0.0.1:3000"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
