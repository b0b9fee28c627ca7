package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server         ServerConfig
	Store          StoreConfig
	Print          PrintConfig
	Export         ExportConfig
	Log            LogConfig
	LetterheadPath string
}

// ServerConfig holds the local HTTP surface configuration
type ServerConfig struct {
	Addr        string
	FrontendDir string
}

// StoreConfig holds persistence configuration
type StoreConfig struct {
	Driver        string // sqlite or postgres
	Path          string // sqlite file
	DSN           string // postgres DSN
	MaxImageBytes int
	Debug         bool
}

// PrintConfig holds certificate printing options
type PrintConfig struct {
	Verification bool   // draw a QR verification mark in the header
	LogoPath     string // PNG/JPEG logo for the header band
}

// ExportConfig holds where saved exports and documents land
type ExportConfig struct {
	Dir string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string
	JSON  bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit env file. An empty path reads .env if it
// exists; a named file must exist. Variables already set in the process win.
func LoadFrom(envFile string) (*Config, error) {
	if envFile == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("read %s: %w", envFile, err)
	}

	maxImage, err := strconv.Atoi(getEnv("STORE_MAX_IMAGE_BYTES", "5242880"))
	if err != nil || maxImage < 0 {
		return nil, fmt.Errorf("STORE_MAX_IMAGE_BYTES must be a non-negative integer")
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:        getEnv("XRF_ADDR", "127.0.0.1:3220"),
			FrontendDir: os.Getenv("FRONTEND_DIR"),
		},
		Store: StoreConfig{
			Driver:        getEnv("STORE_DRIVER", "sqlite"),
			Path:          getEnv("STORE_PATH", "xrfdesk.db"),
			DSN:           os.Getenv("STORE_DSN"),
			MaxImageBytes: maxImage,
			Debug:         getEnv("STORE_DEBUG", "false") == "true",
		},
		Print: PrintConfig{
			Verification: getEnv("PRINT_VERIFICATION_QR", "false") == "true",
			LogoPath:     os.Getenv("PRINT_LOGO"),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "exports"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnv("LOG_JSON", "false") == "true",
		},
		LetterheadPath: os.Getenv("LETTERHEAD_FILE"),
	}

	switch cfg.Store.Driver {
	case "sqlite":
	case "postgres":
		if cfg.Store.DSN == "" {
			return nil, fmt.Errorf("STORE_DSN is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	return cfg, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
