package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// LoggingConfig holds logging-related configuration.
type LoggingConfig struct {
	Level      string
	Pretty     bool
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// AxiomConfig holds Axiom logging configuration.
type AxiomConfig struct {
	Send          bool
	APIKey        string
	OrgID         string
	Dataset       string
	FlushInterval time.Duration
}

// RepairConfig controls the Ghostscript repair fallback.
type RepairConfig struct {
	Binary  string
	Timeout time.Duration
}

// PDFConfig controls how input documents are read.
type PDFConfig struct {
	// Validation is "relaxed" or "strict".
	Validation string
}

// InputConfig controls remote input sources.
type InputConfig struct {
	HTTPTimeout time.Duration
}

// ServerConfig controls the optional HTTP shell.
type ServerConfig struct {
	Addr string
	// Username and Password guard the merge API. Both must be set or the
	// guarded routes refuse every request.
	Username string
	Password string
}

// Config is the top-level configuration.
type Config struct {
	Logging    LoggingConfig
	Axiom      AxiomConfig
	Repair     RepairConfig
	PDF        PDFConfig
	Input      InputConfig
	Server     ServerConfig
	ConfigFile string
}

// Load reads an optional .env file and then builds the configuration from the environment.
func Load() Config {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv loads configuration from environment with sensible defaults.
func FromEnv() Config {
	cfg := Config{}

	cfg.Logging = LoggingConfig{
		Level:      getEnv("LOG_LEVEL", "info"),
		Pretty:     parseBool(getEnv("LOG_PRETTY", devDefaultPretty())),
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  parseInt(getEnv("LOG_MAX_SIZE_MB", "20"), 20),
		MaxBackups: parseInt(getEnv("LOG_MAX_BACKUPS", "5"), 5),
		MaxAgeDays: parseInt(getEnv("LOG_MAX_AGE_DAYS", "30"), 30),
		Compress:   parseBool(getEnv("LOG_COMPRESS", "true")),
	}

	baseDataset := getEnv("AXIOM_DATASET", "dev")
	cfg.Axiom = AxiomConfig{
		Send:          parseBool(getEnv("SEND_LOGS_TO_AXIOM", "0")),
		APIKey:        getEnv("AXIOM_API_KEY", ""),
		OrgID:         getEnv("AXIOM_ORG_ID", ""),
		Dataset:       baseDataset + "_pdfsm",
		FlushInterval: parseDuration(getEnv("AXIOM_FLUSH_INTERVAL", "10s"), 10*time.Second),
	}

	cfg.Repair = RepairConfig{
		Binary:  getEnv("PDFSM_GS_BINARY", defaultGhostscript()),
		Timeout: parseDuration(getEnv("PDFSM_REPAIR_TIMEOUT", "3m"), 3*time.Minute),
	}

	validation := strings.ToLower(getEnv("PDFSM_VALIDATION", "relaxed"))
	if validation != "strict" {
		validation = "relaxed"
	}
	cfg.PDF = PDFConfig{Validation: validation}

	cfg.Input = InputConfig{
		HTTPTimeout: parseDuration(getEnv("PDFSM_HTTP_TIMEOUT", "60s"), 60*time.Second),
	}

	cfg.Server = ServerConfig{
		Addr:     getEnv("PDFSM_ADDR", "127.0.0.1:8080"),
		Username: os.Getenv("WEB_USERNAME"),
		Password: os.Getenv("WEB_PASSWORD"),
	}

	cfg.ConfigFile = getEnv("PDFSM_CONFIG_FILE", "")

	return cfg
}

// Helpers
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func parseBool(s string) bool {
	v := strings.ToLower(strings.TrimSpace(s))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func parseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func devDefaultPretty() string {
	env := strings.ToLower(os.Getenv("ENVIRONMENT"))
	if env == "prod" || env == "production" {
		return "false"
	}
	// A CLI talks to a terminal by default.
	return "true"
}

func defaultGhostscript() string {
	if runtime.GOOS == "windows" {
		return "gswin64c"
	}
	return "gs"
}
