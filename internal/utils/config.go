package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tkanos/gonfig"
)

// Config holds the runtime settings shared by the server and the CLI.
type Config struct {
	Addr           string `json:"addr" env:"QRPAY_ADDR"`
	PNGWidth       int    `json:"pngWidth" env:"QRPAY_PNG_WIDTH"`
	Margin         int    `json:"margin" env:"QRPAY_MARGIN"`
	SVGSize        int    `json:"svgSize" env:"QRPAY_SVG_SIZE"`
	Level          string `json:"level" env:"QRPAY_LEVEL"`
	Foreground     string `json:"foreground" env:"QRPAY_FOREGROUND"`
	Background     string `json:"background" env:"QRPAY_BACKGROUND"`
	LogLevel       string `json:"logLevel" env:"QRPAY_LOG_LEVEL"`
	LogFormat      string `json:"logFormat" env:"QRPAY_LOG_FORMAT"`
	LogFile        string `json:"logFile" env:"QRPAY_LOG_FILE"`
	Telemetry      bool   `json:"telemetry" env:"QRPAY_TELEMETRY"`
	ServiceName    string `json:"serviceName" env:"OTEL_SERVICE_NAME"`
	AllowedOrigins string `json:"allowedOrigins" env:"QRPAY_ALLOWED_ORIGINS"`
	TLSCert        string `json:"tlsCert" env:"QRPAY_TLS_CERT"`
	TLSKey         string `json:"tlsKey" env:"QRPAY_TLS_KEY"`
	OutputDir      string `json:"outputDir" env:"QRPAY_OUTPUT_DIR"`
}

// DefaultConfig matches the dimensions of the original form's exports.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		PNGWidth:       512,
		Margin:         2,
		SVGSize:        256,
		Level:          "M",
		Foreground:     "#000000",
		Background:     "#FFFFFF",
		LogLevel:       "info",
		LogFormat:      "json",
		ServiceName:    "qrpay",
		AllowedOrigins: "*",
		OutputDir:      ".",
	}
}

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Validate rejects settings the renderer or server cannot honour.
func (c Config) Validate() error {
	var errs []error
	if c.PNGWidth < 64 {
		errs = append(errs, fmt.Errorf("pngWidth must be at least 64, got %d", c.PNGWidth))
	}
	if c.Margin < 0 || c.Margin > 16 {
		errs = append(errs, fmt.Errorf("margin must be within 0..16, got %d", c.Margin))
	}
	if c.SVGSize < 1 {
		errs = append(errs, fmt.Errorf("svgSize must be positive, got %d", c.SVGSize))
	}
	switch strings.ToUpper(c.Level) {
	case "L", "M", "Q", "H":
	default:
		errs = append(errs, fmt.Errorf("level must be one of L, M, Q, H, got %q", c.Level))
	}
	if !hexColor.MatchString(c.Foreground) {
		errs = append(errs, fmt.Errorf("foreground must be #RRGGBB, got %q", c.Foreground))
	}
	if !hexColor.MatchString(c.Background) {
		errs = append(errs, fmt.Errorf("background must be #RRGGBB, got %q", c.Background))
	}
	if (c.TLSCert == "") != (c.TLSKey == "") {
		errs = append(errs, errors.New("tlsCert and tlsKey must be set together"))
	}
	return errors.Join(errs...)
}

// Origins splits AllowedOrigins into a list.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LoadConfig reads defaults, then the JSON file at path (skipped when it does
// not exist), then environment overrides. A .env file in the working
// directory is loaded into the environment first.
func LoadConfig(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("stat config: %w", err)
			}
			path = ""
		}
	}
	if err := gonfig.GetConf(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// DefaultConfigPath is config.json at the project root.
func DefaultConfigPath() string {
	return filepath.Join(GetProjectRoot(), "config.json")
}

// GetProjectRoot returns the absolute path to the project root directory.
func GetProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return "." // fallback
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached root
		}
		dir = parent
	}
	// not inside a source tree; use the working directory
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
