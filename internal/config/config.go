// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/staff-notes-mcp/internal/staff"
)

// Environment keys.
const (
	EnvLogLevel     = "STAFF_MCP_LOG_LEVEL"
	EnvLogFile      = "STAFF_MCP_LOG_FILE"
	EnvConvention   = "STAFF_MCP_CONVENTION"
	EnvInkThreshold = "STAFF_MCP_INK_THRESHOLD"
	EnvHTTPAddr     = "STAFF_MCP_HTTP_ADDR"
	EnvSoundDir     = "STAFF_MCP_SOUND_DIR"
)

const (
	DefaultLogLevel     = "info"
	DefaultInkThreshold = 128
	DefaultHTTPAddr     = ":8080"
	DefaultSoundDir     = "sound"
)

// Config holds the resolved settings.
type Config struct {
	LogLevel     logrus.Level
	LogFile      string
	Convention   staff.Convention
	InkThreshold uint8
	HTTPAddr     string
	SoundDir     string
}

type rawConfig struct {
	LogLevel     string `validate:"required"`
	LogFile      string
	Convention   string
	InkThreshold int    `validate:"min=1,max=255"`
	HTTPAddr     string `validate:"required"`
	SoundDir     string `validate:"required"`
}

var validate = validator.New()

// Load reads the configuration. Each env file that exists is loaded first;
// variables already set in the process environment take precedence. With no
// arguments a .env file in the working directory is used when present.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	raw := rawConfig{
		LogLevel:   getenv(EnvLogLevel, DefaultLogLevel),
		LogFile:    os.Getenv(EnvLogFile),
		Convention: os.Getenv(EnvConvention),
		HTTPAddr:   getenv(EnvHTTPAddr, DefaultHTTPAddr),
		SoundDir:   getenv(EnvSoundDir, DefaultSoundDir),
	}

	threshold := getenv(EnvInkThreshold, strconv.Itoa(DefaultInkThreshold))
	n, err := strconv.Atoi(threshold)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvInkThreshold, threshold, err)
	}
	raw.InkThreshold = n

	if err := validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("invalid configuration: %s failed %s", verrs[0].Field(), verrs[0].Tag())
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := logrus.ParseLevel(raw.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
	}

	convention, err := staff.LookupConvention(raw.Convention)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvConvention, err)
	}

	return &Config{
		LogLevel:     level,
		LogFile:      raw.LogFile,
		Convention:   convention,
		InkThreshold: uint8(raw.InkThreshold),
		HTTPAddr:     raw.HTTPAddr,
		SoundDir:     raw.SoundDir,
	}, nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
