// Package config resolves clippings settings from the environment,
// optionally seeded from a .env file found on a fixed search path.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Service endpoints, overridable for self-hosted or test setups.
const (
	defaultRaindropAPIBase  = "https://api.raindrop.io/rest/v1"
	defaultMicropubEndpoint = "https://micro.blog/micropub"
)

// configDirName is the directory under ~/.config holding the user .env.
const configDirName = "micropub-clippings"

// Configuration validation errors.
var (
	ErrMissingContentDir     = errors.New("CONTENT_DIR is required")
	ErrMissingRaindropToken  = errors.New("RAINDROP_API_TOKEN is required")
	ErrMissingMicroblogToken = errors.New("MICROBLOG_TOKEN is required to publish")
	ErrInvalidPublishTime    = errors.New("PUBLISH_TIME must be HH:MM")
	ErrInvalidLogLevel       = errors.New("CLIPPINGS_LOG_LEVEL must be one of: debug, info, warn, error")
)

var publishTimeRe = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Config holds every setting the pipeline consumes.
type Config struct {
	RaindropToken  string // Raindrop.io bearer token
	MicroblogToken string // Micro.blog bearer token (publish only)

	ContentDir  string // directory holding the draft files
	Collection  string // Raindrop collection name, ex: "Clippings"
	Tag         string // tag selecting bookmarks, without the '#'
	Category    string // optional post category, empty = none
	PublishTime string // HH:MM appended to the post date on create

	RaindropAPIBase  string
	MicropubEndpoint string
	HTTPTimeout      time.Duration

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
}

// Load applies the first .env file on the search path to the
// environment, reads every setting, and validates the result.
func Load() (*Config, error) {
	LoadEnvFile()

	cfg := &Config{
		RaindropToken:  os.Getenv("RAINDROP_API_TOKEN"),
		MicroblogToken: os.Getenv("MICROBLOG_TOKEN"),

		ContentDir:  os.Getenv("CONTENT_DIR"),
		Collection:  getenv("RAINDROP_COLLECTION", "Clippings"),
		Tag:         getenv("RAINDROP_TAG", "mchn"),
		Category:    os.Getenv("MICROBLOG_CATEGORY"),
		PublishTime: getenv("PUBLISH_TIME", "23:59"),

		RaindropAPIBase:  getenv("RAINDROP_API_BASE", defaultRaindropAPIBase),
		MicropubEndpoint: getenv("MICROPUB_ENDPOINT", defaultMicropubEndpoint),
		HTTPTimeout:      mustDuration("CLIPPINGS_HTTP_TIMEOUT", 30*time.Second),

		LogLevel:  getenv("CLIPPINGS_LOG_LEVEL", "info"),
		PrettyLog: mustBool("CLIPPINGS_PRETTY_LOG", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadEnvFile loads the first .env found, overriding already-set
// variables like the original dotenv flow did. It returns the path
// loaded, or "" when no file exists; a missing .env is not an error
// because the variables may already be in the environment.
func LoadEnvFile() string {
	for _, path := range envSearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Overload(path); err != nil {
			continue
		}
		return path
	}

	return ""
}

// envSearchPaths returns, in precedence order: the working directory,
// the user config directory, then the executable's directory.
func envSearchPaths() []string {
	paths := []string{".env"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", configDirName, ".env"))
	}

	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), ".env"))
	}

	return paths
}

// Validate checks the settings every run needs. The publish token is
// checked separately because draft-only runs do not need it.
func (c *Config) Validate() error {
	if c.ContentDir == "" {
		return ErrMissingContentDir
	}

	if c.RaindropToken == "" {
		return ErrMissingRaindropToken
	}

	if !publishTimeRe.MatchString(c.PublishTime) {
		return fmt.Errorf("%w: got %q", ErrInvalidPublishTime, c.PublishTime)
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.LogLevel)
	}

	return nil
}

// RequirePublishToken reports whether publishing is possible.
func (c *Config) RequirePublishToken() error {
	if c.MicroblogToken == "" {
		return ErrMissingMicroblogToken
	}

	return nil
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}

	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}

	return def
}
