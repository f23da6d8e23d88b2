package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setRequired points the required variables at harmless values and
// clears the optional ones so defaults apply.
func setRequired(t *testing.T) {
	t.Helper()

	t.Setenv("CONTENT_DIR", t.TempDir())
	t.Setenv("RAINDROP_API_TOKEN", "raindrop-token")
	t.Setenv("MICROBLOG_TOKEN", "")
	t.Setenv("RAINDROP_COLLECTION", "")
	t.Setenv("RAINDROP_TAG", "")
	t.Setenv("MICROBLOG_CATEGORY", "")
	t.Setenv("PUBLISH_TIME", "")
	t.Setenv("CLIPPINGS_LOG_LEVEL", "")
	t.Setenv("CLIPPINGS_PRETTY_LOG", "")
	t.Setenv("CLIPPINGS_HTTP_TIMEOUT", "")
	t.Setenv("RAINDROP_API_BASE", "")
	t.Setenv("MICROPUB_ENDPOINT", "")
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Collection != "Clippings" {
		t.Errorf("Expected default collection 'Clippings', got %q", cfg.Collection)
	}

	if cfg.Tag != "mchn" {
		t.Errorf("Expected default tag 'mchn', got %q", cfg.Tag)
	}

	if cfg.PublishTime != "23:59" {
		t.Errorf("Expected default publish time '23:59', got %q", cfg.PublishTime)
	}

	if cfg.RaindropAPIBase != "https://api.raindrop.io/rest/v1" {
		t.Errorf("Unexpected raindrop base: %q", cfg.RaindropAPIBase)
	}

	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.HTTPTimeout)
	}

	if cfg.LogLevel != "info" || !cfg.PrettyLog {
		t.Errorf("Unexpected logging defaults: level=%q pretty=%v", cfg.LogLevel, cfg.PrettyLog)
	}
}

func TestLoad_MissingContentDir(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("CONTENT_DIR", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingContentDir) {
		t.Fatalf("Expected ErrMissingContentDir, got %v", err)
	}
}

func TestLoad_MissingRaindropToken(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("RAINDROP_API_TOKEN", "")

	_, err := Load()
	if !errors.Is(err, ErrMissingRaindropToken) {
		t.Fatalf("Expected ErrMissingRaindropToken, got %v", err)
	}
}

func TestLoad_InvalidPublishTime(t *testing.T) {
	tests := []string{"24:00", "7:30", "23:61", "noon"}

	for _, tc := range tests {
		t.Run(tc, func(t *testing.T) {
			t.Chdir(t.TempDir())
			setRequired(t)
			t.Setenv("PUBLISH_TIME", tc)

			_, err := Load()
			if !errors.Is(err, ErrInvalidPublishTime) {
				t.Fatalf("Expected ErrInvalidPublishTime for %q, got %v", tc, err)
			}
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Chdir(t.TempDir())
	setRequired(t)
	t.Setenv("CLIPPINGS_LOG_LEVEL", "verbose")

	_, err := Load()
	if !errors.Is(err, ErrInvalidLogLevel) {
		t.Fatalf("Expected ErrInvalidLogLevel, got %v", err)
	}
}

func TestLoad_DotenvOverridesEnvironment(t *testing.T) {
	dir := t.TempDir()

	env := "RAINDROP_TAG=fromfile\nMICROBLOG_CATEGORY=Links\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}

	setRequired(t)
	t.Setenv("RAINDROP_TAG", "fromenv")
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Tag != "fromfile" {
		t.Errorf("Expected .env to override environment, got tag %q", cfg.Tag)
	}

	if cfg.Category != "Links" {
		t.Errorf("Expected category 'Links' from .env, got %q", cfg.Category)
	}
}

func TestLoadEnvFile_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())

	// The user config dir or executable dir could still hold a .env on
	// a developer machine; only assert the cwd miss does not error.
	_ = LoadEnvFile()
}

func TestRequirePublishToken(t *testing.T) {
	cfg := &Config{}
	if !errors.Is(cfg.RequirePublishToken(), ErrMissingMicroblogToken) {
		t.Fatal("Expected ErrMissingMicroblogToken for empty token")
	}

	cfg.MicroblogToken = "token"
	if err := cfg.RequirePublishToken(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}
