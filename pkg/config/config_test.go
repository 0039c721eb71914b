package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if got := cfg.MaxFileSizeBytes(); got != 20971520 {
		t.Errorf("MaxFileSizeBytes = %d, want 20971520", got)
	}
	if cfg.Translation.MaxChunkChars != 5000 {
		t.Errorf("MaxChunkChars = %d, want 5000", cfg.Translation.MaxChunkChars)
	}
	if cfg.Translation.DetectPrefixChars != 1000 {
		t.Errorf("DetectPrefixChars = %d, want 1000", cfg.Translation.DetectPrefixChars)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[limits]
max_file_size = "5MiB"

[translation]
backend_url = "http://translate.internal:5000"
workers = 4

[ocr]
strategy = "tesseract"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.MaxFileSizeBytes() != 5*1024*1024 {
		t.Errorf("MaxFileSizeBytes = %d", cfg.MaxFileSizeBytes())
	}
	if cfg.Translation.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Translation.Workers)
	}
	if cfg.OCR.Strategy != types.OCRStrategyTesseract {
		t.Errorf("Strategy = %s", cfg.OCR.Strategy)
	}
	// untouched sections still get defaults
	if cfg.Translation.MaxChunkChars != 5000 {
		t.Errorf("MaxChunkChars = %d, want default", cfg.Translation.MaxChunkChars)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n  users_backend: sqlite\n  users_db: users.db\nlogging:\n  format: json\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Storage.UsersBackend != UsersBackendSQLite || cfg.Storage.UsersDB != "users.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Format = %s", cfg.Logging.Format)
	}
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := LoadConfigWithEnvOverrides(filepath.Join(t.TempDir(), "nope.toml"))
	if utils.GetErrorType(err) != utils.ErrorTypeNotFound {
		t.Fatalf("expected not_found error, got %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("FILECONVERTOR_MAX_FILE_SIZE", "1MiB")
	t.Setenv("PORT", "8080")
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides: %v", err)
	}
	if cfg.Bot.Token != "123:abc" {
		t.Errorf("Token = %q", cfg.Bot.Token)
	}
	if cfg.MaxFileSizeBytes() != 1024*1024 {
		t.Errorf("MaxFileSizeBytes = %d", cfg.MaxFileSizeBytes())
	}
	if cfg.Admin.Listen != ":8080" {
		t.Errorf("Listen = %q", cfg.Admin.Listen)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OCR.Strategy = "magic"
	cfg.Translation.Workers = 0
	cfg.Logging.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"invalid OCR strategy", "workers", "invalid log level"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	for _, name := range []string{"config.toml", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			cfg := DefaultConfig()
			cfg.Translation.APIKey = "secret"
			if err := SaveFile(cfg, path); err != nil {
				t.Fatalf("SaveFile: %v", err)
			}
			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if loaded.Translation.APIKey != "secret" {
				t.Errorf("APIKey = %q", loaded.Translation.APIKey)
			}
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	cfg := DefaultConfig()
	if err := SetConfigValue(cfg, "translation.workers", "6"); err != nil {
		t.Fatalf("SetConfigValue: %v", err)
	}
	if got, _ := GetConfigValue(cfg, "translation.workers"); got != "6" {
		t.Errorf("workers = %s", got)
	}
	if err := SetConfigValue(cfg, "translation.workers", "many"); err == nil {
		t.Error("expected error for non-integer")
	}
	if err := SetConfigValue(cfg, "no.such.key", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}
