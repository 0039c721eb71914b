package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// ConfigValidator checks a configuration and reports every problem at once
type ConfigValidator struct{}

// NewConfigValidator creates a config validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate validates the configuration
func (v *ConfigValidator) Validate(c *Config) error {
	var errors []string

	check := func(err error) {
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	check(v.validateOCRStrategy(c.OCR.Strategy))
	check(v.validateLimits(c))
	check(v.validateTranslation(&c.Translation))
	check(v.validateDurations(c))
	check(v.validateStorage(&c.Storage))
	check(logger.LogLevel(strings.ToLower(c.Logging.Level)).Validate())
	check(logger.Format(strings.ToLower(c.Logging.Format)).Validate())

	if len(errors) > 0 {
		return utils.NewValidationError("configuration validation failed",
			fmt.Errorf("validation errors: %s", strings.Join(errors, "; ")))
	}

	return nil
}

// validateOCRStrategy checks the OCR strategy name
func (v *ConfigValidator) validateOCRStrategy(strategy types.OCRStrategy) error {
	switch strategy {
	case types.OCRStrategyAuto, types.OCRStrategyTesseract, types.OCRStrategyLLMCaller:
		return nil
	}
	return fmt.Errorf("invalid OCR strategy: %s", strategy)
}

// validateLimits parses the upload size and checks the timeout
func (v *ConfigValidator) validateLimits(c *Config) error {
	size, err := utils.ParseSize(c.Limits.MaxFileSize)
	if err != nil {
		return fmt.Errorf("invalid max_file_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_file_size must be positive")
	}
	c.Limits.maxFileSizeBytes = size

	if c.Limits.TimeoutMinutes < 1 {
		return fmt.Errorf("timeout must be at least 1 minute")
	}
	return nil
}

// validateTranslation checks chunking and backend settings
func (v *ConfigValidator) validateTranslation(t *TranslationConfig) error {
	if t.MaxChunkChars < 1 {
		return fmt.Errorf("max_chunk_chars must be at least 1")
	}
	if t.Workers < 1 || t.Workers > constants.MaxTranslateWorkers {
		return fmt.Errorf("translation workers must be between 1 and %d", constants.MaxTranslateWorkers)
	}
	if t.DetectPrefixChars < 1 {
		return fmt.Errorf("detect_prefix_chars must be at least 1")
	}
	u, err := url.Parse(t.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid translation backend_url: %q", t.BackendURL)
	}
	return nil
}

// validateDurations checks duration strings
func (v *ConfigValidator) validateDurations(c *Config) error {
	if _, err := time.ParseDuration(c.Translation.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.Bot.PollTimeout); err != nil {
		return fmt.Errorf("invalid poll_timeout: %w", err)
	}
	return nil
}

// validateStorage checks the users backend
func (v *ConfigValidator) validateStorage(s *StorageConfig) error {
	switch s.UsersBackend {
	case UsersBackendJSON, UsersBackendSQLite:
		return nil
	}
	return fmt.Errorf("invalid users_backend: %s (must be json or sqlite)", s.UsersBackend)
}
