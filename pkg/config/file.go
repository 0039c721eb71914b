package config

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

const (
	ConfigFileName = "config.toml"
)

// GetConfigDir returns the user configuration directory (~/.fileconvertor)
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeIO, "failed to get user home directory")
	}

	return filepath.Join(homeDir, constants.AppDirName), nil
}

// GetConfigFilePath returns the full path to the default configuration file
func GetConfigFilePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, ConfigFileName), nil
}

// isYAML reports whether a path should be read as YAML rather than TOML
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile reads a TOML or YAML config file, chosen by extension.
// Defaults are not applied.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to read config file")
	}

	var cfg Config
	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, fmt.Sprintf("failed to parse config file %s", path))
	}

	return &cfg, nil
}

// Marshal encodes a config in the format implied by path
func Marshal(cfg *Config, path string) ([]byte, error) {
	if isYAML(path) {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return toml.Marshal(cfg)
}

// SaveFile writes a config to path, creating the directory if needed
func SaveFile(cfg *Config, path string) error {
	data, err := Marshal(cfg, path)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeSystem, "failed to marshal config")
	}

	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to create config directory")
	}

	// The file can hold a bot token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to write config file")
	}

	return nil
}

// InitConfigFile writes a default config with detected tool paths.
// It refuses to overwrite an existing file unless force is set.
func InitConfigFile(path string, force bool) (*Config, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return nil, utils.NewValidationError(fmt.Sprintf("config file already exists: %s", path), nil)
	}

	cfg := DefaultConfig()
	detectToolPaths(cfg)

	if err := SaveFile(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectToolPaths resolves external tools found in PATH to absolute paths
func detectToolPaths(cfg *Config) {
	targets := []*string{
		&cfg.OCR.TesseractPath,
		&cfg.OCR.LLMCallerPath,
		&cfg.Tools.AntiwordPath,
	}
	for _, target := range targets {
		if detected, err := exec.LookPath(constants.ExecutableName(*target)); err == nil {
			*target = utils.NormalizePath(detected)
		}
	}
}

// configKey binds a dotted key to a config field
type configKey struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func stringKey(field func(c *Config) *string) configKey {
	return configKey{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error { *field(c) = v; return nil },
	}
}

func intKey(field func(c *Config) *int) configKey {
	return configKey{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return utils.NewValidationError(fmt.Sprintf("%q is not an integer", v), err)
			}
			*field(c) = n
			return nil
		},
	}
}

var configKeys = map[string]configKey{
	"bot.api_url":                     stringKey(func(c *Config) *string { return &c.Bot.APIURL }),
	"bot.poll_timeout":                stringKey(func(c *Config) *string { return &c.Bot.PollTimeout }),
	"limits.max_file_size":            stringKey(func(c *Config) *string { return &c.Limits.MaxFileSize }),
	"limits.timeout_minutes":          intKey(func(c *Config) *int { return &c.Limits.TimeoutMinutes }),
	"translation.backend_url":         stringKey(func(c *Config) *string { return &c.Translation.BackendURL }),
	"translation.max_chunk_chars":     intKey(func(c *Config) *int { return &c.Translation.MaxChunkChars }),
	"translation.workers":             intKey(func(c *Config) *int { return &c.Translation.Workers }),
	"translation.detect_prefix_chars": intKey(func(c *Config) *int { return &c.Translation.DetectPrefixChars }),
	"translation.request_timeout":     stringKey(func(c *Config) *string { return &c.Translation.RequestTimeout }),
	"ocr.tesseract_path":              stringKey(func(c *Config) *string { return &c.OCR.TesseractPath }),
	"ocr.languages":                   stringKey(func(c *Config) *string { return &c.OCR.Languages }),
	"ocr.llm_caller_path":             stringKey(func(c *Config) *string { return &c.OCR.LLMCallerPath }),
	"ocr.llm_template":                stringKey(func(c *Config) *string { return &c.OCR.LLMTemplate }),
	"tools.antiword_path":             stringKey(func(c *Config) *string { return &c.Tools.AntiwordPath }),
	"storage.temp_dir":                stringKey(func(c *Config) *string { return &c.Storage.TempDir }),
	"storage.users_backend":           stringKey(func(c *Config) *string { return &c.Storage.UsersBackend }),
	"storage.users_file":              stringKey(func(c *Config) *string { return &c.Storage.UsersFile }),
	"storage.users_db":                stringKey(func(c *Config) *string { return &c.Storage.UsersDB }),
	"admin.listen":                    stringKey(func(c *Config) *string { return &c.Admin.Listen }),
	"admin.password_hash":             stringKey(func(c *Config) *string { return &c.Admin.PasswordHash }),
	"logging.level":                   stringKey(func(c *Config) *string { return &c.Logging.Level }),
	"logging.format":                  stringKey(func(c *Config) *string { return &c.Logging.Format }),
	"ocr.strategy": {
		get: func(c *Config) string { return string(c.OCR.Strategy) },
		set: func(c *Config, v string) error { c.OCR.Strategy = types.OCRStrategy(v); return nil },
	},
}

// ListConfigKeys returns all settable configuration keys, sorted
func ListConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetConfigValue returns a configuration value by dotted key
func GetConfigValue(c *Config, key string) (string, error) {
	k, ok := configKeys[key]
	if !ok {
		return "", utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
	return k.get(c), nil
}

// SetConfigValue sets a configuration value by dotted key and revalidates
func SetConfigValue(c *Config, key, value string) error {
	k, ok := configKeys[key]
	if !ok {
		return utils.NewValidationError(fmt.Sprintf("unknown config key: %s", key), nil)
	}
	if err := k.set(c, value); err != nil {
		return err
	}
	c.applyDefaults()
	return c.Validate()
}
