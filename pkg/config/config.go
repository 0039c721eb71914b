package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// Default values
const (
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultTimeoutMinutes = 30
	DefaultMaxFileSize    = "20MiB"
	DefaultOCRStrategy    = types.OCRStrategyAuto
	DefaultOCRLanguages   = "eng"
	DefaultBackendURL     = "http://localhost:5000"
	DefaultRequestTimeout = "60s"
	DefaultPollTimeout    = "30s"
	DefaultAdminListen    = ":8000"
	DefaultUsersBackend   = "json"
	DefaultUsersFile      = "authorized_users.json"
	DefaultUsersDB        = "fileconvertor.db"
)

// Users backends
const (
	UsersBackendJSON   = "json"
	UsersBackendSQLite = "sqlite"
)

// BotConfig configures the chat platform connection
type BotConfig struct {
	Token       string `toml:"token" yaml:"token"`
	APIURL      string `toml:"api_url" yaml:"api_url"`
	PollTimeout string `toml:"poll_timeout" yaml:"poll_timeout"`
}

// LimitsConfig bounds a single request
type LimitsConfig struct {
	MaxFileSize    string `toml:"max_file_size" yaml:"max_file_size"`
	TimeoutMinutes int    `toml:"timeout_minutes" yaml:"timeout_minutes"`

	maxFileSizeBytes int64
}

// TranslationConfig configures the translation backend and chunking
type TranslationConfig struct {
	BackendURL        string `toml:"backend_url" yaml:"backend_url"`
	APIKey            string `toml:"api_key" yaml:"api_key"`
	MaxChunkChars     int    `toml:"max_chunk_chars" yaml:"max_chunk_chars"`
	Workers           int    `toml:"workers" yaml:"workers"`
	DetectPrefixChars int    `toml:"detect_prefix_chars" yaml:"detect_prefix_chars"`
	RequestTimeout    string `toml:"request_timeout" yaml:"request_timeout"`
}

// OCRConfig configures image text recognition
type OCRConfig struct {
	Strategy      types.OCRStrategy `toml:"strategy" yaml:"strategy"`
	TesseractPath string            `toml:"tesseract_path" yaml:"tesseract_path"`
	Languages     string            `toml:"languages" yaml:"languages"`
	LLMCallerPath string            `toml:"llm_caller_path" yaml:"llm_caller_path"`
	LLMTemplate   string            `toml:"llm_template" yaml:"llm_template"`
}

// ToolsConfig holds paths to external converters
type ToolsConfig struct {
	AntiwordPath string `toml:"antiword_path" yaml:"antiword_path"`
}

// StorageConfig locates temp files and the authorized user store
type StorageConfig struct {
	TempDir      string `toml:"temp_dir" yaml:"temp_dir"`
	UsersBackend string `toml:"users_backend" yaml:"users_backend"`
	UsersFile    string `toml:"users_file" yaml:"users_file"`
	UsersDB      string `toml:"users_db" yaml:"users_db"`
}

// AdminConfig configures the operator web console
type AdminConfig struct {
	Listen       string `toml:"listen" yaml:"listen"`
	PasswordHash string `toml:"password_hash" yaml:"password_hash"`
	// Password is accepted for local setups; PasswordHash wins when both are set
	Password string `toml:"password" yaml:"password"`
}

// LoggingConfig configures log output
type LoggingConfig struct {
	Level   string `toml:"level" yaml:"level"`
	Format  string `toml:"format" yaml:"format"`
	Verbose bool   `toml:"verbose" yaml:"verbose"`
}

// Config holds application configuration
type Config struct {
	Bot         BotConfig         `toml:"bot" yaml:"bot"`
	Limits      LimitsConfig      `toml:"limits" yaml:"limits"`
	Translation TranslationConfig `toml:"translation" yaml:"translation"`
	OCR         OCRConfig         `toml:"ocr" yaml:"ocr"`
	Tools       ToolsConfig       `toml:"tools" yaml:"tools"`
	Storage     StorageConfig     `toml:"storage" yaml:"storage"`
	Admin       AdminConfig       `toml:"admin" yaml:"admin"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging"`
}

// DefaultConfig returns a configuration populated with defaults only
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills zero values
func (c *Config) applyDefaults() {
	if c.Bot.APIURL == "" {
		c.Bot.APIURL = constants.DefaultTelegramAPIURL
	}
	if c.Bot.PollTimeout == "" {
		c.Bot.PollTimeout = DefaultPollTimeout
	}
	if c.Limits.MaxFileSize == "" {
		c.Limits.MaxFileSize = DefaultMaxFileSize
	}
	if c.Limits.TimeoutMinutes == 0 {
		c.Limits.TimeoutMinutes = DefaultTimeoutMinutes
	}
	if c.Translation.BackendURL == "" {
		c.Translation.BackendURL = DefaultBackendURL
	}
	if c.Translation.MaxChunkChars == 0 {
		c.Translation.MaxChunkChars = constants.DefaultMaxChunkChars
	}
	if c.Translation.Workers == 0 {
		c.Translation.Workers = constants.DefaultTranslateWorkers
	}
	if c.Translation.DetectPrefixChars == 0 {
		c.Translation.DetectPrefixChars = constants.DefaultDetectPrefixChars
	}
	if c.Translation.RequestTimeout == "" {
		c.Translation.RequestTimeout = DefaultRequestTimeout
	}
	if c.OCR.Strategy == "" {
		c.OCR.Strategy = DefaultOCRStrategy
	}
	if c.OCR.TesseractPath == "" {
		c.OCR.TesseractPath = constants.DefaultTesseractPath
	}
	if c.OCR.Languages == "" {
		c.OCR.Languages = DefaultOCRLanguages
	}
	if c.OCR.LLMCallerPath == "" {
		c.OCR.LLMCallerPath = constants.DefaultLLMCallerPath
	}
	if c.Tools.AntiwordPath == "" {
		c.Tools.AntiwordPath = constants.DefaultAntiwordPath
	}
	if c.Storage.UsersBackend == "" {
		c.Storage.UsersBackend = DefaultUsersBackend
	}
	if c.Storage.UsersFile == "" {
		c.Storage.UsersFile = DefaultUsersFile
	}
	if c.Storage.UsersDB == "" {
		c.Storage.UsersDB = DefaultUsersDB
	}
	if c.Admin.Listen == "" {
		c.Admin.Listen = DefaultAdminListen
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
}

// LoadConfigWithEnvOverrides loads the config file (if any), applies defaults,
// then environment overrides, then validates.
// An empty path uses the default location; a missing default file is not an error.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		defaultPath, err := GetConfigFilePath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if explicit {
		return nil, utils.NewNotFoundError(fmt.Sprintf("config file not found: %s", path), err)
	}

	cfg.applyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies environment variable overrides
func (c *Config) applyEnv() {
	if value := os.Getenv("TELEGRAM_BOT_TOKEN"); value != "" {
		c.Bot.Token = value
	}
	if value := os.Getenv("FILECONVERTOR_BOT_TOKEN"); value != "" {
		c.Bot.Token = value
	}
	if value := os.Getenv("FILECONVERTOR_BOT_API_URL"); value != "" {
		c.Bot.APIURL = value
	}
	if value := os.Getenv("FILECONVERTOR_MAX_FILE_SIZE"); value != "" {
		c.Limits.MaxFileSize = value
	}
	if value := os.Getenv("FILECONVERTOR_TIMEOUT_MINUTES"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			c.Limits.TimeoutMinutes = intVal
		}
	}
	if value := os.Getenv("FILECONVERTOR_TRANSLATE_URL"); value != "" {
		c.Translation.BackendURL = value
	}
	if value := os.Getenv("FILECONVERTOR_TRANSLATE_API_KEY"); value != "" {
		c.Translation.APIKey = value
	}
	if value := os.Getenv("FILECONVERTOR_TRANSLATE_WORKERS"); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			c.Translation.Workers = intVal
		}
	}
	if value := os.Getenv("FILECONVERTOR_OCR_STRATEGY"); value != "" {
		c.OCR.Strategy = types.OCRStrategy(value)
	}
	if value := os.Getenv("FILECONVERTOR_OCR_LANGUAGES"); value != "" {
		c.OCR.Languages = value
	}
	if value := os.Getenv("TESSERACT_PATH"); value != "" {
		c.OCR.TesseractPath = value
	}
	if value := os.Getenv("LLM_CALLER_PATH"); value != "" {
		c.OCR.LLMCallerPath = value
	}
	if value := os.Getenv("FILECONVERTOR_LLM_TEMPLATE"); value != "" {
		c.OCR.LLMTemplate = value
	}
	if value := os.Getenv("ANTIWORD_PATH"); value != "" {
		c.Tools.AntiwordPath = value
	}
	if value := os.Getenv("FILECONVERTOR_TEMP_DIR"); value != "" {
		c.Storage.TempDir = value
	}
	if value := os.Getenv("FILECONVERTOR_USERS_BACKEND"); value != "" {
		c.Storage.UsersBackend = value
	}
	if value := os.Getenv("FILECONVERTOR_USERS_FILE"); value != "" {
		c.Storage.UsersFile = value
	}
	if value := os.Getenv("FILECONVERTOR_USERS_DB"); value != "" {
		c.Storage.UsersDB = value
	}
	if value := os.Getenv("WEB_PASSWORD"); value != "" {
		c.Admin.Password = value
	}
	if value := os.Getenv("FILECONVERTOR_ADMIN_PASSWORD_HASH"); value != "" {
		c.Admin.PasswordHash = value
	}
	if value := os.Getenv("PORT"); value != "" {
		c.Admin.Listen = ":" + strings.TrimPrefix(value, ":")
	}
	if value := os.Getenv("FILECONVERTOR_LOG_LEVEL"); value != "" {
		c.Logging.Level = value
	}
	if value := os.Getenv("FILECONVERTOR_LOG_FORMAT"); value != "" {
		c.Logging.Format = value
	}
	if value := os.Getenv("FILECONVERTOR_VERBOSE"); value != "" {
		c.Logging.Verbose = value == "true" || value == "1" || value == "yes"
	}
}

// Validate validates the configuration and caches parsed values
func (c *Config) Validate() error {
	return NewConfigValidator().Validate(c)
}

// MaxFileSizeBytes returns the parsed upload limit
func (c *Config) MaxFileSizeBytes() int64 {
	if c.Limits.maxFileSizeBytes > 0 {
		return c.Limits.maxFileSizeBytes
	}
	if size, err := utils.ParseSize(c.Limits.MaxFileSize); err == nil && size > 0 {
		return size
	}
	return constants.MaxFileSize
}

// Timeout returns the per-request processing deadline
func (c *Config) Timeout() time.Duration {
	if c.Limits.TimeoutMinutes <= 0 {
		return constants.DefaultTimeoutDuration
	}
	return time.Duration(c.Limits.TimeoutMinutes) * time.Minute
}

// RequestTimeout returns the translation backend HTTP timeout
func (c *Config) RequestTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Translation.RequestTimeout); err == nil && d > 0 {
		return d
	}
	return constants.DefaultRequestTimeout
}

// PollTimeout returns the long-polling wait
func (c *Config) PollTimeout() time.Duration {
	if d, err := time.ParseDuration(c.Bot.PollTimeout); err == nil && d > 0 {
		return d
	}
	return constants.DefaultPollTimeout
}

// NewLogger builds the logger described by the logging section
func (c *Config) NewLogger() *logger.Logger {
	return logger.NewWithFormat(c.Logging.Level, c.Logging.Format, c.Logging.Verbose, os.Stderr)
}

// CreateTempFileManager creates a temporary file manager for one request
func (c *Config) CreateTempFileManager(log *logger.Logger) *utils.SimpleTempManager {
	return utils.NewSimpleTempManager(c.Storage.TempDir, log)
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{OCRStrategy: %s, MaxFileSize: %s, Backend: %s, LogLevel: %s}",
		c.OCR.Strategy, c.Limits.MaxFileSize, c.Translation.BackendURL, c.Logging.Level)
}
