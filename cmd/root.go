package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

var (
	configPath string
	logLevel   string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fileconvertor",
	Short: "Chat bot that turns uploaded files into Word documents, optionally translated",
	Long: `A chat bot that extracts text from uploaded files and sends it back as a .docx,
optionally translated into another language.

Supported inputs: plain text, PDF, DOCX, DOC, RTF, ODT, HTML and images (OCR).

The bot runs with 'serve', together with a password-protected admin console
for starting and stopping the bot and managing authorized users. The same
conversions are available offline from the command line.

Configuration is read from ~/.fileconvertor/config.toml (or --config, TOML or
YAML) and can be overridden with environment variables such as
TELEGRAM_BOT_TOKEN, WEB_PASSWORD and FILECONVERTOR_TRANSLATE_URL.

Examples:
  fileconvertor serve                              # Run the bot and the admin console
  fileconvertor serve --no-admin                   # Run the bot only
  fileconvertor convert report.pdf                 # Write report_converted.docx
  fileconvertor translate notes.txt --to es        # Write notes_es.docx
  fileconvertor extract scan.png                   # Print recognized text
  fileconvertor users add 123456789                # Authorize a chat user
  fileconvertor config init                        # Write a default config file`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// reportError prints an error, with its category when it has one
func reportError(err error) {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			fmt.Fprintf(os.Stderr, "❌ Error (%s): %s: %v\n", appErr.Type, appErr.Message, appErr.Cause)
			return
		}
		fmt.Fprintf(os.Stderr, "❌ Error (%s): %s\n", appErr.Type, appErr.Message)
		return
	}
	fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
}

// loadConfig loads the effective configuration and builds the logger,
// applying command line overrides last
func loadConfig() (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(configPath)
	if err != nil {
		return nil, nil, err
	}

	if logLevel != "" {
		if err := logger.LogLevel(logLevel).Validate(); err != nil {
			return nil, nil, utils.NewValidationError(err.Error(), nil)
		}
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Verbose = true
	}

	return cfg, cfg.NewLogger(), nil
}

// resolveConfigPath returns --config or the default config file location
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigFilePath()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Config file path, TOML or YAML (default: ~/.fileconvertor/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output to show progress information")
}
