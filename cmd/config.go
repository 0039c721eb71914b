package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
)

var forceInit bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage the configuration file.

Configuration is stored in ~/.fileconvertor/config.toml unless --config points
elsewhere; a .yaml or .yml path is read and written as YAML. Environment
variables override file values at runtime.

Examples:
  fileconvertor config init                               # Write defaults with detected tool paths
  fileconvertor config show                               # Print the effective configuration
  fileconvertor config list                               # List settable keys
  fileconvertor config get translation.backend_url
  fileconvertor config set translation.backend_url http://localhost:5000
  fileconvertor config set ocr.strategy tesseract`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.InitConfigFile(path, forceInit)
		if err != nil {
			return err
		}
		fmt.Printf("✅ Wrote %s\n", path)
		fmt.Printf("  %-24s = %s\n", "ocr.tesseract_path", displayValue(cfg.OCR.TesseractPath))
		fmt.Printf("  %-24s = %s\n", "ocr.llm_caller_path", displayValue(cfg.OCR.LLMCallerPath))
		fmt.Printf("  %-24s = %s\n", "tools.antiword_path", displayValue(cfg.Tools.AntiwordPath))
		fmt.Println("💡 Tip: set the bot token with TELEGRAM_BOT_TOKEN rather than in the file")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long:  "Print the configuration after defaults and environment overrides. Secrets are masked.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		masked := *cfg
		masked.Bot.Token = maskSecret(cfg.Bot.Token)
		masked.Translation.APIKey = maskSecret(cfg.Translation.APIKey)
		masked.Admin.Password = maskSecret(cfg.Admin.Password)

		data, err := config.Marshal(&masked, path)
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", path)
		_, err = os.Stdout.Write(data)
		return err
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List settable keys with their effective values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		for _, key := range config.ListConfigKeys() {
			value, _ := config.GetConfigValue(cfg, key)
			fmt.Printf("  %-32s = %s\n", key, displayValue(value))
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		value, err := config.GetConfigValue(cfg, args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value in the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath()
		if err != nil {
			return err
		}

		cfg := config.DefaultConfig()
		if _, statErr := os.Stat(path); statErr == nil {
			if cfg, err = config.LoadFile(path); err != nil {
				return err
			}
		}

		if err := config.SetConfigValue(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := config.SaveFile(cfg, path); err != nil {
			return err
		}
		fmt.Printf("✅ %s = %s\n", args[0], args[1])
		return nil
	},
}

// displayValue returns a display-friendly value for empty strings
func displayValue(value string) string {
	if value == "" {
		return "(not set)"
	}
	return value
}

func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configInitCmd, configShowCmd, configListCmd, configGetCmd, configSetCmd)
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")
}
