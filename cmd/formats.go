package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GSKISBOT/fileconvertor/pkg/ocr"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
)

var formatOrder = []types.FormatTag{
	types.FormatText,
	types.FormatPDF,
	types.FormatDocx,
	types.FormatLegacyWord,
	types.FormatRTF,
	types.FormatODT,
	types.FormatHTML,
	types.FormatImage,
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List supported file formats and installed OCR engines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "📄 Supported formats")
		for _, tag := range formatOrder {
			fmt.Fprintf(out, "  %-6s %s\n", tag, strings.Join(types.ExtensionsFor(tag), " "))
		}

		available := ocr.NewOCRSelector(cfg, log).GetAvailableStrategies()
		if len(available) == 0 {
			fmt.Fprintln(out, "⚠️  No OCR engine found; images cannot be read")
			return nil
		}
		names := make([]string, len(available))
		for i, s := range available {
			names[i] = string(s)
		}
		fmt.Fprintf(out, "🔍 OCR engines: %s (strategy: %s)\n", strings.Join(names, ", "), cfg.OCR.Strategy)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
