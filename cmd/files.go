package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GSKISBOT/fileconvertor/pkg/core"
	"github.com/GSKISBOT/fileconvertor/pkg/translate"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

var (
	outputPath     string
	targetLanguage string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a file to .docx",
	Long: `Extract the text of a file and write it as a Word document.

The output defaults to {stem}_converted.docx next to the input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, src, err := openSource(args[0])
		if err != nil {
			return err
		}

		data, err := processor.ConvertDocument(cmd.Context(), src)
		if err != nil {
			return err
		}
		return writeOutput(args[0], core.ConvertedFileName(src.Name), data)
	},
}

var translateCmd = &cobra.Command{
	Use:   "translate <file> --to <language>",
	Short: "Translate a file and write it as .docx",
	Long: `Extract the text of a file, detect its language, translate it and write the
result as a Word document.

The output defaults to {stem}_{language}.docx next to the input. Run
'fileconvertor languages' for the list of target codes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, src, err := openSource(args[0])
		if err != nil {
			return err
		}

		target := strings.ToLower(strings.TrimSpace(targetLanguage))
		data, pair, err := processor.TranslateDocument(cmd.Context(), src, target)
		if err != nil {
			return err
		}
		fmt.Printf("🌐 Translated from %s to %s\n",
			translate.LanguageName(pair.Source), translate.LanguageName(pair.Target))
		return writeOutput(args[0], core.TranslatedFileName(src.Name, target), data)
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Print the text extracted from a file",
	Long: `Extract the text of a file and print it, or write it to --output.

Statistics go to stderr so the text can be piped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		processor, src, err := openSource(args[0])
		if err != nil {
			return err
		}

		result, err := processor.ExtractText(cmd.Context(), src)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "📊 Extractor used: %s\n", result.ExtractorUsed)
		fmt.Fprintf(os.Stderr, "⏱️  Processing time: %dms\n", result.ProcessTime)
		fmt.Fprintf(os.Stderr, "📝 Extracted text length: %d characters\n", len([]rune(result.Text)))

		if outputPath != "" {
			return writeFile(outputPath, []byte(result.Text+"\n"))
		}
		fmt.Println(result.Text)
		return nil
	},
}

// openSource reads a local file into a source file and builds the processor
func openSource(path string) (*core.DefaultFileProcessor, *types.SourceFile, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	processor := core.NewFromConfig(cfg, log)

	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, utils.NewNotFoundError(fmt.Sprintf("cannot open %s", path), err)
	}
	if info.IsDir() {
		return nil, nil, utils.NewValidationError(fmt.Sprintf("%s is a directory", path), nil)
	}
	// Refuse early instead of reading an oversized file into memory
	if info.Size() > processor.MaxFileSize() {
		return nil, nil, utils.NewSizeLimitError(info.Size(), processor.MaxFileSize())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, utils.NewIOError(fmt.Sprintf("failed to read %s", path), err)
	}
	log.Debug("Read %s (%s)", path, utils.FormatSize(int64(len(data))))
	return processor, types.NewSourceFile(filepath.Base(path), data), nil
}

// writeOutput writes data to --output or to defaultName beside the input
func writeOutput(inputPath, defaultName string, data []byte) error {
	target := outputPath
	if target == "" {
		target = filepath.Join(filepath.Dir(inputPath), defaultName)
	}
	if err := writeFile(target, data); err != nil {
		return err
	}
	fmt.Printf("✅ Saved %s (%s)\n", target, utils.FormatSize(int64(len(data))))
	return nil
}

func writeFile(path string, data []byte) error {
	if err := utils.EnsureDir(filepath.Dir(path)); err != nil {
		return utils.NewIOError("failed to create output directory", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return utils.NewIOError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

func init() {
	for _, c := range []*cobra.Command{convertCmd, translateCmd, extractCmd} {
		c.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
		rootCmd.AddCommand(c)
	}
	translateCmd.Flags().StringVarP(&targetLanguage, "to", "t", "", "Target language code, e.g. es")
	_ = translateCmd.MarkFlagRequired("to")
}
