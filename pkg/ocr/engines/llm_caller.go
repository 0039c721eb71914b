package engines

import (
	"context"
	"fmt"
	"os"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// DefaultImageTemplate is used when no llm_template is configured
const DefaultImageTemplate = "image-to-text"

// LLMCallerEngine uses llm-caller with a vision template for text extraction
type LLMCallerEngine struct {
	config *config.Config
	logger *logger.Logger
}

// NewLLMCallerEngine creates a new LLM caller engine
func NewLLMCallerEngine(cfg *config.Config, log *logger.Logger) interfaces.OCREngine {
	return &LLMCallerEngine{
		config: cfg,
		logger: log,
	}
}

// Name returns the name of the OCR tool
func (e *LLMCallerEngine) Name() string {
	return "llm-caller"
}

// GetDescription returns a description of the OCR tool
func (e *LLMCallerEngine) GetDescription() string {
	return "LLM Caller with template " + e.template()
}

// IsAvailable checks if the OCR tool is available on the system
func (e *LLMCallerEngine) IsAvailable() bool {
	return utils.IsCommandAvailable(e.config.OCR.LLMCallerPath)
}

func (e *LLMCallerEngine) template() string {
	if e.config.OCR.LLMTemplate != "" {
		return e.config.OCR.LLMTemplate
	}
	return DefaultImageTemplate
}

// ExtractTextFromImage extracts text from image using llm-caller.
// The result is written next to the image, inside the caller's temp area.
func (e *LLMCallerEngine) ExtractTextFromImage(ctx context.Context, imagePath string) (string, error) {
	e.logger.Debug("LLM Caller: processing image %s", imagePath)

	outputFile := utils.NormalizePath(imagePath + ".llm.txt")
	defer os.Remove(outputFile)

	_, err := utils.RunCommand(ctx, e.config.OCR.LLMCallerPath,
		"--template", e.template(),
		"--file", utils.NormalizePath(imagePath),
		"--output", outputFile)
	if err != nil {
		return "", utils.NewOCRError("llm-caller image extraction failed", err)
	}

	content, err := os.ReadFile(outputFile)
	if err != nil {
		return "", fmt.Errorf("failed to read LLM image output: %w", err)
	}

	e.logger.Debug("LLM Caller: extracted %d characters from image", len(content))
	return string(content), nil
}
