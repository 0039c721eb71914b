package engines

import (
	"context"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// TesseractEngine runs the tesseract CLI and reads the result from stdout
type TesseractEngine struct {
	config *config.Config
	logger *logger.Logger
}

// NewTesseractEngine creates a new tesseract engine
func NewTesseractEngine(cfg *config.Config, log *logger.Logger) interfaces.OCREngine {
	return &TesseractEngine{
		config: cfg,
		logger: log,
	}
}

// Name returns the name of the OCR tool
func (e *TesseractEngine) Name() string {
	return "tesseract"
}

// GetDescription returns a description of the OCR tool
func (e *TesseractEngine) GetDescription() string {
	return "Tesseract OCR (" + e.config.OCR.Languages + ")"
}

// IsAvailable checks if the OCR tool is available on the system
func (e *TesseractEngine) IsAvailable() bool {
	return utils.IsCommandAvailable(e.config.OCR.TesseractPath)
}

// ExtractTextFromImage extracts text from an image file
func (e *TesseractEngine) ExtractTextFromImage(ctx context.Context, imagePath string) (string, error) {
	e.logger.Debug("Tesseract: processing image %s", imagePath)

	args := []string{utils.NormalizePath(imagePath), "stdout"}
	if langs := strings.TrimSpace(e.config.OCR.Languages); langs != "" {
		args = append(args, "-l", langs)
	}

	result, err := utils.RunCommand(ctx, e.config.OCR.TesseractPath, args...)
	if err != nil {
		return "", utils.NewOCRError("tesseract extraction failed", err)
	}

	text := string(result.Stdout)
	e.logger.Debug("Tesseract: extracted %d characters", len(text))
	return text, nil
}
