package interfaces

import (
	"context"

	"github.com/GSKISBOT/fileconvertor/pkg/types"
)

// OCREngine defines the interface for different OCR implementations
type OCREngine interface {
	// Name returns the name of the OCR tool
	Name() string

	// ExtractTextFromImage extracts text from an image file
	ExtractTextFromImage(ctx context.Context, imagePath string) (string, error)

	// IsAvailable reports whether the engine can run on this host
	IsAvailable() bool

	// GetDescription returns a description of the OCR tool
	GetDescription() string
}

// OCRSelector handles the selection of OCR tool
type OCRSelector interface {
	// SelectOCRStrategy returns the engine for a strategy
	SelectOCRStrategy(strategy types.OCRStrategy) (OCREngine, error)

	// GetAvailableStrategies returns all available OCR strategies
	GetAvailableStrategies() []types.OCRStrategy
}
