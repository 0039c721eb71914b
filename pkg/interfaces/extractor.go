package interfaces

import (
	"context"

	"github.com/GSKISBOT/fileconvertor/pkg/types"
)

// Extractor defines the interface for text extraction
type Extractor interface {
	// Extract returns newline-delimited text found in data.
	// filename is informational; routing has already happened.
	Extract(ctx context.Context, data []byte, filename string) (string, error)

	// Name returns the name of the extractor
	Name() string
}

// ExtractorFactory routes files to extractors by format
type ExtractorFactory interface {
	// Detect maps a file name to its format
	Detect(filename string) (types.FormatTag, error)

	// ExtractorFor returns the extractor registered for a format
	ExtractorFor(tag types.FormatTag) (Extractor, error)

	// RegisterExtractor registers or replaces the extractor for a format
	RegisterExtractor(tag types.FormatTag, extractor Extractor)

	// Extract detects the format and runs the matching extractor
	Extract(ctx context.Context, data []byte, filename string) (*ExtractionResult, error)

	// SupportedExtensions lists extensions that have a registered extractor
	SupportedExtensions() []string
}

// ExtractionResult holds the result of text extraction
type ExtractionResult struct {
	Text          string          `json:"text"`
	Source        string          `json:"source"`
	Format        types.FormatTag `json:"format"`
	ExtractorUsed string          `json:"extractor_used"`
	ProcessTime   int64           `json:"process_time_ms"`
}

// FileProcessor handles the overall conversion workflow
type FileProcessor interface {
	// ExtractText validates the upload and returns its text
	ExtractText(ctx context.Context, src *types.SourceFile) (*ExtractionResult, error)

	// ConvertDocument extracts text and renders it as a document
	ConvertDocument(ctx context.Context, src *types.SourceFile) ([]byte, error)

	// TranslateDocument extracts, translates and renders the text
	TranslateDocument(ctx context.Context, src *types.SourceFile, target string) ([]byte, *types.LanguagePair, error)
}
