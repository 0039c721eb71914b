package providers

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// TextFileExtractor handles plain text files
type TextFileExtractor struct {
	name string
}

// NewTextFileExtractor creates a new text file extractor
func NewTextFileExtractor() interfaces.Extractor {
	return &TextFileExtractor{
		name: "text",
	}
}

// Extract decodes the bytes as UTF-8, falling back to Latin-1
func (e *TextFileExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := DecodeText(data)
	if err != nil {
		return "", utils.NewExtractionError(e.name, "could not decode text", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextFound, nil)
	}

	return text, nil
}

// Name returns the name of the extractor
func (e *TextFileExtractor) Name() string {
	return e.name
}

// DecodeText returns data as a string: verbatim when it is valid UTF-8,
// otherwise decoded as ISO-8859-1, which maps every byte.
// A leading UTF-8 byte order mark is dropped.
func DecodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}
	return charmap.ISO8859_1.NewDecoder().String(string(data))
}
