package providers

import (
	"context"
	"regexp"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

var (
	rtfControlWord = regexp.MustCompile(`\\[a-z]+\d*`)
	rtfBraces      = regexp.MustCompile(`[{}]`)
	rtfWhitespace  = regexp.MustCompile(`\s+`)
)

// RTFExtractor strips RTF markup with a fixed pattern pipeline.
// It is lossy: escaped symbols and embedded objects come through as noise.
type RTFExtractor struct {
	name string
}

// NewRTFExtractor creates a new RTF extractor
func NewRTFExtractor() interfaces.Extractor {
	return &RTFExtractor{name: "rtf"}
}

// Extract removes control words, then braces, then collapses whitespace
func (e *RTFExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	raw, err := DecodeText(data)
	if err != nil {
		return "", utils.NewExtractionError(e.name, "could not decode RTF", err)
	}

	text := StripRTF(raw)
	if text == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextFound, nil)
	}
	return text, nil
}

// Name returns the name of the extractor
func (e *RTFExtractor) Name() string {
	return e.name
}

// StripRTF applies the control-word, brace and whitespace passes in order
func StripRTF(raw string) string {
	text := rtfControlWord.ReplaceAllString(raw, "")
	text = rtfBraces.ReplaceAllString(text, "")
	text = rtfWhitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
