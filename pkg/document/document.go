// Package document assembles extracted or translated text into a Word document.
package document

import (
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
)

// OutputDocument is the generated document before rendering
type OutputDocument struct {
	Heading    string
	Subtitle   string
	Separator  string
	Paragraphs []string
}

// Separator is the rule placed under a subtitle
var Separator = strings.Repeat(string(constants.SeparatorRune), constants.SeparatorWidth)

// Build creates a document from text lines. Lines are trimmed and empty
// lines dropped; the separator only follows a non-empty subtitle.
func Build(lines []string, heading, subtitle string) *OutputDocument {
	doc := &OutputDocument{
		Heading:  heading,
		Subtitle: subtitle,
	}
	if subtitle != "" {
		doc.Separator = Separator
	}

	doc.Paragraphs = make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.Paragraphs = append(doc.Paragraphs, line)
	}
	return doc
}

// ParagraphsFromText splits newline-delimited text into lines
func ParagraphsFromText(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// BuildFromText is Build over ParagraphsFromText
func BuildFromText(text, heading, subtitle string) *OutputDocument {
	return Build(ParagraphsFromText(text), heading, subtitle)
}
