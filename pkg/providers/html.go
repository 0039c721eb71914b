package providers

import (
	"context"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

var (
	htmlHorizontalSpace = regexp.MustCompile(`[ \t]+`)
	htmlBlankLines      = regexp.MustCompile(`\n\s*\n\s*\n+`)
	htmlSpacedNewline   = regexp.MustCompile(` *\n *`)
)

// HTMLExtractor handles saved web pages
type HTMLExtractor struct {
	name string
}

// NewHTMLExtractor creates a new HTML extractor
func NewHTMLExtractor() interfaces.Extractor {
	return &HTMLExtractor{
		name: "html",
	}
}

// Extract returns the visible text of the page, one block element per line
func (e *HTMLExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	content, err := DecodeText(data)
	if err != nil {
		return "", utils.NewExtractionError(e.name, "could not decode HTML", err)
	}

	text, err := e.extractTextFromHTML(content)
	if err != nil {
		return "", utils.NewExtractionError(e.name, "could not parse HTML", err)
	}
	if text == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextFound, nil)
	}

	return text, nil
}

// Name returns the name of the extractor
func (e *HTMLExtractor) Name() string {
	return e.name
}

// extractTextFromHTML extracts readable text from HTML content
func (e *HTMLExtractor) extractTextFromHTML(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	var textBuilder strings.Builder
	e.extractTextFromNode(doc, &textBuilder)

	text := textBuilder.String()
	text = e.cleanupText(text)

	return text, nil
}

// extractTextFromNode recursively extracts text from HTML nodes
func (e *HTMLExtractor) extractTextFromNode(node *html.Node, textBuilder *strings.Builder) {
	// Skip script and style elements completely
	if node.Type == html.ElementNode {
		switch node.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Head, atom.Template:
			return
		}

		// Add spacing before block elements
		if e.isBlockElement(node.DataAtom) {
			textBuilder.WriteString("\n")
		}

		// Add space before inline elements if needed
		if node.DataAtom == atom.A || node.DataAtom == atom.Span {
			current := textBuilder.String()
			if len(current) > 0 {
				lastChar := current[len(current)-1]
				if lastChar != ' ' && lastChar != '\n' {
					textBuilder.WriteString(" ")
				}
			}
		}
	}

	// Text nodes keep one space where the source had whitespace, so inline
	// markup like <b> does not glue words together
	if node.Type == html.TextNode {
		text := strings.Join(strings.Fields(node.Data), " ")
		if text == "" {
			if node.Data != "" {
				textBuilder.WriteString(" ")
			}
		} else {
			if startsWithSpace(node.Data) {
				textBuilder.WriteString(" ")
			}
			textBuilder.WriteString(text)
			if endsWithSpace(node.Data) {
				textBuilder.WriteString(" ")
			}
		}
	}

	// Recursively process child nodes
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		e.extractTextFromNode(child, textBuilder)
	}

	// Add spacing after block elements
	if node.Type == html.ElementNode && e.isBlockElement(node.DataAtom) {
		textBuilder.WriteString("\n")
	}
}

// isBlockElement checks if an HTML element is a block-level element
func (e *HTMLExtractor) isBlockElement(a atom.Atom) bool {
	return htmlBlockElements[a]
}

var htmlBlockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Article: true, atom.Section: true,
	atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Aside: true, atom.Main: true,
	atom.Ul: true, atom.Ol: true, atom.Li: true, atom.Dl: true, atom.Dt: true, atom.Dd: true,
	atom.Table: true, atom.Tr: true, atom.Td: true, atom.Th: true, atom.Caption: true,
	atom.Form: true, atom.Fieldset: true, atom.Address: true, atom.Figcaption: true,
}

// cleanupText normalizes whitespace while keeping one line per block
func (e *HTMLExtractor) cleanupText(text string) string {
	text = htmlHorizontalSpace.ReplaceAllString(text, " ")
	text = htmlBlankLines.ReplaceAllString(text, "\n\n")
	text = htmlSpacedNewline.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}
