package providers

import (
	"context"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// WordExtractor reads paragraph text from word/document.xml of a .docx
type WordExtractor struct {
	name string
}

// NewWordExtractor creates a new .docx extractor
func NewWordExtractor() interfaces.Extractor {
	return &WordExtractor{name: "docx"}
}

// Extract returns one line per w:p element in document order. A text box
// paragraph gets its own line.
func (e *WordExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := openArchiveMember(data, "word/document.xml")
	if err != nil {
		return "", utils.NewExtractionError(e.name, "not a readable Word document", err)
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", utils.NewExtractionError(e.name, "malformed document.xml", err)
	}

	text := strings.Join(paragraphs, "\n")
	if strings.TrimSpace(text) == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextFound, nil)
	}
	return text, nil
}

// Name returns the name of the extractor
func (e *WordExtractor) Name() string {
	return e.name
}

const (
	wordprocessingNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	wordprocessingStrictNS = "http://purl.oclc.org/ooxml/wordprocessingml/main"
	markupCompatibilityNS  = "http://schemas.openxmlformats.org/markup-compatibility/2006"
)

func isWordElement(name xml.Name, local string) bool {
	return name.Local == local && (name.Space == wordprocessingNS || name.Space == wordprocessingStrictNS)
}

// paragraphFrame is an open w:p. split is set once a nested paragraph
// (a text box) has flushed the text gathered before it.
type paragraphFrame struct {
	text  strings.Builder
	split bool
}

// docxParagraphs walks WordprocessingML tokens. Only w:t inside a paragraph
// contributes text; w:tab and w:br inside a run become a tab and a newline.
// A paragraph nested in a text box becomes its own line between the halves
// of the paragraph that holds it. mc:Fallback copies are skipped.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var paragraphs []string
	var stack []*paragraphFrame
	runDepth := 0
	inText := false

	top := func() *paragraphFrame {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space == markupCompatibilityNS && t.Name.Local == "Fallback" {
				if err := decoder.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			switch {
			case isWordElement(t.Name, "p"):
				if outer := top(); outer != nil {
					if outer.text.Len() > 0 {
						paragraphs = append(paragraphs, outer.text.String())
						outer.text.Reset()
					}
					outer.split = true
				}
				stack = append(stack, &paragraphFrame{})
			case isWordElement(t.Name, "r"):
				runDepth++
			case isWordElement(t.Name, "t"):
				inText = top() != nil
			case isWordElement(t.Name, "tab"):
				if p := top(); p != nil && runDepth > 0 {
					p.text.WriteByte('\t')
				}
			case isWordElement(t.Name, "br"), isWordElement(t.Name, "cr"):
				if p := top(); p != nil && runDepth > 0 {
					p.text.WriteByte('\n')
				}
			}
		case xml.CharData:
			if p := top(); inText && p != nil {
				p.text.Write(t)
			}
		case xml.EndElement:
			switch {
			case isWordElement(t.Name, "t"):
				inText = false
			case isWordElement(t.Name, "r"):
				if runDepth > 0 {
					runDepth--
				}
			case isWordElement(t.Name, "p"):
				p := top()
				if p == nil {
					continue
				}
				stack = stack[:len(stack)-1]
				if !p.split || p.text.Len() > 0 {
					paragraphs = append(paragraphs, p.text.String())
				}
			}
		}
	}

	return paragraphs, nil
}
