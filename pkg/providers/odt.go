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

// ODTExtractor reads content.xml of an OpenDocument text file
type ODTExtractor struct {
	name string
}

// NewODTExtractor creates a new .odt extractor
func NewODTExtractor() interfaces.Extractor {
	return &ODTExtractor{name: "odt"}
}

// Extract visits every element of content.xml and collects its text and tail,
// separated by single spaces. Paragraph structure is not preserved.
func (e *ODTExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rc, err := openArchiveMember(data, "content.xml")
	if err != nil {
		return "", utils.NewExtractionError(e.name, "not a readable OpenDocument file", err)
	}
	defer rc.Close()

	pieces, err := odtTextPieces(rc)
	if err != nil {
		return "", utils.NewExtractionError(e.name, "malformed content.xml", err)
	}

	text := strings.TrimSpace(strings.Join(pieces, " "))
	if text == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextFound, nil)
	}
	return text, nil
}

// Name returns the name of the extractor
func (e *ODTExtractor) Name() string {
	return e.name
}

// odtNode records one element's direct text and tail text
type odtNode struct {
	text strings.Builder
	tail strings.Builder
}

// odtTextPieces returns, for every element in pre-order, its direct text
// (before the first child) followed by its tail (after its end tag, before the
// next sibling). Whitespace-only pieces are skipped.
func odtTextPieces(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var order []*odtNode
	var open []*odtNode
	var tailOwner *odtNode

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
			node := &odtNode{}
			order = append(order, node)
			open = append(open, node)
			tailOwner = nil
		case xml.EndElement:
			if len(open) == 0 {
				return nil, errors.New("unbalanced end element")
			}
			tailOwner = open[len(open)-1]
			open = open[:len(open)-1]
		case xml.CharData:
			switch {
			case tailOwner != nil:
				tailOwner.tail.Write(t)
			case len(open) > 0:
				open[len(open)-1].text.Write(t)
			}
		}
	}

	if len(order) == 0 {
		return nil, errors.New("content.xml has no root element")
	}

	var pieces []string
	for _, node := range order {
		if s := strings.TrimSpace(node.text.String()); s != "" {
			pieces = append(pieces, s)
		}
		if s := strings.TrimSpace(node.tail.String()); s != "" {
			pieces = append(pieces, s)
		}
	}
	return pieces, nil
}
