package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// PDFExtractor reads embedded text page by page.
// Scanned PDFs without a text layer fail like corrupt ones.
type PDFExtractor struct {
	name   string
	logger *logger.Logger
}

// NewPDFExtractor creates a new PDF extractor
func NewPDFExtractor(log *logger.Logger) interfaces.Extractor {
	return &PDFExtractor{name: "pdf", logger: log}
}

// Name returns the name of the extractor
func (e *PDFExtractor) Name() string {
	return e.name
}

// Extract concatenates page texts in page order, one newline between pages
func (e *PDFExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", utils.NewExtractionError(e.name, "could not parse PDF", err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := pdfPageText(pdfCtx, pageNr)
		if err != nil {
			return "", utils.NewExtractionError(e.name, fmt.Sprintf("could not read PDF page %d", pageNr), err)
		}
		pages = append(pages, text)
	}

	text := strings.Join(pages, "\n")
	if strings.TrimSpace(text) == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextFound, nil)
	}

	e.logger.Debug("PDF %s: %d pages, %d characters", filename, pdfCtx.PageCount, len(text))
	return text, nil
}

// pdfPageText extracts the text-showing operators of one page's content stream
func pdfPageText(pdfCtx *model.Context, pageNr int) (string, error) {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
	if err != nil {
		return "", err
	}
	if r == nil {
		return "", nil
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return parseContentStream(content), nil
}

// pdfOperand is one operand collected before an operator
type pdfOperand struct {
	str    string
	num    float64
	isStr  bool
	isNum  bool
	inList []pdfOperand
	isList bool
}

// contentParser walks a page content stream and collects shown text
type contentParser struct {
	data     []byte
	pos      int
	out      strings.Builder
	operands []pdfOperand
	lastTmY  float64
	haveTm   bool
}

// parseContentStream returns the text shown by Tj, TJ, ' and " operators,
// with line breaks inferred from T*, Td/TD, Tm and BT.
func parseContentStream(data []byte) string {
	p := &contentParser{data: data}
	p.run()
	return normalizePDFText(p.out.String())
}

func (p *contentParser) run() {
	var listStack [][]pdfOperand

	push := func(op pdfOperand) {
		if n := len(listStack); n > 0 {
			listStack[n-1] = append(listStack[n-1], op)
			return
		}
		p.operands = append(p.operands, op)
	}

	for p.pos < len(p.data) {
		c := p.data[p.pos]
		switch {
		case isPDFWhitespace(c):
			p.pos++
		case c == '%':
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
		case c == '(':
			push(pdfOperand{str: p.readLiteral(), isStr: true})
		case c == '<' && p.peek(1) == '<':
			p.pos += 2
		case c == '>' && p.peek(1) == '>':
			p.pos += 2
		case c == '<':
			push(pdfOperand{str: p.readHex(), isStr: true})
		case c == '[':
			listStack = append(listStack, nil)
			p.pos++
		case c == ']':
			p.pos++
			if n := len(listStack); n > 0 {
				items := listStack[n-1]
				listStack = listStack[:n-1]
				push(pdfOperand{inList: items, isList: true})
			}
		case c == '/':
			p.pos++
			p.readRegular()
			push(pdfOperand{})
		case c == '{' || c == '}' || c == ')' || c == '>':
			p.pos++
		default:
			word := p.readRegular()
			if word == "" {
				p.pos++
				continue
			}
			if n, err := strconv.ParseFloat(word, 64); err == nil {
				push(pdfOperand{num: n, isNum: true})
				continue
			}
			if word == "BI" {
				p.skipInlineImage()
			} else {
				p.operator(word)
			}
			p.operands = p.operands[:0]
			listStack = listStack[:0]
		}
	}
}

func (p *contentParser) operator(op string) {
	switch op {
	case "BT":
		p.newline()
	case "T*":
		p.newline()
	case "Td", "TD":
		if len(p.operands) >= 2 && p.operands[1].isNum && p.operands[1].num != 0 {
			p.newline()
		} else {
			p.space()
		}
	case "Tm":
		if len(p.operands) >= 6 && p.operands[5].isNum {
			y := p.operands[5].num
			if p.haveTm && y != p.lastTmY {
				p.newline()
			}
			p.lastTmY = y
			p.haveTm = true
		}
	case "Tj":
		if s, ok := p.lastString(); ok {
			p.out.WriteString(s)
		}
	case "'", "\"":
		p.newline()
		if s, ok := p.lastString(); ok {
			p.out.WriteString(s)
		}
	case "TJ":
		if len(p.operands) == 0 || !p.operands[len(p.operands)-1].isList {
			return
		}
		for _, item := range p.operands[len(p.operands)-1].inList {
			switch {
			case item.isStr:
				p.out.WriteString(item.str)
			case item.isNum && item.num < -200:
				// large negative kerning is a word gap
				p.space()
			}
		}
	}
}

func (p *contentParser) lastString() (string, bool) {
	for i := len(p.operands) - 1; i >= 0; i-- {
		if p.operands[i].isStr {
			return p.operands[i].str, true
		}
	}
	return "", false
}

func (p *contentParser) newline() {
	if p.out.Len() == 0 {
		return
	}
	s := p.out.String()
	if !strings.HasSuffix(s, "\n") {
		p.out.WriteByte('\n')
	}
}

func (p *contentParser) space() {
	if p.out.Len() == 0 {
		return
	}
	s := p.out.String()
	if last := s[len(s)-1]; last != ' ' && last != '\n' {
		p.out.WriteByte(' ')
	}
}

func (p *contentParser) peek(offset int) byte {
	if p.pos+offset < len(p.data) {
		return p.data[p.pos+offset]
	}
	return 0
}

// readRegular reads a run of regular characters
func (p *contentParser) readRegular() string {
	start := p.pos
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isPDFWhitespace(c) || isPDFDelimiter(c) {
			break
		}
		p.pos++
	}
	return string(p.data[start:p.pos])
}

// readLiteral reads a (...) string with nesting and escapes
func (p *contentParser) readLiteral() string {
	p.pos++ // (
	var buf []byte
	depth := 1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch c {
		case '\\':
			if p.pos >= len(p.data) {
				return decodePDFBytes(buf)
			}
			e := p.data[p.pos]
			p.pos++
			switch e {
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'b', 'f':
			case '\r', '\n':
				// line continuation
				if e == '\r' && p.peek(0) == '\n' {
					p.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					val := int(e - '0')
					for i := 0; i < 2 && p.pos < len(p.data); i++ {
						d := p.data[p.pos]
						if d < '0' || d > '7' {
							break
						}
						val = val*8 + int(d-'0')
						p.pos++
					}
					buf = append(buf, byte(val))
				} else {
					buf = append(buf, e)
				}
			}
		case '(':
			depth++
			buf = append(buf, c)
		case ')':
			depth--
			if depth == 0 {
				return decodePDFBytes(buf)
			}
			buf = append(buf, c)
		default:
			buf = append(buf, c)
		}
	}
	return decodePDFBytes(buf)
}

// readHex reads a <...> hex string
func (p *contentParser) readHex() string {
	p.pos++ // <
	var digits []byte
	for p.pos < len(p.data) && p.data[p.pos] != '>' {
		c := p.data[p.pos]
		if isHexDigit(c) {
			digits = append(digits, c)
		}
		p.pos++
	}
	p.pos++ // >
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	buf := make([]byte, len(digits)/2)
	for i := range buf {
		v, _ := strconv.ParseUint(string(digits[2*i:2*i+2]), 16, 8)
		buf[i] = byte(v)
	}
	return decodePDFBytes(buf)
}

// skipInlineImage jumps past BI ... ID <binary> EI
func (p *contentParser) skipInlineImage() {
	if idx := bytes.Index(p.data[p.pos:], []byte("EI")); idx >= 0 {
		p.pos += idx + 2
		return
	}
	p.pos = len(p.data)
}

// decodePDFBytes handles UTF-16BE strings with a byte order mark;
// everything else is taken byte-per-rune.
func decodePDFBytes(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		b = b[2:]
		u := make([]uint16, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	runes := make([]rune, 0, len(b))
	for _, c := range b {
		runes = append(runes, rune(c))
	}
	return string(runes)
}

// normalizePDFText collapses blanks within lines and drops empty lines
func normalizePDFText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func isPDFWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
