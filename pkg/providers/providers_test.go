package providers

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// zipFixture builds an in-memory zip with the given members
func zipFixture(t *testing.T, members map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>First</w:t></w:r><w:r><w:tab/><w:t>tabbed</w:t></w:r></w:p>
<w:p/>
<w:p><w:r><w:t xml:space="preserve">Second </w:t></w:r><w:r><w:br/><w:t>line</w:t></w:r></w:p>
</w:body></w:document>`

func nonBlankLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func TestTextExtractor(t *testing.T) {
	ext := NewTextFileExtractor()
	ctx := context.Background()

	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf8", []byte("héllo\nworld"), "héllo\nworld"},
		{"bom", []byte("\xef\xbb\xbfhello"), "hello"},
		{"latin1 fallback", []byte("caf\xe9 cr\xe8me"), "café crème"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ext.Extract(ctx, tt.in, "a.txt")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	_, err := ext.Extract(ctx, []byte(" \n\t "), "blank.txt")
	if utils.GetErrorType(err) != utils.ErrorTypeExtraction {
		t.Errorf("blank file error = %v", err)
	}
}

func TestWordExtractor(t *testing.T) {
	data := zipFixture(t, map[string]string{"word/document.xml": docxBody})

	got, err := NewWordExtractor().Extract(context.Background(), data, "a.docx")
	if err != nil {
		t.Fatal(err)
	}
	want := "First\ttabbed\n\nSecond \nline"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	_, err = NewWordExtractor().Extract(context.Background(), []byte("not a zip"), "b.docx")
	if utils.GetErrorType(err) != utils.ErrorTypeExtraction {
		t.Errorf("corrupt docx error = %v", err)
	}

	missing := zipFixture(t, map[string]string{"word/other.xml": "<x/>"})
	if _, err := NewWordExtractor().Extract(context.Background(), missing, "c.docx"); err == nil {
		t.Error("expected error for a package without document.xml")
	}
}

func wordDocument(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"><w:body>` + body + `</w:body></w:document>`
}

func TestWordExtractorNestedAndDecorativeMarkup(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "text box inside a paragraph",
			body: `<w:p><w:r><w:t>Before box.</w:t></w:r><w:r><w:drawing><wps:txbx><w:txbxContent>` +
				`<w:p><w:r><w:t>Inside box.</w:t></w:r></w:p>` +
				`</w:txbxContent></wps:txbx></w:drawing></w:r><w:r><w:t>After box.</w:t></w:r></w:p>`,
			want: "Before box.\nInside box.\nAfter box.",
		},
		{
			name: "paragraph holding only a text box",
			body: `<w:p><w:r><w:drawing><w:txbxContent><w:p><w:r><w:t>Boxed</w:t></w:r></w:p></w:txbxContent></w:drawing></w:r></w:p>` +
				`<w:p><w:r><w:t>Next</w:t></w:r></w:p>`,
			want: "Boxed\nNext",
		},
		{
			name: "tab stop definitions",
			body: `<w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/><w:tab w:val="right" w:pos="9000"/></w:tabs></w:pPr>` +
				`<w:r><w:t>Chapter</w:t></w:r><w:r><w:tab/><w:t>1</w:t></w:r></w:p>`,
			want: "Chapter\t1",
		},
		{
			name: "drawingml text",
			body: `<w:p><w:r><w:t>Body</w:t></w:r><w:r><w:drawing><a:p><a:r><a:t>shape label</a:t></a:r></a:p></w:drawing></w:r></w:p>`,
			want: "Body",
		},
		{
			name: "fallback copy skipped",
			body: `<w:p><w:r><mc:AlternateContent><mc:Choice Requires="wps"><w:drawing><w:txbxContent><w:p><w:r><w:t>Once</w:t></w:r></w:p></w:txbxContent></w:drawing></mc:Choice>` +
				`<mc:Fallback><w:pict><w:txbxContent><w:p><w:r><w:t>Once</w:t></w:r></w:p></w:txbxContent></w:pict></mc:Fallback></mc:AlternateContent></w:r></w:p>`,
			want: "Once",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := zipFixture(t, map[string]string{"word/document.xml": wordDocument(tt.body)})
			got, err := NewWordExtractor().Extract(context.Background(), data, "a.docx")
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestODTExtractor(t *testing.T) {
	content := `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
  <office:body><office:text>
    <text:h>Heading</text:h>
    <text:p>Para <text:span>span</text:span> tail</text:p>
  </office:text></office:body>
</office:document-content>`
	data := zipFixture(t, map[string]string{"mimetype": "application/vnd.oasis.opendocument.text", "content.xml": content})

	got, err := NewODTExtractor().Extract(context.Background(), data, "a.odt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Heading Para span tail" {
		t.Errorf("got %q", got)
	}

	empty := zipFixture(t, map[string]string{"content.xml": `<office:document-content xmlns:office="o"/>`})
	_, err = NewODTExtractor().Extract(context.Background(), empty, "b.odt")
	if utils.GetErrorType(err) != utils.ErrorTypeExtraction {
		t.Errorf("empty odt error = %v", err)
	}
}

func TestRTFExtractor(t *testing.T) {
	raw := `{\rtf1\ansi{\fonttbl\f0\fswiss Helvetica;}\f0\pard Hello \b World\b0 !\par}`

	got, err := NewRTFExtractor().Extract(context.Background(), []byte(raw), "a.rtf")
	if err != nil {
		t.Fatal(err)
	}
	// font table names survive the pattern pipeline
	if got != "Helvetica; Hello World !" {
		t.Errorf("got %q", got)
	}

	_, err = NewRTFExtractor().Extract(context.Background(), []byte(`{\rtf1\ansi\par}`), "b.rtf")
	if utils.GetErrorType(err) != utils.ErrorTypeExtraction {
		t.Errorf("markup-only rtf error = %v", err)
	}
}

func TestHTMLExtractor(t *testing.T) {
	page := `<html><head><title>Ignored</title><style>p{}</style></head>
<body><h1>Title</h1><p>Hello <b>bold</b> world</p><script>track()</script>
<ul><li>one</li><li>two</li></ul></body></html>`

	got, err := NewHTMLExtractor().Extract(context.Background(), []byte(page), "a.html")
	if err != nil {
		t.Fatal(err)
	}
	lines := nonBlankLines(got)
	want := []string{"Title", "Hello bold world", "one", "two"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("lines = %q, want %q", lines, want)
	}
}

func TestLegacyWordExtractor(t *testing.T) {
	ext := NewLegacyWordExtractor("antiword-not-installed-here", t.TempDir(), logger.Discard())

	docx := zipFixture(t, map[string]string{"word/document.xml": docxBody})
	got, err := ext.Extract(context.Background(), docx, "renamed.doc")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "First\ttabbed") {
		t.Errorf("zip .doc should be read as docx, got %q", got)
	}

	_, err = ext.Extract(context.Background(), []byte("\xd0\xcf\x11\xe0binary"), "old.doc")
	appErr, ok := utils.AsAppError(err)
	if !ok || appErr.Type != utils.ErrorTypeExtraction || !strings.Contains(appErr.Message, "requires") {
		t.Errorf("missing converter error = %v", err)
	}
}

func TestParseContentStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "lines and kerning",
			stream: "BT /F1 12 Tf 72 712 Td (Hello) Tj T* (World) Tj T* [(Ker) -300 (ned) 20 (text)] TJ ET",
			want:   "Hello\nWorld\nKer nedtext",
		},
		{
			name:   "utf16 hex and octal escapes",
			stream: "BT <FEFF00480069> Tj 0 -14 Td (caf\\351 \\(x\\)) Tj ET",
			want:   "Hi\ncafé (x)",
		},
		{
			name:   "tm moves",
			stream: "BT 1 0 0 1 72 700 Tm (a) Tj 1 0 0 1 100 700 Tm (b) Tj 1 0 0 1 72 680 Tm (c) Tj ET",
			want:   "ab\nc",
		},
		{
			name:   "inline image skipped",
			stream: "BI /W 1 /H 1 ID \x00\xff EI BT (after) Tj ET",
			want:   "after",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseContentStream([]byte(tt.stream)); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	_, err := NewPDFExtractor(logger.Discard()).Extract(context.Background(), []byte("%PDF-1.4 broken"), "a.pdf")
	if utils.GetErrorType(err) != utils.ErrorTypeExtraction {
		t.Errorf("error = %v", err)
	}
}

// buildPDF writes a valid PDF with one Helvetica page per content stream
func buildPDF(contents ...string) []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	objects := 3 + 2*len(contents)
	offsets := make([]int, objects+1)

	kids := make([]string, len(contents))
	for i := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), len(contents))
	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i, stream := range contents {
		page, content := 4+2*i, 5+2*i
		offsets[page] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n", page, content)
		offsets[content] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", content, len(stream), stream)
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", objects+1)
	for i := 1; i <= objects; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", objects+1, xref)
	return []byte(b.String())
}

func TestPDFExtractorReadsPages(t *testing.T) {
	data := buildPDF(
		"BT /F1 12 Tf 72 720 Td (Hello PDF) Tj ET",
		"BT /F1 12 Tf 72 720 Td (Second page) Tj T* (continues) Tj ET",
	)

	got, err := NewPDFExtractor(logger.Discard()).Extract(context.Background(), data, "a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Hello PDF\nSecond page\ncontinues" {
		t.Errorf("got %q", got)
	}
}

func TestBlankInputIsAnExtractionError(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name      string
		extractor func() (string, error)
	}{
		{"docx with empty paragraphs", func() (string, error) {
			data := zipFixture(t, map[string]string{"word/document.xml": wordDocument(`<w:p/><w:p><w:r><w:t xml:space="preserve">   </w:t></w:r></w:p>`)})
			return NewWordExtractor().Extract(ctx, data, "a.docx")
		}},
		{"pdf without text", func() (string, error) {
			return NewPDFExtractor(logger.Discard()).Extract(ctx, buildPDF("q 1 0 0 1 0 0 cm Q"), "a.pdf")
		}},
		{"html markup only", func() (string, error) {
			return NewHTMLExtractor().Extract(ctx, []byte("<html><body><p> </p><div>\n\t</div><script>x()</script></body></html>"), "a.html")
		}},
		{"txt", func() (string, error) {
			return NewTextFileExtractor().Extract(ctx, []byte(" \r\n "), "a.txt")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.extractor()
			if utils.GetErrorType(err) != utils.ErrorTypeExtraction {
				t.Errorf("got %q, error = %v", got, err)
			}
		})
	}
}

func TestExtractionIsIdempotent(t *testing.T) {
	ctx := context.Background()
	inputs := []struct {
		name      string
		extractor func() (string, error)
	}{
		{"docx", func() (string, error) {
			return NewWordExtractor().Extract(ctx, zipFixture(t, map[string]string{"word/document.xml": docxBody}), "a.docx")
		}},
		{"pdf", func() (string, error) {
			return NewPDFExtractor(logger.Discard()).Extract(ctx, buildPDF("BT (Same text) Tj ET"), "a.pdf")
		}},
		{"html", func() (string, error) {
			return NewHTMLExtractor().Extract(ctx, []byte("<p>One <i>two</i></p><p>three</p>"), "a.html")
		}},
		{"rtf", func() (string, error) {
			return NewRTFExtractor().Extract(ctx, []byte(`{\rtf1\ansi Plain \b text\b0\par}`), "a.rtf")
		}},
		{"txt", func() (string, error) {
			return NewTextFileExtractor().Extract(ctx, []byte("caf\xe9"), "a.txt")
		}},
	}
	for _, in := range inputs {
		t.Run(in.name, func(t *testing.T) {
			first, err := in.extractor()
			if err != nil {
				t.Fatal(err)
			}
			second, err := in.extractor()
			if err != nil {
				t.Fatal(err)
			}
			if first != second {
				t.Errorf("first %q, second %q", first, second)
			}
		})
	}
}
