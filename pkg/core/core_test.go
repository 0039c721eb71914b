package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/providers"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

type countingExtractor struct {
	calls int
	text  string
	err   error
}

func (c *countingExtractor) Name() string { return "counting" }

func (c *countingExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	c.calls++
	return c.text, c.err
}

type fakeTranslator struct {
	detected types.Detection
	err      error
	sources  []string
}

func (f *fakeTranslator) DetectLanguage(ctx context.Context, text string) (types.Detection, error) {
	return f.detected, nil
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	f.sources = append(f.sources, source)
	if f.err != nil {
		return "", f.err
	}
	return "[" + target + "] " + text, nil
}

func newTestProcessor(t *testing.T, tr *fakeTranslator) *DefaultFileProcessor {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.TempDir = t.TempDir()
	if tr == nil {
		return NewFileProcessor(cfg, logger.Discard(), nil)
	}
	return NewFileProcessor(cfg, logger.Discard(), tr)
}

func docxText(t *testing.T, data []byte) string {
	t.Helper()
	text, err := providers.NewWordExtractor().Extract(context.Background(), data, "out.docx")
	if err != nil {
		t.Fatalf("read generated docx: %v", err)
	}
	return text
}

func TestDetectFormats(t *testing.T) {
	p := newTestProcessor(t, nil)
	tests := []struct {
		name string
		want types.FormatTag
	}{
		{"report.PDF", types.FormatPDF},
		{"scan.JPEG", types.FormatImage},
		{"old.doc", types.FormatLegacyWord},
		{"page.htm", types.FormatHTML},
		{"notes.txt", types.FormatText},
	}
	for _, tt := range tests {
		got, err := p.Factory().Detect(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("Detect(%q) = %s, %v; want %s", tt.name, got, err, tt.want)
		}
	}
}

func TestUnsupportedFormatRejectedBeforeExtraction(t *testing.T) {
	p := newTestProcessor(t, nil)
	fake := &countingExtractor{text: "x"}
	for _, tag := range []types.FormatTag{types.FormatText, types.FormatPDF, types.FormatImage} {
		p.Factory().RegisterExtractor(tag, fake)
	}

	_, err := p.ExtractText(context.Background(), types.NewSourceFile("archive.xyz", []byte("data")))
	if utils.GetErrorType(err) != utils.ErrorTypeUnsupported {
		t.Fatalf("err = %v", err)
	}
	appErr, _ := utils.AsAppError(err)
	if appErr.ContextString(utils.ContextExtension) != ".xyz" {
		t.Errorf("extension context = %q", appErr.ContextString(utils.ContextExtension))
	}
	if fake.calls != 0 {
		t.Errorf("extractor ran %d times", fake.calls)
	}
}

func TestSizeLimitBoundary(t *testing.T) {
	p := newTestProcessor(t, nil)
	fake := &countingExtractor{text: "ok"}
	p.Factory().RegisterExtractor(types.FormatText, fake)

	limit := p.config.MaxFileSizeBytes()
	if limit != 20971520 {
		t.Fatalf("default limit = %d", limit)
	}

	atLimit := &types.SourceFile{Name: "a.txt", Data: []byte("ok"), Size: limit}
	if _, err := p.ExtractText(context.Background(), atLimit); err != nil {
		t.Errorf("file at the limit rejected: %v", err)
	}

	over := &types.SourceFile{Name: "a.txt", Data: []byte("ok"), Size: limit + 1}
	_, err := p.ExtractText(context.Background(), over)
	if utils.GetErrorType(err) != utils.ErrorTypeSizeLimit {
		t.Fatalf("err = %v", err)
	}
	appErr, _ := utils.AsAppError(err)
	if appErr.Context[utils.ContextActual] != limit+1 || appErr.Context[utils.ContextLimit] != limit {
		t.Errorf("context = %v", appErr.Context)
	}
	if fake.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", fake.calls)
	}
}

func TestExtractionErrorPropagatesUnchanged(t *testing.T) {
	p := newTestProcessor(t, nil)
	cause := utils.NewExtractionError("pdf", "could not parse PDF", errors.New("bad xref"))
	p.Factory().RegisterExtractor(types.FormatPDF, &countingExtractor{err: cause})

	_, err := p.ConvertDocument(context.Background(), types.NewSourceFile("broken.pdf", []byte("%PDF")))
	if !errors.Is(err, cause) {
		t.Errorf("err = %v, want the extractor's error", err)
	}
}

func TestExtractionIsAttemptedOnce(t *testing.T) {
	p := newTestProcessor(t, nil)
	fake := &countingExtractor{err: utils.NewTranslationError("backend down", nil)}
	p.Factory().RegisterExtractor(types.FormatText, fake)

	if _, err := p.ExtractText(context.Background(), types.NewSourceFile("a.txt", []byte("x"))); err == nil {
		t.Fatal("expected the extractor's error")
	}
	if fake.calls != 1 {
		t.Errorf("extractor calls = %d, want 1", fake.calls)
	}
}

func TestExtractionLogsCharacterCount(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.DefaultConfig()
	cfg.Storage.TempDir = t.TempDir()
	p := NewFileProcessor(cfg, logger.NewWithFormat("info", "text", false, &buf), nil)
	p.Factory().RegisterExtractor(types.FormatText, &countingExtractor{text: "héllo wörld"})

	if _, err := p.ExtractText(context.Background(), types.NewSourceFile("a.txt", []byte("x"))); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Extracted 11 characters") {
		t.Errorf("log = %s", buf.String())
	}
}

func TestConvertDocument(t *testing.T) {
	p := newTestProcessor(t, nil)
	src := types.NewSourceFile("notes.txt", []byte("Hello\n\n  World  \n"))

	data, err := p.ConvertDocument(context.Background(), src)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := docxText(t, data), "Converted from notes.txt\nHello\nWorld"; got != want {
		t.Errorf("document text = %q, want %q", got, want)
	}
	if ConvertedFileName(src.Name) != "notes_converted.docx" {
		t.Errorf("name = %q", ConvertedFileName(src.Name))
	}
}

func TestTranslateDocument(t *testing.T) {
	tr := &fakeTranslator{detected: types.Detection{Language: "en", Confidence: 0.98}}
	p := newTestProcessor(t, tr)

	data, pair, err := p.TranslateDocument(context.Background(), types.NewSourceFile("hello.txt", []byte("Hello")), "es")
	if err != nil {
		t.Fatal(err)
	}
	if pair.Source != "en" || pair.Target != "es" {
		t.Errorf("pair = %+v", pair)
	}
	text := docxText(t, data)
	for _, want := range []string{"Translated: hello.txt", "From English to Spanish", strings.Repeat("─", 50), "[es] Hello"} {
		if !strings.Contains(text, want) {
			t.Errorf("document lacks %q:\n%s", want, text)
		}
	}
	if TranslatedFileName("hello.txt", "es") != "hello_es.docx" {
		t.Errorf("name = %q", TranslatedFileName("hello.txt", "es"))
	}
}

func TestTranslateRejectsAutoTarget(t *testing.T) {
	p := newTestProcessor(t, &fakeTranslator{})
	_, _, err := p.TranslateDocument(context.Background(), types.NewSourceFile("a.txt", []byte("x")), "auto")
	if utils.GetErrorType(err) != utils.ErrorTypeValidation {
		t.Errorf("err = %v", err)
	}
}

func TestTranslationJobHappyPath(t *testing.T) {
	tr := &fakeTranslator{detected: types.Detection{Language: "fr", Confidence: 0.9}}
	job := NewTranslationJob(newTestProcessor(t, tr))
	ctx := context.Background()

	if job.State() != types.StateAwaitingFile {
		t.Fatalf("initial state = %s", job.State())
	}
	if err := job.Attach(ctx, types.NewSourceFile("lettre.txt", []byte("Bonjour"))); err != nil {
		t.Fatal(err)
	}
	if job.State() != types.StateAwaitingLanguageSelection || job.Detection().Language != "fr" {
		t.Fatalf("state = %s, detection = %+v", job.State(), job.Detection())
	}

	data, pair, err := job.SelectLanguage(ctx, "en")
	if err != nil {
		t.Fatal(err)
	}
	if job.State() != types.StateDone || len(data) == 0 || pair.Target != "en" {
		t.Errorf("state = %s, pair = %+v", job.State(), pair)
	}
	if tr.sources[0] != "fr" {
		t.Errorf("translated from %q", tr.sources[0])
	}

	if _, _, err := job.SelectLanguage(ctx, "de"); err == nil {
		t.Error("done job accepted a second language")
	}
}

func TestTranslationJobFailureIsTerminal(t *testing.T) {
	tr := &fakeTranslator{
		detected: types.Detection{Language: "en"},
		err:      utils.NewTranslationError("backend down", nil),
	}
	job := NewTranslationJob(newTestProcessor(t, tr))
	ctx := context.Background()

	if err := job.Attach(ctx, types.NewSourceFile("a.txt", []byte("text"))); err != nil {
		t.Fatal(err)
	}
	if _, _, err := job.SelectLanguage(ctx, "es"); utils.GetErrorType(err) != utils.ErrorTypeTranslation {
		t.Fatalf("err = %v", err)
	}
	if job.State() != types.StateFailed || job.Err() == nil {
		t.Fatalf("state = %s", job.State())
	}
	if err := job.Attach(ctx, types.NewSourceFile("b.txt", []byte("again"))); err == nil {
		t.Error("failed job accepted a new file")
	}
}

func TestTranslationJobWrongOrder(t *testing.T) {
	job := NewTranslationJob(newTestProcessor(t, &fakeTranslator{}))
	if _, _, err := job.SelectLanguage(context.Background(), "es"); utils.GetErrorType(err) != utils.ErrorTypeValidation {
		t.Errorf("err = %v", err)
	}
	if job.State() != types.StateAwaitingFile {
		t.Errorf("state changed to %s", job.State())
	}
}

func TestTranslationJobExtractionFailure(t *testing.T) {
	job := NewTranslationJob(newTestProcessor(t, &fakeTranslator{}))
	err := job.Attach(context.Background(), types.NewSourceFile("blank.txt", []byte("   \n")))
	if utils.GetErrorType(err) != utils.ErrorTypeExtraction {
		t.Fatalf("err = %v", err)
	}
	if job.State() != types.StateFailed {
		t.Errorf("state = %s", job.State())
	}
}

func TestTranslationJobDiscard(t *testing.T) {
	job := NewTranslationJob(newTestProcessor(t, &fakeTranslator{detected: types.Detection{Language: "en"}}))
	if err := job.Attach(context.Background(), types.NewSourceFile("a.txt", []byte("hi"))); err != nil {
		t.Fatal(err)
	}
	job.Discard()
	if job.State() != types.StateFailed || job.Source() != nil {
		t.Errorf("state = %s", job.State())
	}
}
