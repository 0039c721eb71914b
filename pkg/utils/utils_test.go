package utils

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/GSKISBOT/fileconvertor/pkg/logger"
)

func TestSizeLimitErrorReportsBothSizes(t *testing.T) {
	err := NewSizeLimitError(20971521, 20971520)
	if err.Type != ErrorTypeSizeLimit {
		t.Fatalf("Type = %s", err.Type)
	}
	if err.Context[ContextActual] != int64(20971521) || err.Context[ContextLimit] != int64(20971520) {
		t.Errorf("context = %v", err.Context)
	}
	if !strings.Contains(err.Message, "20MiB") {
		t.Errorf("message %q should name the limit", err.Message)
	}
}

func TestAsAppErrorThroughWrapping(t *testing.T) {
	inner := NewExtractionError("pdf", "PDF parse failed", errors.New("bad xref"))
	wrapped := errors.Join(errors.New("outer"), inner)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("AsAppError did not find the extraction error")
	}
	if appErr.ContextString(ContextExtractor) != "pdf" {
		t.Errorf("extractor = %q", appErr.ContextString(ContextExtractor))
	}
	if GetErrorType(wrapped) != ErrorTypeExtraction {
		t.Errorf("GetErrorType = %s", GetErrorType(wrapped))
	}
}

func TestTranslationErrorIsRecoverable(t *testing.T) {
	if !IsRecoverable(NewTranslationError("backend down", nil)) {
		t.Error("translation errors should be recoverable")
	}
	if IsRecoverable(NewUnsupportedFormatError(".xyz")) {
		t.Error("unsupported format should not be recoverable")
	}
}

func TestTempManagerCleansUpOnError(t *testing.T) {
	root := t.TempDir()
	tm := NewSimpleTempManager(root, logger.Discard())

	var path string
	err := tm.WithCleanup(func() error {
		var err error
		path, err = tm.WriteTempFile("upload", ".png", []byte("data"))
		if err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil || err.Error() != "boom" {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Errorf("temp file %s survived cleanup", path)
	}
	if _, statErr := os.Stat(tm.GetBasePath()); !os.IsNotExist(statErr) {
		t.Errorf("request dir %s survived cleanup", tm.GetBasePath())
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"20MiB", 20971520},
		{"20MB", 20971520},
		{"1024", 1024},
		{"512k", 512 * 1024},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.in)
		if err != nil {
			t.Errorf("ParseSize(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
	if _, err := ParseSize("lots"); err == nil {
		t.Error("expected error for garbage size")
	}
}

func TestOutputFileName(t *testing.T) {
	if got := OutputFileName("/tmp/report.final.pdf", "_converted"); got != "report.final_converted.docx" {
		t.Errorf("got %q", got)
	}
	if got := SanitizeFileName("a/b:c"); got != "b_c" {
		t.Errorf("got %q", got)
	}
}
