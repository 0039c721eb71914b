package types

import (
	"path/filepath"
	"sort"
	"strings"
)

// FormatTag identifies the extraction strategy for an uploaded file
type FormatTag string

const (
	FormatText       FormatTag = "text"
	FormatPDF        FormatTag = "pdf"
	FormatDocx       FormatTag = "docx"
	FormatLegacyWord FormatTag = "doc"
	FormatRTF        FormatTag = "rtf"
	FormatODT        FormatTag = "odt"
	FormatImage      FormatTag = "image"
	FormatHTML       FormatTag = "html"
)

// extensionFormats is the single table mapping lowercase extensions to formats
var extensionFormats = map[string]FormatTag{
	".txt":  FormatText,
	".pdf":  FormatPDF,
	".docx": FormatDocx,
	".doc":  FormatLegacyWord,
	".rtf":  FormatRTF,
	".odt":  FormatODT,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".png":  FormatImage,
	".gif":  FormatImage,
	".bmp":  FormatImage,
	".tiff": FormatImage,
	".tif":  FormatImage,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// FormatForExtension returns the format for an extension such as ".PDF" or "pdf"
func FormatForExtension(ext string) (FormatTag, bool) {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	tag, ok := extensionFormats[ext]
	return tag, ok
}

// FormatForFilename returns the format derived from a file name's extension
func FormatForFilename(name string) (FormatTag, bool) {
	return FormatForExtension(filepath.Ext(name))
}

// SupportedExtensions returns every known extension, sorted
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionFormats))
	for ext := range extensionFormats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// ExtensionsFor returns the sorted extensions that map to a format
func ExtensionsFor(tag FormatTag) []string {
	var exts []string
	for ext, t := range extensionFormats {
		if t == tag {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

// Mode is the user's chosen workflow
type Mode string

const (
	ModeNone      Mode = ""
	ModeConvert   Mode = "convert"
	ModeTranslate Mode = "translate"
)

// OCRStrategy represents different OCR tools
type OCRStrategy string

const (
	OCRStrategyTesseract OCRStrategy = "tesseract"
	OCRStrategyLLMCaller OCRStrategy = "llm-caller"
	OCRStrategyAuto      OCRStrategy = "auto"
)

// SourceFile is an uploaded file held in memory for one request
type SourceFile struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
	Size int64  `json:"size"`
}

// NewSourceFile wraps raw bytes, taking the size from the data
func NewSourceFile(name string, data []byte) *SourceFile {
	return &SourceFile{Name: name, Data: data, Size: int64(len(data))}
}

// Stem returns the file name without directory or extension
func (f *SourceFile) Stem() string {
	base := filepath.Base(f.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LanguagePair holds a detected source language and the chosen target
type LanguagePair struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Confidence float64 `json:"confidence"`
}

// Detection is the result of running language detection on a text sample
type Detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// JobState tracks a translate-mode request
type JobState string

const (
	StateAwaitingFile              JobState = "awaiting_file"
	StateAwaitingLanguageSelection JobState = "awaiting_language_selection"
	StateTranslating               JobState = "translating"
	StateDone                      JobState = "done"
	StateFailed                    JobState = "failed"
)

// Terminal reports whether no further transitions are allowed
func (s JobState) Terminal() bool {
	return s == StateDone || s == StateFailed
}
