package constants

import "time"

// Application constants
const (
	AppName    = "fileconvertor"
	AppDirName = ".fileconvertor"
)

// File processing constants
const (
	// Default file permissions
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755

	// Output documents
	OutputExtension       = ".docx"
	ConvertedSuffix       = "_converted"
	SeparatorRune         = '─'
	SeparatorWidth        = 50
	ConvertedHeadingFmt   = "Converted from %s"
	TranslatedHeadingFmt  = "Translated: %s"
	TranslatedSubtitleFmt = "From %s to %s"

	// Timeout settings
	DefaultTimeoutDuration = 30 * time.Minute
	DefaultRequestTimeout  = 60 * time.Second
)

// File size limits (in bytes)
const (
	MaxFileSize       = 20 * 1024 * 1024 // 20MB
	WarnFileSizeLimit = 10 * 1024 * 1024 // 10MB
)

// Translation constants
const (
	DefaultMaxChunkChars     = 5000
	DefaultDetectPrefixChars = 1000
	DefaultTranslateWorkers  = 3
	MaxTranslateWorkers      = 16
	AutoLanguage             = "auto"
)

// Bot constants
const (
	DefaultPollTimeout    = 30 * time.Second
	DefaultTelegramAPIURL = "https://api.telegram.org"
	PopularLanguagesRow   = 2
	MoreLanguagesRow      = 3
	SessionTTL            = 30 * time.Minute
	SessionSweepInterval  = time.Minute
)

// Error messages
const (
	ErrUnsupportedFormat = "unsupported file format"
	ErrOCRFailed         = "OCR failed"
	ErrNoTextFound       = "no text found"
	ErrNoTextInImage     = "no readable text found in image"
	ErrFileTooLarge      = "file too large"
)
