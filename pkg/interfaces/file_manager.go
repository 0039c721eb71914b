package interfaces

// FileManager defines the interface for file and directory management
type FileManager interface {
	// EnsureBaseDir ensures the base directory exists
	EnsureBaseDir() error

	// GetBasePath returns the base path for file operations
	GetBasePath() string

	// Cleanup performs cleanup operations
	Cleanup() error
}

// TempFileManager manages temporary files that are cleaned up after processing
// These files are only used during one request
type TempFileManager interface {
	FileManager

	// CreateTempFile creates a temporary file
	CreateTempFile(prefix, suffix string) (string, error)

	// WriteTempFile creates a temporary file holding data
	WriteTempFile(prefix, suffix string, data []byte) (string, error)

	// WithCleanup executes a function with automatic cleanup
	WithCleanup(fn func() error) error
}
