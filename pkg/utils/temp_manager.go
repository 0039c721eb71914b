package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
)

// SimpleTempManager manages temporary files that are cleaned up after a request
// Directory structure: {root}/{request_id}/
type SimpleTempManager struct {
	baseDir   string
	tempFiles []string
	created   bool
	mu        sync.Mutex
	logger    *logger.Logger
}

// Ensure SimpleTempManager implements TempFileManager interface
var _ interfaces.TempFileManager = (*SimpleTempManager)(nil)

// NewSimpleTempManager creates a temp manager scoped to one request.
// An empty root falls back to the system temp directory.
func NewSimpleTempManager(root string, log *logger.Logger) *SimpleTempManager {
	if root == "" {
		root = os.TempDir()
	}
	return &SimpleTempManager{
		baseDir: NormalizePath(filepath.Join(root, "fileconvertor-"+uuid.NewString())),
		logger:  log,
	}
}

// EnsureBaseDir ensures the base directory exists
func (tm *SimpleTempManager) EnsureBaseDir() error {
	if err := EnsureDir(tm.baseDir); err != nil {
		return err
	}
	tm.created = true
	return nil
}

// GetBasePath returns the base path for file operations
func (tm *SimpleTempManager) GetBasePath() string {
	return tm.baseDir
}

// CreateTempFile creates a temporary file
func (tm *SimpleTempManager) CreateTempFile(prefix, suffix string) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if err := tm.EnsureBaseDir(); err != nil {
		return "", fmt.Errorf("failed to ensure base directory: %w", err)
	}

	sanitizedPrefix := SanitizeFileName(prefix)
	if sanitizedPrefix == "" {
		sanitizedPrefix = "temp"
	}

	f, err := os.CreateTemp(tm.baseDir, sanitizedPrefix+"-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tempFile := f.Name()
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	tm.tempFiles = append(tm.tempFiles, tempFile)
	tm.logger.Debug("Created temp file: %s", tempFile)
	return tempFile, nil
}

// WriteTempFile creates a temporary file holding data
func (tm *SimpleTempManager) WriteTempFile(prefix, suffix string, data []byte) (string, error) {
	path, err := tm.CreateTempFile(prefix, suffix)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	return path, nil
}

// WithCleanup executes a function with automatic cleanup
func (tm *SimpleTempManager) WithCleanup(fn func() error) error {
	defer func() {
		if err := tm.Cleanup(); err != nil {
			tm.logger.Error("Temporary file cleanup failed: %v", err)
		}
	}()
	return fn()
}

// Cleanup cleans up temporary resources
func (tm *SimpleTempManager) Cleanup() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var errs []error

	for _, file := range tm.tempFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove temp file %s: %w", file, err))
			tm.logger.Warn("Failed to remove temporary file: %s, error: %v", file, err)
		}
	}

	if tm.created {
		if err := os.RemoveAll(tm.baseDir); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove request dir %s: %w", tm.baseDir, err))
		} else {
			tm.logger.Debug("Removed request directory: %s", tm.baseDir)
		}
		tm.created = false
	}

	tm.tempFiles = tm.tempFiles[:0]

	if len(errs) > 0 {
		return fmt.Errorf("cleanup failed with %d errors: %v", len(errs), errs)
	}

	return nil
}
