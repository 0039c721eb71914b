package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
)

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	cleaned := filepath.Clean(path)

	// On Windows, ensure proper drive letter formatting
	if constants.IsWindows() && len(cleaned) >= 2 && cleaned[1] == ':' {
		if cleaned[0] >= 'a' && cleaned[0] <= 'z' {
			cleaned = strings.ToUpper(string(cleaned[0])) + cleaned[1:]
		}
	}

	return cleaned
}

// EnsureDir creates directory if it doesn't exist
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return fmt.Errorf("directory path cannot be empty")
	}
	return os.MkdirAll(dirPath, constants.DefaultDirPermission)
}

// ExpandPath expands environment variables and a leading ~ in path
func ExpandPath(path string) (string, error) {
	expanded := os.ExpandEnv(path)

	if expanded == "~" || strings.HasPrefix(expanded, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		expanded = filepath.Join(home, strings.TrimPrefix(expanded, "~"))
	}

	return NormalizePath(expanded), nil
}

// SanitizeFileName sanitizes a filename for the current platform
func SanitizeFileName(filename string) string {
	sanitized := filepath.Base(filename)
	if sanitized == "." || sanitized == string(filepath.Separator) {
		sanitized = ""
	}

	invalidChars := []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*", "\x00"}
	for _, char := range invalidChars {
		sanitized = strings.ReplaceAll(sanitized, char, "_")
	}

	// Remove trailing dots and spaces (invalid on Windows)
	sanitized = strings.TrimRight(sanitized, ". ")

	if strings.TrimSpace(sanitized) == "" {
		sanitized = "unnamed_file"
	}

	return sanitized
}

// OutputFileName builds a delivery file name from the upload's stem and a suffix
func OutputFileName(sourceName, suffix string) string {
	base := filepath.Base(sourceName)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return SanitizeFileName(stem+suffix) + constants.OutputExtension
}
