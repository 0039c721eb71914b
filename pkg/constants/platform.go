package constants

import (
	"runtime"
	"strings"
)

// Current operating system
var CurrentOS = runtime.GOOS

// Default external tool names
const (
	DefaultTesseractPath = "tesseract"
	DefaultAntiwordPath  = "antiword"
	DefaultLLMCallerPath = "llm-caller"
)

// IsWindows reports whether we are running on Windows
func IsWindows() bool {
	return CurrentOS == "windows"
}

// ExecutableName returns the platform-appropriate executable name.
// Names that already carry a path separator or extension are left alone.
func ExecutableName(name string) string {
	if !IsWindows() || strings.ContainsAny(name, `/\`) {
		return name
	}
	if strings.HasSuffix(strings.ToLower(name), ".exe") {
		return name
	}
	return name + ".exe"
}
