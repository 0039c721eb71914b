package utils

import (
	"fmt"
	"strings"

	"github.com/docker/go-units"
)

// ParseSize parses a human size such as "20MiB" or "20MB" into bytes.
// Plain integers are taken as bytes.
func ParseSize(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty size")
	}
	if size, err := units.RAMInBytes(value); err == nil {
		return size, nil
	}
	size, err := units.FromHumanSize(value)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", value, err)
	}
	return size, nil
}

// FormatSize renders a byte count in binary units, for example "20MiB"
func FormatSize(size int64) string {
	return units.BytesSize(float64(size))
}
