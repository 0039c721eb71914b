package utils

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
)

// IsCommandAvailable checks if a command is available in PATH
func IsCommandAvailable(command string) bool {
	if command == "" {
		return false
	}
	_, err := exec.LookPath(constants.ExecutableName(command))
	return err == nil
}

// CommandResult captures what an external tool printed
type CommandResult struct {
	Stdout []byte
	Stderr []byte
}

// RunCommand runs an external tool, folding its stderr into the returned error
func RunCommand(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, constants.ExecutableName(name), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &CommandResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, WrapError(ctxErr, ErrorTypeTimeout, fmt.Sprintf("%s interrupted", name))
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return result, fmt.Errorf("%s failed: %s: %w", name, msg, err)
	}
	return result, nil
}
