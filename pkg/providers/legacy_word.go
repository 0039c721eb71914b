package providers

import (
	"context"
	"strings"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// LegacyWordExtractor handles binary .doc files through an external converter.
// Files that are really zip containers are passed to the .docx reader.
type LegacyWordExtractor struct {
	name         string
	antiwordPath string
	tempRoot     string
	docx         interfaces.Extractor
	logger       *logger.Logger
}

// NewLegacyWordExtractor creates a new .doc extractor
func NewLegacyWordExtractor(antiwordPath, tempRoot string, log *logger.Logger) interfaces.Extractor {
	if antiwordPath == "" {
		antiwordPath = constants.DefaultAntiwordPath
	}
	return &LegacyWordExtractor{
		name:         "doc",
		antiwordPath: antiwordPath,
		tempRoot:     tempRoot,
		docx:         NewWordExtractor(),
		logger:       log,
	}
}

// Name returns the name of the extractor
func (e *LegacyWordExtractor) Name() string {
	return e.name
}

// Extract writes the upload to a scoped temp file and reads antiword's output
func (e *LegacyWordExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	if isZip(data) {
		e.logger.Debug("%s is an OOXML container, reading as .docx", filename)
		text, err := e.docx.Extract(ctx, data, filename)
		if err != nil {
			if appErr, ok := utils.AsAppError(err); ok {
				appErr.WithContext(utils.ContextExtractor, e.name)
			}
			return "", err
		}
		return text, nil
	}

	if !utils.IsCommandAvailable(e.antiwordPath) {
		return "", utils.NewExtractionError(e.name,
			"legacy Word support requires "+e.antiwordPath+" to be installed", nil)
	}

	var text string
	tm := utils.NewSimpleTempManager(e.tempRoot, e.logger)
	err := tm.WithCleanup(func() error {
		input, err := tm.WriteTempFile("legacy", ".doc", data)
		if err != nil {
			return utils.WrapError(err, utils.ErrorTypeIO, "failed to stage document")
		}

		// -w 0 keeps each paragraph on one line
		result, err := utils.RunCommand(ctx, e.antiwordPath, "-w", "0", input)
		if err != nil {
			return err
		}
		text = normalizeParagraphLines(string(result.Stdout))
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", utils.NewExtractionError(e.name, "could not read Word document", err)
	}

	if text == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextFound, nil)
	}
	return text, nil
}

// normalizeParagraphLines trims lines and drops blank ones
func normalizeParagraphLines(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
