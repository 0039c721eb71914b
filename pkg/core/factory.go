package core

import (
	"context"
	"path/filepath"
	"sort"
	"time"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/ocr"
	"github.com/GSKISBOT/fileconvertor/pkg/providers"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// DefaultExtractorFactory implements ExtractorFactory
type DefaultExtractorFactory struct {
	extractors map[types.FormatTag]interfaces.Extractor
	config     *config.Config
	logger     *logger.Logger
}

var _ interfaces.ExtractorFactory = (*DefaultExtractorFactory)(nil)

// NewExtractorFactory creates a new extractor factory with every built-in format registered
func NewExtractorFactory(cfg *config.Config, log *logger.Logger) *DefaultExtractorFactory {
	factory := &DefaultExtractorFactory{
		extractors: make(map[types.FormatTag]interfaces.Extractor),
		config:     cfg,
		logger:     log,
	}

	factory.registerDefaultExtractors()

	return factory
}

// Detect maps a file name to its format by lowercase extension
func (f *DefaultExtractorFactory) Detect(filename string) (types.FormatTag, error) {
	tag, ok := types.FormatForFilename(filename)
	if !ok {
		return "", utils.NewUnsupportedFormatError(filepath.Ext(filename))
	}
	return tag, nil
}

// ExtractorFor returns the extractor registered for a format
func (f *DefaultExtractorFactory) ExtractorFor(tag types.FormatTag) (interfaces.Extractor, error) {
	extractor, ok := f.extractors[tag]
	if !ok {
		return nil, utils.NewUnsupportedFormatError(string(tag))
	}
	return extractor, nil
}

// Extract routes data to the extractor for filename's format.
// Unknown formats are rejected before any extractor runs; extractor
// errors are returned unchanged.
func (f *DefaultExtractorFactory) Extract(ctx context.Context, data []byte, filename string) (*interfaces.ExtractionResult, error) {
	tag, err := f.Detect(filename)
	if err != nil {
		return nil, err
	}
	extractor, err := f.ExtractorFor(tag)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("Selected extractor '%s' for %s", extractor.Name(), filename)
	start := time.Now()

	text, err := extractor.Extract(ctx, data, filename)
	if err != nil {
		return nil, err
	}

	return &interfaces.ExtractionResult{
		Text:          text,
		Source:        filename,
		Format:        tag,
		ExtractorUsed: extractor.Name(),
		ProcessTime:   time.Since(start).Milliseconds(),
	}, nil
}

// RegisterExtractor registers or replaces the extractor for a format
func (f *DefaultExtractorFactory) RegisterExtractor(tag types.FormatTag, extractor interfaces.Extractor) {
	f.extractors[tag] = extractor
	f.logger.Debug("Registered extractor: %s -> %s", tag, extractor.Name())
}

// ListExtractors returns the registered format tags, sorted
func (f *DefaultExtractorFactory) ListExtractors() []string {
	names := make([]string, 0, len(f.extractors))
	for tag := range f.extractors {
		names = append(names, string(tag))
	}
	sort.Strings(names)
	return names
}

// SupportedExtensions lists extensions that have a registered extractor
func (f *DefaultExtractorFactory) SupportedExtensions() []string {
	var exts []string
	for _, ext := range types.SupportedExtensions() {
		tag, _ := types.FormatForExtension(ext)
		if _, ok := f.extractors[tag]; ok {
			exts = append(exts, ext)
		}
	}
	return exts
}

// registerDefaultExtractors registers the default set of extractors
func (f *DefaultExtractorFactory) registerDefaultExtractors() {
	f.logger.Debug("Registering default providers...")

	f.RegisterExtractor(types.FormatText, providers.NewTextFileExtractor())
	f.RegisterExtractor(types.FormatPDF, providers.NewPDFExtractor(f.logger))
	f.RegisterExtractor(types.FormatDocx, providers.NewWordExtractor())
	f.RegisterExtractor(types.FormatLegacyWord,
		providers.NewLegacyWordExtractor(f.config.Tools.AntiwordPath, f.config.Storage.TempDir, f.logger))
	f.RegisterExtractor(types.FormatRTF, providers.NewRTFExtractor())
	f.RegisterExtractor(types.FormatODT, providers.NewODTExtractor())
	f.RegisterExtractor(types.FormatImage, ocr.NewImageExtractor(f.config, f.logger))
	f.RegisterExtractor(types.FormatHTML, providers.NewHTMLExtractor())

	f.logger.Debug("Registered %d extractors: %v", len(f.extractors), f.ListExtractors())
}
