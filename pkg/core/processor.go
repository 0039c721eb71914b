package core

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/document"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/translate"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// DefaultFileProcessor implements FileProcessor interface
type DefaultFileProcessor struct {
	config     *config.Config
	logger     *logger.Logger
	factory    interfaces.ExtractorFactory
	translator interfaces.Translator
}

var _ interfaces.FileProcessor = (*DefaultFileProcessor)(nil)

// NewFileProcessor creates a new file processor. translator may be nil
// when only conversion is needed.
func NewFileProcessor(cfg *config.Config, log *logger.Logger, translator interfaces.Translator) *DefaultFileProcessor {
	processor := &DefaultFileProcessor{
		config:     cfg,
		logger:     log,
		factory:    NewExtractorFactory(cfg, log),
		translator: translator,
	}

	log.Debug("File processor initialized: %s", cfg)
	return processor
}

// NewFromConfig creates a processor backed by the configured translation backend
func NewFromConfig(cfg *config.Config, log *logger.Logger) *DefaultFileProcessor {
	return NewFileProcessor(cfg, log, translate.NewFromConfig(cfg, log))
}

// SetExtractorFactory sets the extractor factory to use
func (p *DefaultFileProcessor) SetExtractorFactory(factory interfaces.ExtractorFactory) {
	p.factory = factory
}

// MaxFileSize returns the upload limit in bytes
func (p *DefaultFileProcessor) MaxFileSize() int64 {
	return p.config.MaxFileSizeBytes()
}

// Factory returns the extractor factory in use
func (p *DefaultFileProcessor) Factory() interfaces.ExtractorFactory {
	return p.factory
}

// ExtractText checks the size limit and routes the upload to its extractor
func (p *DefaultFileProcessor) ExtractText(ctx context.Context, src *types.SourceFile) (*interfaces.ExtractionResult, error) {
	log := p.requestLogger(src)

	if err := p.validateFileSize(log, src.Size); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout())
	defer cancel()

	result, err := p.factory.Extract(ctx, src.Data, src.Name)
	if err != nil {
		log.Warn("Extraction failed: %v", err)
		return nil, err
	}

	log.Info("Extracted %d characters with %s in %dms", utf8.RuneCountInString(result.Text), result.ExtractorUsed, result.ProcessTime)
	return result, nil
}

// ConvertDocument extracts text and renders it as a document
func (p *DefaultFileProcessor) ConvertDocument(ctx context.Context, src *types.SourceFile) ([]byte, error) {
	result, err := p.ExtractText(ctx, src)
	if err != nil {
		return nil, err
	}

	doc := document.BuildFromText(result.Text, fmt.Sprintf(constants.ConvertedHeadingFmt, src.Name), "")
	return p.render(doc)
}

// TranslateDocument extracts, detects, translates and renders the text
func (p *DefaultFileProcessor) TranslateDocument(ctx context.Context, src *types.SourceFile, target string) ([]byte, *types.LanguagePair, error) {
	if err := p.validateTarget(target); err != nil {
		return nil, nil, err
	}

	result, err := p.ExtractText(ctx, src)
	if err != nil {
		return nil, nil, err
	}

	detection, err := p.DetectLanguage(ctx, result.Text)
	if err != nil {
		return nil, nil, err
	}

	return p.TranslateText(ctx, src.Name, result.Text, detection, target)
}

// DetectLanguage guesses the source language of extracted text
func (p *DefaultFileProcessor) DetectLanguage(ctx context.Context, text string) (types.Detection, error) {
	if p.translator == nil {
		return types.Detection{}, utils.NewSystemError("translation is not configured", nil)
	}
	return p.translator.DetectLanguage(ctx, text)
}

// TranslateText translates already extracted text and renders the result
func (p *DefaultFileProcessor) TranslateText(ctx context.Context, name, text string, detection types.Detection, target string) ([]byte, *types.LanguagePair, error) {
	if err := p.validateTarget(target); err != nil {
		return nil, nil, err
	}
	if p.translator == nil {
		return nil, nil, utils.NewSystemError("translation is not configured", nil)
	}

	pair := &types.LanguagePair{
		Source:     detection.Language,
		Target:     target,
		Confidence: detection.Confidence,
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout())
	defer cancel()

	start := time.Now()
	translated, err := p.translator.Translate(ctx, text, pair.Source, pair.Target)
	if err != nil {
		p.logger.Warn("Translation %s -> %s of %s failed: %v", pair.Source, pair.Target, name, err)
		return nil, nil, err
	}
	p.logger.Info("Translated %s from %s to %s in %s", name, pair.Source, pair.Target, time.Since(start).Round(time.Millisecond))

	doc := document.BuildFromText(translated,
		fmt.Sprintf(constants.TranslatedHeadingFmt, name),
		fmt.Sprintf(constants.TranslatedSubtitleFmt, translate.LanguageName(pair.Source), translate.LanguageName(pair.Target)))

	data, err := p.render(doc)
	if err != nil {
		return nil, nil, err
	}
	return data, pair, nil
}

// ConvertedFileName returns the output name for a converted upload
func ConvertedFileName(sourceName string) string {
	return utils.OutputFileName(sourceName, constants.ConvertedSuffix)
}

// TranslatedFileName returns the output name for a translated upload
func TranslatedFileName(sourceName, target string) string {
	return utils.OutputFileName(sourceName, "_"+target)
}

func (p *DefaultFileProcessor) render(doc *document.OutputDocument) ([]byte, error) {
	data, err := doc.Render()
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeSystem, "failed to create document")
	}
	return data, nil
}

// validateFileSize rejects uploads over the configured limit; the limit itself is allowed
func (p *DefaultFileProcessor) validateFileSize(log *logger.Logger, size int64) error {
	limit := p.config.MaxFileSizeBytes()
	if size > limit {
		log.Warn("Rejected upload of %d bytes (limit %d)", size, limit)
		return utils.NewSizeLimitError(size, limit)
	}

	if size > constants.WarnFileSizeLimit {
		log.Warn("Large file detected (%d bytes), processing may take longer", size)
	}

	return nil
}

func (p *DefaultFileProcessor) validateTarget(target string) error {
	if !translate.IsSupportedTarget(target) {
		return utils.NewValidationError(fmt.Sprintf("unsupported target language: %s", target), nil)
	}
	return nil
}

func (p *DefaultFileProcessor) requestLogger(src *types.SourceFile) *logger.Logger {
	return p.logger.With("request_id", uuid.NewString(), "file", src.Name)
}
