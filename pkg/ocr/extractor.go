package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// ImageExtractor recognizes text in raster images.
// Every supported format is normalized to PNG before the OCR engine runs.
type ImageExtractor struct {
	name     string
	config   *config.Config
	logger   *logger.Logger
	selector interfaces.OCRSelector
}

// NewImageExtractor creates an image extractor backed by the configured OCR strategy
func NewImageExtractor(cfg *config.Config, log *logger.Logger) *ImageExtractor {
	return NewImageExtractorWithSelector(cfg, log, NewOCRSelector(cfg, log))
}

// NewImageExtractorWithSelector creates an image extractor with a custom engine selector
func NewImageExtractorWithSelector(cfg *config.Config, log *logger.Logger, selector interfaces.OCRSelector) *ImageExtractor {
	return &ImageExtractor{
		name:     "image",
		config:   cfg,
		logger:   log,
		selector: selector,
	}
}

// Name returns the name of the extractor
func (e *ImageExtractor) Name() string {
	return e.name
}

// Extract decodes the image, writes a PNG copy to a scratch directory and runs OCR on it
func (e *ImageExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", utils.NewExtractionError(e.name, constants.ErrOCRFailed, fmt.Errorf("decode image: %w", err))
	}
	e.logger.Debug("Decoded %s image %s (%dx%d)", format, filename, img.Bounds().Dx(), img.Bounds().Dy())

	engine, err := e.selector.SelectOCRStrategy(e.strategy())
	if err != nil {
		return "", utils.NewExtractionError(e.name, constants.ErrOCRFailed, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", utils.NewExtractionError(e.name, constants.ErrOCRFailed, fmt.Errorf("encode png: %w", err))
	}

	var text string
	tempManager := e.config.CreateTempFileManager(e.logger)
	err = tempManager.WithCleanup(func() error {
		imagePath, err := tempManager.WriteTempFile("ocr", ".png", buf.Bytes())
		if err != nil {
			return utils.NewIOError("failed to stage image for OCR", err)
		}

		e.logger.Progress("🔍", "Running %s on %s", engine.Name(), filename)
		text, err = engine.ExtractTextFromImage(ctx, imagePath)
		return err
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", utils.NewExtractionError(e.name, constants.ErrOCRFailed, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", utils.NewExtractionError(e.name, constants.ErrNoTextInImage, nil)
	}
	return text, nil
}

func (e *ImageExtractor) strategy() types.OCRStrategy {
	if e.config.OCR.Strategy == "" {
		return types.OCRStrategyAuto
	}
	return e.config.OCR.Strategy
}
