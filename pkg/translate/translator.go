package translate

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
	"github.com/GSKISBOT/fileconvertor/pkg/interfaces"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/types"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

// Options tunes chunking and fan-out
type Options struct {
	MaxChunkChars     int
	Workers           int
	DetectPrefixChars int
}

// ChunkedTranslator translates text of any length through a backend
type ChunkedTranslator struct {
	backend interfaces.TranslationBackend
	opts    Options
	logger  *logger.Logger
}

var _ interfaces.Translator = (*ChunkedTranslator)(nil)

// NewChunkedTranslator creates a translator; zero options take the defaults
func NewChunkedTranslator(backend interfaces.TranslationBackend, opts Options, log *logger.Logger) *ChunkedTranslator {
	if opts.MaxChunkChars <= 0 {
		opts.MaxChunkChars = constants.DefaultMaxChunkChars
	}
	if opts.Workers <= 0 {
		opts.Workers = constants.DefaultTranslateWorkers
	}
	if opts.DetectPrefixChars <= 0 {
		opts.DetectPrefixChars = constants.DefaultDetectPrefixChars
	}
	return &ChunkedTranslator{backend: backend, opts: opts, logger: log}
}

// DetectLanguage runs detection once on the leading DetectPrefixChars runes
func (t *ChunkedTranslator) DetectLanguage(ctx context.Context, text string) (types.Detection, error) {
	sample := prefixRunes(text, t.opts.DetectPrefixChars)

	detection, err := t.backend.Detect(ctx, sample)
	if err != nil {
		return types.Detection{}, utils.NewTranslationError("language detection failed", err)
	}
	if detection.Language == "" {
		return types.Detection{}, utils.NewTranslationError("language detection returned no language", nil)
	}

	t.logger.Info("Detected source language: %s (confidence: %.2f)", detection.Language, detection.Confidence)
	return detection, nil
}

// Translate returns the translation of text. Short text goes to the backend
// in one call; longer text is chunked, translated concurrently and joined
// with newlines in the original chunk order. Any failed chunk fails the call.
func (t *ChunkedTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if utf8.RuneCountInString(text) <= t.opts.MaxChunkChars {
		translated, err := t.backend.Translate(ctx, text, source, target)
		if err != nil {
			return "", utils.NewTranslationError("translation failed", err)
		}
		return translated, nil
	}

	chunks := SplitIntoChunks(text, t.opts.MaxChunkChars)
	t.logger.Debug("Translating %d chunks with %d workers", len(chunks), t.opts.Workers)

	results := make([]string, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			translated, err := t.backend.Translate(gctx, chunk, source, target)
			if err != nil {
				return fmt.Errorf("chunk %d of %d: %w", i+1, len(chunks), err)
			}
			results[i] = translated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", utils.NewTranslationError("translation failed", err)
	}

	return strings.Join(results, "\n"), nil
}

func prefixRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
