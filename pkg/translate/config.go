package translate

import (
	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
)

// NewFromConfig wires a LibreTranslate client behind a chunked translator
func NewFromConfig(cfg *config.Config, log *logger.Logger) *ChunkedTranslator {
	backend := NewLibreTranslateClient(cfg.Translation.BackendURL, cfg.Translation.APIKey, cfg.RequestTimeout(), log)
	return NewChunkedTranslator(backend, Options{
		MaxChunkChars:     cfg.Translation.MaxChunkChars,
		Workers:           cfg.Translation.Workers,
		DetectPrefixChars: cfg.Translation.DetectPrefixChars,
	}, log)
}
