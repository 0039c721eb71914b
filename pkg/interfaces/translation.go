package interfaces

import (
	"context"

	"github.com/GSKISBOT/fileconvertor/pkg/types"
)

// TranslationBackend is a remote machine-translation service
type TranslationBackend interface {
	// Detect guesses the language of a text sample
	Detect(ctx context.Context, text string) (types.Detection, error)

	// Translate translates text; source may be "auto"
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Translator translates arbitrarily long text through a backend
type Translator interface {
	DetectLanguage(ctx context.Context, text string) (types.Detection, error)
	Translate(ctx context.Context, text, source, target string) (string, error)
}
