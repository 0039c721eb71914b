package translate

import (
	"strings"
	"unicode/utf8"

	"github.com/GSKISBOT/fileconvertor/pkg/constants"
)

// splitSentences cuts text after every '.', '!', '?' and newline.
// The pieces concatenate back to the input.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i, r := range text {
		switch r {
		case '.', '!', '?', '\n':
			end := i + utf8.RuneLen(r)
			sentences = append(sentences, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}

// SplitIntoChunks packs sentences greedily into chunks of at most maxChars
// runes. Chunks are trimmed and never empty. A sentence longer than the limit
// is split at word boundaries, and a single word longer than the limit at
// rune boundaries.
func SplitIntoChunks(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = constants.DefaultMaxChunkChars
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range splitSentences(text) {
		n := utf8.RuneCountInString(sentence)
		if n > maxChars {
			flush()
			chunks = append(chunks, splitWords(sentence, maxChars)...)
			continue
		}
		if currentLen+n > maxChars {
			flush()
		}
		current.WriteString(sentence)
		currentLen += n
	}
	flush()

	return chunks
}

// splitWords greedily joins words with single spaces up to maxChars runes
func splitWords(sentence string, maxChars int) []string {
	var pieces []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(sentence) {
		n := utf8.RuneCountInString(word)
		if n > maxChars {
			if currentLen > 0 {
				pieces = append(pieces, current.String())
				current.Reset()
				currentLen = 0
			}
			pieces = append(pieces, splitRunes(word, maxChars)...)
			continue
		}

		extra := n
		if currentLen > 0 {
			extra++
		}
		if currentLen+extra > maxChars {
			pieces = append(pieces, current.String())
			current.Reset()
			currentLen = 0
			extra = n
		}
		if currentLen > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
		currentLen += extra
	}
	if currentLen > 0 {
		pieces = append(pieces, current.String())
	}
	return pieces
}

func splitRunes(word string, maxChars int) []string {
	runes := []rune(word)
	var pieces []string
	for len(runes) > maxChars {
		pieces = append(pieces, string(runes[:maxChars]))
		runes = runes[maxChars:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
