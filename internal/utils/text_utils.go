package utils

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ASCIIPunctuation is the set of characters stripped during normalization
const ASCIIPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

var isPunctuation = runes.Predicate(func(r rune) bool {
	return r < utf8.RuneSelf && strings.ContainsRune(ASCIIPunctuation, r)
})

// TextProcessor provides utilities for processing text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// Normalize lowercases text and deletes every ASCII punctuation character.
// Punctuation is removed rather than replaced, so "hi!there" becomes "hithere".
func (tp *TextProcessor) Normalize(text string) string {
	// Casers are stateful, so the chain is built per call.
	t := transform.Chain(cases.Lower(language.Und), runes.Remove(isPunctuation))

	normalized, _, err := transform.String(t, text)
	if err != nil {
		tp.logger.Debug("Falling back to simple normalization", zap.Error(err))
		return strings.Map(func(r rune) rune {
			if isPunctuation.Contains(r) {
				return -1
			}
			return r
		}, strings.ToLower(text))
	}

	return normalized
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	sanitized := strings.ToValidUTF8(text, "")

	tp.logger.Debug("Text sanitized",
		zap.Int("original_size", len(text)),
		zap.Int("sanitized_size", len(sanitized)))

	return sanitized
}
