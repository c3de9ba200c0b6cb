package text

import (
	"strings"
	"unicode"
)

// Options configures a Normalizer.
type Options struct {
	// StopWords overrides the default stop-word set when non-nil.
	StopWords []string
	// Stem enables suffix-stripping of surviving tokens.
	Stem bool
}

// Normalizer splits raw text into normalized word tokens. It performs no
// I/O and is safe for concurrent use.
type Normalizer struct {
	stopWords map[string]struct{}
	stem      bool
}

// NewNormalizer creates a Normalizer. A nil options value selects the
// default stop-word set with stemming disabled.
func NewNormalizer(opts *Options) *Normalizer {
	words := defaultStopWords
	stem := false
	if opts != nil {
		if opts.StopWords != nil {
			words = opts.StopWords
		}
		stem = opts.Stem
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return &Normalizer{stopWords: set, stem: stem}
}

// Tokenize lower-cases text, converts punctuation to whitespace, and splits
// on whitespace. No stop-word filtering or stemming is applied; retrieval
// mode selection needs the raw token stream, stop words included.
func (n *Normalizer) Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return fields
}

// Normalize tokenizes text and drops tokens of length two or less, purely
// numeric tokens, and stop words. When stemming is enabled each surviving
// token is reduced to its stem. Output preserves original token order.
func (n *Normalizer) Normalize(text string) []string {
	raw := n.Tokenize(text)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 2 || isNumeric(tok) {
			continue
		}
		if n.IsStopWord(tok) {
			continue
		}
		if n.stem {
			tok = Stem(tok)
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

// IsStopWord reports whether a lower-cased token is in the stop-word set.
func (n *Normalizer) IsStopWord(token string) bool {
	_, ok := n.stopWords[token]
	return ok
}

// Sentences splits text on sentence terminators (., !, ?) and trims
// whitespace. Fragments shorter than minLen runes are dropped; pass 0 to
// keep everything non-empty.
func Sentences(text string, minLen int) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" || len(s) < minLen {
			continue
		}
		sentences = append(sentences, s)
	}
	return sentences
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsNumber(r) {
			return false
		}
	}
	return len(s) > 0
}
