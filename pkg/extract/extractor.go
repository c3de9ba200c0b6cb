package extract

import (
	"sort"
	"strings"
	"unicode"

	"github.com/soundprediction/docgraph/pkg/text"
	"github.com/soundprediction/docgraph/pkg/types"
)

// Defaults bounding extraction fan-out.
const (
	// DefaultMaxConcepts caps single-word concepts per document.
	DefaultMaxConcepts = 50
	// DefaultMaxPhrases caps two-word phrases per document.
	DefaultMaxPhrases = 10
	// minPhraseChars is the minimum length of a kept phrase.
	minPhraseChars = 9
	// minPhraseFreq is the minimum occurrence count of a kept phrase.
	minPhraseFreq = 2
)

// Config tunes the deterministic extractor. The zero value selects
// defaults with phrase extraction enabled.
type Config struct {
	MaxConcepts int
	MaxPhrases  int
	// DisablePhrases turns off two-word phrase extraction.
	DisablePhrases bool
}

// Extractor computes ranked (concept, frequency) candidates from raw text.
// It is deterministic: identical input yields byte-identical output order.
type Extractor struct {
	norm *text.Normalizer
	cfg  Config
}

// NewExtractor creates an Extractor sharing the given normalizer. A nil
// config selects defaults.
func NewExtractor(norm *text.Normalizer, cfg *Config) *Extractor {
	c := Config{}
	if cfg != nil {
		c = *cfg
	}
	if c.MaxConcepts <= 0 {
		c.MaxConcepts = DefaultMaxConcepts
	}
	if c.MaxPhrases <= 0 {
		c.MaxPhrases = DefaultMaxPhrases
	}
	return &Extractor{norm: norm, cfg: c}
}

// Extract returns concept candidates for content: single-word concepts
// first, then two-word phrases, each group sorted by descending frequency
// with ascending name as the tie-break. Empty or degenerate content yields
// an empty slice, not an error.
func (e *Extractor) Extract(content string) []types.Concept {
	concepts := e.extractWords(content)
	if !e.cfg.DisablePhrases {
		concepts = append(concepts, e.extractPhrases(content)...)
	}
	return concepts
}

// extractWords counts normalized token occurrences and keeps a token when
// it repeats or is long enough to be meaningful on its own (frequency > 1
// or length > 4).
func (e *Extractor) extractWords(content string) []types.Concept {
	tokens := e.norm.Normalize(content)
	if len(tokens) == 0 {
		return nil
	}

	freq := make(map[string]int, len(tokens))
	for _, tok := range tokens {
		freq[tok]++
	}

	candidates := make([]types.Concept, 0, len(freq))
	for name, count := range freq {
		if count > 1 || len(name) > 4 {
			candidates = append(candidates, types.Concept{Name: name, Frequency: count})
		}
	}

	sortByFrequency(candidates)
	if len(candidates) > e.cfg.MaxConcepts {
		candidates = candidates[:e.cfg.MaxConcepts]
	}
	return candidates
}

// extractPhrases slides a two-token window over each sentence and keeps
// phrases that are long enough, contain no stop word, do not start with a
// digit, and occur at least twice.
func (e *Extractor) extractPhrases(content string) []types.Concept {
	freq := make(map[string]int)
	for _, sentence := range text.Sentences(content, 0) {
		words := e.norm.Tokenize(sentence)
		for i := 0; i+1 < len(words); i++ {
			a, b := words[i], words[i+1]
			if e.norm.IsStopWord(a) || e.norm.IsStopWord(b) {
				continue
			}
			phrase := a + " " + b
			if len(phrase) < minPhraseChars || startsWithDigit(phrase) {
				continue
			}
			freq[phrase]++
		}
	}

	candidates := make([]types.Concept, 0, len(freq))
	for name, count := range freq {
		if count >= minPhraseFreq {
			candidates = append(candidates, types.Concept{Name: name, Frequency: count})
		}
	}

	sortByFrequency(candidates)
	if len(candidates) > e.cfg.MaxPhrases {
		candidates = candidates[:e.cfg.MaxPhrases]
	}
	return candidates
}

// sortByFrequency orders candidates by descending frequency, breaking ties
// by ascending name so that ranking is stable across runs.
func sortByFrequency(concepts []types.Concept) {
	sort.Slice(concepts, func(i, j int) bool {
		if concepts[i].Frequency != concepts[j].Frequency {
			return concepts[i].Frequency > concepts[j].Frequency
		}
		return concepts[i].Name < concepts[j].Name
	})
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

// MergeExtraction converts an enrichment result into concept candidates,
// deduplicating by canonical (lower-cased) name. Entities carry frequency 1
// plus one for each relationship they participate in, so that well-connected
// entities rank higher, mirroring how repeated terms rank in the
// deterministic path.
func MergeExtraction(ex *types.Extraction) []types.Concept {
	if ex == nil || len(ex.Entities) == 0 {
		return nil
	}

	mentions := make(map[string]int, len(ex.Entities))
	for _, rel := range ex.Relationships {
		mentions[strings.ToLower(rel.Source)]++
		mentions[strings.ToLower(rel.Target)]++
	}

	seen := make(map[string]struct{}, len(ex.Entities))
	concepts := make([]types.Concept, 0, len(ex.Entities))
	for _, ent := range ex.Entities {
		name := strings.ToLower(strings.TrimSpace(ent.Name))
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		concepts = append(concepts, types.Concept{
			Name:        name,
			Type:        ent.Type,
			Description: ent.Description,
			Frequency:   1 + mentions[name],
		})
	}

	sortByFrequency(concepts)
	return concepts
}
