package docgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/soundprediction/docgraph/pkg/nlp"
	"github.com/soundprediction/docgraph/pkg/text"
	"github.com/soundprediction/docgraph/pkg/types"
)

// Retrieval limits.
const (
	localConceptLimit    = 15
	localDocumentLimit   = 5
	globalCommunityLimit = 10
	minSentenceChars     = 20
	minExcerptChars      = 30
	answerConceptLimit   = 5
)

// Indicator words steering automatic mode selection. Indicators of five or
// more characters also match as token prefixes so that plural and inflected
// forms ("trends", "patterns", "summarizing") count.
var (
	globalIndicators = []string{
		"overall", "general", "compare", "analyze", "overview",
		"summary", "summarize", "trend", "pattern", "theme", "landscape",
	}
	localIndicators = []string{
		"specific", "detail", "who", "what", "when", "where", "how", "which", "why",
	}
)

// Query answers a question against the graph. AutoMode (or an empty mode)
// picks global or local from indicator-word counts. Storage failures are
// reported as a user-facing Answer rather than an error; only an empty
// question is rejected outright.
func (c *Client) Query(ctx context.Context, question string, mode types.QueryMode) (*types.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, types.ErrEmptyQuery
	}

	resolved := mode
	if resolved == "" || resolved == types.AutoMode {
		resolved = c.chooseMode(question)
		c.logger.Debug("query mode selected", "mode", resolved)
	}

	if resolved == types.GlobalMode {
		return c.globalSearch(ctx, question), nil
	}
	return c.localSearch(ctx, question), nil
}

// chooseMode counts indicator-word hits on the raw token stream. Stop
// words are deliberately not filtered here: most local indicators (who,
// what, how) are stop words. Ties fall to local.
func (c *Client) chooseMode(question string) types.QueryMode {
	global, local := 0, 0
	for _, tok := range c.norm.Tokenize(question) {
		if matchesIndicator(tok, globalIndicators) {
			global++
		}
		if matchesIndicator(tok, localIndicators) {
			local++
		}
	}
	if global > local {
		return types.GlobalMode
	}
	return types.LocalMode
}

func matchesIndicator(token string, indicators []string) bool {
	for _, ind := range indicators {
		if token == ind {
			return true
		}
		if len(ind) >= 5 && strings.HasPrefix(token, ind) {
			return true
		}
	}
	return false
}

// localSearch finds concepts matching the question's key terms, the
// documents that mention them, and the best supporting sentence.
func (c *Client) localSearch(ctx context.Context, question string) *types.Answer {
	answer := &types.Answer{Mode: types.LocalMode}

	keyTerms := c.norm.Normalize(question)
	if len(keyTerms) == 0 {
		answer.Text = "Please ask a more specific question; the current one contains no searchable terms."
		return answer
	}

	concepts, err := c.store.FindConceptsBySubstring(ctx, keyTerms, localConceptLimit)
	if err != nil {
		return c.searchError(err, types.LocalMode)
	}
	if len(concepts) == 0 {
		// Older graphs predate description-bearing concept nodes; retry
		// against the simple name-word index.
		concepts, err = c.store.FindConceptsByIndex(ctx, keyTerms, localConceptLimit)
		if err != nil {
			return c.searchError(err, types.LocalMode)
		}
	}
	if len(concepts) == 0 {
		answer.Text = fmt.Sprintf("No concepts matching %s were found in the graph.",
			strings.Join(keyTerms, ", "))
		return answer
	}

	names := make([]string, len(concepts))
	for i, concept := range concepts {
		names[i] = concept.Name
	}
	answer.Concepts = names

	docs, err := c.store.FindDocumentsByConcepts(ctx, names, localDocumentLimit)
	if err != nil {
		return c.searchError(err, types.LocalMode)
	}
	for _, match := range docs {
		answer.Documents = append(answer.Documents, match.Document.Name)
	}

	excerpt, source := bestExcerpt(docs, keyTerms, names)
	if excerpt != "" {
		answer.Text = fmt.Sprintf("According to %s: %q This relates to %s.",
			source, excerpt+".", strings.Join(topNames(names, answerConceptLimit), ", "))
	} else {
		answer.Text = fmt.Sprintf("Found concepts related to your question: %s. No single passage addresses it directly.",
			strings.Join(topNames(names, answerConceptLimit), ", "))
	}
	return answer
}

// bestExcerpt scores every sentence of every matched document: +2 per key
// term present, +1 per matched concept name present, times 1.5 when the
// raw score exceeds 2. The highest-scoring sentence of at least
// minExcerptChars wins; earlier documents win ties since matches arrive in
// relevance order.
func bestExcerpt(matches []*types.DocumentMatch, keyTerms, conceptNames []string) (excerpt, source string) {
	var bestScore float64
	for _, match := range matches {
		for _, sentence := range text.Sentences(match.Document.Content, minSentenceChars) {
			lowered := strings.ToLower(sentence)
			score := 0.0
			for _, term := range keyTerms {
				if strings.Contains(lowered, term) {
					score += 2
				}
			}
			for _, name := range conceptNames {
				if strings.Contains(lowered, name) {
					score++
				}
			}
			if score > 2 {
				score *= 1.5
			}
			if score > bestScore && len(sentence) >= minExcerptChars {
				bestScore = score
				excerpt = sentence
				source = match.Document.Name
			}
		}
	}
	return excerpt, source
}

// globalSearch answers from community-level aggregates. Communities are
// recomputed on demand when none exist yet.
func (c *Client) globalSearch(ctx context.Context, question string) *types.Answer {
	answer := &types.Answer{Mode: types.GlobalMode}

	communities, err := c.store.ListCommunities(ctx, globalCommunityLimit)
	if err != nil {
		return c.searchError(err, types.GlobalMode)
	}
	if len(communities) == 0 {
		if _, err := c.detector.Detect(ctx); err != nil {
			c.logger.Warn("on-demand community detection failed", "error", err)
		}
		communities, err = c.store.ListCommunities(ctx, globalCommunityLimit)
		if err != nil {
			return c.searchError(err, types.GlobalMode)
		}
	}
	if len(communities) == 0 {
		answer.Text = "The graph is empty. Ingest some documents before asking for an overview."
		return answer
	}

	for _, summary := range communities {
		answer.Concepts = append(answer.Concepts, summary.Label)
	}

	if c.enricher != nil {
		synthesized, err := c.enricher.SummarizeCommunities(ctx, question, communities)
		if err == nil && strings.TrimSpace(synthesized) != "" {
			answer.Text = strings.TrimSpace(synthesized)
			return answer
		}
		if err != nil && !errors.Is(err, nlp.ErrUnavailable) {
			c.logger.Warn("community summarization failed, using deterministic summary", "error", err)
		}
	}

	answer.Text = describeCommunities(communities)
	return answer
}

// describeCommunities renders a deterministic community listing for
// enrichment-free global answers.
func describeCommunities(communities []*types.CommunitySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The corpus organizes into %d thematic clusters.", len(communities))
	for _, summary := range communities {
		members := topNames(summary.Members, answerConceptLimit)
		if len(members) == 0 {
			fmt.Fprintf(&b, " %s holds %d concepts.", summary.Label, summary.Size)
			continue
		}
		fmt.Fprintf(&b, " %s (%d concepts) covers %s.",
			summary.Label, summary.Size, strings.Join(members, ", "))
	}
	return b.String()
}

func (c *Client) searchError(err error, mode types.QueryMode) *types.Answer {
	c.logger.Error("graph search failed", "mode", mode, "error", err)
	return &types.Answer{
		Mode: mode,
		Text: "An error occurred while searching the graph. Please try again.",
	}
}

func topNames(names []string, n int) []string {
	if len(names) > n {
		return names[:n]
	}
	return names
}
