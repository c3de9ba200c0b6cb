package text

import "strings"

// suffixRules are applied in order; the first matching rule wins. Each rule
// strips a suffix and appends a replacement, subject to a minimum remaining
// stem length. This is intentionally cruder than a full Porter stemmer; the
// goal is a deterministic canonical form, not linguistic correctness.
var suffixRules = []struct {
	suffix  string
	replace string
	minStem int
}{
	{"ization", "ize", 3},
	{"ational", "ate", 3},
	{"fulness", "ful", 3},
	{"ousness", "ous", 3},
	{"iveness", "ive", 3},
	{"tional", "tion", 3},
	{"biliti", "ble", 3},
	{"ements", "ement", 2},
	{"ations", "ation", 2},
	{"ically", "ic", 3},
	{"ities", "ity", 3},
	{"ingly", "e", 4},
	{"edly", "e", 4},
	{"ies", "y", 3},
	{"ing", "", 4},
	{"ed", "", 4},
	{"ly", "", 4},
	{"es", "", 4},
	{"s", "", 4},
}

// Stem reduces a lower-cased token to a canonical root by suffix stripping.
// Stemming is idempotent for the suffixes handled here only in the sense
// that re-stemming an already short stem is a no-op; callers should stem
// exactly once per token.
func Stem(token string) string {
	if len(token) <= 4 {
		return token
	}
	for _, rule := range suffixRules {
		if !strings.HasSuffix(token, rule.suffix) {
			continue
		}
		stem := token[:len(token)-len(rule.suffix)]
		if len(stem) < rule.minStem {
			continue
		}
		// "ss" is not a plural; leave it alone.
		if rule.suffix == "s" && strings.HasSuffix(token, "ss") {
			continue
		}
		return stem + rule.replace
	}
	return token
}
