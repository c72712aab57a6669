package models

import (
	"strings"
)

// Stopwords carried by US college/team naming that add no signal when
// matching free text against a team name. Tunable policy, not law.
var teamStopwords = map[string]struct{}{
	"state":      {},
	"university": {},
	"univ":       {},
	"college":    {},
	"tech":       {},
	"st":         {},
	"u":          {},
	"of":         {},
	"the":        {},
}

// NormalizeTeamName lowercases, trims and collapses whitespace.
// Feed text and snapshot names go through the same function so lookups
// compare like with like.
func NormalizeTeamName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// KeywordString strips stopwords and short tokens (<=2 chars) from a
// normalized name and joins what is left. Empty result means the name
// carries no usable keywords (e.g. "U of St").
func KeywordString(norm string) string {
	var kept []string
	for _, tok := range strings.Fields(norm) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := teamStopwords[tok]; stop {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " ")
}

// ShortTokens returns the first two significant tokens of a normalized
// name, used for cheap partial matching ("ohio state buckeyes" ->
// ["ohio", "buckeyes"]). Significant means the same filter KeywordString
// applies: a bare stopword like "state" substring-matches far too much
// unrelated college text to be worth 5 points per hit.
func ShortTokens(norm string) []string {
	var out []string
	for _, tok := range strings.Fields(norm) {
		if len(tok) <= 2 {
			continue
		}
		if _, stop := teamStopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
		if len(out) == 2 {
			break
		}
	}
	return out
}
