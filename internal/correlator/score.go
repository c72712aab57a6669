package correlator

import (
	"strings"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/models"
)

// Scoring weights and thresholds. Tunable policy constants: the values
// trade recall for zero cross-event contamination, because a quote
// assigned to the wrong event turns into a wager on the wrong game.
const (
	scoreFullName    = 10 // per side, full normalized team name found in text
	scoreKeywords    = 8  // per side, stopword-stripped keyword string found
	scoreShortToken  = 5  // per matched short-name token
	scoreFullPattern = 20 // "home vs away" (either order) found verbatim
	scoreBothSides   = 15 // both sides independently detected

	// AcceptThreshold is the minimum score for a multi-event channel
	// assignment.
	AcceptThreshold = 15
)

// sideMatch describes how one team matched against the quote text.
type sideMatch struct {
	full     bool
	keywords bool
	tokens   int
}

func (m sideMatch) present() bool { return m.full || m.keywords || m.tokens > 0 }

func matchSide(info, fullName, keywords string, short []string) sideMatch {
	var m sideMatch
	if fullName != "" && strings.Contains(info, fullName) {
		m.full = true
	}
	if keywords != "" && strings.Contains(info, keywords) {
		m.keywords = true
	}
	for _, tok := range short {
		if strings.Contains(info, tok) {
			m.tokens++
		}
	}
	return m
}

// ScoreEvent scores one candidate event against normalized quote text.
func ScoreEvent(info string, ev *models.Event) int {
	home := matchSide(info, ev.HomeNorm, ev.HomeKeywords, ev.HomeShort)
	away := matchSide(info, ev.AwayNorm, ev.AwayKeywords, ev.AwayShort)

	score := 0
	if home.full {
		score += scoreFullName
	}
	if away.full {
		score += scoreFullName
	}
	if home.keywords {
		score += scoreKeywords
	}
	if away.keywords {
		score += scoreKeywords
	}
	score += (home.tokens + away.tokens) * scoreShortToken

	if containsPattern(info, ev) {
		score += scoreFullPattern
	}
	if home.present() && away.present() {
		score += scoreBothSides
	}
	return score
}

// ScoreCandidates picks the best-scoring candidate for the text. The
// first candidate wins ties, so channel registration order is the tie
// break. Returns (nil, 0) for an empty candidate set.
func ScoreCandidates(info string, candidates []*models.Event) (*models.Event, int) {
	var best *models.Event
	bestScore := 0
	for _, ev := range candidates {
		if s := ScoreEvent(info, ev); best == nil || s > bestScore {
			best = ev
			bestScore = s
		}
	}
	return best, bestScore
}

// TextMentionsBothSides reports whether the text names both teams of
// the event (full names or the full pattern). Used by the
// cross-channel rescue pass, which demands stronger evidence than
// in-channel scoring.
func TextMentionsBothSides(info string, ev *models.Event) bool {
	if containsPattern(info, ev) {
		return true
	}
	return ev.HomeNorm != "" && ev.AwayNorm != "" &&
		strings.Contains(info, ev.HomeNorm) && strings.Contains(info, ev.AwayNorm)
}

func containsPattern(info string, ev *models.Event) bool {
	if ev.HomeNorm == "" || ev.AwayNorm == "" {
		return false
	}
	if strings.Contains(info, ev.HomeNorm+" vs "+ev.AwayNorm) {
		return true
	}
	return strings.Contains(info, ev.AwayNorm+" vs "+ev.HomeNorm)
}

// matchesSingle is the acceptance test for a channel with exactly one
// live event: any reliable mention of either side is enough.
func matchesSingle(info string, ev *models.Event) bool {
	return matchSide(info, ev.HomeNorm, ev.HomeKeywords, ev.HomeShort).present() ||
		matchSide(info, ev.AwayNorm, ev.AwayKeywords, ev.AwayShort).present()
}
