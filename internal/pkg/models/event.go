package models

// Event represents one live sporting contest known to the registry.
// All derived name fields are computed once on snapshot application so
// the correlator's hot path never re-normalizes.
type Event struct {
	ID          int64  `json:"id"`
	ChannelID   int64  `json:"channel_id"`
	Home        string `json:"home"`
	Away        string `json:"away"`
	Score       string `json:"score"`
	Status      string `json:"status"`
	SportCode   int    `json:"sport_code"`
	MarketCount int    `json:"market_count"`

	// Derived lookup keys (normalized lowercase).
	HomeNorm     string   `json:"-"`
	AwayNorm     string   `json:"-"`
	HomeKeywords string   `json:"-"`
	AwayKeywords string   `json:"-"`
	HomeShort    []string `json:"-"`
	AwayShort    []string `json:"-"`
	FullName     string   `json:"-"`

	// Generation is the registry snapshot generation that last refreshed
	// this event; used by the eviction policy.
	Generation uint64 `json:"-"`
}

// Derive fills all derived name fields from Home/Away.
func (e *Event) Derive() {
	e.HomeNorm = NormalizeTeamName(e.Home)
	e.AwayNorm = NormalizeTeamName(e.Away)
	e.HomeKeywords = KeywordString(e.HomeNorm)
	e.AwayKeywords = KeywordString(e.AwayNorm)
	e.HomeShort = ShortTokens(e.HomeNorm)
	e.AwayShort = ShortTokens(e.AwayNorm)
	e.FullName = e.HomeNorm + " vs " + e.AwayNorm
}
