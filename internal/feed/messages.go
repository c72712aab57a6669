package feed

// Wire structures for the two message kinds the push feed carries.
// A single frame may hold a snapshot, a delta batch, both, or neither.

// Message is one decoded feed frame.
type Message struct {
	// LiveEvents is the event directory (snapshot) part, if present.
	LiveEvents []SnapshotRecord `json:"live_events,omitempty"`
	// Channels holds per-channel quote delta batches, if present.
	Channels map[string]ChannelDelta `json:"channels,omitempty"`
}

// HasSnapshot reports whether the frame carries an event directory.
func (m *Message) HasSnapshot() bool { return len(m.LiveEvents) > 0 }

// HasDeltas reports whether the frame carries quote deltas.
func (m *Message) HasDeltas() bool { return len(m.Channels) > 0 }

// SnapshotRecord is one live event entry in the directory.
type SnapshotRecord struct {
	EventFkey        int64  `json:"event_fkey"`
	ChannelFkey      int64  `json:"channel_fkey"`
	HomeTeamName     string `json:"home_team_name"`
	AwayTeamName     string `json:"away_team_name"`
	HomeScore        int    `json:"home_score"`
	AwayScore        int    `json:"away_score"`
	StatusNote       string `json:"status_note"`
	SportClassifier  int    `json:"sport_classifier"`
	EstimatedMarkets int    `json:"estimated_markets"`
}

// ChannelDelta is the market tree for one channel in a delta frame.
type ChannelDelta struct {
	Markets []Market `json:"markets"`
}

// Market groups proposals under one market heading.
type Market struct {
	MarketInfo string  `json:"market_info"`
	Groups     []Group `json:"groups"`
}

// Group is one proposal group inside a market.
type Group struct {
	GroupInfo string     `json:"group_info"`
	Proposals []Proposal `json:"proposals"`
}

// Proposal is one raw price line as the provider sends it. All the
// *_info fields are free text; only proposal_fkey and coeff are
// machine-reliable, and even the fkey is reused across lines.
type Proposal struct {
	ProposalFkey  string  `json:"proposal_fkey"`
	Coeff         int     `json:"coeff"`
	DecimalCoeff  float64 `json:"decimal_coeff"`
	PrevCoeff     int     `json:"prev_coeff"`
	EventInfo     string  `json:"event_info"`
	MarketInfo    string  `json:"market_info"`
	SelectionInfo string  `json:"selection_info"`
	Param         string  `json:"param"`
}
