package models

import (
	"fmt"
	"time"
)

// Quote is one price proposal resolved to a live event. Immutable once
// emitted; a later proposal with the same selection identifier
// supersedes it in the store.
type Quote struct {
	// ID is the provider's selection identifier (proposal key).
	ID        string  `json:"id"`
	EventID   int64   `json:"event_id"`
	ChannelID int64   `json:"channel_id"`
	Market    string  `json:"market"`
	Selection string  `json:"selection"`
	Param     string  `json:"param"`
	Price     int     `json:"price"` // American odds, signed
	Decimal   float64 `json:"decimal"`
	PrevPrice int     `json:"prev_price"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the composite uniqueness key. Provider identifiers are
// not unique across logically different lines, so the key folds in the
// price and truncated free text.
func (q *Quote) Key() string {
	return fmt.Sprintf("%s|%d|%s|%s", q.ID, q.Price, truncate(q.Selection, 16), truncate(q.Param, 8))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
