package correlator

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/feed"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/logging"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/models"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/registry"
)

// Accepted identifier shapes. Anything else is a ghost line from the
// upstream feed and never becomes a quote.
var identifierShapes = []*regexp.Regexp{
	regexp.MustCompile(`^[0-9]+_p_[0-9]+`),
	regexp.MustCompile(`^[0-9]+_`),
	regexp.MustCompile(`^[0-9]+$`),
}

const minEventInfoLen = 3
const minIdentifierLen = 5

// Resolver assigns each raw proposal in a delta frame to exactly one
// live event, or drops it. Each Resolve call is an independent single
// pass over its input.
type Resolver struct {
	registry *registry.Registry
	diag     *logging.Throttle
}

// NewResolver creates a resolver reading the given registry.
func NewResolver(reg *registry.Registry) *Resolver {
	return &Resolver{
		registry: reg,
		diag:     logging.NewThrottle(10 * time.Second),
	}
}

// Resolve walks every channel batch in the frame and emits the quotes
// that survived attribution and ghost filtering. Per-channel proposal
// order is preserved; channels themselves are unordered.
func (r *Resolver) Resolve(msg *feed.Message) []models.Quote {
	var out []models.Quote
	for channelKey, batch := range msg.Channels {
		channelID, err := strconv.ParseInt(channelKey, 10, 64)
		if err != nil {
			r.diag.Debug("badchan:"+channelKey, "Delta batch with non-numeric channel key", "key", channelKey)
			continue
		}
		out = append(out, r.resolveChannel(channelID, batch)...)
	}
	return out
}

func (r *Resolver) resolveChannel(channelID int64, batch feed.ChannelDelta) []models.Quote {
	candidates := r.channelEvents(channelID)
	if len(candidates) == 0 {
		// Expected during warm-up, before the first snapshot frame.
		return nil
	}

	var out []models.Quote
	now := time.Now()
	for _, market := range batch.Markets {
		for _, group := range market.Groups {
			for _, p := range group.Proposals {
				if !validIdentifier(p.ProposalFkey) || p.Coeff == 0 {
					continue
				}
				ev := r.attribute(channelID, candidates, p.EventInfo)
				if ev == nil {
					continue
				}
				q := models.Quote{
					ID:        p.ProposalFkey,
					EventID:   ev.ID,
					ChannelID: channelID,
					Market:    firstNonEmpty(p.MarketInfo, market.MarketInfo),
					Selection: p.SelectionInfo,
					Param:     p.Param,
					Price:     p.Coeff,
					Decimal:   p.DecimalCoeff,
					PrevPrice: p.PrevCoeff,
					UpdatedAt: now,
				}
				out = append(out, q)
			}
		}
	}
	return out
}

// attribute picks the event a proposal belongs to, or nil to drop it.
func (r *Resolver) attribute(channelID int64, candidates []*models.Event, rawInfo string) *models.Event {
	info := models.NormalizeTeamName(rawInfo)
	if len(info) < minEventInfoLen {
		// Cannot be verified against any team name.
		return nil
	}

	if len(candidates) == 1 {
		if matchesSingle(info, candidates[0]) {
			return candidates[0]
		}
		// Never force-assign: an unverifiable quote on a single-event
		// channel is dropped outright, no cross-channel rescue.
		r.diag.Debug(fmt.Sprintf("unresolved:%d:%s", channelID, info),
			"Dropping unattributable quote", "channel", channelID, "event_info", info)
		return nil
	}

	best, score := ScoreCandidates(info, candidates)
	if best != nil && score >= AcceptThreshold {
		return best
	}

	// The channel hint can be stale relative to the live text: rescue
	// by looking for an event anywhere whose both sides appear.
	if ev := r.rescue(channelID, info); ev != nil {
		return ev
	}

	r.diag.Debug(fmt.Sprintf("unresolved:%d:%s", channelID, info),
		"Dropping unattributable quote", "channel", channelID, "event_info", info)
	return nil
}

func (r *Resolver) rescue(channelID int64, info string) *models.Event {
	for _, ev := range r.registry.Events() {
		if ev.ChannelID == channelID {
			continue
		}
		if TextMentionsBothSides(info, ev) {
			r.diag.Debug(fmt.Sprintf("rescue:%d", ev.ID),
				"Cross-channel reassignment", "from_channel", channelID, "event", ev.ID)
			return ev
		}
	}
	return nil
}

func (r *Resolver) channelEvents(channelID int64) []*models.Event {
	ids := r.registry.EventsForChannel(channelID)
	out := make([]*models.Event, 0, len(ids))
	for _, id := range ids {
		if ev, ok := r.registry.Event(id); ok {
			out = append(out, ev)
		}
	}
	return out
}

func validIdentifier(id string) bool {
	if len(id) < minIdentifierLen {
		return false
	}
	for _, shape := range identifierShapes {
		if shape.MatchString(id) {
			return true
		}
	}
	return false
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
