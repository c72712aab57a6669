package registry

import "github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/models"

// EvictionPolicy decides when a registry entry is stale enough to
// drop. Checked after every snapshot application.
type EvictionPolicy interface {
	Expired(ev *models.Event, currentGeneration uint64) bool
}

// NoEviction keeps every entry for the life of the process.
type NoEviction struct{}

func (NoEviction) Expired(*models.Event, uint64) bool { return false }

// GenerationEviction drops events not refreshed within MaxAge
// snapshot generations. The feed re-lists every live event in each
// directory frame, so an unrefreshed entry has finished or vanished.
type GenerationEviction struct {
	MaxAge uint64
}

func (p GenerationEviction) Expired(ev *models.Event, currentGeneration uint64) bool {
	if p.MaxAge == 0 {
		return false
	}
	return currentGeneration-ev.Generation > p.MaxAge
}
