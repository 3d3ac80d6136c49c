// Package playlist implements the ordered MediaSourceHolder store and the
// default ShuffleOrder permutation (spec §4.3).
package playlist

import (
	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/timeline"
	"github.com/google/uuid"
)

// Holder owns one MediaSource plus a bit indicating whether it has been
// lazily prepared. A holder's identity is stable across position in the
// playlist: reordering moves holders, it never recreates them.
type Holder struct {
	// id is this holder's own stable identity, independent of the
	// MediaSource's internal period uid(s).
	id         uuid.UUID
	Source     capability.MediaSource
	UriTag     string
	Prepared   bool
	PeriodUid  timeline.PeriodUid
	LastKnown  timeline.Timeline // last real timeline reported by Source, if any
	HasReal    bool
	// PeriodSequence is the windowSequenceNumber assigned to this holder's
	// currently instantiated period, or zero if none has been created yet.
	// Repeated seeks into the same not-yet-prepared period reuse this value
	// rather than minting a fresh one (spec §8 invariant on windowSequenceNumber).
	PeriodSequence int64
}

// NewHolder wraps source, minting a fresh stable identity and period uid.
func NewHolder(source capability.MediaSource, uriTag string) *Holder {
	return &Holder{
		id:        uuid.New(),
		Source:    source,
		UriTag:    uriTag,
		PeriodUid: timeline.NewPeriodUid(),
	}
}

// Id reports the holder's own stable identity.
func (h *Holder) Id() uuid.UUID { return h.id }

// MaskedWindow returns the window this holder currently contributes to the
// facade's synthesized timeline: the last real window if one has arrived,
// otherwise a placeholder (spec §4.1).
func (h *Holder) MaskedWindow() (timeline.Window, timeline.Period) {
	if h.HasReal && len(h.LastKnown.Windows) > 0 {
		return h.LastKnown.Windows[0], h.LastKnown.Periods[0]
	}
	return timeline.PlaceholderWindow(h.UriTag), timeline.PlaceholderPeriod(h.PeriodUid)
}

// OnTimelineChanged records a real timeline reported by the underlying
// MediaSource for later masking and lookup.
func (h *Holder) OnTimelineChanged(tl timeline.Timeline) {
	h.LastKnown = tl
	h.HasReal = true
	if len(tl.Periods) > 0 {
		h.PeriodUid = tl.Periods[0].Uid
	}
}
