package playlist

import (
	"fmt"

	"github.com/driftplay/player/timeline"
	"github.com/samber/lo"
)

// Playlist is the ordered sequence of Holders. The internal dispatcher holds
// the live copy and applies every mutation to it through command messages;
// the coordinator keeps no Playlist of its own.
type Playlist struct {
	holders []*Holder
	order   ShuffleOrder
}

// New returns an empty playlist with the given shuffle order implementation
// (or a DefaultShuffleOrder of length zero if order is nil).
func New(order ShuffleOrder) *Playlist {
	if order == nil {
		order = NewDefaultShuffleOrder(0)
	}
	return &Playlist{order: order}
}

func (p *Playlist) Len() int { return len(p.holders) }

func (p *Playlist) Holders() []*Holder { return p.holders }

func (p *Playlist) At(index int) (*Holder, bool) {
	if index < 0 || index >= len(p.holders) {
		return nil, false
	}
	return p.holders[index], true
}

func (p *Playlist) ShuffleOrder() ShuffleOrder { return p.order }

func (p *Playlist) SetShuffleOrder(order ShuffleOrder) error {
	if order.Length() != len(p.holders) {
		return fmt.Errorf("shuffle order length %d does not match playlist length %d", order.Length(), len(p.holders))
	}
	p.order = order
	return nil
}

// InsertRangeAt inserts holders at index (0 <= index <= Len()).
func (p *Playlist) InsertRangeAt(index int, holders []*Holder) error {
	if index < 0 || index > len(p.holders) {
		return fmt.Errorf("insert index %d out of range [0, %d]", index, len(p.holders))
	}
	p.holders = append(p.holders[:index:index], append(append([]*Holder{}, holders...), p.holders[index:]...)...)
	p.order = p.order.CloneAndInsert(index, len(holders))
	return nil
}

// RemoveRange removes the half-open range [from, to) and returns the removed
// holders.
func (p *Playlist) RemoveRange(from, to int) ([]*Holder, error) {
	if from < 0 || to > len(p.holders) || from > to {
		return nil, fmt.Errorf("invalid remove range [%d, %d) for length %d", from, to, len(p.holders))
	}
	removed := append([]*Holder{}, p.holders[from:to]...)
	p.holders = append(p.holders[:from:from], p.holders[to:]...)
	p.order = p.order.CloneAndRemove(from, to)
	return removed, nil
}

// MoveRange relocates [from, to) so its first element lands at newFrom,
// clamped to len-(to-from), preserving the relative order of moved and
// non-moved items (spec §4.1 move_media_items).
func (p *Playlist) MoveRange(from, to, newFrom int) error {
	if from < 0 || to > len(p.holders) || from > to {
		return fmt.Errorf("invalid move range [%d, %d) for length %d", from, to, len(p.holders))
	}
	count := to - from
	maxFrom := len(p.holders) - count
	if newFrom < 0 {
		newFrom = 0
	}
	if newFrom > maxFrom {
		newFrom = maxFrom
	}
	if newFrom == from {
		return nil
	}

	moved := append([]*Holder{}, p.holders[from:to]...)
	remaining := append(append([]*Holder{}, p.holders[:from]...), p.holders[to:]...)

	insertAt := newFrom
	if newFrom > from {
		// newFrom names where the moved block starts in the resulting list,
		// which is the same index into remaining, so no shift is needed.
		insertAt = newFrom
	}

	rebuilt := append([]*Holder{}, remaining[:insertAt]...)
	rebuilt = append(rebuilt, moved...)
	rebuilt = append(rebuilt, remaining[insertAt:]...)
	p.holders = rebuilt

	// The shuffle order is updated by removing the moved range and then
	// inserting count indices at insertAt; CloneAndInsert puts the inserted
	// indices at the end of the shuffled sequence, so the moved items do not
	// keep their earlier shuffle positions.
	p.order = p.order.CloneAndRemove(from, to)
	p.order = p.order.CloneAndInsert(insertAt, count)
	return nil
}

// ReplaceAll atomically replaces the entire playlist.
func (p *Playlist) ReplaceAll(holders []*Holder, order ShuffleOrder) {
	p.holders = append([]*Holder{}, holders...)
	if order == nil {
		order = NewDefaultShuffleOrder(len(holders))
	}
	p.order = order
}

// MaskedTimeline computes the synthetic timeline standing in for the
// playlist's current state: placeholder windows for unprepared holders, the
// last real timeline for already-prepared ones (spec §4.1).
func (p *Playlist) MaskedTimeline() timeline.Timeline {
	if len(p.holders) == 0 {
		return timeline.Empty
	}
	tl := timeline.Timeline{}
	for _, h := range p.holders {
		w, per := h.MaskedWindow()
		w.FirstPeriodIndex = len(tl.Periods)
		w.LastPeriodIndex = len(tl.Periods)
		tl.Windows = append(tl.Windows, w)
		tl.Periods = append(tl.Periods, per)
	}
	return tl
}

// HolderForPeriodUid returns the holder owning uid, if any.
func (p *Playlist) HolderForPeriodUid(uid timeline.PeriodUid) (*Holder, bool) {
	return lo.Find(p.holders, func(h *Holder) bool { return h.PeriodUid.Equal(uid) })
}

// Contains reports whether h is still part of this playlist — used by the
// internal dispatcher's suppression protocol (spec §4.2) to discard source
// updates for holders superseded by a later playlist replacement.
func (p *Playlist) Contains(h *Holder) bool {
	return lo.ContainsBy(p.holders, func(other *Holder) bool { return other.id == h.id })
}
