// Package timeline implements the Timeline/Window/Period data model (spec §3)
// and the masked-timeline synthesis the coordinator uses while a playlist
// mutation is in flight but its real timeline has not yet arrived (spec §4.1).
package timeline

import (
	"math"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// UnsetDuration marks a duration as not-yet-known, e.g. for a masked window.
const UnsetDuration = math.MinInt64

// PeriodUid is a stable opaque identity for one period, independent of its
// position in the playlist. A holder's period keeps its uid across reorders.
type PeriodUid struct {
	value uuid.UUID
}

// NewPeriodUid mints a fresh opaque period identity.
func NewPeriodUid() PeriodUid {
	return PeriodUid{value: uuid.New()}
}

func (p PeriodUid) String() string { return p.value.String() }

func (p PeriodUid) Equal(other PeriodUid) bool { return p.value == other.value }

// Period is a contiguous media region with a stable identity.
type Period struct {
	Uid               PeriodUid
	DurationUs        int64
	PositionInWindowUs int64
	IsPlaceholder     bool // ad-playback state stand-in: true while not yet resolved
}

// Window is a user-facing unit that may contain multiple periods (ad breaks).
type Window struct {
	IsSeekable            bool
	IsDynamic             bool
	DefaultPositionUs     int64
	DurationUs            int64
	FirstPeriodIndex      int
	LastPeriodIndex       int
	PositionInFirstPeriod int64
	UriTag                string // opaque identity used by resume persistence; not part of equality
}

// Timeline is a finite ordered sequence of windows, each decomposed into one
// or more periods.
type Timeline struct {
	Windows []Window
	Periods []Period
}

// Empty is the canonical empty timeline returned by ClearMediaItems and by a
// facade that has never received a playlist.
var Empty = Timeline{}

func (t Timeline) WindowCount() int { return len(t.Windows) }
func (t Timeline) PeriodCount() int { return len(t.Periods) }
func (t Timeline) IsEmpty() bool    { return len(t.Windows) == 0 }

// WindowIndexForPeriod returns the window index owning periodIndex.
func (t Timeline) WindowIndexForPeriod(periodIndex int) int {
	for i, w := range t.Windows {
		if periodIndex >= w.FirstPeriodIndex && periodIndex <= w.LastPeriodIndex {
			return i
		}
	}
	return -1
}

// PeriodIndexForUid returns the index of the period carrying uid, or -1.
func (t Timeline) PeriodIndexForUid(uid PeriodUid) int {
	for i, p := range t.Periods {
		if p.Uid.Equal(uid) {
			return i
		}
	}
	return -1
}

// WindowAt returns the window at index together with whether it exists.
func (t Timeline) WindowAt(index int) (Window, bool) {
	if index < 0 || index >= len(t.Windows) {
		return Window{}, false
	}
	return t.Windows[index], true
}

// Equal reports whether two timelines have the same window/period count and
// matching per-window/per-period attributes. Uids are excluded, per spec §3 —
// this is the comparison listeners use to detect "same timeline" and decide
// whether a SOURCE_UPDATE onTimelineChanged should carry a distinct value.
func (t Timeline) Equal(other Timeline) bool {
	if len(t.Windows) != len(other.Windows) || len(t.Periods) != len(other.Periods) {
		return false
	}
	for i, w := range t.Windows {
		o := other.Windows[i]
		if w.IsSeekable != o.IsSeekable || w.IsDynamic != o.IsDynamic ||
			w.DefaultPositionUs != o.DefaultPositionUs || w.DurationUs != o.DurationUs ||
			w.FirstPeriodIndex != o.FirstPeriodIndex || w.LastPeriodIndex != o.LastPeriodIndex ||
			w.PositionInFirstPeriod != o.PositionInFirstPeriod {
			return false
		}
	}
	for i, p := range t.Periods {
		o := other.Periods[i]
		if p.DurationUs != o.DurationUs || p.PositionInWindowUs != o.PositionInWindowUs ||
			p.IsPlaceholder != o.IsPlaceholder {
			return false
		}
	}
	return true
}

// PlaceholderWindow synthesizes the masked window standing in for a holder
// whose real timeline has not yet arrived: not seekable, dynamic, unknown
// duration (spec §4.1).
func PlaceholderWindow(uriTag string) Window {
	return Window{
		IsSeekable:        false,
		IsDynamic:         true,
		DefaultPositionUs: 0,
		DurationUs:        UnsetDuration,
		UriTag:            uriTag,
	}
}

// PlaceholderPeriod synthesizes the single placeholder period backing a
// PlaceholderWindow.
func PlaceholderPeriod(uid PeriodUid) Period {
	return Period{Uid: uid, DurationUs: UnsetDuration, IsPlaceholder: true}
}

// MediaPeriodId identifies one instantiated period, disambiguating repeated
// plays of the same period (e.g. under repeat-all) via WindowSequenceNumber.
type MediaPeriodId struct {
	PeriodUid           PeriodUid
	WindowSequenceNumber int64
	AdGroupIndex        mo.Option[int]
	AdIndexInAdGroup    mo.Option[int]
}

func (id MediaPeriodId) IsAd() bool { return id.AdGroupIndex.IsPresent() }

func (id MediaPeriodId) Equal(other MediaPeriodId) bool {
	return id.PeriodUid.Equal(other.PeriodUid) &&
		id.WindowSequenceNumber == other.WindowSequenceNumber &&
		optionEqual(id.AdGroupIndex, other.AdGroupIndex) &&
		optionEqual(id.AdIndexInAdGroup, other.AdIndexInAdGroup)
}

func optionEqual(a, b mo.Option[int]) bool {
	if a.IsPresent() != b.IsPresent() {
		return false
	}
	if !a.IsPresent() {
		return true
	}
	return a.MustGet() == b.MustGet()
}

// SequenceGenerator produces strictly increasing WindowSequenceNumbers, one
// per created period instance, shared by the internal dispatcher across the
// lifetime of a coordinator.
type SequenceGenerator struct {
	next int64
}

func (g *SequenceGenerator) Next() int64 {
	g.next++
	return g.next
}
