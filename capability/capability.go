// Package capability defines the small interfaces the coordinator depends on
// but never implements: track selection, rendering, media sourcing, and the
// opaque collaborators (load control, bandwidth estimation, clock) consumed
// only by the internal playback thread.
package capability

import (
	"context"

	"github.com/driftplay/player/timeline"
)

// RepeatMode selects how the playlist wraps at its edges.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

func (m RepeatMode) String() string {
	switch m {
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "off"
	}
}

// MediaSource produces Timeline updates asynchronously for one playlist
// holder. Prepare is called once per holder; CreatePeriod/ReleasePeriod
// bracket the lifetime of a single instantiated MediaPeriodId.
type MediaSource interface {
	// Prepare begins preparation and arranges for onTimelineChanged to be
	// invoked (possibly more than once) as real timeline information arrives.
	Prepare(ctx context.Context, onTimelineChanged func(timeline.Timeline)) error
	// MaybeThrowSourceError surfaces a fatal preparation error, if any is pending.
	MaybeThrowSourceError() error
	// CreatePeriod instantiates the media period identified by id.
	CreatePeriod(id timeline.MediaPeriodId) (MediaPeriod, error)
	// ReleasePeriod releases resources associated with a previously created period.
	ReleasePeriod(p MediaPeriod)
	// Release tears down the source entirely.
	Release()
}

// MediaPeriod is an opaque handle to one instantiated period of media.
type MediaPeriod interface {
	PeriodUid() timeline.PeriodUid
}

// TrackGroupArray and TrackSelectorResult are opaque payloads threaded through
// PlaybackInfo.Tracks/Selection. The coordinator never inspects their contents.
type TrackGroupArray struct {
	Groups []TrackGroup
}

type TrackGroup struct {
	Name string
}

type TrackSelectorResult struct {
	Selections []int
}

// Renderer consumes one track type (audio, video, text, ...) of decoded output.
type Renderer interface {
	TrackType() string
	SupportsFormat(format string) bool
	Enable() error
	Start() error
	Stop() error
	Disable() error
	ResetPosition(positionUs int64) error
	IsEnded() bool
	// HandleMessage accepts at minimum SET_SURFACE; unknown message types
	// are ignored rather than erroring, matching renderer message semantics.
	HandleMessage(messageType int, payload any) error
}

const SetSurfaceMessageType = 1

// TrackSelector chooses, for a given period, which renderer gets which track.
type TrackSelector interface {
	SelectTracks(renderers []Renderer, groups TrackGroupArray, id timeline.MediaPeriodId, tl timeline.Timeline) (TrackSelectorResult, error)
	OnSelectionActivated(info any)
}

// ShuffleOrder is a permutation over playlist indices, cloneable under
// insertion/removal so its length always tracks the playlist length.
type ShuffleOrder interface {
	Length() int
	NextIndex(current int, mode RepeatMode) int
	PreviousIndex(current int, mode RepeatMode) int
	FirstIndex() int
	LastIndex() int
	CloneAndInsert(at, count int) ShuffleOrder
	CloneAndRemove(from, to int) ShuffleOrder
}

// LoadControl, BandwidthMeter, and Clock are consumed opaquely by the
// internal thread; the coordinator never calls into them directly.
type LoadControl interface {
	ShouldContinueLoading(bufferedDurationUs int64) bool
}

type BandwidthMeter interface {
	EstimateBitrate() int64
}

type Clock interface {
	NowMs() int64
}
