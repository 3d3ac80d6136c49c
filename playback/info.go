// Package playback defines the authoritative playback snapshot (spec §3's
// PlaybackInfo, named Info here) produced by the internal dispatcher and
// owned by the coordinator.
package playback

import (
	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/timeline"
	"github.com/samber/mo"
)

// State is the coordinator's playback state machine position (spec §4.6).
type State int

const (
	StateIdle State = iota
	StateBuffering
	StateReady
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateBuffering:
		return "BUFFERING"
	case StateReady:
		return "READY"
	case StateEnded:
		return "ENDED"
	default:
		return "IDLE"
	}
}

// ErrorKind distinguishes the taxonomy of spec §7.
type ErrorKind int

const (
	ErrorKindSource ErrorKind = iota
	ErrorKindRenderer
	ErrorKindUnexpectedState
)

// Error wraps a playback-time failure that travels through Info rather than
// being returned synchronously from a facade call.
type Error struct {
	Kind  ErrorKind
	Cause error
}

func (e *Error) Error() string {
	if e == nil || e.Cause == nil {
		return "playback error"
	}
	return e.Cause.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Info is the immutable, authoritative playback snapshot. Every change
// produces a fresh value; it is produced only by the internal dispatcher and
// consumed only by the coordinator.
type Info struct {
	Timeline                timeline.Timeline
	PeriodId                timeline.MediaPeriodId
	PositionUs              int64
	ContentPositionUs       int64
	State                   State
	PlaybackError           *Error
	IsLoading               bool
	Tracks                  capability.TrackGroupArray
	Selection               capability.TrackSelectorResult
	LoadingPeriodId         mo.Option[timeline.MediaPeriodId]
	BufferedPositionUs      int64
	TotalBufferedDurationUs int64
	PlayWhenReady           bool
	IsPlaying               bool
}

// Dummy is the placeholder Info a coordinator starts with before its first
// command is ever acked.
func Dummy() Info {
	return Info{
		Timeline:          timeline.Empty,
		State:             StateIdle,
		LoadingPeriodId:   mo.None[timeline.MediaPeriodId](),
	}
}

// WithTimeline returns a copy of info with a replaced Timeline, leaving
// everything else untouched — Info values are never mutated in place.
func (info Info) WithTimeline(tl timeline.Timeline) Info {
	info.Timeline = tl
	return info
}

// WithState returns a copy of info transitioned to state.
func (info Info) WithState(state State) Info {
	info.State = state
	return info
}

// WithError returns a copy of info carrying err and forced to StateIdle,
// per spec §4.7/§7: a playback error always drives the state machine to IDLE.
func (info Info) WithError(err *Error) Info {
	info.PlaybackError = err
	if err != nil {
		info.State = StateIdle
	}
	return info
}

// ClearError returns a copy of info with PlaybackError cleared, used once a
// successful Prepare transitions away from IDLE.
func (info Info) ClearError() Info {
	info.PlaybackError = nil
	return info
}
