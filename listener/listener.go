// Package listener implements the coordinator's event dispatch: a
// copy-on-write set of registered listeners, notified via a deque of queued
// events drained in FIFO order with a fixed sub-event ordering within each
// event (spec §4.4).
package listener

import (
	"sync"

	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/timeline"
	"github.com/driftplay/player/util"
)

// Listener receives playback events. Every method has a default no-op
// embedding via BaseListener so callers only implement what they need.
type Listener interface {
	OnTimelineChanged(tl timeline.Timeline, reason TimelineChangeReason)
	OnPositionDiscontinuity(oldId, newId timeline.MediaPeriodId, reason DiscontinuityReason)
	OnPlayerError(err *playback.Error)
	OnTracksChanged(tracks capability.TrackGroupArray, selection capability.TrackSelectorResult)
	OnLoadingChanged(isLoading bool)
	OnPlayerStateChanged(playWhenReady bool, state playback.State)
	OnIsPlayingChanged(isPlaying bool)
	OnSeekProcessed()
}

// TimelineChangeReason distinguishes a facade-driven playlist mutation from
// the internal dispatcher later reporting the real timeline it resolved the
// mutation to (spec §6).
type TimelineChangeReason int

const (
	TimelineChangePlaylistChanged TimelineChangeReason = iota
	TimelineChangeSourceUpdate
)

// DiscontinuityReason distinguishes why the playback position jumped.
type DiscontinuityReason int

const (
	DiscontinuitySeek DiscontinuityReason = iota
	DiscontinuityPeriodTransition
	DiscontinuityInternal
	DiscontinuitySeekAdjustment
	DiscontinuityAdInsertion
)

// BaseListener is embedded by listeners that only care about a subset of
// events; embedders override the methods they need.
type BaseListener struct{}

func (BaseListener) OnTimelineChanged(timeline.Timeline, TimelineChangeReason)              {}
func (BaseListener) OnPositionDiscontinuity(timeline.MediaPeriodId, timeline.MediaPeriodId, DiscontinuityReason) {}
func (BaseListener) OnPlayerError(*playback.Error)                                          {}
func (BaseListener) OnTracksChanged(capability.TrackGroupArray, capability.TrackSelectorResult) {}
func (BaseListener) OnLoadingChanged(bool)                                                  {}
func (BaseListener) OnPlayerStateChanged(bool, playback.State)                              {}
func (BaseListener) OnIsPlayingChanged(bool)                                                {}
func (BaseListener) OnSeekProcessed()                                                       {}

// event is one queued notification pass: a closure capturing the specific
// sub-events to fire against a snapshot of the listener set, in fixed order.
type event func(l Listener)

// Registry is the copy-on-write listener set plus its pending event deque.
// Mutating the set (Add/Remove) never affects a notification pass already in
// progress; each pass iterates the snapshot taken when it is dispatched, so a
// mutation takes effect from the next dispatched event on.
type Registry struct {
	mu        sync.Mutex
	listeners []Listener
	pending   util.Stack[event]
	dispatching bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Add registers l. Safe to call while a dispatch is in progress; the new
// listener is not given the event currently being delivered, but does
// receive events that are queued and not yet dispatched.
func (r *Registry) Add(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Listener, len(r.listeners), len(r.listeners)+1)
	copy(next, r.listeners)
	r.listeners = append(next, l)
}

// Remove unregisters l.
func (r *Registry) Remove(l Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	next := make([]Listener, 0, len(r.listeners))
	for _, existing := range r.listeners {
		if existing != l {
			next = append(next, existing)
		}
	}
	r.listeners = next
}

func (r *Registry) snapshot() []Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listeners
}

// enqueue pushes a single sub-event and, if no dispatch is already draining
// the deque, drains it now. Re-entrant calls from inside a listener callback
// just push onto the deque and return — the outer drain loop picks them up,
// which is what keeps re-entrant Queue* calls from re-ordering or recursing.
func (r *Registry) enqueue(e event) {
	r.mu.Lock()
	alreadyDispatching := r.dispatching
	r.pending.Push(e)
	if alreadyDispatching {
		r.mu.Unlock()
		return
	}
	r.dispatching = true
	r.mu.Unlock()

	for {
		r.mu.Lock()
		if r.pending.Len() == 0 {
			r.dispatching = false
			r.mu.Unlock()
			return
		}
		// FIFO: the deque is a Stack keyed by push order within one flush,
		// drained oldest-first by popping in reverse of arrival.
		var batch []event
		for r.pending.Len() > 0 {
			batch = append(batch, r.pending.Pop())
		}
		r.mu.Unlock()

		for i := len(batch) - 1; i >= 0; i-- {
			next := batch[i]
			for _, l := range r.snapshot() {
				next(l)
			}
		}
	}
}

// QueueTimelineChanged enqueues an onTimelineChanged notification.
func (r *Registry) QueueTimelineChanged(tl timeline.Timeline, reason TimelineChangeReason) {
	r.enqueue(func(l Listener) { l.OnTimelineChanged(tl, reason) })
}

// QueuePositionDiscontinuity enqueues an onPositionDiscontinuity notification.
func (r *Registry) QueuePositionDiscontinuity(oldId, newId timeline.MediaPeriodId, reason DiscontinuityReason) {
	r.enqueue(func(l Listener) { l.OnPositionDiscontinuity(oldId, newId, reason) })
}

// QueuePlayerError enqueues an onPlayerError notification.
func (r *Registry) QueuePlayerError(err *playback.Error) {
	r.enqueue(func(l Listener) { l.OnPlayerError(err) })
}

// QueueTracksChanged enqueues an onTracksChanged notification.
func (r *Registry) QueueTracksChanged(tracks capability.TrackGroupArray, selection capability.TrackSelectorResult) {
	r.enqueue(func(l Listener) { l.OnTracksChanged(tracks, selection) })
}

// QueueLoadingChanged enqueues an onLoadingChanged notification.
func (r *Registry) QueueLoadingChanged(isLoading bool) {
	r.enqueue(func(l Listener) { l.OnLoadingChanged(isLoading) })
}

// QueuePlayerStateChanged enqueues an onPlayerStateChanged notification.
func (r *Registry) QueuePlayerStateChanged(playWhenReady bool, state playback.State) {
	r.enqueue(func(l Listener) { l.OnPlayerStateChanged(playWhenReady, state) })
}

// QueueIsPlayingChanged enqueues an onIsPlayingChanged notification.
func (r *Registry) QueueIsPlayingChanged(isPlaying bool) {
	r.enqueue(func(l Listener) { l.OnIsPlayingChanged(isPlaying) })
}

// QueueSeekProcessed enqueues an onSeekProcessed notification.
func (r *Registry) QueueSeekProcessed() {
	r.enqueue(func(l Listener) { l.OnSeekProcessed() })
}

// Flush publishes a full update in the fixed sub-event order required by
// spec §4.4: timeline, discontinuity (if any), error (if any), tracks (if
// changed), loading, state, isPlaying, then seek-processed (if requested).
// Passing a zero-value field for any optional sub-event skips it via the
// corresponding has* flag.
type Update struct {
	Timeline             timeline.Timeline
	TimelineChangeReason TimelineChangeReason
	HasTimeline          bool
	DiscontinuityOld     timeline.MediaPeriodId
	DiscontinuityNew     timeline.MediaPeriodId
	DiscontinuityReason  DiscontinuityReason
	HasDiscontinuity     bool
	Error                *playback.Error
	HasError             bool
	Tracks               capability.TrackGroupArray
	Selection            capability.TrackSelectorResult
	HasTracks            bool
	IsLoading            bool
	HasLoading           bool
	PlayWhenReady        bool
	State                playback.State
	HasStateChange       bool
	IsPlaying            bool
	HasIsPlayingChange   bool
	HasSeekProcessed     bool
}

// Flush queues every sub-event present on u, each as its own deque entry but
// all enqueued before the drain loop can interleave with another goroutine's
// Flush, preserving the fixed order within this update.
func (r *Registry) Flush(u Update) {
	if u.HasTimeline {
		r.QueueTimelineChanged(u.Timeline, u.TimelineChangeReason)
	}
	if u.HasDiscontinuity {
		r.QueuePositionDiscontinuity(u.DiscontinuityOld, u.DiscontinuityNew, u.DiscontinuityReason)
	}
	if u.HasError {
		r.QueuePlayerError(u.Error)
	}
	if u.HasTracks {
		r.QueueTracksChanged(u.Tracks, u.Selection)
	}
	if u.HasLoading {
		r.QueueLoadingChanged(u.IsLoading)
	}
	if u.HasStateChange {
		r.QueuePlayerStateChanged(u.PlayWhenReady, u.State)
	}
	if u.HasIsPlayingChange {
		r.QueueIsPlayingChanged(u.IsPlaying)
	}
	if u.HasSeekProcessed {
		r.QueueSeekProcessed()
	}
}
