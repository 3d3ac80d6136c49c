package listener

import (
	"testing"

	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

// recordingListener embeds BaseListener and records the order of sub-events
// it receives, plus its own Add/Remove re-entrant behavior for the deque
// draining tests.
type recordingListener struct {
	BaseListener
	calls  *[]string
	onCall func()
}

func (l *recordingListener) OnTimelineChanged(timeline.Timeline, TimelineChangeReason) {
	*l.calls = append(*l.calls, "timeline")
	if l.onCall != nil {
		l.onCall()
	}
}
func (l *recordingListener) OnPositionDiscontinuity(timeline.MediaPeriodId, timeline.MediaPeriodId, DiscontinuityReason) {
	*l.calls = append(*l.calls, "discontinuity")
}
func (l *recordingListener) OnPlayerError(*playback.Error) {
	*l.calls = append(*l.calls, "error")
}

func TestRegistryOrdering(t *testing.T) {
	Convey("Registry.Flush", t, func() {
		r := New()
		var calls []string
		l := &recordingListener{calls: &calls}
		r.Add(l)

		r.Flush(Update{
			HasTimeline:      true,
			HasDiscontinuity: true,
			HasError:         true,
			HasLoading:       true,
			HasStateChange:   true,
			Error:            &playback.Error{Kind: playback.ErrorKindSource},
			State:            playback.StateReady,
		})

		Convey("Should fire sub-events in the fixed order", func() {
			So(calls, ShouldResemble, []string{"timeline", "discontinuity", "error"})
		})
	})
}

func TestRegistryAddRemove(t *testing.T) {
	Convey("Registry.Add/Remove", t, func() {
		r := New()
		var calls []string
		l := &recordingListener{calls: &calls}

		r.Add(l)
		r.QueueSeekProcessed()
		So(len(calls), ShouldEqual, 0) // recordingListener ignores OnSeekProcessed

		r.Remove(l)
		r.QueueTimelineChanged(timeline.Empty, TimelineChangePlaylistChanged)
		So(calls, ShouldBeEmpty)
	})
}

func TestRegistryReentrant(t *testing.T) {
	Convey("Registry re-entrant Queue calls", t, func() {
		r := New()
		var calls []string
		inner := &recordingListener{calls: &calls}
		r.Add(inner)

		outer := &recordingListener{calls: &calls, onCall: func() {
			// Re-entrant call from inside a dispatch: must not be delivered
			// out of order or cause recursion.
			r.QueuePlayerError(&playback.Error{Kind: playback.ErrorKindRenderer})
		}}
		r.Remove(inner)
		r.Add(outer)

		r.QueueTimelineChanged(timeline.Empty, TimelineChangePlaylistChanged)

		So(calls, ShouldResemble, []string{"timeline", "error"})
	})
}
