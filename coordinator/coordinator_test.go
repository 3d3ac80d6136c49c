package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/engine"
	"github.com/driftplay/player/listener"
	"github.com/driftplay/player/message"
	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/playlist"
	"github.com/driftplay/player/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func newTarget(windowIndex int, positionMs int64) message.Target {
	return message.Target{WindowIndex: windowIndex, PositionMs: positionMs}
}

// funcListener embeds listener.BaseListener and forwards onTimeline calls to
// a test-supplied callback, leaving every other sub-event a no-op.
type funcListener struct {
	listener.BaseListener
	onTimeline func()
}

func (l *funcListener) OnTimelineChanged(timeline.Timeline, listener.TimelineChangeReason) {
	if l.onTimeline != nil {
		l.onTimeline()
	}
}

// fakeSource reports a fixed-duration, single-window timeline shortly after
// Prepare is called, without touching any real media backend.
type fakeSource struct {
	durationUs int64
	prepareErr error
}

func (f *fakeSource) Prepare(ctx context.Context, onTimelineChanged func(timeline.Timeline)) error {
	if f.prepareErr != nil {
		return f.prepareErr
	}
	period := timeline.Period{Uid: timeline.NewPeriodUid(), DurationUs: f.durationUs}
	window := timeline.Window{IsSeekable: true, DurationUs: f.durationUs}
	onTimelineChanged(timeline.Timeline{Windows: []timeline.Window{window}, Periods: []timeline.Period{period}})
	return nil
}
func (f *fakeSource) MaybeThrowSourceError() error { return nil }
func (f *fakeSource) CreatePeriod(id timeline.MediaPeriodId) (capability.MediaPeriod, error) {
	return nil, nil
}
func (f *fakeSource) ReleasePeriod(capability.MediaPeriod) {}
func (f *fakeSource) Release()                             {}

func newItem(durationUs int64) *playlist.Holder {
	return playlist.NewHolder(&fakeSource{durationUs: durationUs}, "item")
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return cond()
}

func TestCoordinatorSetMediaItems(t *testing.T) {
	Convey("Coordinator.SetMediaItems", t, func() {
		c := New(nil)
		defer c.Release()

		Convey("An out-of-range start window should fail synchronously", func() {
			err := c.SetMediaItems([]*playlist.Holder{newItem(1000)}, 5, 0)
			var invalid *InvalidIndexError
			So(errors.As(err, &invalid), ShouldBeTrue)
		})

		Convey("Should immediately mask the timeline before the ack arrives", func() {
			items := []*playlist.Holder{newItem(1000), newItem(2000)}
			err := c.SetMediaItems(items, -1, 0)
			So(err, ShouldBeNil)
			So(c.Timeline().WindowCount(), ShouldEqual, 2)
		})

		Convey("An empty playlist should settle into ENDED", func() {
			err := c.SetMediaItems(nil, -1, 0)
			So(err, ShouldBeNil)
			ok := waitUntil(t, time.Second, func() bool {
				return c.currentState() == playback.StateEnded
			})
			So(ok, ShouldBeTrue)
		})
	})
}

func TestCoordinatorPrepare(t *testing.T) {
	Convey("Coordinator.Prepare", t, func() {
		c := New(nil)
		defer c.Release()

		Convey("Should move from IDLE to BUFFERING once a non-empty playlist is set", func() {
			So(c.SetMediaItems([]*playlist.Holder{newItem(1000)}, -1, 0), ShouldBeNil)
			waitUntil(t, time.Second, func() bool { return c.Timeline().WindowCount() == 1 })
			time.Sleep(20 * time.Millisecond) // let SetMediaItems' replace-all command land before Prepare checks the engine's playlist
			c.Prepare()
			ok := waitUntil(t, time.Second, func() bool {
				s := c.currentState()
				return s == playback.StateBuffering || s == playback.StateReady
			})
			So(ok, ShouldBeTrue)
		})

		Convey("Should be a no-op once already outside IDLE", func() {
			So(c.SetMediaItems([]*playlist.Holder{newItem(1000)}, -1, 0), ShouldBeNil)
			waitUntil(t, time.Second, func() bool { return c.Timeline().WindowCount() == 1 })
			time.Sleep(20 * time.Millisecond)
			c.Prepare()
			waitUntil(t, time.Second, func() bool { return c.currentState() != playback.StateIdle })
			stateBefore := c.currentState()
			c.Prepare()
			time.Sleep(10 * time.Millisecond)
			So(c.currentState(), ShouldEqual, stateBefore)
		})
	})
}

func TestCoordinatorSeekTo(t *testing.T) {
	Convey("Coordinator.SeekTo", t, func() {
		c := New(nil)
		defer c.Release()
		items := []*playlist.Holder{newItem(1000), newItem(2000)}
		So(c.SetMediaItems(items, -1, 0), ShouldBeNil)
		waitUntil(t, time.Second, func() bool { return c.Timeline().WindowCount() == 2 })

		Convey("Should reject a window index outside the current timeline", func() {
			err := c.SeekTo(5, 0)
			var illegal *IllegalSeekPositionError
			So(errors.As(err, &illegal), ShouldBeTrue)
		})

		Convey("Should mask the window index immediately", func() {
			err := c.SeekTo(1, 500)
			So(err, ShouldBeNil)
			So(c.CurrentWindowIndex(), ShouldEqual, 1)
		})
	})
}

func TestCoordinatorPlaylistMutation(t *testing.T) {
	Convey("Coordinator playlist mutation", t, func() {
		c := New(nil)
		defer c.Release()
		So(c.SetMediaItems([]*playlist.Holder{newItem(1000)}, -1, 0), ShouldBeNil)
		waitUntil(t, time.Second, func() bool { return c.Timeline().WindowCount() == 1 })
		time.Sleep(20 * time.Millisecond) // let the replace-all command land in the engine before mutating further

		Convey("AddMediaItems should reject an out-of-range index", func() {
			err := c.AddMediaItems(99, []*playlist.Holder{newItem(1000)})
			So(err, ShouldNotBeNil)
		})

		Convey("AddMediaItems should grow the masked timeline immediately", func() {
			err := c.AddMediaItems(1, []*playlist.Holder{newItem(1000)})
			So(err, ShouldBeNil)
			So(c.Timeline().WindowCount(), ShouldEqual, 2)
		})

		Convey("RemoveMediaItems should reject an invalid range", func() {
			err := c.RemoveMediaItems(1, 0)
			So(err, ShouldNotBeNil)
		})

		Convey("RemoveMediaItems should settle the timeline down to ENDED when emptied", func() {
			err := c.RemoveMediaItems(0, 1)
			So(err, ShouldBeNil)
			ok := waitUntil(t, time.Second, func() bool { return c.currentState() == playback.StateEnded })
			So(ok, ShouldBeTrue)
		})

		Convey("ClearMediaItems on an already-empty playlist should be a no-op", func() {
			So(c.RemoveMediaItems(0, 1), ShouldBeNil)
			waitUntil(t, time.Second, func() bool { return c.currentState() == playback.StateEnded })
			So(c.ClearMediaItems(), ShouldBeNil)
		})
	})
}

func TestInsertMasked(t *testing.T) {
	Convey("insertMasked", t, func() {
		base := maskedTimelineFor([]*playlist.Holder{newItem(1000), newItem(2000)})

		Convey("Should reindex every window's First/LastPeriodIndex to its post-splice offset", func() {
			tl := insertMasked(base, 1, []*playlist.Holder{newItem(500)})

			So(tl.WindowCount(), ShouldEqual, 3)
			for i, w := range tl.Windows {
				So(w.FirstPeriodIndex, ShouldEqual, i)
				So(w.LastPeriodIndex, ShouldEqual, i)
			}
			So(tl.WindowIndexForPeriod(2), ShouldEqual, 2)
			So(tl.PeriodIndexForUid(tl.Periods[2].Uid), ShouldEqual, 2)
		})
	})
}

func TestCoordinatorSetRepeatMode(t *testing.T) {
	Convey("Coordinator.SetRepeatMode", t, func() {
		c := New(nil)
		defer c.Release()

		Convey("Should be observed by the engine's CheckMessages/DueAt path", func() {
			c.SetRepeatMode(capability.RepeatAll)
			ok := waitUntil(t, time.Second, func() bool {
				var mode capability.RepeatMode
				<-c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
					mode = e.RepeatMode()
					return e.Info(), nil
				})
				return mode == capability.RepeatAll
			})
			So(ok, ShouldBeTrue)
		})
	})
}

func TestCoordinatorMessages(t *testing.T) {
	Convey("Coordinator.CreateMessage", t, func() {
		c := New(nil)
		defer c.Release()
		So(c.SetMediaItems([]*playlist.Holder{newItem(1000)}, -1, 0), ShouldBeNil)

		delivered := make(chan struct{})
		idCh := c.CreateMessage(newTarget(0, 0)).
			WithHandler(func(message.Payload) error { close(delivered); return nil }).
			WithDeleteAfterDelivery(true).
			Send()

		select {
		case id := <-idCh:
			So(id, ShouldBeGreaterThan, int64(0))
		case <-time.After(time.Second):
			t.Fatal("message id never arrived")
		}
	})
}

func TestCoordinatorReportRendererState(t *testing.T) {
	Convey("Coordinator.ReportRendererState", t, func() {
		c := New(nil)
		defer c.Release()
		So(c.SetMediaItems([]*playlist.Holder{newItem(1000)}, -1, 0), ShouldBeNil)
		waitUntil(t, time.Second, func() bool { return c.Timeline().WindowCount() == 1 })
		time.Sleep(20 * time.Millisecond)
		c.Prepare()
		waitUntil(t, time.Second, func() bool { return c.currentState() == playback.StateBuffering })

		Convey("A ready signal should advance BUFFERING to READY", func() {
			c.ReportRendererState(true, false)
			ok := waitUntil(t, time.Second, func() bool { return c.currentState() == playback.StateReady })
			So(ok, ShouldBeTrue)
		})
	})
}

func TestCoordinatorListeners(t *testing.T) {
	Convey("Coordinator listeners", t, func() {
		c := New(nil)
		defer c.Release()

		events := make(chan string, 16)
		l := &funcListener{onTimeline: func() { events <- "timeline" }}
		c.AddListener(l)

		So(c.SetMediaItems([]*playlist.Holder{newItem(1000)}, -1, 0), ShouldBeNil)

		select {
		case e := <-events:
			So(e, ShouldEqual, "timeline")
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for timeline notification")
		}

		c.RemoveListener(l)
	})
}
