package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/message"
	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/playlist"
	"github.com/driftplay/player/timeline"
	. "github.com/smartystreets/goconvey/convey"
)

func messageTargetAt(windowIndex int, positionMs int64) message.Target {
	return message.Target{WindowIndex: windowIndex, PositionMs: positionMs}
}

func emptyTimeline() timeline.Timeline {
	return timeline.Timeline{}
}

type stubClock struct{ ms int64 }

func (c stubClock) NowMs() int64 { return c.ms }

func runEngine(t *testing.T, e *Engine) context.CancelFunc {
	ctx, cancel := context.WithCancel(context.Background())
	go e.Run(ctx)
	t.Cleanup(cancel)
	return cancel
}

func TestEngineSubmit(t *testing.T) {
	Convey("Engine.Submit", t, func() {
		e := New(stubClock{ms: 42})
		runEngine(t, e)

		Convey("Should execute a command and deliver exactly one ack", func() {
			ack := <-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.Info().WithState(playback.StateReady), nil
			})
			So(ack.Err, ShouldBeNil)
			So(ack.Info.State, ShouldEqual, playback.StateReady)
		})

		Convey("A command error should surface as a playback error and force IDLE", func() {
			ack := <-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.Info(), errors.New("boom")
			})
			So(ack.Err, ShouldNotBeNil)
			So(ack.Info.State, ShouldEqual, playback.StateIdle)
			So(ack.Info.PlaybackError, ShouldNotBeNil)
		})

		Convey("A command returning its own *playback.Error should preserve its Kind", func() {
			ack := <-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.Info(), &playback.Error{Kind: playback.ErrorKindSource, Cause: errors.New("src")}
			})
			So(ack.Info.PlaybackError.Kind, ShouldEqual, playback.ErrorKindSource)
		})

		Convey("Commands should execute in submission order", func() {
			var order []int
			done := make(chan struct{})
			go func() {
				for i := 0; i < 3; i++ {
					i := i
					<-e.Submit(func(e *Engine) (playback.Info, error) {
						order = append(order, i)
						return e.Info(), nil
					})
				}
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("timed out waiting for commands")
			}
			So(order, ShouldResemble, []int{0, 1, 2})
		})
	})
}

func TestEngineAccessors(t *testing.T) {
	Convey("Engine accessors", t, func() {
		e := New(nil)
		runEngine(t, e)

		var playlistIsNil, messagesIsNil bool
		var repeatMode capability.RepeatMode
		<-e.Submit(func(e *Engine) (playback.Info, error) {
			playlistIsNil = e.Playlist() == nil
			messagesIsNil = e.Messages() == nil
			repeatMode = e.RepeatMode()
			return e.Info(), nil
		})
		So(playlistIsNil, ShouldBeFalse)
		So(messagesIsNil, ShouldBeFalse)
		So(repeatMode, ShouldEqual, 0)
	})
}

func TestEngineSequenceNumbers(t *testing.T) {
	Convey("Engine.NextSequenceNumber", t, func() {
		e := New(nil)
		runEngine(t, e)

		var first, second int64
		<-e.Submit(func(e *Engine) (playback.Info, error) {
			first = e.NextSequenceNumber()
			second = e.NextSequenceNumber()
			return e.Info(), nil
		})
		So(second, ShouldEqual, first+1)
	})
}

func TestEngineCheckMessages(t *testing.T) {
	Convey("Engine.CheckMessages", t, func() {
		e := New(nil)
		runEngine(t, e)

		var delivered bool
		<-e.Submit(func(e *Engine) (playback.Info, error) {
			e.Messages().Add(
				messageTargetAt(0, 0),
				nil,
				func(message.Payload) error { delivered = true; return nil },
				true,
			)
			return e.Info(), nil
		})

		var checkErr error
		<-e.Submit(func(e *Engine) (playback.Info, error) {
			checkErr = e.CheckMessages(0, 1, 0)
			return e.Info(), nil
		})

		So(checkErr, ShouldBeNil)
		So(delivered, ShouldBeTrue)
	})
}

func TestEngineCheckPosition(t *testing.T) {
	Convey("Engine.CheckPosition", t, func() {
		e := New(nil)
		runEngine(t, e)

		holder := playlist.NewHolder(nil, "tag")
		<-e.Submit(func(e *Engine) (playback.Info, error) {
			e.Playlist().ReplaceAll([]*playlist.Holder{holder}, nil)
			seq := e.NextSequenceNumber()
			holder.PeriodSequence = seq
			info := e.Info().WithTimeline(e.Playlist().MaskedTimeline())
			info.PeriodId = timeline.MediaPeriodId{PeriodUid: holder.PeriodUid, WindowSequenceNumber: seq}
			return info, nil
		})

		var delivered bool
		<-e.Submit(func(e *Engine) (playback.Info, error) {
			e.Messages().Add(
				messageTargetAt(0, 1000),
				nil,
				func(message.Payload) error { delivered = true; return nil },
				true,
			)
			return e.Info(), nil
		})

		Convey("Should derive window index and sequence from the engine's own Info", func() {
			var checkErr error
			<-e.Submit(func(e *Engine) (playback.Info, error) {
				checkErr = e.CheckPosition(1000)
				return e.Info(), nil
			})
			So(checkErr, ShouldBeNil)
			So(delivered, ShouldBeTrue)
		})
	})
}

func TestEngineSetRepeatMode(t *testing.T) {
	Convey("Engine.SetRepeatMode", t, func() {
		e := New(nil)
		runEngine(t, e)

		<-e.Submit(func(e *Engine) (playback.Info, error) {
			e.SetRepeatMode(capability.RepeatAll)
			return e.Info(), nil
		})

		Convey("Should be observed by RepeatMode", func() {
			var repeatMode capability.RepeatMode
			<-e.Submit(func(e *Engine) (playback.Info, error) {
				repeatMode = e.RepeatMode()
				return e.Info(), nil
			})
			So(repeatMode, ShouldEqual, capability.RepeatAll)
		})
	})
}

func TestEngineReportRendererState(t *testing.T) {
	Convey("Engine.ReportRendererState", t, func() {
		e := New(nil)
		runEngine(t, e)

		Convey("BUFFERING should advance to READY once the renderer reports ready", func() {
			<-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.Info().WithState(playback.StateBuffering), nil
			})
			ack := <-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.ReportRendererState(true, false), nil
			})
			So(ack.Info.State, ShouldEqual, playback.StateReady)
		})

		Convey("READY should fall back to BUFFERING on a rebuffer", func() {
			<-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.Info().WithState(playback.StateReady), nil
			})
			ack := <-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.ReportRendererState(false, false), nil
			})
			So(ack.Info.State, ShouldEqual, playback.StateBuffering)
		})

		Convey("READY should advance to ENDED once the renderer reports end-of-stream", func() {
			<-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.Info().WithState(playback.StateReady), nil
			})
			ack := <-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.ReportRendererState(true, true), nil
			})
			So(ack.Info.State, ShouldEqual, playback.StateEnded)
		})

		Convey("IDLE should ignore the signal", func() {
			ack := <-e.Submit(func(e *Engine) (playback.Info, error) {
				return e.ReportRendererState(true, false), nil
			})
			So(ack.Info.State, ShouldEqual, playback.StateIdle)
		})
	})
}

func TestEnginePostSourceUpdate(t *testing.T) {
	Convey("Engine.PostSourceUpdate", t, func() {
		e := New(nil)
		runEngine(t, e)

		holder := playlist.NewHolder(nil, "tag")
		<-e.Submit(func(e *Engine) (playback.Info, error) {
			e.Playlist().ReplaceAll([]*playlist.Holder{holder}, nil)
			return e.Info(), nil
		})

		Convey("A stale holder not in the playlist should be discarded", func() {
			stale := playlist.NewHolder(nil, "other")
			ack := <-e.PostSourceUpdate(stale, emptyTimeline())
			So(ack.Err, ShouldBeNil)
		})

		Convey("A member holder's update should be applied to the masked timeline", func() {
			ack := <-e.PostSourceUpdate(holder, emptyTimeline())
			So(ack.Err, ShouldBeNil)
			So(holder.HasReal, ShouldBeTrue)
			So(ack.Info.Timeline.WindowCount(), ShouldEqual, 1)
		})
	})
}
