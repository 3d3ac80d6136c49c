package message

import (
	"errors"
	"testing"

	"github.com/driftplay/player/capability"
	. "github.com/smartystreets/goconvey/convey"
)

func TestQueueDueAt(t *testing.T) {
	Convey("Queue.DueAt", t, func() {
		q := New()
		var delivered []Payload
		handler := func(p Payload) error {
			delivered = append(delivered, p)
			return nil
		}

		msg := q.Add(Target{WindowIndex: 0, PositionMs: 1000}, "skip-intro", handler, true)

		Convey("Should not be due before its target position", func() {
			due := q.DueAt(0, 1, 500, capability.RepeatOff)
			So(due, ShouldBeEmpty)
		})

		Convey("Should be due once the position is reached", func() {
			due := q.DueAt(0, 1, 1000, capability.RepeatOff)
			So(due, ShouldHaveLength, 1)
			So(due[0].Id(), ShouldEqual, msg.Id())
		})

		Convey("Should ignore messages targeting a different window", func() {
			due := q.DueAt(1, 1, 5000, capability.RepeatOff)
			So(due, ShouldBeEmpty)
		})

		Convey("PositionUnset should be due immediately on reaching the window", func() {
			q2 := New()
			q2.Add(Target{WindowIndex: 0, PositionMs: PositionUnset}, nil, handler, true)
			due := q2.DueAt(0, 1, 0, capability.RepeatOff)
			So(due, ShouldHaveLength, 1)
		})

		Convey("A cancelled message should never be due", func() {
			msg.Cancel()
			due := q.DueAt(0, 1, 1000, capability.RepeatOff)
			So(due, ShouldBeEmpty)
		})

		Convey("A message should bind to one window-sequence traversal", func() {
			due := q.DueAt(0, 1, 1000, capability.RepeatOff)
			So(due, ShouldHaveLength, 1)
			// Same traversal, later position: still resolved to sequence 1.
			due = q.DueAt(0, 1, 2000, capability.RepeatOff)
			So(due, ShouldHaveLength, 1)
			// A different traversal (sequence 2) under RepeatOff should not
			// re-match: the window is gone for good, not looped back to.
			due = q.DueAt(0, 2, 2000, capability.RepeatOff)
			So(due, ShouldBeEmpty)
		})

		Convey("A delivered message should not redeliver within the same traversal", func() {
			q3 := New()
			q3.Add(Target{WindowIndex: 0, PositionMs: 1000}, "skip-intro", handler, false)

			due := q3.DueAt(0, 1, 1000, capability.RepeatOff)
			So(due, ShouldHaveLength, 1)
			So(q3.Deliver(due[0]), ShouldBeNil)

			// Same traversal, later position tick: already delivered and
			// still pinned to sequence 1, so it must not fire again.
			due = q3.DueAt(0, 1, 2000, capability.RepeatOff)
			So(due, ShouldBeEmpty)
		})
	})
}

func TestQueueDeliver(t *testing.T) {
	Convey("Queue.Deliver", t, func() {
		q := New()
		var delivered int
		handler := func(Payload) error {
			delivered++
			return nil
		}

		Convey("DeleteAfterDelivery should remove the message from Pending", func() {
			msg := q.Add(Target{WindowIndex: 0, PositionMs: 0}, nil, handler, true)
			err := q.Deliver(msg)
			So(err, ShouldBeNil)
			So(delivered, ShouldEqual, 1)
			So(q.Pending(), ShouldBeEmpty)
		})

		Convey("A non-deleted message stays pinned after delivery until a new traversal", func() {
			msg := q.Add(Target{WindowIndex: 0, PositionMs: 0}, nil, handler, false)
			q.DueAt(0, 1, 0, capability.RepeatAll)
			err := q.Deliver(msg)
			So(err, ShouldBeNil)
			So(q.Pending(), ShouldHaveLength, 1)

			// Same traversal: already delivered, must not refire.
			So(q.DueAt(0, 1, 0, capability.RepeatAll), ShouldBeEmpty)

			// A fresh traversal (sequence 2) under a repeating mode rearms it.
			due := q.DueAt(0, 2, 0, capability.RepeatAll)
			So(due, ShouldHaveLength, 1)
		})

		Convey("A handler error should propagate but still respect DeleteAfterDelivery", func() {
			failing := func(Payload) error { return errors.New("boom") }
			msg := q.Add(Target{WindowIndex: 0, PositionMs: 0}, nil, failing, true)
			err := q.Deliver(msg)
			So(err, ShouldNotBeNil)
			So(q.Pending(), ShouldBeEmpty)
		})
	})
}

func TestQueueCancel(t *testing.T) {
	Convey("Queue.Cancel", t, func() {
		q := New()
		msg := q.Add(Target{WindowIndex: 0, PositionMs: 0}, nil, func(Payload) error { return nil }, false)
		q.Cancel(msg.Id())
		So(msg.IsCancelled(), ShouldBeTrue)
		So(q.Pending(), ShouldBeEmpty)
	})
}

func TestClearBeforeRepeat(t *testing.T) {
	Convey("ClearBeforeRepeat", t, func() {
		q := New()
		msg := q.Add(Target{WindowIndex: 0, PositionMs: 0}, nil, func(Payload) error { return nil }, false)
		q.DueAt(0, 1, 0, capability.RepeatOff) // resolve windowSequenceNumber to 1

		Convey("RepeatOff should leave resolved messages untouched", func() {
			ClearBeforeRepeat(q, capability.RepeatOff)
			So(q.DueAt(0, 2, 0, capability.RepeatOff), ShouldBeEmpty)
			_ = msg
		})

		Convey("RepeatAll should clear resolved bindings so the next traversal re-matches", func() {
			ClearBeforeRepeat(q, capability.RepeatAll)
			due := q.DueAt(0, 2, 0, capability.RepeatAll)
			So(due, ShouldHaveLength, 1)
		})
	})
}
