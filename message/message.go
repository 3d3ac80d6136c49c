// Package message implements positioned PlayerMessage delivery: a message
// targets a specific window and position-within-window, is delivered once
// playback crosses that position, and is either discarded or re-armed for
// the next loop depending on DeleteAfterDelivery and the active repeat mode
// (spec §4.5). It generalizes the polling-based interval check the teacher's
// player package used for skip-marker seeking into an explicit, positioned
// message the internal dispatcher checks on every position update.
package message

import (
	"github.com/driftplay/player/capability"
	"github.com/samber/mo"
)

// Target selects where in the timeline a message fires.
type Target struct {
	// WindowIndex is the playlist window the message is attached to.
	WindowIndex int
	// PositionMs is the position within that window, or PositionUnset to
	// fire as soon as the window becomes current (immediate delivery).
	PositionMs int64
}

// PositionUnset marks a Target for immediate delivery on reaching the window.
const PositionUnset = -1

// Payload is delivered to Handler at the target position. The coordinator
// never inspects it; it is opaque application data (e.g. a skip-marker
// seek instruction).
type Payload any

// Handler receives a message at its delivery point, running on the internal
// dispatcher thread. A non-nil error surfaces as a playback error of kind
// unexpected-state.
type Handler func(payload Payload) error

// Message is one scheduled PlayerMessage.
type Message struct {
	id            int64
	Target        Target
	Payload       Payload
	Handler       Handler
	DeleteAfterDelivery bool
	cancelled     bool
	// windowSequenceNumber pins this message to one concrete loop traversal
	// of its window once resolved against the playlist, disambiguating
	// repeat-all re-visits of the same window index (spec §4.5/§3).
	windowSequenceNumber mo.Option[int64]
	// delivered marks that Deliver already ran for the pinned traversal, so
	// DueAt does not redeliver it on every later position check within the
	// same traversal.
	delivered bool
}

// Id returns the message's stable identity, used for Cancel.
func (m *Message) Id() int64 { return m.id }

// Cancel marks the message for removal; Queue discards cancelled messages
// without delivering them.
func (m *Message) Cancel() { m.cancelled = true }

// IsCancelled reports whether Cancel has been called.
func (m *Message) IsCancelled() bool { return m.cancelled }

// Queue holds the set of not-yet-delivered (or rearmed) messages in the order
// they were added; DueAt scans all of them on every position check.
type Queue struct {
	nextId   int64
	messages []*Message
}

// New returns an empty message queue.
func New() *Queue {
	return &Queue{}
}

// Add schedules msg, assigning it a fresh id and returning the live handle.
func (q *Queue) Add(target Target, payload Payload, handler Handler, deleteAfterDelivery bool) *Message {
	q.nextId++
	m := &Message{
		id:                  q.nextId,
		Target:              target,
		Payload:             payload,
		Handler:             handler,
		DeleteAfterDelivery: deleteAfterDelivery,
		windowSequenceNumber: mo.None[int64](),
	}
	q.messages = append(q.messages, m)
	return m
}

// Cancel removes the message with the given id, if still pending.
func (q *Queue) Cancel(id int64) {
	for _, m := range q.messages {
		if m.id == id {
			m.Cancel()
			return
		}
	}
}

// DueAt returns the messages targeting windowIndex whose position has been
// reached or passed by positionMs, bound to windowSequenceNumber — resolving
// each message's windowSequenceNumber on first match within this traversal
// so a later call for the *same* traversal does not redeliver a message
// already delivered (spec §4.5/§8 invariant 7). A message only becomes
// eligible again once a *different* windowSequenceNumber for windowIndex is
// observed, and only when mode revisits the window at all — under
// RepeatOff a changed sequence number means the window is gone for good,
// not looped back to, so the message is left pinned and spent.
func (q *Queue) DueAt(windowIndex int, windowSequenceNumber, positionMs int64, mode capability.RepeatMode) []*Message {
	var due []*Message
	for _, m := range q.messages {
		if m.cancelled || m.Target.WindowIndex != windowIndex {
			continue
		}
		if m.windowSequenceNumber.IsPresent() {
			if m.windowSequenceNumber.MustGet() != windowSequenceNumber {
				if mode == capability.RepeatOff {
					continue
				}
				m.windowSequenceNumber = mo.None[int64]()
				m.delivered = false
			} else if m.delivered {
				continue
			}
		}
		reached := m.Target.PositionMs == PositionUnset || positionMs >= m.Target.PositionMs
		if !reached {
			continue
		}
		if !m.windowSequenceNumber.IsPresent() {
			m.windowSequenceNumber = mo.Some(windowSequenceNumber)
		}
		due = append(due, m)
	}
	return due
}

// Deliver invokes msg's handler and, per DeleteAfterDelivery, either removes
// it from the queue or leaves it pinned to the current traversal as
// delivered — DueAt is what re-arms it once a new traversal begins.
func (q *Queue) Deliver(msg *Message) error {
	err := msg.Handler(msg.Payload)
	msg.delivered = true
	if msg.DeleteAfterDelivery {
		q.remove(msg.id)
	}
	return err
}

func (q *Queue) remove(id int64) {
	next := q.messages[:0]
	for _, m := range q.messages {
		if m.id != id {
			next = append(next, m)
		}
	}
	q.messages = next
}

// Pending returns the still-scheduled, non-cancelled messages.
func (q *Queue) Pending() []*Message {
	var out []*Message
	for _, m := range q.messages {
		if !m.cancelled {
			out = append(out, m)
		}
	}
	return out
}

// ClearBeforeRepeat re-arms every queued message under a repeating mode:
// each one is unpinned from its windowSequenceNumber and its delivered flag
// cleared, so it can fire again on the next traversal. No message is removed.
// Under RepeatOff it does nothing. Coordinator.SetRepeatMode calls it.
func ClearBeforeRepeat(q *Queue, mode capability.RepeatMode) {
	if mode == capability.RepeatOff {
		return
	}
	for _, m := range q.messages {
		m.windowSequenceNumber = mo.None[int64]()
		m.delivered = false
	}
}
