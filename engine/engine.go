// Package engine implements the internal playback dispatcher: a single
// goroutine owning the authoritative playback.Info, consuming commands sent
// from the coordinator over a channel and acking each one exactly once
// (spec §4.2). It generalizes the teacher's mutex-guarded, retrying
// request/response IPC call into an in-process command/ack pipeline.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/message"
	"github.com/driftplay/player/metrics"
	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/playlist"
	"github.com/driftplay/player/timeline"
)

// Ack is sent back to the coordinator as soon as a command has returned,
// carrying the resulting Info so the coordinator can unmask its local copy.
// Source preparation a command starts finishes later and arrives as its own
// PostSourceUpdate command with a separate Ack.
type Ack struct {
	Info playback.Info
	Err  error
}

// Command is one unit of work submitted by the coordinator. Handlers never
// block the engine goroutine on I/O directly — they delegate to the relevant
// MediaSource/Renderer, which report back asynchronously through the
// PostSourceUpdate callbacks the coordinator wires when it prepares sources.
type Command func(e *Engine) (playback.Info, error)

// Engine is the playback dispatcher. All of its state is only ever touched
// from the single goroutine started by Run; the coordinator never reaches
// into it directly.
type Engine struct {
	commands  chan commandEnvelope
	sequences timeline.SequenceGenerator

	playlist   *playlist.Playlist
	info       playback.Info
	repeatMode capability.RepeatMode
	messages   *message.Queue

	clock capability.Clock
}

type commandEnvelope struct {
	cmd Command
	ack chan Ack
}

// New constructs an engine over an initially empty playlist. clock may be
// nil, in which case a wall-clock default is used.
func New(clock capability.Clock) *Engine {
	if clock == nil {
		clock = systemClock{}
	}
	return &Engine{
		commands: make(chan commandEnvelope, 32),
		playlist: playlist.New(nil),
		info:     playback.Dummy(),
		messages: message.New(),
		clock:    clock,
	}
}

type systemClock struct{}

func (systemClock) NowMs() int64 { return time.Now().UnixMilli() }

// Submit enqueues cmd and returns a channel that receives exactly one Ack.
// For facade operations the coordinator increments its pendingOperationAcks
// counter before calling Submit and decrements it upon receiving the Ack
// (spec §4.1); position polls and source updates are not counted.
func (e *Engine) Submit(cmd Command) <-chan Ack {
	ack := make(chan Ack, 1)
	e.commands <- commandEnvelope{cmd: cmd, ack: ack}
	return ack
}

// Run drains the command channel until ctx is cancelled. Every command is
// executed to completion (synchronously, from the engine's point of view —
// asynchronous MediaSource callbacks post follow-up commands rather than
// blocking here) before its ack is sent, preserving per-command atomicity.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case env := <-e.commands:
			info, err := env.cmd(e)
			if err != nil {
				perr := asPlaybackError(err)
				e.info = e.info.WithError(perr)
				info = e.info
			} else {
				e.info = info
			}
			env.ack <- Ack{Info: info, Err: err}
		}
	}
}

func asPlaybackError(err error) *playback.Error {
	if perr, ok := err.(*playback.Error); ok {
		return perr
	}
	return &playback.Error{Kind: playback.ErrorKindUnexpectedState, Cause: err}
}

// Playlist returns the engine's authoritative playlist copy. Only valid to
// call from within a Command.
func (e *Engine) Playlist() *playlist.Playlist { return e.playlist }

// Info returns the engine's authoritative Info. Only valid to call from
// within a Command.
func (e *Engine) Info() playback.Info { return e.info }

// Messages returns the engine's PlayerMessage queue. Only valid to call from
// within a Command.
func (e *Engine) Messages() *message.Queue { return e.messages }

// RepeatMode returns the engine's current repeat mode.
func (e *Engine) RepeatMode() capability.RepeatMode { return e.repeatMode }

// SetRepeatMode updates the engine's view of the active repeat mode, read by
// CheckMessages/DueAt to decide whether a changed windowSequenceNumber
// re-arms a non-deleted PlayerMessage (spec §8 invariant 7).
func (e *Engine) SetRepeatMode(mode capability.RepeatMode) {
	e.repeatMode = mode
}

// NextSequenceNumber mints a fresh WindowSequenceNumber for a newly
// instantiated MediaPeriodId (spec §3).
func (e *Engine) NextSequenceNumber() int64 { return e.sequences.Next() }

// PostSourceUpdate applies a MediaSource's asynchronous timeline callback by
// re-submitting it as an ordinary command, so playlist mutation and source
// callbacks never race on e.playlist/e.info — both only ever execute inside
// Run's single goroutine.
func (e *Engine) PostSourceUpdate(holder *playlist.Holder, tl timeline.Timeline) <-chan Ack {
	return e.Submit(func(e *Engine) (playback.Info, error) {
		if !e.playlist.Contains(holder) {
			// Suppression protocol: the holder was removed or replaced by a
			// later playlist mutation; discard the stale update.
			return e.info, nil
		}
		holder.OnTimelineChanged(tl)
		return e.info.WithTimeline(e.playlist.MaskedTimeline()), nil
	})
}

// CheckPosition delivers any PlayerMessage due at positionMs in whichever
// window e.info.PeriodId currently names, deriving windowIndex and
// windowSequenceNumber from the engine's own authoritative state rather than
// trusting a caller outside Run to know them.
func (e *Engine) CheckPosition(positionMs int64) error {
	windowIndex := e.info.Timeline.WindowIndexForPeriod(e.info.Timeline.PeriodIndexForUid(e.info.PeriodId.PeriodUid))
	return e.CheckMessages(windowIndex, e.info.PeriodId.WindowSequenceNumber, positionMs)
}

// ReportRendererState applies a renderer-driven readiness/end-of-stream
// signal (spec §4.6). BUFFERING advances to READY once the renderer reports
// it has enough data to play and to ENDED if it already reports end-of-
// stream; READY drops back to BUFFERING on a rebuffer (ready goes false) or
// forward to ENDED. IDLE and ENDED ignore the signal — only Prepare/SeekTo
// leave those states. Mirrors the teacher's mpv ticker pattern of polling a
// wrapped renderer on a timer rather than expecting it to push transitions.
func (e *Engine) ReportRendererState(ready, ended bool) playback.Info {
	info := e.info
	switch info.State {
	case playback.StateBuffering:
		if ended {
			return info.WithState(playback.StateEnded)
		}
		if ready {
			return info.WithState(playback.StateReady)
		}
	case playback.StateReady:
		if ended {
			return info.WithState(playback.StateEnded)
		}
		if !ready {
			return info.WithState(playback.StateBuffering)
		}
	}
	return info
}

// CheckMessages delivers every PlayerMessage due at the current position of
// windowIndex/windowSequenceNumber, returning the first delivery error (if
// any) after attempting all of them.
func (e *Engine) CheckMessages(windowIndex int, windowSequenceNumber, positionMs int64) error {
	var firstErr error
	for _, due := range e.messages.DueAt(windowIndex, windowSequenceNumber, positionMs, e.repeatMode) {
		if err := e.messages.Deliver(due); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("deliver message %d: %w", due.Id(), err)
		} else if err == nil {
			metrics.RecordMessageDelivered()
		}
	}
	return firstErr
}
