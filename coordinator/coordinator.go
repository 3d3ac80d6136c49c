// Package coordinator implements the player-state coordinator's public
// facade: the sole externally visible handle onto playback. It validates
// inputs, maintains facade-local mask state so getters stay forward
// consistent while commands are in flight on the internal dispatcher, and
// fans out listener notifications in the fixed sub-event order (spec §4.1).
package coordinator

import (
	"context"
	"fmt"
	"sync"

	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/engine"
	"github.com/driftplay/player/listener"
	"github.com/driftplay/player/log"
	"github.com/driftplay/player/message"
	"github.com/driftplay/player/metrics"
	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/playlist"
	"github.com/driftplay/player/timeline"
)

// InvalidIndexError is returned synchronously when an index-bearing
// operation is given an out-of-range index (spec §4.1, §4.7 "programmer
// errors fail at the facade boundary").
type InvalidIndexError struct {
	Op       string
	Index    int
	Bound    int
}

func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d]", e.Op, e.Index, e.Bound)
}

// IllegalSeekPositionError is returned synchronously by SeekTo when the
// target window does not exist in the current timeline (spec §7).
type IllegalSeekPositionError struct {
	WindowIndex int
	WindowCount int
}

func (e *IllegalSeekPositionError) Error() string {
	return fmt.Sprintf("illegal seek position: window %d, timeline has %d windows", e.WindowIndex, e.WindowCount)
}

// mask holds the facade-local masking fields read by getters while
// operations are still in flight on the internal dispatcher (spec §3).
type mask struct {
	windowIndex                     int
	periodIndex                     int
	windowPositionMs                int64
	pendingOperationAcks            int
	hasPendingSeek                  bool
	pendingSetPlaybackParametersAcks int
}

// Coordinator is the public player facade. All of its methods are intended
// to be called from a single application-goroutine; it is not itself safe
// for unsynchronized concurrent calls from multiple goroutines, mirroring
// the single-application-thread contract of spec §5.
type Coordinator struct {
	mu sync.Mutex

	eng    *engine.Engine
	cancel context.CancelFunc

	mask mask
	info playback.Info

	listeners *listener.Registry

	repeatMode     capability.RepeatMode
	shuffleEnabled bool
	playWhenReady  bool
}

// New constructs a coordinator, starting its internal dispatcher goroutine.
// clock may be nil.
func New(clock capability.Clock) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		eng:       engine.New(clock),
		cancel:    cancel,
		info:      playback.Dummy(),
		listeners: listener.New(),
	}
	go c.eng.Run(ctx)
	return c
}

// AddListener registers l for future notifications.
func (c *Coordinator) AddListener(l listener.Listener) {
	c.listeners.Add(l)
}

// RemoveListener unregisters l.
func (c *Coordinator) RemoveListener(l listener.Listener) {
	c.listeners.Remove(l)
}

// awaitAck blocks for ackCh's single ack, reconciles coordinator state, and
// returns any error the command produced. It is the only place
// pendingOperationAcks is decremented and mask is cleared. Callers must
// submit the command synchronously (via c.eng.Submit, on the calling
// goroutine) before spawning the goroutine that calls awaitAck — two
// successive facade calls must reach the engine's command channel in the
// order they were made, and only the wait for the ack is safe to push onto a
// goroutine (spec §4.2/§5).
func (c *Coordinator) awaitAck(ackCh <-chan engine.Ack) error {
	ack := <-ackCh

	c.mu.Lock()
	if c.mask.pendingOperationAcks > 0 {
		c.mask.pendingOperationAcks--
	}
	oldState := c.info.State
	c.info = ack.Info
	clearMask := c.mask.pendingOperationAcks == 0
	pending := c.mask.pendingOperationAcks
	c.mu.Unlock()

	metrics.SetPendingOperationAcks(pending)
	metrics.SetPlaylistLength(ack.Info.Timeline.WindowCount())
	if ack.Info.State != oldState {
		metrics.RecordStateTransition(oldState.String(), ack.Info.State.String())
	}

	if clearMask {
		c.publishStateChange()
	}
	if ack.Err != nil {
		log.Errorf("playback command failed: %v", ack.Err)
		perr := asPlaybackError(ack.Err)
		metrics.RecordPlayerError(kindLabel(perr.Kind))
		c.listeners.QueuePlayerError(perr)
	}
	return ack.Err
}

func kindLabel(kind playback.ErrorKind) string {
	switch kind {
	case playback.ErrorKindSource:
		return "source"
	case playback.ErrorKindRenderer:
		return "renderer"
	default:
		return "unexpected_state"
	}
}

func asPlaybackError(err error) *playback.Error {
	if perr, ok := err.(*playback.Error); ok {
		return perr
	}
	return &playback.Error{Kind: playback.ErrorKindUnexpectedState, Cause: err}
}

func (c *Coordinator) publishStateChange() {
	c.mu.Lock()
	info := c.info
	c.mu.Unlock()
	c.listeners.QueuePlayerStateChanged(c.playWhenReady, info.State)
	c.listeners.QueueIsPlayingChanged(c.playWhenReady && info.State == playback.StateReady)
}

// Prepare resets any playback error and transitions to BUFFERING, unless
// already outside IDLE (spec §4.1/§4.6).
func (c *Coordinator) Prepare() {
	c.mu.Lock()
	if c.info.State != playback.StateIdle {
		c.mu.Unlock()
		return
	}
	c.info = c.info.ClearError()
	c.mask.pendingOperationAcks++
	c.mu.Unlock()

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		info := e.Info()
		if e.Playlist().Len() == 0 {
			// Empty-playlist rule (spec §4.6): go straight to ENDED and
			// stay there until a seek or a fresh prepare.
			return info.WithState(playback.StateEnded), nil
		}
		return info.WithState(playback.StateBuffering), nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
}

// SetMediaItems atomically replaces the playlist. If startWindow is
// negative, position is reset to the playlist's default start; otherwise the
// facade seeks to (startWindow, startPositionMs) in the same operation.
func (c *Coordinator) SetMediaItems(items []*playlist.Holder, startWindow int, startPositionMs int64) error {
	if startWindow >= 0 && startWindow >= len(items) {
		return &InvalidIndexError{Op: "set_media_items", Index: startWindow, Bound: len(items)}
	}

	c.mu.Lock()
	order := newDefaultOrder(len(items))
	maskedTimeline := maskedTimelineFor(items)
	c.mask.pendingOperationAcks++
	if startWindow >= 0 {
		c.mask.windowIndex = startWindow
		c.mask.windowPositionMs = startPositionMs
		c.mask.hasPendingSeek = true
	} else {
		c.mask.windowIndex = 0
		c.mask.windowPositionMs = 0
	}
	c.mask.periodIndex = c.mask.windowIndex
	c.info = c.info.WithTimeline(maskedTimeline)
	c.mu.Unlock()

	c.listeners.QueueTimelineChanged(maskedTimeline, listener.TimelineChangePlaylistChanged)

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		e.Playlist().ReplaceAll(items, order)
		if err := prepareAll(c, e, items); err != nil {
			return e.Info(), &playback.Error{Kind: playback.ErrorKindSource, Cause: err}
		}
		info := e.Info().WithTimeline(e.Playlist().MaskedTimeline())
		if e.Playlist().Len() == 0 {
			info = info.WithState(playback.StateEnded)
		}
		return info, nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
	return nil
}

// AddMediaItems inserts items at index (0 <= index <= current length).
func (c *Coordinator) AddMediaItems(index int, items []*playlist.Holder) error {
	c.mu.Lock()
	length := c.info.Timeline.WindowCount()
	if index < 0 || index > length {
		c.mu.Unlock()
		return &InvalidIndexError{Op: "add_media_items", Index: index, Bound: length}
	}
	maskedTimeline := insertMasked(c.info.Timeline, index, items)
	c.mask.pendingOperationAcks++
	c.info = c.info.WithTimeline(maskedTimeline)
	c.mu.Unlock()

	c.listeners.QueueTimelineChanged(maskedTimeline, listener.TimelineChangePlaylistChanged)

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		if err := e.Playlist().InsertRangeAt(index, items); err != nil {
			return e.Info(), &playback.Error{Kind: playback.ErrorKindUnexpectedState, Cause: err}
		}
		if err := prepareAll(c, e, items); err != nil {
			return e.Info(), &playback.Error{Kind: playback.ErrorKindSource, Cause: err}
		}
		return e.Info().WithTimeline(e.Playlist().MaskedTimeline()), nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
	return nil
}

// RemoveMediaItems removes the half-open range [from, to).
func (c *Coordinator) RemoveMediaItems(from, to int) error {
	c.mu.Lock()
	length := c.info.Timeline.WindowCount()
	if from < 0 || to > length || from >= to {
		c.mu.Unlock()
		return &InvalidIndexError{Op: "remove_media_items", Index: from, Bound: length}
	}
	c.mask.pendingOperationAcks++
	c.mu.Unlock()

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		if _, err := e.Playlist().RemoveRange(from, to); err != nil {
			return e.Info(), &playback.Error{Kind: playback.ErrorKindUnexpectedState, Cause: err}
		}
		info := e.Info().WithTimeline(e.Playlist().MaskedTimeline())
		if e.Playlist().Len() == 0 {
			info = info.WithState(playback.StateEnded)
		}
		return info, nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
	return nil
}

// MoveMediaItems relocates [from, to) so it starts at newFrom, clamped to
// len-(to-from).
func (c *Coordinator) MoveMediaItems(from, to, newFrom int) error {
	c.mu.Lock()
	length := c.info.Timeline.WindowCount()
	if from < 0 || to > length || from >= to {
		c.mu.Unlock()
		return &InvalidIndexError{Op: "move_media_items", Index: from, Bound: length}
	}
	c.mask.pendingOperationAcks++
	c.mu.Unlock()

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		if err := e.Playlist().MoveRange(from, to, newFrom); err != nil {
			return e.Info(), &playback.Error{Kind: playback.ErrorKindUnexpectedState, Cause: err}
		}
		return e.Info().WithTimeline(e.Playlist().MaskedTimeline()), nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
	return nil
}

// ClearMediaItems removes every item; equivalent to RemoveMediaItems(0, len).
func (c *Coordinator) ClearMediaItems() error {
	c.mu.Lock()
	length := c.info.Timeline.WindowCount()
	c.mu.Unlock()
	if length == 0 {
		return nil
	}
	return c.RemoveMediaItems(0, length)
}

// SeekTo validates windowIndex against the current timeline and, unless an
// ad is currently playing, sets hasPendingSeek and sends a seek command. If
// an ad is playing the request is silently dropped but still acked (spec
// §4.1) so pendingOperationAcks bookkeeping stays balanced.
func (c *Coordinator) SeekTo(windowIndex int, positionMs int64) error {
	metrics.RecordSeek()
	c.mu.Lock()
	windowCount := c.info.Timeline.WindowCount()
	if !c.info.Timeline.IsEmpty() && (windowIndex < 0 || windowIndex >= windowCount) {
		c.mu.Unlock()
		return &IllegalSeekPositionError{WindowIndex: windowIndex, WindowCount: windowCount}
	}
	adPlaying := c.info.PeriodId.IsAd()
	c.mask.pendingOperationAcks++
	if !adPlaying {
		c.mask.hasPendingSeek = true
		c.mask.windowIndex = windowIndex
		c.mask.windowPositionMs = positionMs
	}
	oldId := c.info.PeriodId
	c.mu.Unlock()

	if !adPlaying {
		c.listeners.QueuePositionDiscontinuity(oldId, oldId, listener.DiscontinuitySeek)
	}

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		info := e.Info()
		if adPlaying {
			return info, nil
		}
		holders := e.Playlist().Holders()
		if windowIndex < 0 || windowIndex >= len(holders) {
			return info, nil
		}
		holder := holders[windowIndex]
		if holder.PeriodSequence == 0 {
			holder.PeriodSequence = e.NextSequenceNumber()
		}
		seq := holder.PeriodSequence
		info = info.WithState(playback.StateBuffering)
		info.PeriodId = timeline.MediaPeriodId{PeriodUid: holder.PeriodUid, WindowSequenceNumber: seq}
		info.PositionUs = positionMs * 1000
		info.ContentPositionUs = positionMs * 1000
		return info, nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
		c.listeners.QueueSeekProcessed()
	}()
	return nil
}

// SetPlayWhenReady updates the locally-visible play/pause intent and
// forwards the change to the internal dispatcher.
func (c *Coordinator) SetPlayWhenReady(flag bool) {
	c.mu.Lock()
	c.playWhenReady = flag
	c.mask.pendingOperationAcks++
	c.mu.Unlock()

	c.listeners.QueuePlayerStateChanged(flag, c.currentState())

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		return e.Info(), nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
		c.mu.Lock()
		isPlaying := c.playWhenReady && c.info.State == playback.StateReady
		c.mu.Unlock()
		c.listeners.QueueIsPlayingChanged(isPlaying)
	}()
}

// SetRepeatMode updates the repeat mode observed by the shuffle order and
// message re-arming logic.
func (c *Coordinator) SetRepeatMode(mode capability.RepeatMode) {
	c.mu.Lock()
	c.repeatMode = mode
	c.mask.pendingOperationAcks++
	c.mu.Unlock()

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		e.SetRepeatMode(mode)
		message.ClearBeforeRepeat(e.Messages(), mode)
		return e.Info(), nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
}

// SetShuffleModeEnabled toggles shuffle playback order.
func (c *Coordinator) SetShuffleModeEnabled(flag bool) {
	c.mu.Lock()
	c.shuffleEnabled = flag
	c.mask.pendingOperationAcks++
	c.mu.Unlock()

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		return e.Info(), nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
}

// SetShuffleOrder installs a caller-supplied shuffle permutation, which must
// match the current playlist length.
func (c *Coordinator) SetShuffleOrder(order capability.ShuffleOrder) {
	c.mu.Lock()
	c.mask.pendingOperationAcks++
	c.mu.Unlock()

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		if err := e.Playlist().SetShuffleOrder(order); err != nil {
			return e.Info(), &playback.Error{Kind: playback.ErrorKindUnexpectedState, Cause: err}
		}
		return e.Info(), nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
}

// Stop halts playback. If reset is true, position and window reset to zero
// and the timeline is cleared to EMPTY on the facade side; the playlist
// itself is untouched (spec §4.6/§8 invariant 6).
func (c *Coordinator) Stop(reset bool) {
	c.mu.Lock()
	c.mask.pendingOperationAcks++
	if reset {
		c.mask.windowIndex = 0
		c.mask.periodIndex = 0
		c.mask.windowPositionMs = 0
		c.info = c.info.WithTimeline(timeline.Empty)
	}
	c.mu.Unlock()

	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		info := e.Info().WithState(playback.StateIdle)
		if reset {
			info.PositionUs = 0
			info.ContentPositionUs = 0
			info = info.WithTimeline(timeline.Empty)
		}
		return info, nil
	})
	go func() {
		_ = c.awaitAck(ackCh)
	}()
}

// Release stops the internal dispatcher and rejects all further operations.
// Subsequent calls are undefined, per spec §5.
func (c *Coordinator) Release() {
	c.cancel()
}

// CreateMessage returns a builder for a PlayerMessage bound to the internal
// dispatcher's message queue (spec §4.5).
func (c *Coordinator) CreateMessage(target message.Target) *MessageBuilder {
	return &MessageBuilder{coordinator: c, target: target}
}

// MessageBuilder configures and sends one PlayerMessage.
type MessageBuilder struct {
	coordinator         *Coordinator
	target              message.Target
	payload             message.Payload
	handler             message.Handler
	deleteAfterDelivery bool
}

func (b *MessageBuilder) WithPayload(p message.Payload) *MessageBuilder {
	b.payload = p
	return b
}

func (b *MessageBuilder) WithHandler(h message.Handler) *MessageBuilder {
	b.handler = h
	return b
}

func (b *MessageBuilder) WithDeleteAfterDelivery(flag bool) *MessageBuilder {
	b.deleteAfterDelivery = flag
	return b
}

// Send schedules the message on the internal dispatcher and returns its id.
func (b *MessageBuilder) Send() <-chan int64 {
	out := make(chan int64, 1)
	b.coordinator.mu.Lock()
	b.coordinator.mask.pendingOperationAcks++
	b.coordinator.mu.Unlock()
	ackCh := b.coordinator.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		msg := e.Messages().Add(b.target, b.payload, b.handler, b.deleteAfterDelivery)
		out <- msg.Id()
		close(out)
		return e.Info(), nil
	})
	go func() {
		_ = b.coordinator.awaitAck(ackCh)
	}()
	return out
}

// CheckMessagesAt submits a position check to the internal dispatcher,
// delivering any PlayerMessage due at positionMs in the window currently
// playing (spec §4.5). Meant to be driven by a renderer position poll (e.g.
// mpvrenderer's IPC ticker) rather than called once per facade operation, so
// it does not participate in pendingOperationAcks bookkeeping — only
// surfacing delivery errors to listeners.
func (c *Coordinator) CheckMessagesAt(positionMs int64) {
	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		if err := e.CheckPosition(positionMs); err != nil {
			return e.Info(), &playback.Error{Kind: playback.ErrorKindUnexpectedState, Cause: err}
		}
		return e.Info(), nil
	})
	go func() {
		ack := <-ackCh
		if ack.Err != nil {
			log.Errorf("check messages: %v", ack.Err)
			perr := asPlaybackError(ack.Err)
			metrics.RecordPlayerError(kindLabel(perr.Kind))
			c.listeners.QueuePlayerError(perr)
		}
	}()
}

// ReportRendererState forwards a renderer-driven readiness/end-of-stream
// signal to the internal dispatcher (spec §4.6). Meant to be driven by the
// same position poll as CheckMessagesAt, so it does not participate in
// pendingOperationAcks bookkeeping; it still publishes OnPlayerStateChanged/
// OnIsPlayingChanged when the state it reconciles actually changed, unless
// another operation still has an ack pending and will publish once it lands.
func (c *Coordinator) ReportRendererState(ready, ended bool) {
	ackCh := c.eng.Submit(func(e *engine.Engine) (playback.Info, error) {
		return e.ReportRendererState(ready, ended), nil
	})
	go func() {
		ack := <-ackCh
		if ack.Err != nil {
			log.Errorf("report renderer state: %v", ack.Err)
			perr := asPlaybackError(ack.Err)
			metrics.RecordPlayerError(kindLabel(perr.Kind))
			c.listeners.QueuePlayerError(perr)
			return
		}

		c.mu.Lock()
		oldState := c.info.State
		stillPending := c.mask.pendingOperationAcks > 0
		if !stillPending {
			c.info = ack.Info
		}
		c.mu.Unlock()

		if stillPending || ack.Info.State == oldState {
			return
		}
		metrics.RecordStateTransition(oldState.String(), ack.Info.State.String())
		c.publishStateChange()
	}()
}

// CurrentPosition returns the masked position while operations are pending,
// falling back to PlaybackInfo once the mask has cleared (spec §4.1).
func (c *Coordinator) CurrentPosition() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mask.pendingOperationAcks > 0 || c.info.Timeline.IsEmpty() {
		return c.mask.windowPositionMs
	}
	return c.info.PositionUs / 1000
}

// CurrentWindowIndex returns the masked window index while operations are
// pending, falling back to PlaybackInfo otherwise.
func (c *Coordinator) CurrentWindowIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mask.pendingOperationAcks > 0 || c.info.Timeline.IsEmpty() {
		return c.mask.windowIndex
	}
	return c.info.Timeline.WindowIndexForPeriod(c.info.Timeline.PeriodIndexForUid(c.info.PeriodId.PeriodUid))
}

// CurrentPeriodIndex mirrors CurrentWindowIndex for the period axis.
func (c *Coordinator) CurrentPeriodIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mask.pendingOperationAcks > 0 || c.info.Timeline.IsEmpty() {
		return c.mask.periodIndex
	}
	return c.info.Timeline.PeriodIndexForUid(c.info.PeriodId.PeriodUid)
}

// ContentBufferedPosition returns the masked or authoritative buffered
// position depending on ack state (spec §4.1).
func (c *Coordinator) ContentBufferedPosition() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mask.pendingOperationAcks > 0 || c.info.Timeline.IsEmpty() {
		return c.mask.windowPositionMs
	}
	return c.info.BufferedPositionUs / 1000
}

func (c *Coordinator) currentState() playback.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info.State
}

// Timeline returns the coordinator's current externally visible timeline
// (masked or authoritative — the two fields hold the same value once acked).
func (c *Coordinator) Timeline() timeline.Timeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info.Timeline
}

// PlaybackError returns the currently latched playback error, if any.
func (c *Coordinator) PlaybackError() *playback.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info.PlaybackError
}

func newDefaultOrder(length int) capability.ShuffleOrder {
	return playlist.NewDefaultShuffleOrder(length)
}

func maskedTimelineFor(items []*playlist.Holder) timeline.Timeline {
	tmp := playlist.New(newDefaultOrder(len(items)))
	_ = tmp.InsertRangeAt(0, items)
	return tmp.MaskedTimeline()
}

func insertMasked(tl timeline.Timeline, index int, items []*playlist.Holder) timeline.Timeline {
	inserted := maskedTimelineFor(items)
	windows := append([]timeline.Window{}, tl.Windows[:index]...)
	windows = append(windows, inserted.Windows...)
	windows = append(windows, tl.Windows[index:]...)
	periods := append([]timeline.Period{}, tl.Periods[:index]...)
	periods = append(periods, inserted.Periods...)
	periods = append(periods, tl.Periods[index:]...)

	// Splicing windows/periods by slice position leaves every window's
	// First/LastPeriodIndex pointing at its pre-splice offset; rebuild them
	// with a running period counter the same way playlist.MaskedTimeline
	// does, so WindowIndexForPeriod/PeriodIndexForUid stay correct on the
	// emitted masked timeline.
	periodIndex := 0
	for i := range windows {
		span := windows[i].LastPeriodIndex - windows[i].FirstPeriodIndex
		windows[i].FirstPeriodIndex = periodIndex
		windows[i].LastPeriodIndex = periodIndex + span
		periodIndex += span + 1
	}
	return timeline.Timeline{Windows: windows, Periods: periods}
}

// prepareAll asks each holder's source to prepare, wiring its real-timeline
// callback to the internal dispatcher via PostSourceUpdate. Runs on the
// internal dispatcher goroutine (it is only ever called from inside a
// submitted Command), so each PostSourceUpdate is itself queued behind the
// command currently executing and resolves once that command's own ack has
// already gone out — c.handleSourceUpdate compares against the
// already-published masked timeline to decide whether a SOURCE_UPDATE
// follow-up event is due (spec §6, §8 empty-playlist scenario).
func prepareAll(c *Coordinator, e *engine.Engine, items []*playlist.Holder) error {
	ctx := context.Background()
	var firstErr error
	for _, h := range items {
		holder := h
		if err := holder.Source.Prepare(ctx, func(tl timeline.Timeline) {
			go c.handleSourceUpdate(e.PostSourceUpdate(holder, tl))
		}); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("prepare %s: %w", holder.UriTag, err)
		}
	}
	return firstErr
}

// handleSourceUpdate waits for a PostSourceUpdate ack and, once no other
// facade operation still has an ack pending, emits a SOURCE_UPDATE
// timeline-changed event if the resolved timeline differs from the one
// already published (spec §6). It does not participate in
// pendingOperationAcks bookkeeping — the command it waits on was not counted
// when the triggering operation incremented its own ack count.
func (c *Coordinator) handleSourceUpdate(ackCh <-chan engine.Ack) {
	ack := <-ackCh
	if ack.Err != nil {
		return
	}

	c.mu.Lock()
	previous := c.info.Timeline
	stillPending := c.mask.pendingOperationAcks > 0
	if !stillPending {
		c.info = ack.Info
	}
	c.mu.Unlock()

	if stillPending || previous.Equal(ack.Info.Timeline) {
		return
	}
	c.listeners.QueueTimelineChanged(ack.Info.Timeline, listener.TimelineChangeSourceUpdate)
}
