package tui

import (
	"time"

	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/coordinator"
	"github.com/driftplay/player/listener"
	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/timeline"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const positionPollInterval = 500 * time.Millisecond

// model is the dashboard's Bubble Tea state: the coordinator's last known
// PlaybackInfo plus whatever the dashboard itself is tracking locally
// (shuffle/repeat are set-only on the coordinator, so the dashboard mirrors
// its own requests rather than reading them back).
type model struct {
	coordinator *coordinator.Coordinator
	bridge      *listenerBridge
	keymap      *keymap
	helpC       help.Model
	progressC   progress.Model
	spinnerC    spinner.Model

	title   string
	resumed bool

	tl            timeline.Timeline
	windowIndex   int
	positionMs    int64
	state         playback.State
	playWhenReady bool
	isPlaying     bool
	isLoading     bool
	playbackErr   *playback.Error

	shuffleEnabled bool
	repeatMode     capability.RepeatMode

	showHelp bool
	quitting bool
	width    int
}

func newModel(options *Options) *model {
	m := &model{
		coordinator: options.Coordinator,
		keymap:      newKeymap(),
		helpC:       help.New(),
		progressC:   progress.New(progress.WithDefaultGradient()),
		spinnerC:    spinner.New(spinner.WithSpinner(spinner.Dot)),
		title:       options.Title,
		resumed:     options.Continue,
		state:       playback.StateIdle,
	}
	m.bridge = &listenerBridge{events: make(chan tea.Msg, 32)}
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinnerC.Tick, waitForEvent(m.bridge), positionTick())
}

// listenerBridge satisfies listener.Listener by forwarding every sub-event
// onto a buffered channel the Bubble Tea runtime drains with waitForEvent,
// the same channel-to-tea.Msg bridge the content browser used for its
// background search/fetch goroutines.
type listenerBridge struct {
	listener.BaseListener
	events chan tea.Msg
}

func (b *listenerBridge) push(msg tea.Msg) {
	select {
	case b.events <- msg:
	default:
		// dashboard fell behind; drop rather than block the dispatcher.
	}
}

func (b *listenerBridge) OnTimelineChanged(tl timeline.Timeline, reason listener.TimelineChangeReason) {
	b.push(timelineMsg{tl, reason})
}

func (b *listenerBridge) OnPositionDiscontinuity(oldId, newId timeline.MediaPeriodId, reason listener.DiscontinuityReason) {
	b.push(discontinuityMsg{oldId, newId, reason})
}

func (b *listenerBridge) OnPlayerError(err *playback.Error) {
	b.push(errorMsg{err})
}

func (b *listenerBridge) OnLoadingChanged(isLoading bool) {
	b.push(loadingMsg{isLoading})
}

func (b *listenerBridge) OnPlayerStateChanged(playWhenReady bool, state playback.State) {
	b.push(stateMsg{playWhenReady, state})
}

func (b *listenerBridge) OnIsPlayingChanged(isPlaying bool) {
	b.push(isPlayingMsg{isPlaying})
}

func (b *listenerBridge) OnSeekProcessed() {
	b.push(seekProcessedMsg{})
}

type timelineMsg struct {
	tl     timeline.Timeline
	reason listener.TimelineChangeReason
}
type discontinuityMsg struct {
	old, new timeline.MediaPeriodId
	reason   listener.DiscontinuityReason
}
type errorMsg struct{ err *playback.Error }
type loadingMsg struct{ isLoading bool }
type stateMsg struct {
	playWhenReady bool
	state         playback.State
}
type isPlayingMsg struct{ isPlaying bool }
type seekProcessedMsg struct{}
type positionTickMsg struct{}

func waitForEvent(b *listenerBridge) tea.Cmd {
	return func() tea.Msg {
		return <-b.events
	}
}

func positionTick() tea.Cmd {
	return tea.Tick(positionPollInterval, func(time.Time) tea.Msg {
		return positionTickMsg{}
	})
}
