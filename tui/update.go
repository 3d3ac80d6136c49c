package tui

import (
	"github.com/driftplay/player/capability"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progressC.Width = msg.Width - 4
		m.helpC.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.updateKey(msg)

	case timelineMsg:
		m.tl = msg.tl
		return m, waitForEvent(m.bridge)

	case discontinuityMsg:
		m.windowIndex = m.coordinator.CurrentWindowIndex()
		return m, waitForEvent(m.bridge)

	case errorMsg:
		m.playbackErr = msg.err
		return m, waitForEvent(m.bridge)

	case loadingMsg:
		m.isLoading = msg.isLoading
		return m, waitForEvent(m.bridge)

	case stateMsg:
		m.state = msg.state
		m.playWhenReady = msg.playWhenReady
		return m, waitForEvent(m.bridge)

	case isPlayingMsg:
		m.isPlaying = msg.isPlaying
		return m, waitForEvent(m.bridge)

	case seekProcessedMsg:
		m.windowIndex = m.coordinator.CurrentWindowIndex()
		m.positionMs = m.coordinator.CurrentPosition()
		return m, waitForEvent(m.bridge)

	case positionTickMsg:
		m.windowIndex = m.coordinator.CurrentWindowIndex()
		m.positionMs = m.coordinator.CurrentPosition()
		var cmd tea.Cmd
		progressModel, cmd := m.progressC.Update(msg)
		m.progressC = progressModel.(progress.Model)
		return m, tea.Batch(cmd, positionTick())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinnerC, cmd = m.spinnerC.Update(msg)
		return m, cmd
	}

	return m, waitForEvent(m.bridge)
}

func (m *model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.forceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.showHelp):
		m.showHelp = !m.showHelp
		m.helpC.ShowAll = m.showHelp
		return m, nil

	case key.Matches(msg, m.keymap.playPause):
		m.playWhenReady = !m.playWhenReady
		m.coordinator.SetPlayWhenReady(m.playWhenReady)
		return m, nil

	case key.Matches(msg, m.keymap.seekForward):
		m.seekRelative(10_000)
		return m, nil

	case key.Matches(msg, m.keymap.seekBackward):
		m.seekRelative(-10_000)
		return m, nil

	case key.Matches(msg, m.keymap.nextTrack):
		m.seekTrack(1)
		return m, nil

	case key.Matches(msg, m.keymap.prevTrack):
		m.seekTrack(-1)
		return m, nil

	case key.Matches(msg, m.keymap.shuffle):
		m.shuffleEnabled = !m.shuffleEnabled
		m.coordinator.SetShuffleModeEnabled(m.shuffleEnabled)
		return m, nil

	case key.Matches(msg, m.keymap.repeat):
		m.repeatMode = nextRepeatMode(m.repeatMode)
		m.coordinator.SetRepeatMode(m.repeatMode)
		return m, nil
	}

	return m, nil
}

func (m *model) seekRelative(deltaMs int64) {
	target := m.positionMs + deltaMs
	if target < 0 {
		target = 0
	}
	if window, ok := m.tl.WindowAt(m.windowIndex); ok && window.DurationUs > 0 {
		durationMs := window.DurationUs / 1000
		if target > durationMs {
			target = durationMs
		}
	}
	_ = m.coordinator.SeekTo(m.windowIndex, target)
}

func (m *model) seekTrack(delta int) {
	next := m.windowIndex + delta
	if next < 0 || next >= m.tl.WindowCount() {
		return
	}
	_ = m.coordinator.SeekTo(next, 0)
}

func nextRepeatMode(mode capability.RepeatMode) capability.RepeatMode {
	switch mode {
	case capability.RepeatOff:
		return capability.RepeatOne
	case capability.RepeatOne:
		return capability.RepeatAll
	default:
		return capability.RepeatOff
	}
}
