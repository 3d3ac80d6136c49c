package tui

import (
	"fmt"

	"github.com/driftplay/player/icon"
	"github.com/driftplay/player/playback"
	"github.com/driftplay/player/style"
	"github.com/muesli/reflow/wrap"
)

func (m *model) View() string {
	if m.quitting {
		return ""
	}

	title := m.title
	if title == "" {
		if window, ok := m.tl.WindowAt(m.windowIndex); ok {
			title = window.UriTag
		}
	}
	if title == "" {
		title = "(no media)"
	}

	wrapWidth := m.width
	if wrapWidth <= 0 {
		wrapWidth = 80
	}

	header := style.Bold(wrap.String(title, wrapWidth))
	if m.resumed {
		header += style.Fg(style.Overlay)(" (resumed)")
	}

	status := m.statusLine()

	duration := int64(0)
	if window, ok := m.tl.WindowAt(m.windowIndex); ok {
		duration = window.DurationUs / 1000
	}
	bar := m.progressC.ViewAs(fraction(m.positionMs, duration))
	clock := fmt.Sprintf("%s / %s", formatMs(m.positionMs), formatMs(duration))

	body := fmt.Sprintf("%s\n\n%s\n\n%s\n%s\n", header, status, bar, clock)

	if m.playbackErr != nil {
		errMsg := wrap.String(icon.Get(icon.Fail)+" "+m.playbackErr.Error(), wrapWidth)
		body += "\n" + style.Fg(style.Red)(errMsg) + "\n"
	}

	body += "\n" + m.helpC.View(m.keymap)
	return body
}

func (m *model) statusLine() string {
	playIcon := icon.Play
	if m.isPlaying {
		playIcon = icon.Pause
	}
	stateGlyph := icon.Get(playIcon)
	if m.state == playback.StateBuffering || m.isLoading {
		stateGlyph = m.spinnerC.View() + " " + icon.Get(icon.Loading)
	}

	flags := ""
	if m.shuffleEnabled {
		flags += " " + icon.Get(icon.Shuffle)
	}
	if m.repeatMode != 0 {
		flags += " " + icon.Get(icon.Repeat) + m.repeatMode.String()
	}

	return fmt.Sprintf("%s %s%s", stateGlyph, m.state.String(), flags)
}

func fraction(positionMs, durationMs int64) float64 {
	if durationMs <= 0 {
		return 0
	}
	f := float64(positionMs) / float64(durationMs)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func formatMs(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
