package tui

import "github.com/charmbracelet/bubbles/key"

// keymap is the dashboard's fixed set of bindings; unlike the content
// browser's per-state keymap, a playback dashboard has one screen and one
// binding set for its whole lifetime.
type keymap struct {
	quit, forceQuit,
	playPause,
	seekForward, seekBackward,
	nextTrack, prevTrack,
	shuffle, repeat,
	showHelp key.Binding
}

func newKeymap() *keymap {
	return &keymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "seek +10s"),
		),
		seekBackward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "seek -10s"),
		),
		nextTrack: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next"),
		),
		prevTrack: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "previous"),
		),
		shuffle: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "toggle shuffle"),
		),
		repeat: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "cycle repeat"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// ShortHelp and FullHelp satisfy help.KeyMap so helpC.View can render the
// binding list directly from this struct.
func (k *keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.playPause, k.seekBackward, k.seekForward, k.showHelp, k.quit}
}

func (k *keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.playPause, k.seekBackward, k.seekForward},
		{k.nextTrack, k.prevTrack},
		{k.shuffle, k.repeat},
		{k.showHelp, k.quit, k.forceQuit},
	}
}
