package icon

// Icon identifies a single UI symbol rendered by Get.
type Icon int

const (
	Play Icon = iota
	Pause
	Loading
	Success
	Fail
	Seek
	Shuffle
	Repeat
	Volume
	Progress
)

var icons = map[Icon]*iconDef{
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   "play",
		kaomoji: "(•̀ᴗ•́)",
		squares: "▶",
	},
	Pause: {
		emoji:   "⏸️",
		nerd:    "",
		plain:   "pause",
		kaomoji: "(-_-)",
		squares: "⏸",
	},
	Loading: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "loading",
		kaomoji: "(・_・?)",
		squares: "◔",
	},
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "ok",
		kaomoji: "(^_^)",
		squares: "■",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "error",
		kaomoji: "(x_x)",
		squares: "□",
	},
	Seek: {
		emoji:   "⏩",
		nerd:    "",
		plain:   "seek",
		kaomoji: "(~_~)",
		squares: "»",
	},
	Shuffle: {
		emoji:   "🔀",
		nerd:    "",
		plain:   "shuffle",
		kaomoji: "(⊙_⊙)",
		squares: "◇",
	},
	Repeat: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "repeat",
		kaomoji: "(o_o)",
		squares: "○",
	},
	Volume: {
		emoji:   "🔊",
		nerd:    "",
		plain:   "volume",
		kaomoji: "(^o^)",
		squares: "●",
	},
	Progress: {
		emoji:   "⚙️",
		nerd:    "",
		plain:   "...",
		kaomoji: "(-_-;)",
		squares: "▨",
	},
}
