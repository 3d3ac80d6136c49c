// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 17

// Playback Defaults - these keys are registered with defaults in config; no playback code reads them.
const (
	PlaybackCompletionPercentage = "playback.completion_percentage"
	PlaybackDefaultRepeatMode    = "playback.default_repeat_mode"
	PlaybackDefaultShuffle       = "playback.default_shuffle"
	PlaybackSeekBackIncrementMs  = "playback.seek_back_increment_ms"
	PlaybackSeekForwardIncrement = "playback.seek_forward_increment_ms"
)

// Skip Markers - these keys configure automatic intro/outro skipping driven by positional player messages.
const (
	SkipMarkersEnable  = "skipmarkers.enable"
	SkipMarkersBaseURL = "skipmarkers.base_url"
)

// Resume Persistence - these keys govern saving and restoring playback position across sessions.
const (
	ResumeSaveOnStop = "resume.save_on_stop"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Render Backend - these keys select and configure the concrete Renderer/MediaSource adapter.
const (
	RenderBackend = "render.backend"
)

// Metrics - these keys control the Prometheus exposition endpoint.
const (
	MetricsEnable = "metrics.enable"
	MetricsAddr   = "metrics.addr"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern non-interactive application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
