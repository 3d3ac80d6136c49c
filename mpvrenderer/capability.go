package mpvrenderer

import (
	"context"
	"fmt"
	"time"

	"github.com/driftplay/player/capability"
	"github.com/driftplay/player/log"
	"github.com/driftplay/player/timeline"
)

// Source adapts a single mpv process to the capability.MediaSource contract:
// preparing it means starting mpv and polling for duration until it becomes
// known, at which point a one-window, one-period Timeline is reported.
type Source struct {
	URL     string
	Title   string
	Headers map[string]string

	mpv     *MPV
	periods map[timeline.PeriodUid]*mpvPeriod
}

// NewSource wraps url/title/headers as a lazily-prepared media source backed
// by a freshly constructed mpv process.
func NewSource(url, title string, headers map[string]string) *Source {
	return &Source{URL: url, Title: title, Headers: headers, mpv: NewMPV(), periods: make(map[timeline.PeriodUid]*mpvPeriod)}
}

// MPV exposes the underlying process for collaborators (Skipper, TUI status
// polling) that need direct IPC access beyond the MediaSource contract.
func (s *Source) MPV() *MPV { return s.mpv }

// Prepare starts mpv and polls for its duration in the background, invoking
// onTimelineChanged once real duration information is available.
func (s *Source) Prepare(ctx context.Context, onTimelineChanged func(timeline.Timeline)) error {
	if err := s.mpv.Play(s.URL, s.Title, s.Headers); err != nil {
		return fmt.Errorf("start mpv: %w", err)
	}

	go func() {
		ticker := time.NewTicker(300 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.mpv.Wait():
				return
			case <-ticker.C:
				dur, err := s.mpv.GetDuration()
				if err != nil || dur <= 0 {
					continue
				}
				onTimelineChanged(s.timelineFor(dur))
				return
			}
		}
	}()
	return nil
}

func (s *Source) timelineFor(durationSeconds float64) timeline.Timeline {
	uid := timeline.NewPeriodUid()
	period := timeline.Period{Uid: uid, DurationUs: int64(durationSeconds * 1e6)}
	window := timeline.Window{
		IsSeekable:        true,
		IsDynamic:         false,
		DurationUs:        period.DurationUs,
		FirstPeriodIndex:  0,
		LastPeriodIndex:   0,
		UriTag:            s.Title,
	}
	return timeline.Timeline{Windows: []timeline.Window{window}, Periods: []timeline.Period{period}}
}

// MaybeThrowSourceError returns an error once the mpv process has exited,
// whether or not it ever reported a valid timeline, and nil while it runs.
func (s *Source) MaybeThrowSourceError() error {
	select {
	case <-s.mpv.Wait():
		if !s.mpv.IsRunning() {
			return fmt.Errorf("mpv process exited unexpectedly")
		}
	default:
	}
	return nil
}

// CreatePeriod instantiates the opaque period handle for id; mpv has no
// separate period-creation step, so this simply registers bookkeeping.
func (s *Source) CreatePeriod(id timeline.MediaPeriodId) (capability.MediaPeriod, error) {
	p := &mpvPeriod{uid: id.PeriodUid}
	s.periods[id.PeriodUid] = p
	return p, nil
}

// ReleasePeriod drops the bookkeeping entry for a previously created period.
func (s *Source) ReleasePeriod(p capability.MediaPeriod) {
	if mp, ok := p.(*mpvPeriod); ok {
		delete(s.periods, mp.uid)
	}
}

// Release shuts down the mpv process.
func (s *Source) Release() {
	if err := s.mpv.Close(); err != nil {
		log.Warnf("close mpv: %v", err)
	}
}

type mpvPeriod struct {
	uid timeline.PeriodUid
}

func (p *mpvPeriod) PeriodUid() timeline.PeriodUid { return p.uid }

// Renderer adapts mpv's pause/seek/property surface to the single-track
// capability.Renderer contract; mpv multiplexes audio+video+text internally,
// so one Renderer instance represents the whole sink.
type Renderer struct {
	mpv     *MPV
	enabled bool
}

// NewRenderer wraps mpv as the sole Renderer fed by source's periods.
func NewRenderer(mpv *MPV) *Renderer {
	return &Renderer{mpv: mpv}
}

func (r *Renderer) TrackType() string             { return "audio-video" }
func (r *Renderer) SupportsFormat(string) bool     { return true }
func (r *Renderer) Enable() error                  { r.enabled = true; return nil }
func (r *Renderer) Start() error                   { return r.mpv.Set("pause", false) }
func (r *Renderer) Stop() error                    { return r.mpv.Set("pause", true) }
func (r *Renderer) Disable() error                 { r.enabled = false; return nil }
func (r *Renderer) ResetPosition(positionUs int64) error {
	return r.mpv.Seek(float64(positionUs) / 1e6)
}
func (r *Renderer) IsEnded() bool {
	paused, err := r.mpv.GetPausedStatus()
	if err != nil {
		return false
	}
	pos, posErr := r.mpv.GetTimePos()
	dur, durErr := r.mpv.GetDuration()
	return paused && posErr == nil && durErr == nil && dur > 0 && pos >= dur-0.5
}

func (r *Renderer) HandleMessage(messageType int, payload any) error {
	if messageType != capability.SetSurfaceMessageType {
		return nil
	}
	return nil
}
