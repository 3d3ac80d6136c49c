package mpvrenderer

import (
	"fmt"

	"github.com/driftplay/player/coordinator"
	"github.com/driftplay/player/log"
	"github.com/driftplay/player/message"
	"github.com/driftplay/player/skipmarkers"
)

// Skipper schedules intro/outro auto-skips for one window as positioned
// PlayerMessages rather than polling the current position on a timer.
type Skipper struct {
	Times *skipmarkers.SkipTimes
	mpv   *MPV
}

// NewSkipper creates a new Skipper instance.
func NewSkipper(mpv *MPV, times *skipmarkers.SkipTimes) *Skipper {
	return &Skipper{
		Times: times,
		mpv:   mpv,
	}
}

// Schedule registers this window's intro/outro skip points on the
// coordinator's message queue as positioned, self-deleting PlayerMessages
// targeting windowIndex. Routed through the coordinator's public facade
// rather than a raw *message.Queue, since the internal dispatcher is not
// itself exposed outside the coordinator package.
func (s *Skipper) Schedule(c *coordinator.Coordinator, windowIndex int) {
	if s.Times == nil {
		return
	}

	if s.Times.HasIntro {
		target := message.Target{WindowIndex: windowIndex, PositionMs: int64(s.Times.Opening.Start * 1000)}
		end := s.Times.Opening.End
		c.CreateMessage(target).WithHandler(func(message.Payload) error {
			log.Infof("skipping intro to %.2fs", end)
			if err := s.mpv.Seek(end); err != nil {
				return fmt.Errorf("skip intro seek: %w", err)
			}
			return nil
		}).WithDeleteAfterDelivery(true).Send()
	}

	if s.Times.HasOutro {
		target := message.Target{WindowIndex: windowIndex, PositionMs: int64(s.Times.Ending.Start * 1000)}
		end := s.Times.Ending.End
		c.CreateMessage(target).WithHandler(func(message.Payload) error {
			log.Infof("skipping outro to %.2fs", end)
			if err := s.mpv.Seek(end); err != nil {
				return fmt.Errorf("skip outro seek: %w", err)
			}
			return nil
		}).WithDeleteAfterDelivery(true).Send()
	}
}

// ApplyChapters sends chapter markers to the player for visual feedback.
func (s *Skipper) ApplyChapters() error {
	if s.Times == nil {
		return nil
	}

	var chapters []map[string]interface{}

	chapters = append(chapters, map[string]interface{}{
		"title": "Part A",
		"time":  0.0,
	})

	if s.Times.HasIntro {
		chapters = append(chapters, map[string]interface{}{
			"title": "Opening",
			"time":  s.Times.Opening.Start,
		})
		chapters = append(chapters, map[string]interface{}{
			"title": "Part B",
			"time":  s.Times.Opening.End,
		})
	}

	if s.Times.HasOutro {
		chapters = append(chapters, map[string]interface{}{
			"title": "Ending",
			"time":  s.Times.Ending.Start,
		})
		chapters = append(chapters, map[string]interface{}{
			"title": "Preview / Next",
			"time":  s.Times.Ending.End,
		})
	}

	return s.mpv.SetChapters(chapters)
}
