// Package resume persists the last playback position reached for each
// content URI, so a later SetMediaItems/SeekTo call can restore it.
package resume

import (
	"github.com/driftplay/player/filesystem"
	"github.com/driftplay/player/where"
	"github.com/metafates/gache"
)

// cacher provides an abstracted, disk-backed registry for playback progress records.
var cacher = gache.New[map[string]*Position](
	&gache.Options{
		Path:       where.Resume(),
		FileSystem: &filesystem.GacheFs{},
	},
)

// Position is the saved playback location for one piece of content.
type Position struct {
	WindowIndex int   `json:"window_index"`
	PositionMs  int64 `json:"position_ms"`
	DurationMs  int64 `json:"duration_ms"`
}

// Get returns the complete collection of saved positions from the persistent store.
func Get() (map[string]*Position, error) {
	cached, expired, err := cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]*Position), nil
	}
	return cached, nil
}

// Save persists windowIndex/positionMs for uriTag, keyed by content identity.
// Idempotency: a save within the last second of the known duration is treated
// as completion and removes the record instead of persisting it.
func Save(uriTag string, windowIndex int, positionMs, durationMs int64) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	if durationMs > 0 && positionMs >= durationMs-1000 {
		delete(saved, uriTag)
		return cacher.Set(saved)
	}

	saved[uriTag] = &Position{WindowIndex: windowIndex, PositionMs: positionMs, DurationMs: durationMs}
	return cacher.Set(saved)
}

// Remove permanently deletes a specific saved position from the registry.
func Remove(uriTag string) error {
	saved, err := Get()
	if err != nil {
		return err
	}

	delete(saved, uriTag)
	return cacher.Set(saved)
}
