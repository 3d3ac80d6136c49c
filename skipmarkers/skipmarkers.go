// Package skipmarkers provides a client for a configurable HTTP skip-marker
// lookup service, enabling automated retrieval of opening and ending skip
// timestamps for a piece of media. The lookup key is an opaque caller-chosen
// string (typically the resume store's content key) rather than any one
// catalog's identifier scheme.
package skipmarkers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/driftplay/player/filesystem"
	"github.com/driftplay/player/key"
	"github.com/driftplay/player/log"
	"github.com/driftplay/player/network"
	"github.com/driftplay/player/where"
	"github.com/metafates/gache"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

// SkipTimes encapsulates the temporal intervals for opening and ending sequences.
type SkipTimes struct {
	Opening  Interval `json:"opening"`
	Ending   Interval `json:"ending"`
	HasIntro bool     `json:"has_intro"`
	HasOutro bool     `json:"has_outro"`
}

// Interval represents a continuous temporal range defined in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// apiResponse defines the internal structural mapping for skip-marker service responses.
type apiResponse struct {
	Found   bool `json:"found"`
	Results []struct {
		Interval struct {
			StartTime float64 `json:"start_time"`
			EndTime   float64 `json:"end_time"`
		} `json:"interval"`
		SkipType string `json:"skip_type"`
	} `json:"results"`
}

// lookupCache is a disk-backed map cache, one entry per mediaKey, shared
// under a single expiry window.
type lookupCache struct {
	internal *gache.Cache[map[string]*SkipTimes]
	mu       sync.RWMutex
}

func (c *lookupCache) get(mediaKey string) mo.Option[*SkipTimes] {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, expired, err := c.internal.Get()
	if err != nil || expired || data == nil {
		return mo.None[*SkipTimes]()
	}

	times, ok := data[mediaKey]
	if !ok {
		return mo.None[*SkipTimes]()
	}
	return mo.Some(times)
}

func (c *lookupCache) set(mediaKey string, times *SkipTimes) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, expired, err := c.internal.Get()
	if err != nil {
		return err
	}

	if expired || data == nil {
		data = make(map[string]*SkipTimes)
	}
	data[mediaKey] = times
	return c.internal.Set(data)
}

// cacher stores lookup results for 48 hours, avoiding a repeat HTTP round
// trip every time the same window is prepared again.
var cacher = &lookupCache{
	internal: gache.New[map[string]*SkipTimes](
		&gache.Options{
			Path:       where.SkipMarkers(),
			Lifetime:   time.Hour * 48,
			FileSystem: &filesystem.GacheFs{},
		},
	),
}

// GetSkipTimes retrieves the skip intervals for mediaKey, first from the
// local disk cache and otherwise from the configured skip-marker base URL.
// Returns nil (not an error) if the service is unreachable, returns a
// non-200 status, or has no data — skip markers are an enhancement, never a
// hard dependency of playback.
func GetSkipTimes(mediaKey string) (*SkipTimes, error) {
	base := viper.GetString(key.SkipMarkersBaseURL)
	if base == "" || mediaKey == "" {
		return nil, nil
	}

	if cached := cacher.get(mediaKey); cached.IsPresent() {
		return cached.MustGet(), nil
	}

	times, err := fetchSkipTimes(base, mediaKey)
	if err != nil || times == nil {
		return times, err
	}

	if err := cacher.set(mediaKey, times); err != nil {
		log.Warnf("persist skip-marker cache entry: %v", err)
	}
	return times, nil
}

func fetchSkipTimes(base, mediaKey string) (*SkipTimes, error) {
	requestURL := fmt.Sprintf("%s/%s?types=op&types=ed", base, url.PathEscape(mediaKey))

	resp, err := network.Client.Get(requestURL)
	if err != nil {
		log.Warnf("skip-marker request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("skip-marker service returned status %d", resp.StatusCode)
		return nil, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read skip-marker response: %w", err)
	}

	var data apiResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("parse skip-marker response: %w", err)
	}

	if !data.Found || len(data.Results) == 0 {
		return nil, nil
	}

	times := &SkipTimes{}
	for _, result := range data.Results {
		switch result.SkipType {
		case "op":
			times.Opening = Interval{Start: result.Interval.StartTime, End: result.Interval.EndTime}
			times.HasIntro = true
		case "ed":
			times.Ending = Interval{Start: result.Interval.StartTime, End: result.Interval.EndTime}
			times.HasOutro = true
		}
	}

	return times, nil
}
