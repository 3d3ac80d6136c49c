package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/driftplay/player/coordinator"
	"github.com/driftplay/player/key"
	"github.com/driftplay/player/log"
	"github.com/driftplay/player/metrics"
	"github.com/driftplay/player/mpvrenderer"
	"github.com/driftplay/player/playlist"
	"github.com/driftplay/player/resume"
	"github.com/driftplay/player/skipmarkers"
	"github.com/driftplay/player/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var playCmd = &cobra.Command{
	Use:   "play <url> [url...]",
	Short: "Queue one or more media items and open the status dashboard",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		continueFlag, _ := cmd.Flags().GetBool("continue")
		startWindow, _ := cmd.Flags().GetInt("start-window")
		handleErr(runPlayback(args, continueFlag, startWindow))
	},
}

func init() {
	playCmd.Flags().BoolP("continue", "c", false, "Resume playback from the saved position for this media")
	playCmd.Flags().IntP("start-window", "w", -1, "Start at this playlist index instead of the first item")
	rootCmd.AddCommand(playCmd)
}

// runPlayback wires one mpv-backed MediaSource per url into a fresh
// coordinator, hands the coordinator to the status dashboard, and persists
// the reached position to the resume store once the dashboard exits.
func runPlayback(args []string, continueFlag bool, startWindow int) error {
	if len(args) == 0 {
		return errors.New("no media url specified")
	}
	CheckDependencies()

	holders := make([]*playlist.Holder, 0, len(args))
	sources := make([]*mpvrenderer.Source, 0, len(args))
	for _, url := range args {
		source := mpvrenderer.NewSource(url, url, nil)
		sources = append(sources, source)
		holders = append(holders, playlist.NewHolder(source, url))
	}

	title := args[0]
	c := coordinator.New(nil)
	defer c.Release()

	startPositionMs := int64(0)
	if continueFlag {
		saved, err := resume.Get()
		if err != nil {
			log.Warnf("read resume store: %v", err)
		} else if pos, ok := saved[title]; ok {
			startWindow, startPositionMs = pos.WindowIndex, pos.PositionMs
		}
	}

	if err := c.SetMediaItems(holders, startWindow, startPositionMs); err != nil {
		return fmt.Errorf("queue media: %w", err)
	}
	c.Prepare()
	c.SetPlayWhenReady(true)

	// The renderer has no push notification for playback position or
	// readiness; poll it on the same one-second ticker the teacher already
	// used for resume bookkeeping. Each tick both delivers any PlayerMessage
	// due at that position (spec §4.5) and reports renderer state so the
	// dispatcher can leave BUFFERING for READY/ENDED (spec §4.6) — otherwise
	// scheduled messages and the BUFFERING->READY transition never happen.
	renderer := mpvrenderer.NewRenderer(sources[0].MPV())
	sources[0].MPV().StartIPCTicker(func(timePos int, duration int) {
		c.CheckMessagesAt(int64(timePos) * 1000)
		c.ReportRendererState(duration > 0, renderer.IsEnded())
	})

	if viper.GetBool(key.SkipMarkersEnable) {
		go scheduleSkipMarkers(c, sources[0], title)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	metrics.Serve(ctx)
	go func() {
		<-ctx.Done()
		c.Stop(false)
	}()

	err := tui.Run(&tui.Options{Coordinator: c, Title: title, Continue: continueFlag})

	if viper.GetBool(key.ResumeSaveOnStop) {
		positionMs := c.CurrentPosition()
		durationMs := int64(0)
		if window, ok := c.Timeline().WindowAt(c.CurrentWindowIndex()); ok {
			durationMs = window.DurationUs / 1000
		}
		if saveErr := resume.Save(title, c.CurrentWindowIndex(), positionMs, durationMs); saveErr != nil {
			log.Warnf("persist resume position: %v", saveErr)
		}
	}
	for _, source := range sources {
		source.Release()
	}
	return err
}

func scheduleSkipMarkers(c *coordinator.Coordinator, source *mpvrenderer.Source, mediaKey string) {
	times, err := skipmarkers.GetSkipTimes(mediaKey)
	if err != nil || times == nil {
		return
	}
	mpvrenderer.NewSkipper(source.MPV(), times).Schedule(c, 0)
}
