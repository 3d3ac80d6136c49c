package cmd

import (
	"fmt"
	"sort"

	"github.com/driftplay/player/color"
	"github.com/driftplay/player/style"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueFindCmd)
}

// queueCmd groups commands that operate on a playlist without starting
// playback, such as locating an item by name before queuing it.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect a prospective playlist without playing it",
}

// queueFindCmd fuzzy-matches a query against a list of candidate media urls
// and reports the closest match, for use with play's --start-window flag.
var queueFindCmd = &cobra.Command{
	Use:   "find <query> <url> [url...]",
	Short: "Fuzzy-match a query against playlist item titles and report the closest one",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		query, titles := args[0], args[1:]

		ranks := fuzzy.RankFind(query, titles)
		if len(ranks) == 0 {
			handleErr(fmt.Errorf("no match found for %q", query))
		}

		sort.Sort(ranks)
		best := ranks[0]

		fmt.Printf(
			"%s index %s: %s\n",
			style.Fg(color.Green)("matched"),
			style.Fg(color.Purple)(fmt.Sprintf("%d", best.OriginalIndex)),
			style.Fg(color.Yellow)(best.Target),
		)
	},
}
