package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/llehouerou/novatone/internal/aggregate"
	"github.com/llehouerou/novatone/internal/assistant"
	"github.com/llehouerou/novatone/internal/track"
)

type listFlags struct {
	offset int
	pages  int
	asJSON bool
	moods  bool
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.offset, "offset", 0, "result offset")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print tracks as JSON")
	cmd.Flags().BoolVar(&f.moods, "moods", false, "tag each track with a mood from the assistant")
}

var trendingFlags listFlags

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending tracks from every source",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		var tracks []track.Track
		if trendingFlags.pages > 1 {
			offsets := make([]int, trendingFlags.pages)
			for i := range offsets {
				offsets[i] = trendingFlags.offset + i*a.cfg.GetSourcesConfig().PageSize
			}
			tracks = a.catalog.TrendingPages(cmd.Context(), offsets...)
		} else {
			tracks = a.catalog.Trending(cmd.Context(), trendingFlags.offset)
		}
		return printTracks(cmd, a, tracks, trendingFlags)
	},
}

var searchFlags listFlags

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search every source, results interleaved by rank",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		if !aggregate.ValidQuery(query) {
			return fmt.Errorf("query must be at least %d characters", aggregate.MinQueryRunes)
		}

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		return printTracks(cmd, a, a.catalog.Search(cmd.Context(), query, searchFlags.offset), searchFlags)
	},
}

func init() {
	trendingFlags.register(trendingCmd)
	trendingCmd.Flags().IntVar(&trendingFlags.pages, "pages", 1, "number of consecutive pages to merge")
	searchFlags.register(searchCmd)
	rootCmd.AddCommand(trendingCmd, searchCmd)
}

func printTracks(cmd *cobra.Command, a *app, tracks []track.Track, f listFlags) error {
	if f.moods {
		tracks = assistant.NewMoodTagger(a.asst, a.cache).TagAll(cmd.Context(), tracks)
	}
	out := cmd.OutOrStdout()
	if f.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(tracks)
	}
	return writeTrackTable(out, tracks)
}

func writeTrackTable(w io.Writer, tracks []track.Track) error {
	if len(tracks) == 0 {
		_, err := fmt.Fprintln(w, "No tracks found.")
		return err
	}
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "TITLE", "ARTIST", "LENGTH", "SOURCE", "MOOD", "ID")
	for i, t := range tracks {
		tbl.Row(strconv.Itoa(i+1), t.Title, t.Artist, formatLength(t.Duration), string(t.Source), t.MoodOr("-"), t.ID)
	}
	_, err := fmt.Fprintln(w, tbl.Render())
	return err
}

func formatLength(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	d := time.Duration(seconds) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
