package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/novatone/internal/library"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the most played tracks and total listening time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		store, err := a.openStore()
		if err != nil {
			return err
		}
		stats, err := store.TopStats(ctx, statsLimit)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		listened, err := store.ListenTime(ctx)
		if err != nil {
			return fmt.Errorf("load listening time: %w", err)
		}

		cmd.Printf("Listened for %s across %s tracks.\n",
			listened.Round(time.Second), humanize.Comma(int64(len(stats))))
		if len(stats) > 0 {
			cmd.Println(statsTable(stats, time.Now()))
		}
		return nil
	},
}

var favoritesCmd = &cobra.Command{
	Use:   "favorites",
	Short: "List favorite tracks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		store, err := a.openStore()
		if err != nil {
			return err
		}
		favs, err := store.Favorites(cmd.Context())
		if err != nil {
			return fmt.Errorf("load favorites: %w", err)
		}
		return writeTrackTable(cmd.OutOrStdout(), favs)
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "limit", 10, "number of tracks to show (0 for all)")
	rootCmd.AddCommand(statsCmd, favoritesCmd)
}

func statsTable(stats []library.TrackStat, now time.Time) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "TITLE", "ARTIST", "PLAYS", "LAST PLAYED")
	for i, s := range stats {
		tbl.Row(strconv.Itoa(i+1), s.Title, s.Artist, humanize.Comma(int64(s.Count)), humanize.RelTime(s.LastPlayed, now, "ago", "from now"))
	}
	return tbl.Render()
}
