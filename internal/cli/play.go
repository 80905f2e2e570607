package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/stderr"
	"github.com/llehouerou/novatone/internal/ui/nowplaying"
)

var playCmd = &cobra.Command{
	Use:   "play [query]",
	Short: "Open the player, on a search or on the trending page",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlayer(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
}

func runPlayer(ctx context.Context, query string) error {
	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStore()
	if err != nil {
		return err
	}

	// Audio backends print to fd 2; keep that off the screen while the UI runs.
	if capture, err := stderr.Redirect(a.logger.Named("audio")); err != nil {
		a.logger.Warn("stderr capture unavailable", zap.Error(err))
	} else {
		a.closers = append(a.closers, capture.Close)
	}

	sess, err := a.openSession(ctx, store)
	if err != nil {
		return err
	}

	return nowplaying.Run(ctx, nowplaying.Deps{
		Catalog:  a.catalog,
		Playback: sess.playback,
		Effects:  sess.engine.Effects(),
		Store:    store,
		Query:    query,
	})
}
