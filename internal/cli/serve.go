package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/assistant"
	"github.com/llehouerou/novatone/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog and assistant as a local JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		deps := server.Deps{
			Catalog:   a.catalog,
			Assistant: a.asst,
			Tagger:    assistant.NewMoodTagger(a.asst, a.cache),
			Logger:    a.logger.Named("server"),
		}
		if store, err := a.openStore(); err != nil {
			a.logger.Warn("library unavailable, chat history and stats disabled", zap.Error(err))
		} else {
			deps.Store = store
		}

		addr := serveAddr
		if addr == "" {
			addr = a.cfg.GetServerConfig().Addr
		}
		cmd.Printf("Listening on http://%s\n", addr)
		return server.New(deps).ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}
