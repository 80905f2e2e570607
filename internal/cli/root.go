// Package cli holds the novatone commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "novatone",
	Short: "NovaTone streams free music from several catalogs with live effects.",
	Long: `NovaTone aggregates Jamendo, Audius, HearThis.at, the Internet Archive and
local folders into one catalog, plays tracks through an effects chain
(bass boost, equalizer, nightcore, 8D rotation) and talks music with an
AI assistant.

Run without a command to open the player on the trending page.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPlayer(cmd.Context(), "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "extra config file, read after the default locations")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
}

// Execute runs the root command and exits on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
