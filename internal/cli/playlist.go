package cli

import (
	"context"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/novatone/internal/errmsg"
	"github.com/llehouerou/novatone/internal/library"
)

// withStore runs fn against the library and closes everything afterwards.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, store *library.Store) error) error {
	a, err := loadApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	return fn(cmd.Context(), store)
}

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"pl"},
	Short:   "Manage playlists",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, store *library.Store) error {
			playlists, err := store.Playlists(ctx)
			if err != nil {
				return err
			}
			if len(playlists) == 0 {
				cmd.Println("No playlists yet.")
				return nil
			}
			cmd.Println(playlistTable(playlists))
			return nil
		})
	},
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *library.Store) error {
			p, err := store.CreatePlaylist(ctx, args[0])
			if err != nil {
				return errmsg.WrapWith(errmsg.OpPlaylistCreate, args[0], err)
			}
			cmd.Println(p.ID)
			return nil
		})
	},
}

var playlistRenameCmd = &cobra.Command{
	Use:   "rename <playlist-id> <name>",
	Short: "Rename a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *library.Store) error {
			if err := store.RenamePlaylist(ctx, args[0], args[1]); err != nil {
				return errmsg.WrapWith(errmsg.OpPlaylistRename, args[0], err)
			}
			return nil
		})
	},
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <playlist-id>",
	Short: "Delete a playlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *library.Store) error {
			if err := store.DeletePlaylist(ctx, args[0]); err != nil {
				return errmsg.WrapWith(errmsg.OpPlaylistDelete, args[0], err)
			}
			return nil
		})
	},
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <playlist-id>",
	Short: "List the tracks of a playlist, most recently added first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *library.Store) error {
			p, err := store.Playlist(ctx, args[0])
			if err != nil {
				return err
			}
			cmd.Printf("%s (%d tracks)\n", p.Name, len(p.Tracks))
			return writeTrackTable(cmd.OutOrStdout(), p.Tracks)
		})
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <playlist-id> <track-id>",
	Short: "Add a played or favorite track to the front of a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *library.Store) error {
			t, err := store.Track(ctx, args[1])
			if err != nil {
				return errmsg.WrapWith(errmsg.OpPlaylistAddTrack, args[1], err)
			}
			if err := store.AddToPlaylist(ctx, args[0], t); err != nil {
				return errmsg.WrapWith(errmsg.OpPlaylistAddTrack, t.String(), err)
			}
			return nil
		})
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist-id> <track-id>",
	Short: "Remove a track from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, store *library.Store) error {
			if err := store.RemoveFromPlaylist(ctx, args[0], args[1]); err != nil {
				return errmsg.WrapWith(errmsg.OpPlaylistRemove, args[1], err)
			}
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(
		playlistCreateCmd,
		playlistRenameCmd,
		playlistDeleteCmd,
		playlistShowCmd,
		playlistAddCmd,
		playlistRemoveCmd,
	)
	rootCmd.AddCommand(playlistCmd)
}

func playlistTable(playlists []library.Playlist) string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("ID", "NAME", "TRACKS", "CREATED")
	for _, p := range playlists {
		tbl.Row(p.ID, p.Name, strconv.Itoa(len(p.Tracks)), humanize.Time(p.CreatedAt))
	}
	return tbl.Render()
}
