package nowplaying

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/novatone/internal/audio/effects"
	"github.com/llehouerou/novatone/internal/errmsg"
	"github.com/llehouerou/novatone/internal/playback"
	"github.com/llehouerou/novatone/internal/track"
)

const tickInterval = 500 * time.Millisecond

// TracksLoadedMsg carries a catalog page.
type TracksLoadedMsg struct {
	Tracks []track.Track
	Query  string // empty for trending
	Offset int
}

// TickMsg refreshes the playback snapshot.
type TickMsg time.Time

// StatusMsg shows a one-line message, usually an error.
type StatusMsg struct {
	Text  string
	Error bool
}

// FavoriteMsg reports the result of a favorite toggle.
type FavoriteMsg struct {
	TrackID  string
	Favorite bool
	Err      error
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func loadTrendingCmd(ctx context.Context, c Catalog, offset int) tea.Cmd {
	return func() tea.Msg {
		return TracksLoadedMsg{Tracks: c.Trending(ctx, offset), Offset: offset}
	}
}

func searchCmd(ctx context.Context, c Catalog, query string, offset int) tea.Cmd {
	return func() tea.Msg {
		return TracksLoadedMsg{Tracks: c.Search(ctx, query, offset), Query: query, Offset: offset}
	}
}

func playCmd(ctx context.Context, svc playback.Service, t track.Track, queue []track.Track) tea.Cmd {
	return func() tea.Msg {
		if err := svc.Play(ctx, t, queue); err != nil {
			return StatusMsg{Text: errmsg.FormatWith(errmsg.OpPlaybackStart, t.Title, err), Error: true}
		}
		return nil
	}
}

func playbackCmd(ctx context.Context, op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := op(ctx); err != nil {
			return StatusMsg{Text: errmsg.Format(errmsg.OpPlaybackStart, err), Error: true}
		}
		return nil
	}
}

func toggleFavoriteCmd(ctx context.Context, s Store, t track.Track) tea.Cmd {
	return func() tea.Msg {
		fav, err := s.ToggleFavorite(ctx, t)
		return FavoriteMsg{TrackID: t.ID, Favorite: fav, Err: err}
	}
}

func saveEffectsCmd(ctx context.Context, s Store, settings effects.Settings) tea.Cmd {
	return func() tea.Msg {
		if err := s.SaveEffects(ctx, settings); err != nil {
			return StatusMsg{Text: errmsg.Format(errmsg.OpEffectsSave, err), Error: true}
		}
		return nil
	}
}
