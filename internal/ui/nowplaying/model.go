// Package nowplaying is the terminal screen: a track list, the player bar
// and effect toggles.
package nowplaying

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/novatone/internal/audio/effects"
	"github.com/llehouerou/novatone/internal/errmsg"
	"github.com/llehouerou/novatone/internal/playback"
	"github.com/llehouerou/novatone/internal/track"
)

const (
	seekStep   = 5 * time.Second
	volumeStep = 0.05
)

// bassSteps is the cycle of bass boost levels in dB.
var bassSteps = []float64{0, 6, 12}

// Catalog supplies tracks.
type Catalog interface {
	Trending(ctx context.Context, offset int) []track.Track
	Search(ctx context.Context, query string, offset int) []track.Track
}

// Effects is the effect chain the screen toggles.
type Effects interface {
	Settings() effects.Settings
	SetBassBoost(db float64)
	SetNightcore(active bool)
	ToggleSpatial(active bool)
}

// Store persists favorites and effect settings.
type Store interface {
	ToggleFavorite(ctx context.Context, t track.Track) (bool, error)
	SaveEffects(ctx context.Context, s effects.Settings) error
}

// Deps are the screen's collaborators. Effects and Store may be nil.
type Deps struct {
	Catalog  Catalog
	Playback playback.Service
	Effects  Effects
	Store    Store
	Query    string // initial search; empty shows trending
}

// Model is the bubbletea model of the screen.
type Model struct {
	deps Deps
	ctx  context.Context
	keys KeyMap

	tracks    []track.Track
	cursor    int
	offset    int
	query     string
	loading   bool
	searching bool
	favorites map[string]bool

	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	snap   playback.Snapshot
	fx     effects.Settings
	status StatusMsg

	width  int
	height int
}

// New creates the screen.
func New(ctx context.Context, deps Deps) Model {
	in := textinput.New()
	in.Placeholder = "artist, title, mood..."
	in.Prompt = "/ "
	in.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = mutedStyle

	m := Model{
		deps:      deps,
		ctx:       ctx,
		keys:      DefaultKeyMap(),
		query:     strings.TrimSpace(deps.Query),
		loading:   true,
		favorites: make(map[string]bool),
		input:     in,
		spinner:   sp,
		help:      help.New(),
		width:     80,
		height:    24,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(0), m.spinner.Tick, tickCmd())
}

func (m Model) load(offset int) tea.Cmd {
	if m.query != "" {
		return searchCmd(m.ctx, m.deps.Catalog, m.query, offset)
	}
	return loadTrendingCmd(m.ctx, m.deps.Catalog, offset)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		return m, nil

	case TracksLoadedMsg:
		return m.handleTracks(msg), nil

	case TickMsg:
		m.refresh()
		return m, tickCmd()

	case StatusMsg:
		m.status = msg
		return m, nil

	case FavoriteMsg:
		if msg.Err != nil {
			m.status = StatusMsg{Text: errmsg.Format(errmsg.OpFavoriteToggle, msg.Err), Error: true}
			return m, nil
		}
		m.favorites[msg.TrackID] = msg.Favorite
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleTracks(msg TracksLoadedMsg) Model {
	// Ignore pages for a query that is no longer shown.
	if msg.Query != m.query {
		return m
	}
	m.loading = false
	if msg.Offset == 0 {
		m.tracks = msg.Tracks
		m.cursor = 0
	} else {
		m.tracks = track.Dedupe(append(m.tracks, msg.Tracks...))
	}
	m.offset = msg.Offset
	if len(m.tracks) == 0 {
		m.status = StatusMsg{Text: "No tracks found"}
	} else {
		m.status = StatusMsg{}
	}
	return m
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.input.Blur()
		m.query = strings.TrimSpace(m.input.Value())
		m.loading = true
		return m, m.load(0)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	svc := m.deps.Playback
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor = max(0, m.cursor-1)
	case key.Matches(msg, m.keys.Down):
		m.cursor = min(max(0, len(m.tracks)-1), m.cursor+1)
	case key.Matches(msg, m.keys.Play):
		if t, ok := m.selected(); ok {
			return m, playCmd(m.ctx, svc, t, m.tracks)
		}
	case key.Matches(msg, m.keys.Toggle):
		return m, playbackCmd(m.ctx, svc.Toggle)
	case key.Matches(msg, m.keys.Next):
		return m, playbackCmd(m.ctx, svc.Next)
	case key.Matches(msg, m.keys.Previous):
		return m, playbackCmd(m.ctx, svc.Previous)
	case key.Matches(msg, m.keys.SeekBack):
		svc.Seek(-seekStep)
	case key.Matches(msg, m.keys.SeekFwd):
		svc.Seek(seekStep)
	case key.Matches(msg, m.keys.VolUp):
		svc.SetVolume(min(1, svc.Volume()+volumeStep))
	case key.Matches(msg, m.keys.VolDown):
		svc.SetVolume(max(0, svc.Volume()-volumeStep))
	case key.Matches(msg, m.keys.Repeat):
		svc.CycleRepeatMode()
	case key.Matches(msg, m.keys.Shuffle):
		svc.ToggleShuffle()
	case key.Matches(msg, m.keys.Search):
		m.searching = true
		m.input.SetValue(m.query)
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Trending):
		m.query = ""
		m.loading = true
		return m, m.load(0)
	case key.Matches(msg, m.keys.More):
		if m.loading || len(m.tracks) == 0 {
			return m, nil
		}
		m.loading = true
		return m, m.load(len(m.tracks))
	case key.Matches(msg, m.keys.Favorite):
		if t, ok := m.selected(); ok && m.deps.Store != nil {
			return m, toggleFavoriteCmd(m.ctx, m.deps.Store, t)
		}
	case key.Matches(msg, m.keys.Bass), key.Matches(msg, m.keys.Nightcore), key.Matches(msg, m.keys.Spatial):
		return m.handleEffectKey(msg)
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	m.refresh()
	return m, nil
}

func (m Model) handleEffectKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fx := m.deps.Effects
	if fx == nil {
		m.status = StatusMsg{Text: "Effects unavailable"}
		return m, nil
	}
	cur := fx.Settings()
	switch {
	case key.Matches(msg, m.keys.Bass):
		fx.SetBassBoost(nextBass(cur.BassBoost))
	case key.Matches(msg, m.keys.Nightcore):
		fx.SetNightcore(!cur.Nightcore)
	case key.Matches(msg, m.keys.Spatial):
		fx.ToggleSpatial(!cur.Spatial)
	}
	m.fx = fx.Settings()
	if m.deps.Store == nil {
		return m, nil
	}
	return m, saveEffectsCmd(m.ctx, m.deps.Store, m.fx)
}

func nextBass(cur float64) float64 {
	for _, step := range bassSteps {
		if step > cur {
			return step
		}
	}
	return bassSteps[0]
}

func (m Model) selected() (track.Track, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tracks) {
		return track.Track{}, false
	}
	return m.tracks[m.cursor], true
}

func (m *Model) refresh() {
	if m.deps.Playback != nil {
		m.snap = m.deps.Playback.Snapshot()
	}
	if m.deps.Effects != nil {
		m.fx = m.deps.Effects.Settings()
	}
}

// Run starts the screen in the alternate buffer and blocks until quit.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(ctx, deps), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
