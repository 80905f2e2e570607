package nowplaying

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings of the now-playing screen.
type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Play      key.Binding
	Toggle    key.Binding
	Next      key.Binding
	Previous  key.Binding
	SeekBack  key.Binding
	SeekFwd   key.Binding
	Search    key.Binding
	Trending  key.Binding
	More      key.Binding
	Repeat    key.Binding
	Shuffle   key.Binding
	Bass      key.Binding
	Nightcore key.Binding
	Spatial   key.Binding
	Favorite  key.Binding
	VolUp     key.Binding
	VolDown   key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Play:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		Next:      key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next")),
		Previous:  key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "previous")),
		SeekBack:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "-5s")),
		SeekFwd:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "+5s")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Trending:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trending")),
		More:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "load more")),
		Repeat:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "repeat")),
		Shuffle:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "shuffle")),
		Bass:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bass boost")),
		Nightcore: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "nightcore")),
		Spatial:   key.NewBinding(key.WithKeys("8"), key.WithHelp("8", "8D audio")),
		Favorite:  key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favorite")),
		VolUp:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "volume up")),
		VolDown:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "volume down")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Play, k.Search, k.Nightcore, k.Spatial, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Play, k.Toggle, k.Next, k.Previous},
		{k.SeekBack, k.SeekFwd, k.VolUp, k.VolDown, k.Repeat, k.Shuffle},
		{k.Search, k.Trending, k.More, k.Favorite},
		{k.Bass, k.Nightcore, k.Spatial, k.Help, k.Quit},
	}
}
