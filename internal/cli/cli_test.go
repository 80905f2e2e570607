package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/cache"
	"github.com/llehouerou/novatone/internal/config"
	"github.com/llehouerou/novatone/internal/library"
	"github.com/llehouerou/novatone/internal/track"
)

func testApp(cfg *config.Config) *app {
	return &app{cfg: cfg, logger: zap.NewNop(), cache: cache.NewMemory()}
}

func adapterNames(a *app) []string {
	var names []string
	for _, ad := range a.adapters() {
		names = append(names, ad.Name())
	}
	return names
}

func TestAdapters_DefaultOrder(t *testing.T) {
	got := adapterNames(testApp(&config.Config{}))
	want := []string{"Jamendo", "Audius", "HearThis", "Archive"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("adapters = %v, want %v", got, want)
	}
}

func TestAdapters_ConfiguredOrder(t *testing.T) {
	cfg := &config.Config{Sources: config.SourcesConfig{Order: []string{"Audius", " archive ", "bogus"}}}

	got := adapterNames(testApp(cfg))

	if strings.Join(got, ",") != "Audius,Archive" {
		t.Errorf("adapters = %v", got)
	}
}

func TestAdapters_LocalAddedWithLibrarySources(t *testing.T) {
	cfg := &config.Config{
		LibrarySources: []string{t.TempDir()},
		Sources:        config.SourcesConfig{Order: []string{"jamendo"}},
	}

	got := adapterNames(testApp(cfg))

	if strings.Join(got, ",") != "Jamendo,Local" {
		t.Errorf("adapters = %v", got)
	}
	if len(cfg.Sources.Order) != 1 {
		t.Error("configured order must not be modified")
	}
}

func TestAdapters_LocalWithoutFoldersSkipped(t *testing.T) {
	cfg := &config.Config{Sources: config.SourcesConfig{Order: []string{"local"}}}

	if got := adapterNames(testApp(cfg)); len(got) != 0 {
		t.Errorf("adapters = %v, want none", got)
	}
}

func TestCompleter_DisabledWithoutKey(t *testing.T) {
	if c := testApp(&config.Config{}).completer(); c != nil {
		t.Errorf("completer = %T, want nil", c)
	}
	cfg := &config.Config{Assistant: config.AssistantConfig{APIKey: "k"}}
	if c := testApp(cfg).completer(); c == nil {
		t.Error("completer should be configured")
	}
}

func TestWriteTrackTable(t *testing.T) {
	var buf bytes.Buffer
	tracks := []track.Track{
		{ID: "jam-1", Title: "Night Drive", Artist: "Neon", Duration: 245, Source: track.SourceJamendo},
		track.Track{ID: "aud-2", Title: "Rain", Artist: "Cloud", Source: track.SourceAudius}.WithMood("Calm"),
	}

	if err := writeTrackTable(&buf, tracks); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"TITLE", "Night Drive", "4:05", "jamendo", "Calm", "aud-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTrackTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := writeTrackTable(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "No tracks found." {
		t.Errorf("got %q", buf.String())
	}
}

func TestFormatLength(t *testing.T) {
	tests := map[int]string{0: "-", -3: "-", 59: "0:59", 61: "1:01", 3600: "60:00"}
	for in, want := range tests {
		if got := formatLength(in); got != want {
			t.Errorf("formatLength(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestStatsTable(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := statsTable([]library.TrackStat{
		{Title: "Loop", Artist: "Band", Count: 1234, LastPlayed: now.Add(-2 * time.Hour)},
	}, now)

	for _, want := range []string{"Loop", "1,234", "2 hours ago"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats table missing %q:\n%s", want, out)
		}
	}
}

func TestSearchCmd_RejectsShortQuery(t *testing.T) {
	err := searchCmd.RunE(searchCmd, []string{" x "})
	if err == nil || !strings.Contains(err.Error(), "at least 2") {
		t.Errorf("err = %v", err)
	}
}

func TestPlaylistTable(t *testing.T) {
	out := playlistTable([]library.Playlist{
		{ID: "p1", Name: "Road trip", Tracks: make([]track.Track, 3), CreatedAt: time.Now()},
	})

	for _, want := range []string{"p1", "Road trip", "3", "NAME"} {
		if !strings.Contains(out, want) {
			t.Errorf("playlist table missing %q:\n%s", want, out)
		}
	}
}
