package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/llehouerou/novatone/internal/aggregate"
	"github.com/llehouerou/novatone/internal/assistant"
	"github.com/llehouerou/novatone/internal/library"
	"github.com/llehouerou/novatone/internal/source"
	"github.com/llehouerou/novatone/internal/track"
)

type fakeAdapter struct {
	name   string
	tracks []track.Track
	err    error
}

func (f *fakeAdapter) Name() string         { return f.name }
func (f *fakeAdapter) Source() track.Source { return track.Source(f.name) }

func (f *fakeAdapter) Parse(p []byte) []track.Track {
	var out []track.Track
	_ = json.Unmarshal(p, &out)
	return out
}

func (f *fakeAdapter) FetchTrending(context.Context, int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return json.Marshal(f.tracks)
}

func (f *fakeAdapter) FetchSearch(context.Context, string, int) ([]byte, error) {
	return f.FetchTrending(context.Background(), 0)
}

type staticCompleter struct {
	reply string
	err   error
}

func (c staticCompleter) Complete(context.Context, []assistant.ChatMessage) (string, error) {
	return c.reply, c.err
}

func newCatalog(adapters ...source.Adapter) *aggregate.Service {
	return aggregate.New(adapters, aggregate.WithRand(rand.New(rand.NewPCG(1, 2))))
}

func newStore(t *testing.T) *library.Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	s, err := library.New(db)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestTrending_PartialFailureIsOK(t *testing.T) {
	s := New(Deps{Catalog: newCatalog(
		&fakeAdapter{name: "jam", tracks: []track.Track{{ID: "jam-1"}, {ID: "jam-2"}}},
		&fakeAdapter{name: "aud", err: errors.New("down")},
	)})

	rec := do(t, s, http.MethodGet, "/api/trending?offset=20", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp tracksResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 20, resp.Offset)
	assert.ElementsMatch(t, []string{"jam-1", "jam-2"}, ids(resp.Tracks))
}

func TestTrending_AllFailingReturnsEmptyList(t *testing.T) {
	s := New(Deps{Catalog: newCatalog(&fakeAdapter{name: "aud", err: errors.New("down")})})

	rec := do(t, s, http.MethodGet, "/api/trending", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tracks":[],"offset":0}`, rec.Body.String())
}

func TestTrending_BadOffset(t *testing.T) {
	s := New(Deps{Catalog: newCatalog()})

	for _, q := range []string{"abc", "-1"} {
		rec := do(t, s, http.MethodGet, "/api/trending?offset="+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "offset %q", q)
	}
}

func TestSearch_InterleavesAndValidates(t *testing.T) {
	s := New(Deps{Catalog: newCatalog(
		&fakeAdapter{name: "a", tracks: []track.Track{{ID: "a1"}, {ID: "a2"}}},
		&fakeAdapter{name: "b", tracks: []track.Track{{ID: "b1"}}},
	)})

	rec := do(t, s, http.MethodGet, "/api/search?q=lofi", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp tracksResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"a1", "b1", "a2"}, ids(resp.Tracks))

	rec = do(t, s, http.MethodGet, "/api/search?q=x", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"tracks":[],"offset":0}`, rec.Body.String())
}

func TestSearch_TagsMoodsOnRequest(t *testing.T) {
	a := assistant.New(staticCompleter{reply: "Calm"}, nil)
	s := New(Deps{
		Catalog:   newCatalog(&fakeAdapter{name: "a", tracks: []track.Track{{ID: "a1"}}}),
		Assistant: a,
		Tagger:    assistant.NewMoodTagger(a, nil),
	})

	rec := do(t, s, http.MethodGet, "/api/search?q=rain&moods=1", "")

	var resp tracksResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Tracks, 1)
	assert.Equal(t, "Calm", resp.Tracks[0].MoodOr(""))
}

func TestHealth(t *testing.T) {
	s := New(Deps{Catalog: newCatalog(&fakeAdapter{name: "Jamendo"}), Store: newStore(t)})

	rec := do(t, s, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","sources":["Jamendo"],"assistant":false,"store":true}`, rec.Body.String())
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestChat_WithStore(t *testing.T) {
	store := newStore(t)
	s := New(Deps{
		Catalog:   newCatalog(),
		Assistant: assistant.New(staticCompleter{reply: "Hi!"}, nil),
		Store:     store,
	})

	rec := do(t, s, http.MethodPost, "/api/chat", `{"message":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Hi!", resp.Reply)
	require.NotEmpty(t, resp.SessionID)

	session, err := store.Session(context.Background(), resp.SessionID)
	require.NoError(t, err)
	assert.Len(t, session.Messages, 2)
}

func TestChat_Errors(t *testing.T) {
	s := New(Deps{Catalog: newCatalog(), Store: newStore(t)})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"empty message", `{"message":"  "}`, http.StatusBadRequest},
		{"unknown session", `{"message":"hi","sessionId":"nope"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/chat", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestChat_OfflineAssistantWithoutStore(t *testing.T) {
	s := New(Deps{Catalog: newCatalog()})

	rec := do(t, s, http.MethodPost, "/api/chat", `{"message":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp chatResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, assistant.FallbackChat, resp.Reply)
	assert.Empty(t, resp.SessionID)
}

func TestRecommendations(t *testing.T) {
	s := New(Deps{
		Catalog:   newCatalog(),
		Assistant: assistant.New(staticCompleter{reply: `["Dub","Soul"]`}, nil),
	})

	rec := do(t, s, http.MethodPost, "/api/recommendations", `{"history":["A","B"]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genres":["Dub","Soul"]}`, rec.Body.String())
}

func TestRecommendations_Fallback(t *testing.T) {
	s := New(Deps{
		Catalog:   newCatalog(),
		Assistant: assistant.New(staticCompleter{err: errors.New("down")}, nil),
	})

	rec := do(t, s, http.MethodPost, "/api/recommendations", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"genres":["Lo-Fi","Synthwave","Jazz"]}`, rec.Body.String())
}

func TestStats(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.RecordPlay(context.Background(), track.Track{ID: "jam-1", Title: "One"}))
	s := New(Deps{Catalog: newCatalog(), Store: store})

	rec := do(t, s, http.MethodGet, "/api/stats?limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var stats []library.TrackStat
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	require.Len(t, stats, 1)
	assert.Equal(t, "One", stats[0].Title)

	rec = do(t, s, http.MethodGet, "/api/stats?limit=x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPreflight(t *testing.T) {
	s := New(Deps{Catalog: newCatalog()})

	rec := do(t, s, http.MethodOptions, "/api/chat", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := New(Deps{Catalog: newCatalog()})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func ids(tracks []track.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}
