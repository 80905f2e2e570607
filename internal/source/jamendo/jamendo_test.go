package jamendo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/novatone/internal/source"
	"github.com/llehouerou/novatone/internal/track"
)

const samplePayload = `{
  "headers": {"status": "success"},
  "results": [
    {"id": "1532", "name": "Morning", "artist_name": "Ana", "album_name": "Dawn",
     "album_image": "http://img.jamendo.com/a.jpg", "audio": "http://mp3.jamendo.com/1532", "duration": 215},
    {"id": 77, "name": "", "artist_name": "", "album_name": "",
     "image": "https://img.jamendo.com/b.jpg", "audio": "https://mp3.jamendo.com/77", "duration": "bad"},
    {"id": "9", "name": "No audio"},
    "garbage",
    {"id": "10", "name": "Float", "audio": "https://mp3.jamendo.com/10", "duration": "182.7"}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(source.NewFetcher(source.FetcherConfig{Name: "jamendo"}), Config{
		ClientID: "cid",
		Limit:    20,
		BaseURL:  srv.URL,
	})
}

func TestParse(t *testing.T) {
	c := New(nil, Config{})

	got := c.Parse([]byte(samplePayload))

	require.Len(t, got, 3)

	assert.Equal(t, "jam-1532", got[0].ID)
	assert.Equal(t, "Morning", got[0].Title)
	assert.Equal(t, "Ana", got[0].Artist)
	assert.Equal(t, "Dawn", got[0].Album)
	assert.Equal(t, "https://img.jamendo.com/a.jpg", got[0].Cover)
	assert.Equal(t, "https://mp3.jamendo.com/1532", got[0].URL)
	assert.Equal(t, 215, got[0].Duration)
	assert.Equal(t, track.SourceJamendo, got[0].Source)

	assert.Equal(t, "jam-77", got[1].ID)
	assert.Equal(t, "Untitled", got[1].Title)
	assert.Equal(t, "Unknown Artist", got[1].Artist)
	assert.Equal(t, "Jamendo Mix", got[1].Album)
	assert.Equal(t, "https://img.jamendo.com/b.jpg", got[1].Cover)
	assert.Equal(t, 0, got[1].Duration)

	assert.Equal(t, "jam-10", got[2].ID)
	assert.Equal(t, 182, got[2].Duration)
	assert.Equal(t, track.PlaceholderCover("10"), got[2].Cover)
}

func TestParse_CoercesMistypedFields(t *testing.T) {
	c := New(nil, Config{})

	got := c.Parse([]byte(`{"results": [{"id": 1, "name": 2024, "artist_name": {"x": 1}, "audio": "http://x/1"}]}`))

	require.Len(t, got, 1)
	assert.Equal(t, "jam-1", got[0].ID)
	assert.Equal(t, "2024", got[0].Title)
	assert.Equal(t, "Unknown Artist", got[0].Artist)
	assert.Equal(t, "https://x/1", got[0].URL)
}

func TestParse_StableIDs(t *testing.T) {
	c := New(nil, Config{})
	a := c.Parse([]byte(samplePayload))
	b := c.Parse([]byte(samplePayload))
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}
}

func TestParse_NonArrayResults(t *testing.T) {
	c := New(nil, Config{})
	for _, payload := range []string{
		`{"results": {"id": "1"}}`,
		`{"results": null}`,
		`{}`,
		`[]`,
		`not json`,
	} {
		assert.Empty(t, c.Parse([]byte(payload)), payload)
	}
}

func TestFetchTrending_Query(t *testing.T) {
	var got url.Values
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		got = r.URL.Query()
		_, _ = w.Write([]byte(samplePayload))
	})

	tracks, err := source.Trending(context.Background(), c, 40)

	require.NoError(t, err)
	assert.Len(t, tracks, 3)
	assert.Equal(t, "/tracks/", path)
	assert.Equal(t, "cid", got.Get("client_id"))
	assert.Equal(t, "json", got.Get("format"))
	assert.Equal(t, "20", got.Get("limit"))
	assert.Equal(t, "40", got.Get("offset"))
	assert.Equal(t, "popularity_month", got.Get("order"))
	assert.Empty(t, got.Get("search"))
}

func TestFetchSearch_Query(t *testing.T) {
	var got url.Values
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"results": []}`))
	})

	tracks, err := source.Search(context.Background(), c, "lo fi & chill", 0)

	require.NoError(t, err)
	assert.Empty(t, tracks)
	assert.Equal(t, "lo fi & chill", got.Get("search"))
	assert.Equal(t, "popularity_total", got.Get("order"))
	assert.Equal(t, "0", got.Get("offset"))
}

func TestFetch_ErrorStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := c.FetchTrending(context.Background(), 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "jamendo")
}
