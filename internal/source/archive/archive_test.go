package archive

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/novatone/internal/source"
	"github.com/llehouerou/novatone/internal/track"
)

const samplePayload = `{
  "responseHeader": {"status": 0},
  "response": {"numFound": 3, "start": 0, "docs": [
    {"identifier": "jazz_1955", "title": "Blue Hour", "creator": "Quartet"},
    {"identifier": "comp_22", "title": ["", "Second Title"], "creator": ["First", "Second"]},
    {"identifier": "bare"},
    {"title": "no identifier"}
  ]}
}`

func TestParse(t *testing.T) {
	c := New(nil, Config{})

	got := c.Parse([]byte(samplePayload))

	require.Len(t, got, 3)

	assert.Equal(t, "arc-jazz_1955", got[0].ID)
	assert.Equal(t, "Blue Hour", got[0].Title)
	assert.Equal(t, "Quartet", got[0].Artist)
	assert.Equal(t, "Internet Archive", got[0].Album)
	assert.Equal(t, "https://archive.org/services/img/jazz_1955", got[0].Cover)
	assert.Equal(t, "https://archive.org/download/jazz_1955/jazz_1955_vbr.m3u", got[0].URL)
	assert.Equal(t, 300, got[0].Duration)
	assert.Equal(t, track.SourceArchive, got[0].Source)

	assert.Equal(t, "Second Title", got[1].Title)
	assert.Equal(t, "First", got[1].Artist)

	assert.Equal(t, "Unknown Archive Work", got[2].Title)
	assert.Equal(t, "Archive Contributor", got[2].Artist)
}

func TestParse_CoercesMistypedFields(t *testing.T) {
	c := New(nil, Config{})

	got := c.Parse([]byte(`{"response": {"docs": [{"identifier": 1999, "title": 2024, "creator": [{}, 7]}]}}`))

	require.Len(t, got, 1)
	assert.Equal(t, "arc-1999", got[0].ID)
	assert.Equal(t, "2024", got[0].Title)
	assert.Equal(t, "7", got[0].Artist)
}

func TestParse_Empty(t *testing.T) {
	c := New(nil, Config{})
	for _, payload := range []string{``, `{}`, `{"response": {"docs": {}}}`, `[]`} {
		assert.Empty(t, c.Parse([]byte(payload)), payload)
	}
}

func TestFetchTrending_MakesNoRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := New(source.NewFetcher(source.FetcherConfig{Name: "archive"}), Config{BaseURL: srv.URL})

	tracks, err := source.Trending(context.Background(), c, 0)

	require.NoError(t, err)
	assert.Empty(t, tracks)
	assert.Zero(t, hits.Load())
}

func TestFetchSearch_Query(t *testing.T) {
	var got *url.URL
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := New(source.NewFetcher(source.FetcherConfig{Name: "archive"}), Config{Limit: 15, BaseURL: srv.URL})

	tracks, err := source.Search(context.Background(), c, "blue", 30)

	require.NoError(t, err)
	assert.Len(t, tracks, 3)
	require.NotNil(t, got)
	assert.Equal(t, "/advancedsearch.php", got.Path)
	q := got.Query()
	assert.Equal(t, "title:(blue) AND mediatype:audio", q.Get("q"))
	assert.Equal(t, []string{"identifier", "title", "creator"}, q["fl[]"])
	assert.Equal(t, "15", q.Get("rows"))
	assert.Equal(t, "30", q.Get("start"))
	assert.Equal(t, "json", q.Get("output"))
}
