package playback

import (
	"context"
	"sync"
	"time"

	"github.com/llehouerou/novatone/internal/track"
)

type fakeResumer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeResumer) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

func (f *fakeResumer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeRecorder struct {
	mu     sync.Mutex
	plays  []string
	listen time.Duration
}

func (f *fakeRecorder) RecordPlay(_ context.Context, t track.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, t.ID)
	return nil
}

func (f *fakeRecorder) AddListenTime(_ context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listen += d
	return nil
}

func (f *fakeRecorder) Plays() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.plays...)
}

func (f *fakeRecorder) Listen() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listen
}

func tracks(ids ...string) []track.Track {
	out := make([]track.Track, len(ids))
	for i, id := range ids {
		out[i] = track.Track{ID: id, Title: "Title " + id, URL: "https://example.com/" + id + ".mp3"}
	}
	return out
}

func playCallIDs(calls []track.Track) []string {
	out := make([]string, len(calls))
	for i, t := range calls {
		out[i] = t.ID
	}
	return out
}
