package playback

import (
	"math/rand/v2"

	"github.com/llehouerou/novatone/internal/track"
)

// DefaultHistorySize caps how many played tracks are remembered.
const DefaultHistorySize = 50

// queue is the list playback walks through plus the history of played tracks.
// It is not safe for concurrent use; the service guards it.
type queue struct {
	tracks       []track.Track
	currentIndex int // -1 if nothing playing
	history      []track.Track
	historySize  int
	pick         func(n int) int
}

func newQueue(historySize int, pick func(n int) int) *queue {
	if historySize <= 0 {
		historySize = DefaultHistorySize
	}
	if pick == nil {
		pick = rand.IntN
	}
	return &queue{currentIndex: -1, historySize: historySize, pick: pick}
}

// Current returns the current track, or nil.
func (q *queue) Current() *track.Track {
	if q.currentIndex < 0 || q.currentIndex >= len(q.tracks) {
		return nil
	}
	t := q.tracks[q.currentIndex]
	return &t
}

// Replace swaps the queue contents and points at t, which is added when absent.
func (q *queue) Replace(tracks []track.Track, t track.Track) int {
	q.tracks = track.Dedupe(append([]track.Track(nil), tracks...))
	idx := track.IndexOf(q.tracks, t.ID)
	if idx < 0 {
		q.tracks = append(q.tracks, t)
		idx = len(q.tracks) - 1
	}
	q.currentIndex = idx
	return idx
}

// Add appends tracks not already queued.
func (q *queue) Add(tracks ...track.Track) {
	q.tracks = track.Dedupe(append(q.tracks, tracks...))
}

// RemoveAt removes the track at index, keeping the current track where possible.
func (q *queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	switch {
	case q.currentIndex > index:
		q.currentIndex--
	case q.currentIndex == index && q.currentIndex >= len(q.tracks):
		q.currentIndex = len(q.tracks) - 1
	}
	return true
}

// Clear removes all tracks.
func (q *queue) Clear() {
	q.tracks = nil
	q.currentIndex = -1
}

// JumpTo makes index current and returns its track.
func (q *queue) JumpTo(index int) *track.Track {
	if index < 0 || index >= len(q.tracks) {
		return nil
	}
	q.currentIndex = index
	return q.Current()
}

// NextIndex returns the index to play after the current one, or -1.
// Manual skips wrap around; automatic advance wraps only with repeat all.
func (q *queue) NextIndex(shuffle bool, wrap bool) int {
	n := len(q.tracks)
	if n == 0 {
		return -1
	}
	if shuffle && n > 1 {
		return q.randomOther()
	}
	next := q.currentIndex + 1
	if next < n {
		return next
	}
	if wrap {
		return 0
	}
	return -1
}

// PreviousIndex returns the index before the current one, wrapping to the end.
func (q *queue) PreviousIndex() int {
	n := len(q.tracks)
	if n == 0 {
		return -1
	}
	if q.currentIndex <= 0 {
		return n - 1
	}
	return q.currentIndex - 1
}

func (q *queue) randomOther() int {
	n := len(q.tracks)
	if q.currentIndex < 0 {
		return q.pick(n)
	}
	// pick among n-1 slots, skipping the current one
	i := q.pick(n - 1)
	if i >= q.currentIndex {
		i++
	}
	return i
}

// Remember puts t at the front of the history, dropping an older entry for the same track.
func (q *queue) Remember(t track.Track, at int64) {
	t.Timestamp = at
	h := make([]track.Track, 0, len(q.history)+1)
	h = append(h, t)
	for _, old := range q.history {
		if old.ID != t.ID {
			h = append(h, old)
		}
	}
	if len(h) > q.historySize {
		h = h[:q.historySize]
	}
	q.history = h
}

// Tracks returns a copy of the queue.
func (q *queue) Tracks() []track.Track {
	return append([]track.Track(nil), q.tracks...)
}

// History returns a copy of the history, most recent first.
func (q *queue) History() []track.Track {
	return append([]track.Track(nil), q.history...)
}

func (q *queue) Len() int { return len(q.tracks) }
