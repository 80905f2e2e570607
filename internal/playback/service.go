package playback

import (
	"context"
	"time"

	"github.com/llehouerou/novatone/internal/track"
)

// Service owns the playback state: the current track, queue, history,
// repeat and shuffle modes. It drives a player.Interface and advances the
// queue when a track ends.
type Service interface {
	// Playback control
	Play(ctx context.Context, t track.Track, queue []track.Track) error
	PlayIndex(ctx context.Context, index int) error
	Pause()
	Resume(ctx context.Context) error
	Toggle(ctx context.Context) error
	Stop()
	Next(ctx context.Context) error
	Previous(ctx context.Context) error
	Seek(delta time.Duration)
	SeekTo(position time.Duration)
	SetVolume(level float64)
	Volume() float64

	// Queue manipulation
	AddToQueue(tracks ...track.Track)
	RemoveFromQueue(index int) bool
	ClearQueue()

	// State queries
	State() State
	CurrentTrack() *track.Track
	Position() time.Duration
	Duration() time.Duration
	Progress() float64
	Queue() []track.Track
	QueueIndex() int
	History() []track.Track
	Snapshot() Snapshot

	// Mode control
	RepeatMode() RepeatMode
	SetRepeatMode(mode RepeatMode)
	CycleRepeatMode() RepeatMode
	Shuffle() bool
	SetShuffle(enabled bool)
	ToggleShuffle() bool

	// Event subscription
	Subscribe() *Subscription

	// Lifecycle
	Close() error
}

// Resumer wakes the audio output before a track starts.
type Resumer interface {
	Resume() error
}

// Recorder persists listening activity.
type Recorder interface {
	RecordPlay(ctx context.Context, t track.Track) error
	AddListenTime(ctx context.Context, d time.Duration) error
}
