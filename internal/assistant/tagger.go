package assistant

import (
	"context"
	"sync"
	"time"

	"github.com/llehouerou/novatone/internal/cache"
	"github.com/llehouerou/novatone/internal/track"
)

const (
	moodCacheTTL       = 24 * time.Hour
	defaultTagParallel = 4
)

// MoodTagger classifies tracks and remembers the answers.
type MoodTagger struct {
	assistant *Assistant
	cache     cache.Cache
	parallel  int
}

// NewMoodTagger creates a tagger. A nil cache disables memoization.
func NewMoodTagger(a *Assistant, c cache.Cache) *MoodTagger {
	if c == nil {
		c = cache.Noop{}
	}
	return &MoodTagger{assistant: a, cache: c, parallel: defaultTagParallel}
}

// Tag returns t with its mood set. Tracks that already carry a mood are returned unchanged.
func (m *MoodTagger) Tag(ctx context.Context, t track.Track) track.Track {
	if t.Mood != nil && *t.Mood != "" {
		return t
	}
	key := "mood:" + t.ID
	if b, ok := m.cache.Get(ctx, key); ok {
		return t.WithMood(string(b))
	}

	mood := m.assistant.Mood(ctx, t.Title, t.Artist)
	// Fallback answers are not remembered so a later call can still succeed.
	if mood != FallbackMood {
		m.cache.Set(ctx, key, []byte(mood), moodCacheTTL)
	}
	return t.WithMood(mood)
}

// TagAll tags tracks concurrently and preserves order.
func (m *MoodTagger) TagAll(ctx context.Context, tracks []track.Track) []track.Track {
	out := make([]track.Track, len(tracks))
	sem := make(chan struct{}, m.parallel)
	var wg sync.WaitGroup
	for i, t := range tracks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
				out[i] = m.Tag(ctx, t)
			case <-ctx.Done():
				out[i] = t
			}
		}()
	}
	wg.Wait()
	return out
}
