// Package aggregate fans requests out to every source adapter and merges the results.
package aggregate

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/source"
	"github.com/llehouerou/novatone/internal/track"
)

// MinQueryRunes is the shortest trimmed query that reaches the providers.
const MinQueryRunes = 2

// Service merges results from a fixed, ordered set of adapters.
// It keeps no state between calls besides the shuffle source.
type Service struct {
	adapters []source.Adapter
	logger   *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithRand sets the shuffle source used by Trending.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New creates a service over adapters. Their order is the interleave order for Search.
func New(adapters []source.Adapter, opts ...Option) *Service {
	s := &Service{
		adapters: adapters,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		now := uint64(time.Now().UnixNano()) //nolint:gosec // seed only
		s.rng = rand.New(rand.NewPCG(now, now>>1))
	}
	return s
}

// Adapters returns the adapters in declared order.
func (s *Service) Adapters() []source.Adapter {
	return s.adapters
}

// Trending returns every adapter's trending page at offset, concatenated then shuffled.
func (s *Service) Trending(ctx context.Context, offset int) []track.Track {
	lists := s.fanOut(ctx, "trending", func(ctx context.Context, a source.Adapter) ([]track.Track, error) {
		return source.Trending(ctx, a, offset)
	})

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return ConcatShuffle(s.rng, lists...)
}

// TrendingPages fetches several trending pages from every adapter and returns
// them adapter by adapter, page by page, without shuffling.
func (s *Service) TrendingPages(ctx context.Context, offsets ...int) []track.Track {
	lists := s.fanOut(ctx, "trending pages", func(ctx context.Context, a source.Adapter) ([]track.Track, error) {
		var all []track.Track
		for _, off := range offsets {
			page, err := source.Trending(ctx, a, off)
			if err != nil {
				return all, err
			}
			all = append(all, page...)
		}
		return all, nil
	})

	var merged []track.Track
	for _, l := range lists {
		merged = append(merged, l...)
	}
	return track.Dedupe(merged)
}

// Search queries every adapter and interleaves the results by rank.
// Queries shorter than MinQueryRunes after trimming return nothing without any request.
func (s *Service) Search(ctx context.Context, query string, offset int) []track.Track {
	query = strings.TrimSpace(query)
	if !ValidQuery(query) {
		return []track.Track{}
	}
	lists := s.fanOut(ctx, "search", func(ctx context.Context, a source.Adapter) ([]track.Track, error) {
		return source.Search(ctx, a, query, offset)
	})
	return Interleave(lists...)
}

// ValidQuery reports whether query is long enough to search.
func ValidQuery(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= MinQueryRunes
}

// fanOut calls fn once per adapter concurrently and waits for all of them.
// Result i belongs to adapter i; a failed adapter contributes what it returned
// before failing, usually nothing.
func (s *Service) fanOut(
	ctx context.Context,
	op string,
	fn func(context.Context, source.Adapter) ([]track.Track, error),
) [][]track.Track {
	results := make([][]track.Track, len(s.adapters))

	var wg sync.WaitGroup
	for i, a := range s.adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start := time.Now()
			tracks, err := fn(ctx, a)
			if err != nil {
				s.logger.Warn("provider failed",
					zap.String("op", op),
					zap.String("provider", a.Name()),
					zap.Duration("took", time.Since(start)),
					zap.Error(err))
			}
			results[i] = tracks
		}()
	}
	wg.Wait()

	return results
}

// Interleave takes rank 0 from each list in order, then rank 1, and so on.
// Duplicate IDs keep their first position.
func Interleave(lists ...[]track.Track) []track.Track {
	longest := 0
	total := 0
	for _, l := range lists {
		longest = max(longest, len(l))
		total += len(l)
	}

	merged := make([]track.Track, 0, total)
	for rank := range longest {
		for _, l := range lists {
			if rank < len(l) {
				merged = append(merged, l[rank])
			}
		}
	}
	return track.Dedupe(merged)
}

// ConcatShuffle concatenates lists, removes duplicate IDs and shuffles with rng.
func ConcatShuffle(rng *rand.Rand, lists ...[]track.Track) []track.Track {
	var merged []track.Track
	for _, l := range lists {
		merged = append(merged, l...)
	}
	merged = track.Dedupe(merged)
	rng.Shuffle(len(merged), func(i, j int) {
		merged[i], merged[j] = merged[j], merged[i]
	})
	return merged
}
