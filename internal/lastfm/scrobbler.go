package lastfm

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/errmsg"
	"github.com/llehouerou/novatone/internal/playback"
	"github.com/llehouerou/novatone/internal/track"
)

// Scrobbler follows playback events and reports plays to a Sender.
type Scrobbler struct {
	sender Sender
	logger *zap.Logger
	now    func() time.Time

	mu           sync.Mutex
	current      *track.Track
	startedAt    time.Time
	playingSince time.Time
	played       time.Duration
	playing      bool
}

// NewScrobbler creates a scrobbler.
func NewScrobbler(sender Sender, logger *zap.Logger) *Scrobbler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scrobbler{sender: sender, logger: logger, now: time.Now}
}

// Run consumes sub until it closes or ctx is done, then flushes the current track.
func (s *Scrobbler) Run(ctx context.Context, sub *playback.Subscription) {
	for {
		select {
		case <-ctx.Done():
			s.Flush()
			return
		case <-sub.Done:
			s.Flush()
			return
		case e := <-sub.TrackChanged:
			if e.Current != nil {
				s.TrackStarted(*e.Current)
			}
		case e := <-sub.StateChanged:
			s.StateChanged(e.Current)
		}
	}
}

// TrackStarted scrobbles the previous track if it qualifies and announces t.
func (s *Scrobbler) TrackStarted(t track.Track) {
	s.mu.Lock()
	now := s.now()
	prev := s.finishLocked(now)
	s.current = &t
	s.startedAt = now
	s.playingSince = now
	s.played = 0
	s.playing = true
	s.mu.Unlock()

	s.submit(prev)
	s.report(errmsg.OpLastfmNowPlaying, t, s.sender.UpdateNowPlaying(FromTrack(t, now)))
}

// StateChanged accumulates play time across pauses.
func (s *Scrobbler) StateChanged(state playback.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	now := s.now()
	switch {
	case state == playback.StatePlaying && !s.playing:
		s.playing = true
		s.playingSince = now
	case state != playback.StatePlaying && s.playing:
		s.playing = false
		s.played += now.Sub(s.playingSince)
	}
}

// Flush scrobbles the current track if it qualifies and forgets it.
func (s *Scrobbler) Flush() {
	s.mu.Lock()
	prev := s.finishLocked(s.now())
	s.mu.Unlock()
	s.submit(prev)
}

func (s *Scrobbler) finishLocked(now time.Time) *ScrobbleTrack {
	if s.current == nil {
		return nil
	}
	played := s.played
	if s.playing {
		played += now.Sub(s.playingSince)
	}
	t := *s.current
	s.current = nil
	s.playing = false

	st := FromTrack(t, s.startedAt)
	if !ShouldScrobble(played, st.Duration) {
		return nil
	}
	return &st
}

func (s *Scrobbler) submit(st *ScrobbleTrack) {
	if st == nil {
		return
	}
	if err := s.sender.Scrobble(*st); err != nil {
		s.logger.Warn(errmsg.Format(errmsg.OpLastfmScrobble, err), zap.String("track", st.Track))
		return
	}
	s.logger.Debug("scrobbled", zap.String("artist", st.Artist), zap.String("track", st.Track))
}

func (s *Scrobbler) report(op errmsg.Op, t track.Track, err error) {
	if err == nil || errors.Is(err, ErrNotAuthenticated) {
		return
	}
	s.logger.Warn(errmsg.Format(op, err), zap.String("track", t.ID))
}
