package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/errmsg"
	"github.com/llehouerou/novatone/internal/player"
	"github.com/llehouerou/novatone/internal/track"
)

// ErrNoTrack is returned when there is nothing to play.
var ErrNoTrack = errors.New("no track to play")

// ListenInterval is how often listening time is credited while playing.
const ListenInterval = time.Second

// Verify serviceImpl implements Service at compile time.
var _ Service = (*serviceImpl)(nil)

// Option configures the service.
type Option func(*serviceImpl)

// WithResumer sets the output to wake before each start, usually the audio engine.
func WithResumer(r Resumer) Option {
	return func(s *serviceImpl) { s.resumer = r }
}

// WithRecorder sets where plays and listening time are recorded.
func WithRecorder(r Recorder) Option {
	return func(s *serviceImpl) { s.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *serviceImpl) { s.logger = l }
}

// WithPick sets the random index source used by shuffle.
func WithPick(pick func(n int) int) Option {
	return func(s *serviceImpl) { s.queue.pick = pick }
}

// WithClock sets the clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

type serviceImpl struct {
	mu sync.Mutex

	player   player.Interface
	queue    *queue
	resumer  Resumer
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time

	state   State
	current *track.Track
	repeat  RepeatMode
	shuffle bool
	gen     uint64

	subs   []*Subscription
	subsMu sync.RWMutex

	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	closed  bool
}

// New creates a playback service over p and starts its event loop.
// Close stops the loop.
func New(p player.Interface, opts ...Option) Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &serviceImpl{
		player:  p,
		queue:   newQueue(DefaultHistorySize, nil),
		logger:  zap.NewNop(),
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.run()
	return s
}

func (s *serviceImpl) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(ListenInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.player.EndedChan():
			s.handleEnded()
		case <-ticker.C:
			s.creditListenTime()
		}
	}
}

func (s *serviceImpl) creditListenTime() {
	if s.recorder == nil || s.State() != StatePlaying {
		return
	}
	if err := s.recorder.AddListenTime(s.ctx, ListenInterval); err != nil {
		s.logger.Debug("listen time not recorded", zap.Error(err))
	}
}

// handleEnded advances after a track plays to the end.
func (s *serviceImpl) handleEnded() {
	s.mu.Lock()
	if s.state != StatePlaying {
		s.mu.Unlock()
		return
	}
	var next int
	switch s.repeat {
	case RepeatOne:
		next = s.queue.currentIndex
	default:
		next = s.queue.NextIndex(s.shuffle, s.repeat == RepeatAll)
	}
	if next < 0 {
		s.setStateLocked(StateStopped)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.start(s.ctx, next); err != nil {
		s.logger.Warn("autoplay failed", zap.Error(err))
	}
}

// Play starts t with queue as the new queue. A nil queue keeps the current one.
func (s *serviceImpl) Play(ctx context.Context, t track.Track, queue []track.Track) error {
	s.mu.Lock()
	if queue == nil {
		queue = s.queue.Tracks()
	}
	idx := s.queue.Replace(queue, t)
	s.emitQueueLocked()
	s.mu.Unlock()

	return s.start(ctx, idx)
}

// PlayIndex starts the queued track at index.
func (s *serviceImpl) PlayIndex(ctx context.Context, index int) error {
	s.mu.Lock()
	valid := index >= 0 && index < s.queue.Len()
	s.mu.Unlock()
	if !valid {
		return ErrNoTrack
	}
	return s.start(ctx, index)
}

// start plays the queued track at index. The state optimistically becomes
// Playing; if the player cannot start, it reverts to Paused and an ErrorEvent
// is emitted. A newer start supersedes an older one still opening its stream.
func (s *serviceImpl) start(ctx context.Context, index int) error {
	s.mu.Lock()
	t := s.queue.JumpTo(index)
	if t == nil {
		s.mu.Unlock()
		return ErrNoTrack
	}
	prev := s.current
	s.current = t
	s.queue.Remember(*t, s.now().UnixMilli())
	s.gen++
	gen := s.gen
	s.setStateLocked(StatePlaying)
	s.emitTrackLocked(TrackChange{Previous: prev, Current: t, Index: index})
	s.mu.Unlock()

	if s.resumer != nil {
		if err := s.resumer.Resume(); err != nil {
			s.logger.Warn("audio resume failed", zap.Error(err))
		}
	}

	err := s.player.Play(ctx, *t)

	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return err
	}
	if err != nil {
		s.setStateLocked(StatePaused)
		s.emitErrorLocked(ErrorEvent{Operation: "play", TrackID: t.ID, Err: err})
		s.mu.Unlock()
		s.logger.Warn("playback start failed", zap.String("id", t.ID), zap.Error(err))
		return fmt.Errorf("play %s: %w", t.ID, err)
	}
	s.mu.Unlock()

	if s.recorder != nil {
		if err := s.recorder.RecordPlay(ctx, *t); err != nil {
			s.logger.Debug(errmsg.Format(errmsg.OpStatsRecord, err))
		}
	}
	return nil
}

// Pause pauses playback. It does nothing unless playing.
func (s *serviceImpl) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return
	}
	s.player.Pause()
	s.setStateLocked(StatePaused)
}

// Resume continues a paused track. A track that never started, or was
// stopped, is started again from the beginning.
func (s *serviceImpl) Resume(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StatePlaying {
		s.mu.Unlock()
		return nil
	}
	if s.current == nil {
		s.mu.Unlock()
		return ErrNoTrack
	}
	if s.state == StatePaused && s.player.State() == player.Paused {
		if s.resumer != nil {
			if err := s.resumer.Resume(); err != nil {
				s.logger.Warn("audio resume failed", zap.Error(err))
			}
		}
		s.player.Resume()
		s.setStateLocked(StatePlaying)
		s.mu.Unlock()
		return nil
	}
	idx := s.queue.currentIndex
	s.mu.Unlock()

	return s.start(ctx, idx)
}

// Toggle switches between playing and paused.
func (s *serviceImpl) Toggle(ctx context.Context) error {
	if s.State() == StatePlaying {
		s.Pause()
		return nil
	}
	return s.Resume(ctx)
}

// Stop stops playback. The queue and current position are kept.
func (s *serviceImpl) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.player.Stop()
	s.setStateLocked(StateStopped)
}

// Next skips forward, wrapping at the end of the queue.
func (s *serviceImpl) Next(ctx context.Context) error {
	s.mu.Lock()
	idx := s.queue.NextIndex(s.shuffle, true)
	s.mu.Unlock()
	if idx < 0 {
		return ErrNoTrack
	}
	return s.start(ctx, idx)
}

// Previous skips back, wrapping at the start of the queue.
func (s *serviceImpl) Previous(ctx context.Context) error {
	s.mu.Lock()
	idx := s.queue.PreviousIndex()
	s.mu.Unlock()
	if idx < 0 {
		return ErrNoTrack
	}
	return s.start(ctx, idx)
}

// Seek moves by delta.
func (s *serviceImpl) Seek(delta time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsActive() {
		return
	}
	s.player.Seek(delta)
	s.emitPositionLocked(s.player.Position())
}

// SeekTo moves to an absolute position.
func (s *serviceImpl) SeekTo(position time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.IsActive() {
		return
	}
	s.player.Seek(position - s.player.Position())
	s.emitPositionLocked(s.player.Position())
}

func (s *serviceImpl) SetVolume(level float64) { s.player.SetVolume(level) }
func (s *serviceImpl) Volume() float64         { return s.player.Volume() }

func (s *serviceImpl) AddToQueue(tracks ...track.Track) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Add(tracks...)
	s.emitQueueLocked()
}

func (s *serviceImpl) RemoveFromQueue(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.queue.RemoveAt(index) {
		return false
	}
	s.emitQueueLocked()
	return true
}

func (s *serviceImpl) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.Clear()
	s.emitQueueLocked()
}

// State returns the current playback state.
func (s *serviceImpl) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// CurrentTrack returns the last started track, or nil.
func (s *serviceImpl) CurrentTrack() *track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	t := *s.current
	return &t
}

func (s *serviceImpl) Position() time.Duration { return s.player.Position() }
func (s *serviceImpl) Duration() time.Duration { return s.player.Duration() }

func (s *serviceImpl) Progress() float64 {
	return Progress(s.player.Position(), s.player.Duration())
}

func (s *serviceImpl) Queue() []track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Tracks()
}

func (s *serviceImpl) QueueIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.currentIndex
}

func (s *serviceImpl) History() []track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.History()
}

// Snapshot returns a consistent copy of the playback state.
func (s *serviceImpl) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	elapsed := s.player.Position()
	duration := s.player.Duration()
	snap := Snapshot{
		Playing:  s.state == StatePlaying,
		Elapsed:  elapsed,
		Duration: duration,
		Progress: Progress(elapsed, duration),
		Volume:   s.player.Volume(),
		Repeat:   s.repeat,
		Shuffle:  s.shuffle,
		Queue:    s.queue.Tracks(),
		History:  s.queue.History(),
	}
	if s.current != nil {
		t := *s.current
		snap.Current = &t
	}
	return snap
}

func (s *serviceImpl) RepeatMode() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeat
}

func (s *serviceImpl) SetRepeatMode(mode RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.repeat == mode {
		return
	}
	s.repeat = mode
	s.emitModeLocked()
}

func (s *serviceImpl) CycleRepeatMode() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = s.repeat.Next()
	s.emitModeLocked()
	return s.repeat
}

func (s *serviceImpl) Shuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuffle
}

func (s *serviceImpl) SetShuffle(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shuffle == enabled {
		return
	}
	s.shuffle = enabled
	s.emitModeLocked()
}

func (s *serviceImpl) ToggleShuffle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffle = !s.shuffle
	s.emitModeLocked()
	return s.shuffle
}

// Subscribe creates a new event subscription.
func (s *serviceImpl) Subscribe() *Subscription {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	sub := newSubscription()
	s.subs = append(s.subs, sub)
	return sub
}

// Close stops the event loop and closes every subscription. Playback is stopped.
func (s *serviceImpl) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	<-s.stopped
	s.player.Stop()

	s.subsMu.Lock()
	for _, sub := range s.subs {
		sub.close()
	}
	s.subs = nil
	s.subsMu.Unlock()

	return nil
}

func (s *serviceImpl) setStateLocked(next State) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	s.broadcast(func(sub *Subscription) {
		offer(sub.stateCh, StateChange{Previous: prev, Current: next})
	})
}

func (s *serviceImpl) emitTrackLocked(e TrackChange) {
	s.broadcast(func(sub *Subscription) { offer(sub.trackCh, e) })
}

func (s *serviceImpl) emitQueueLocked() {
	e := QueueChange{Tracks: s.queue.Tracks(), Index: s.queue.currentIndex}
	s.broadcast(func(sub *Subscription) { offer(sub.queueCh, e) })
}

func (s *serviceImpl) emitModeLocked() {
	e := ModeChange{RepeatMode: s.repeat, Shuffle: s.shuffle}
	s.broadcast(func(sub *Subscription) { offer(sub.modeCh, e) })
}

func (s *serviceImpl) emitPositionLocked(pos time.Duration) {
	s.broadcast(func(sub *Subscription) { offer(sub.positionCh, PositionChange{Position: pos}) })
}

func (s *serviceImpl) emitErrorLocked(e ErrorEvent) {
	s.broadcast(func(sub *Subscription) { offer(sub.errorCh, e) })
}

func (s *serviceImpl) broadcast(send func(*Subscription)) {
	s.subsMu.RLock()
	defer s.subsMu.RUnlock()
	for _, sub := range s.subs {
		send(sub)
	}
}
