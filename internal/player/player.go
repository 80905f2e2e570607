// Package player is the playable element: it decodes a track from a URL or a
// local file and streams it into the output device.
package player

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/track"
)

var (
	// ErrAlreadyRouted is returned when Route is called a second time.
	ErrAlreadyRouted = errors.New("player output already routed")
	// ErrNoSource is returned when a track has neither URL nor file.
	ErrNoSource = errors.New("track has no playable source")
)

// Sink is the output device the player streams into.
type Sink interface {
	SampleRate() beep.SampleRate
	Play(s beep.Streamer) error
	Lock()
	Unlock()
}

type Player struct {
	mu     sync.Mutex
	sink   Sink
	client *http.Client
	logger *zap.Logger

	state     State
	track     *track.Track
	stream    beep.StreamSeekCloser
	format    beep.Format
	baseRatio float64
	resampler *beep.Resampler
	pitch     *pitchShifter
	ctrl      *beep.Ctrl
	gen       uint64

	// source -> volume -> [route] -> output -> sink
	source  *switchStreamer
	volume  *effects.Volume
	output  *switchStreamer
	started bool
	routed  bool

	volumeLevel    float64
	muted          bool
	rate           float64
	preservesPitch bool

	endedCh chan struct{}
	onEnded func()
}

// New creates a player streaming into sink.
func New(sink Sink, logger *zap.Logger) *Player {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Player{
		sink:   sink,
		logger: logger,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 15 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			},
		},
		state:          Stopped,
		volumeLevel:    1,
		rate:           1,
		preservesPitch: true,
		source:         &switchStreamer{},
		output:         &switchStreamer{},
		endedCh:        make(chan struct{}, 1),
	}
	p.volume = &effects.Volume{Streamer: p.source, Base: 2}
	p.output.Set(p.volume)
	return p
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Track returns a copy of the loaded track, or nil.
func (p *Player) Track() *track.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.track == nil {
		return nil
	}
	t := *p.track
	return &t
}

// Route inserts fn between the element and the device. It succeeds once.
func (p *Player) Route(fn func(beep.Streamer) beep.Streamer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.routed {
		return ErrAlreadyRouted
	}
	out := fn(p.volume)
	p.sink.Lock()
	p.output.Set(out)
	p.sink.Unlock()
	p.routed = true
	return nil
}

// OnEnded registers fn to be called after a track plays to the end.
func (p *Player) OnEnded(fn func()) {
	p.mu.Lock()
	p.onEnded = fn
	p.mu.Unlock()
}

// EndedChan signals when a track plays to the end.
func (p *Player) EndedChan() <-chan struct{} {
	return p.endedCh
}
