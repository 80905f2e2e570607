package audio

import (
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"
)

// Default graph parameters.
const (
	DefaultBassFrequency = 150.0
	BandQ                = 1.0
)

// DefaultBands are the equalizer center frequencies in Hz.
var DefaultBands = []float64{60, 230, 910, 3600, 14000}

// Routable is a playback element whose output can be routed through the graph once.
type Routable interface {
	Route(fn func(beep.Streamer) beep.Streamer) error
}

// GraphConfig configures a Graph.
type GraphConfig struct {
	BassFrequency float64
	Bands         []float64
	Logger        *zap.Logger
}

// Graph owns the signal path: source, low shelf, peaking bands, panner.
// The topology is built once; only parameters change afterwards.
// Before a successful Initialize every setter only records the value,
// which is applied when the nodes are built.
type Graph struct {
	mu      sync.Mutex
	factory ContextFactory
	logger  *zap.Logger

	bassFreq  float64
	bandFreqs []float64

	ctx    Context
	bass   *Filter
	bands  []*Filter
	panner *Panner

	bassGain  float64
	bandGains []float64
	pos       [3]float64
}

// NewGraph creates an uninitialized graph.
func NewGraph(factory ContextFactory, cfg GraphConfig) *Graph {
	if cfg.BassFrequency <= 0 {
		cfg.BassFrequency = DefaultBassFrequency
	}
	if cfg.Bands == nil {
		cfg.Bands = DefaultBands
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	bands := append([]float64(nil), cfg.Bands...)
	return &Graph{
		factory:   factory,
		logger:    cfg.Logger,
		bassFreq:  cfg.BassFrequency,
		bandFreqs: bands,
		bandGains: make([]float64, len(bands)),
	}
}

// Initialize creates the audio context and routes el through the chain.
// It is a no-op once the graph is built. When the context cannot be created
// the graph stays inert and Initialize reports false; a later call retries.
func (g *Graph) Initialize(el Routable) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ctx != nil {
		return true
	}

	ctx, err := g.factory()
	if err != nil {
		g.logger.Warn("audio context unavailable, effects disabled", zap.Error(err))
		return false
	}

	sr := ctx.SampleRate()
	err = el.Route(func(src beep.Streamer) beep.Streamer {
		g.bass = NewFilter(src, LowShelf, sr, g.bassFreq, BandQ, g.bassGain)
		var s beep.Streamer = g.bass
		g.bands = make([]*Filter, len(g.bandFreqs))
		for i, f := range g.bandFreqs {
			g.bands[i] = NewFilter(s, Peaking, sr, f, BandQ, g.bandGains[i])
			s = g.bands[i]
		}
		g.panner = NewPanner(s)
		g.panner.SetPosition(g.pos[0], g.pos[1], g.pos[2])
		return g.panner
	})
	if err != nil {
		g.logger.Warn("route element through audio graph", zap.Error(err))
		g.bass, g.bands, g.panner = nil, nil, nil
		_ = ctx.Close() //nolint:errcheck // best effort
		return false
	}

	g.ctx = ctx
	g.logger.Debug("audio graph initialized",
		zap.Int("sampleRate", int(sr)),
		zap.Float64("bassFrequency", g.bassFreq),
		zap.Int("bands", len(g.bandFreqs)))
	return true
}

// Ready reports whether the graph is built and live.
func (g *Graph) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ctx != nil
}

// Resume resumes a suspended context. No-op otherwise.
func (g *Graph) Resume() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ctx == nil || g.ctx.State() != Suspended {
		return nil
	}
	return g.ctx.Resume()
}

// Close releases the context. The graph is inert afterwards.
func (g *Graph) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ctx == nil {
		return nil
	}
	err := g.ctx.Close()
	g.ctx = nil
	g.bass, g.bands, g.panner = nil, nil, nil
	return err
}

// write applies fn under the context lock when the graph is live.
func (g *Graph) write(fn func()) {
	if g.ctx == nil {
		return
	}
	g.ctx.Lock()
	fn()
	g.ctx.Unlock()
}

// SetBassGain sets the low-shelf gain in dB. Non-finite values are ignored.
func (g *Graph) SetBassGain(db float64) {
	if !finite(db) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.bassGain = db
	g.write(func() { g.bass.SetGain(db) })
}

// BassGain returns the last bass gain set.
func (g *Graph) BassGain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bassGain
}

// SetBandGain sets one equalizer band gain in dB. Out of range indices are ignored.
func (g *Graph) SetBandGain(index int, db float64) {
	if !finite(db) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if index < 0 || index >= len(g.bandGains) {
		return
	}
	g.bandGains[index] = db
	g.write(func() { g.bands[index].SetGain(db) })
}

// BandGains returns a copy of the equalizer gains.
func (g *Graph) BandGains() []float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]float64(nil), g.bandGains...)
}

// BandFrequencies returns the equalizer center frequencies.
func (g *Graph) BandFrequencies() []float64 {
	return append([]float64(nil), g.bandFreqs...)
}

// SetPannerPosition places the source at (x, y, z).
func (g *Graph) SetPannerPosition(x, y, z float64) {
	if !finite(x) || !finite(y) || !finite(z) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pos = [3]float64{x, y, z}
	g.write(func() { g.panner.SetPosition(x, y, z) })
}

// SetSurroundDepth maps a scalar depth to the panner z offset (z = v/10).
func (g *Graph) SetSurroundDepth(v float64) {
	if !finite(v) {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	g.pos[2] = v / 10
	x, y, z := g.pos[0], g.pos[1], g.pos[2]
	g.write(func() { g.panner.SetPosition(x, y, z) })
}

// PannerPosition returns the last panner position set.
func (g *Graph) PannerPosition() (x, y, z float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos[0], g.pos[1], g.pos[2]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
