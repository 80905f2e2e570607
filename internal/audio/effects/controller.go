package effects

import (
	"math"
	"sync"

	"go.uber.org/zap"
)

// Graph is the subset of the audio graph the controller drives.
type Graph interface {
	SetBassGain(db float64)
	SetBandGain(index int, db float64)
	SetPannerPosition(x, y, z float64)
	PannerPosition() (x, y, z float64)
	SetSurroundDepth(v float64)
}

// Element is the playback element's rate and pitch surface.
type Element interface {
	SetPlaybackRate(rate float64)
	SetPreservesPitch(preserve bool)
}

// Spatializer turns the orbit animation on or off.
type Spatializer interface {
	SetActive(active bool)
}

// Controller tracks effect state and applies it to the graph and element.
// Every setter is idempotent. Element changes made before Bind are applied on Bind.
type Controller struct {
	mu      sync.Mutex
	graph   Graph
	spatial Spatializer
	element Element
	logger  *zap.Logger

	settings Settings
}

// NewController creates a controller with flat settings.
func NewController(graph Graph, spatial Spatializer, bands int, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		graph:    graph,
		spatial:  spatial,
		logger:   logger,
		settings: DefaultSettings(bands),
	}
}

// Bind attaches the playback element and pushes the current rate and pitch mode.
func (c *Controller) Bind(el Element) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.element = el
	c.applyRate()
}

// applyRate must be called with c.mu held.
func (c *Controller) applyRate() {
	if c.element == nil {
		return
	}
	c.element.SetPreservesPitch(!c.settings.Nightcore)
	c.element.SetPlaybackRate(c.settings.Speed)
}

// SetPlaybackSpeed sets the element rate. It does not turn nightcore off;
// the speed is stored and the element follows it directly.
func (c *Controller) SetPlaybackSpeed(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings.Speed = rate
	if c.element != nil {
		c.element.SetPlaybackRate(rate)
	}
	c.logger.Debug("playback speed", zap.Float64("rate", rate))
}

// SetNightcore switches nightcore on (1.3x, no pitch correction) or off (1.0x, pitch preserved).
func (c *Controller) SetNightcore(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings.Nightcore = active
	c.settings.Speed = 1
	if active {
		c.settings.Speed = NightcoreRate
	}
	c.applyRate()
}

// ToggleSpatial turns the rotation on or off. Turning it off puts the
// panner back at x = 0, z = 0.
func (c *Controller) ToggleSpatial(active bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings.Spatial = active
	c.spatial.SetActive(active)
	if !active {
		_, y, _ := c.graph.PannerPosition()
		c.graph.SetPannerPosition(0, y, 0)
	}
}

// SetBassBoost sets the low-shelf gain in dB.
func (c *Controller) SetBassBoost(db float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings.BassBoost = db
	c.graph.SetBassGain(db)
}

// SetBand sets one equalizer band. Out of range indices are ignored.
func (c *Controller) SetBand(index int, db float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.settings.Equalizer) {
		return
	}
	c.settings.Equalizer[index] = db
	c.graph.SetBandGain(index, db)
}

// SetSurround sets the surround depth.
func (c *Controller) SetSurround(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.settings.Surround = v
	c.graph.SetSurroundDepth(v)
}

// Settings returns a copy of the current state.
func (c *Controller) Settings() Settings {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.settings
	s.Equalizer = append([]float64(nil), c.settings.Equalizer...)
	return s
}

// Apply restores a full settings snapshot, typically loaded from storage.
func (c *Controller) Apply(s Settings) {
	c.SetBassBoost(s.BassBoost)
	for i, db := range s.Equalizer {
		c.SetBand(i, db)
	}
	c.SetSurround(s.Surround)

	c.mu.Lock()
	c.settings.Nightcore = s.Nightcore
	switch {
	case s.Speed > 0 && !math.IsInf(s.Speed, 0):
		c.settings.Speed = s.Speed
	case s.Nightcore:
		c.settings.Speed = NightcoreRate
	default:
		c.settings.Speed = 1
	}
	c.applyRate()
	c.mu.Unlock()

	c.ToggleSpatial(s.Spatial)
}
