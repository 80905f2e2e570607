package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/novatone/internal/audio"
	"github.com/llehouerou/novatone/internal/audio/spatial"
)

type fakeElement struct {
	rate           float64
	preservesPitch bool
	rateCalls      int
}

func newFakeElement() *fakeElement {
	return &fakeElement{rate: 1, preservesPitch: true}
}

func (e *fakeElement) SetPlaybackRate(rate float64) {
	e.rate = rate
	e.rateCalls++
}

func (e *fakeElement) SetPreservesPitch(preserve bool) { e.preservesPitch = preserve }

type fakeSpatializer struct{ active bool }

func (s *fakeSpatializer) SetActive(active bool) { s.active = active }

func newTestController() (*Controller, *audio.Graph, *fakeSpatializer, *fakeElement) {
	g := audio.NewGraph(func() (audio.Context, error) { return nil, assert.AnError }, audio.GraphConfig{})
	sp := &fakeSpatializer{}
	el := newFakeElement()
	c := NewController(g, sp, len(audio.DefaultBands), nil)
	c.Bind(el)
	return c, g, sp, el
}

func TestController_NightcoreOnOff(t *testing.T) {
	c, _, _, el := newTestController()

	c.SetNightcore(true)
	assert.Equal(t, 1.3, el.rate)
	assert.False(t, el.preservesPitch)
	assert.True(t, c.Settings().Nightcore)

	c.SetNightcore(false)
	assert.Equal(t, 1.0, el.rate)
	assert.True(t, el.preservesPitch)
	assert.False(t, c.Settings().Nightcore)
}

func TestController_NightcoreOverridesManualSpeed(t *testing.T) {
	c, _, _, el := newTestController()

	c.SetPlaybackSpeed(0.75)
	c.SetNightcore(true)

	assert.Equal(t, 1.3, el.rate)
}

func TestController_ManualSpeedKeepsNightcoreFlag(t *testing.T) {
	c, _, _, el := newTestController()

	c.SetNightcore(true)
	c.SetPlaybackSpeed(1.5)

	assert.Equal(t, 1.5, el.rate)
	assert.True(t, c.Settings().Nightcore, "speed change must not turn nightcore off")
	assert.False(t, el.preservesPitch)
}

func TestController_SetPlaybackSpeedIgnoresInvalid(t *testing.T) {
	c, _, _, el := newTestController()

	c.SetPlaybackSpeed(0)
	c.SetPlaybackSpeed(-1)
	assert.Equal(t, 1.0, el.rate)

	c.SetPlaybackSpeed(2.5)
	assert.Equal(t, 2.5, el.rate, "out of nominal range is still applied")
}

func TestController_SettersAreIdempotent(t *testing.T) {
	c, g, _, el := newTestController()

	c.SetBassBoost(9)
	c.SetBassBoost(9)
	c.SetNightcore(true)
	c.SetNightcore(true)

	assert.Equal(t, 9.0, g.BassGain())
	assert.Equal(t, 1.3, el.rate)
	assert.False(t, el.preservesPitch)
}

func TestController_SpatialOffResetsPanner(t *testing.T) {
	c, g, sp, _ := newTestController()
	g.SetPannerPosition(2.1, 0.3, -2.8)

	c.ToggleSpatial(true)
	assert.True(t, sp.active)

	c.ToggleSpatial(false)
	assert.False(t, sp.active)

	x, y, z := g.PannerPosition()
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.3, y)
	assert.Equal(t, 0.0, z)
}

func TestController_SpatialOffAfterRealRotation(t *testing.T) {
	g := audio.NewGraph(func() (audio.Context, error) { return nil, assert.AnError }, audio.GraphConfig{})
	anim := spatial.New(g, 0)
	c := NewController(g, anim, 5, nil)

	c.ToggleSpatial(true)
	for range 37 {
		anim.Tick()
	}
	x, _, z := g.PannerPosition()
	require.NotZero(t, x)
	require.NotZero(t, z)

	c.ToggleSpatial(false)
	anim.Tick()

	x, _, z = g.PannerPosition()
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, z)
}

func TestController_BandAndSurround(t *testing.T) {
	c, g, _, _ := newTestController()

	c.SetBand(1, 4)
	c.SetBand(7, 4)
	c.SetSurround(15)

	assert.Equal(t, []float64{0, 4, 0, 0, 0}, g.BandGains())
	_, _, z := g.PannerPosition()
	assert.Equal(t, 1.5, z)

	s := c.Settings()
	assert.Equal(t, []float64{0, 4, 0, 0, 0}, s.Equalizer)
	assert.Equal(t, 15.0, s.Surround)
}

func TestController_SettingsIsACopy(t *testing.T) {
	c, _, _, _ := newTestController()

	s := c.Settings()
	s.Equalizer[0] = 99

	assert.Equal(t, 0.0, c.Settings().Equalizer[0])
}

func TestController_BindAppliesPendingRate(t *testing.T) {
	g := audio.NewGraph(func() (audio.Context, error) { return nil, assert.AnError }, audio.GraphConfig{})
	c := NewController(g, &fakeSpatializer{}, 5, nil)

	c.SetNightcore(true)

	el := newFakeElement()
	c.Bind(el)
	assert.Equal(t, 1.3, el.rate)
	assert.False(t, el.preservesPitch)
}

func TestController_Apply(t *testing.T) {
	c, g, sp, el := newTestController()

	c.Apply(Settings{
		BassBoost: 6,
		Spatial:   true,
		Speed:     1.25,
		Surround:  10,
		Equalizer: []float64{1, 2, 3, 4, 5},
	})

	assert.Equal(t, 6.0, g.BassGain())
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, g.BandGains())
	assert.True(t, sp.active)
	assert.Equal(t, 1.25, el.rate)
	assert.True(t, el.preservesPitch)

	c.Apply(Settings{Nightcore: true})
	assert.Equal(t, 1.3, el.rate)
	assert.False(t, el.preservesPitch)
	assert.False(t, sp.active)
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings(5)
	assert.Equal(t, 1.0, s.Speed)
	assert.Len(t, s.Equalizer, 5)
	assert.False(t, s.Nightcore)
}
