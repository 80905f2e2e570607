// Package effects translates named effects into graph and element changes.
package effects

// NightcoreRate is the playback rate applied by nightcore mode.
const NightcoreRate = 1.3

// Settings is a snapshot of the effect state.
type Settings struct {
	BassBoost float64   `json:"bassBoost"` // dB
	Nightcore bool      `json:"nightcore"`
	Spatial   bool      `json:"spatial"`
	Speed     float64   `json:"speed"` // element playback rate
	Surround  float64   `json:"surround"`
	Equalizer []float64 `json:"equalizer"` // dB per band
}

// DefaultSettings returns flat settings for n equalizer bands.
func DefaultSettings(bands int) Settings {
	return Settings{
		Speed:     1,
		Equalizer: make([]float64, bands),
	}
}
