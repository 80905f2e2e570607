package player

import "math"

// SetPlaybackRate changes the playback speed. Non-positive or non-finite
// rates are ignored. With pitch preservation on, pitch is held constant.
func (p *Player) SetPlaybackRate(rate float64) {
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rate = rate
	p.applyRateLocked()
}

// PlaybackRate returns the playback speed.
func (p *Player) PlaybackRate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// SetPreservesPitch toggles pitch correction for non-unity rates.
func (p *Player) SetPreservesPitch(preserve bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.preservesPitch = preserve
	p.applyRateLocked()
}

// PreservesPitch reports whether pitch correction is on.
func (p *Player) PreservesPitch() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preservesPitch
}

func (p *Player) pitchFactor() float64 {
	if !p.preservesPitch || p.rate == 1 {
		return 1
	}
	return 1 / p.rate
}

func (p *Player) applyRateLocked() {
	if p.resampler == nil {
		return
	}
	p.sink.Lock()
	p.resampler.SetRatio(p.baseRatio * p.rate)
	p.pitch.SetFactor(p.pitchFactor())
	p.sink.Unlock()
}
