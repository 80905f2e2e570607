package player

import "time"

// Stop stops playback and releases the stream.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// stopLocked must be called with p.mu held.
func (p *Player) stopLocked() {
	if p.stream == nil {
		p.state = Stopped
		return
	}

	p.sink.Lock()
	p.source.Set(nil)
	p.sink.Unlock()

	p.gen++
	p.releaseLocked()
	p.state = Stopped
}

// releaseLocked closes the stream. The source slot must already be detached or drained.
func (p *Player) releaseLocked() {
	if p.stream != nil {
		_ = p.stream.Close() //nolint:errcheck // nothing to do on close failure
	}
	p.stream = nil
	p.resampler = nil
	p.pitch = nil
	p.ctrl = nil
	p.track = nil
}

// Pause pauses playback.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.CanPause() || p.ctrl == nil {
		return
	}
	p.sink.Lock()
	p.ctrl.Paused = true
	p.sink.Unlock()
	p.state = Paused
}

// Resume resumes paused playback.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.CanResume() || p.ctrl == nil {
		return
	}
	p.sink.Lock()
	p.ctrl.Paused = false
	p.sink.Unlock()
	p.state = Playing
}

// Toggle toggles between playing and paused states.
func (p *Player) Toggle() {
	switch p.State() {
	case Playing:
		p.Pause()
	case Paused:
		p.Resume()
	case Stopped:
		// Nothing to toggle when stopped
	}
}

// Position returns the current playback position in track time.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return 0
	}
	p.sink.Lock()
	pos := p.stream.Position()
	p.sink.Unlock()
	return p.format.SampleRate.D(pos)
}

// Duration returns the decoded length, or the provider duration for
// streams whose length is unknown.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return 0
	}
	if n := p.stream.Len(); n > 0 {
		return p.format.SampleRate.D(n)
	}
	if p.track != nil {
		return time.Duration(p.track.Duration) * time.Second
	}
	return 0
}

// Seek moves the playback position by delta. Streams of unknown length are not seekable.
func (p *Player) Seek(delta time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil || p.state == Stopped {
		return
	}
	length := p.stream.Len()
	if length <= 0 {
		return
	}

	p.sink.Lock()
	defer p.sink.Unlock()

	newPos := p.stream.Position() + p.format.SampleRate.N(delta)
	newPos = max(newPos, 0)
	newPos = min(newPos, length-1)
	_ = p.stream.Seek(newPos) //nolint:errcheck // position stays unchanged on failure
}
