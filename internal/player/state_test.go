package player

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Stopped, "stopped"},
		{Playing, "playing"},
		{Paused, "paused"},
		{State(99), "unknown"},
		{State(-1), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.state.String(); got != tt.want {
				t.Errorf("State.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestState_Predicates(t *testing.T) {
	tests := []struct {
		state     State
		loaded    bool
		canPause  bool
		canResume bool
	}{
		{Stopped, false, false, false},
		{Playing, true, true, false},
		{Paused, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			if got := tt.state.Loaded(); got != tt.loaded {
				t.Errorf("Loaded() = %v, want %v", got, tt.loaded)
			}
			if got := tt.state.CanPause(); got != tt.canPause {
				t.Errorf("CanPause() = %v, want %v", got, tt.canPause)
			}
			if got := tt.state.CanResume(); got != tt.canResume {
				t.Errorf("CanResume() = %v, want %v", got, tt.canResume)
			}
		})
	}
}

func TestPlayer_NoOpTransitions(t *testing.T) {
	t.Run("Pause when Stopped is no-op", func(t *testing.T) {
		p := New(newFakeSink(), nil)
		p.Pause()
		if p.State() != Stopped {
			t.Errorf("state = %v, want Stopped", p.State())
		}
	})

	t.Run("Resume when Stopped is no-op", func(t *testing.T) {
		p := New(newFakeSink(), nil)
		p.Resume()
		if p.State() != Stopped {
			t.Errorf("state = %v, want Stopped", p.State())
		}
	})

	t.Run("Toggle cycles Playing and Paused", func(t *testing.T) {
		p := New(newFakeSink(), nil)
		startTrack(t, p, &fakeStream{value: 0.1, length: 44100}, 44100)

		p.Toggle()
		if p.State() != Paused {
			t.Errorf("state after Toggle = %v, want Paused", p.State())
		}
		p.Toggle()
		if p.State() != Playing {
			t.Errorf("state after Toggle = %v, want Playing", p.State())
		}
	})

	t.Run("Stop when Stopped is no-op", func(t *testing.T) {
		p := New(newFakeSink(), nil)
		p.Stop()
		if p.State() != Stopped {
			t.Errorf("state = %v, want Stopped", p.State())
		}
	})
}

func TestMock_PlayError(t *testing.T) {
	m := NewMock()
	m.SetPlayError(ErrNoSource)

	if err := m.Play(t.Context(), trackFixture()); err == nil {
		t.Fatal("expected play error")
	}
	if m.State() != Stopped {
		t.Errorf("state = %v, want Stopped", m.State())
	}
	if len(m.PlayCalls()) != 1 {
		t.Errorf("PlayCalls = %d, want 1", len(m.PlayCalls()))
	}
}
