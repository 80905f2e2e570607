// Package engine owns one audio session: the graph, the effects controller
// and the spatial animator, bound to a single playback element.
package engine

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/llehouerou/novatone/internal/audio"
	"github.com/llehouerou/novatone/internal/audio/effects"
	"github.com/llehouerou/novatone/internal/audio/spatial"
)

// ErrDisposed is returned by operations on a disposed engine.
var ErrDisposed = errors.New("engine disposed")

// Element is a playback element the engine can bind to.
type Element interface {
	audio.Routable
	effects.Element
}

// Config configures an Engine.
type Config struct {
	BassFrequency float64
	Bands         []float64
	FrameInterval time.Duration
	Logger        *zap.Logger
}

type Engine struct {
	mu       sync.Mutex
	graph    *audio.Graph
	effects  *effects.Controller
	animator *spatial.Animator
	logger   *zap.Logger

	bound    bool
	disposed bool
}

// New creates an engine. Nothing touches the audio device until Bind.
func New(factory audio.ContextFactory, cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	graph := audio.NewGraph(factory, audio.GraphConfig{
		BassFrequency: cfg.BassFrequency,
		Bands:         cfg.Bands,
		Logger:        cfg.Logger,
	})
	animator := spatial.New(graph, cfg.FrameInterval)
	return &Engine{
		graph:    graph,
		animator: animator,
		effects:  effects.NewController(graph, animator, len(graph.BandFrequencies()), cfg.Logger),
		logger:   cfg.Logger,
	}
}

// Bind attaches el to the engine: the graph is initialized on it, the
// effects controller drives its rate, and the animator starts. Binding
// again is a no-op. It reports whether effects are live; when they are not,
// plain playback still works.
func (e *Engine) Bind(el Element) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return false, ErrDisposed
	}
	if e.bound {
		return e.graph.Ready(), nil
	}

	ready := e.graph.Initialize(el)
	e.effects.Bind(el)
	e.animator.Start()
	e.bound = true

	e.logger.Info("engine bound", zap.Bool("effects", ready))
	return ready, nil
}

// Resume resumes the audio context. Call it before every play transition.
// Redundant calls are no-ops.
func (e *Engine) Resume() error {
	e.mu.Lock()
	disposed := e.disposed
	e.mu.Unlock()

	if disposed {
		return ErrDisposed
	}
	return e.graph.Resume()
}

// Dispose stops the animator and releases the audio context.
func (e *Engine) Dispose() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return nil
	}
	e.disposed = true
	e.animator.Stop()
	return e.graph.Close()
}

// Effects returns the effects controller.
func (e *Engine) Effects() *effects.Controller { return e.effects }

// Graph returns the audio graph.
func (e *Engine) Graph() *audio.Graph { return e.graph }

// Animator returns the spatial animator.
func (e *Engine) Animator() *spatial.Animator { return e.animator }

// Ready reports whether effects are live.
func (e *Engine) Ready() bool { return e.graph.Ready() }
