// pkg/engine/loop.go
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/opd-ai/go-lander/pkg/entity"
)

// Runner defaults
const (
	DefaultTickInterval = 25 * time.Millisecond
	DefaultFadeTicks    = 100
	DefaultMaxCatchUp   = 10
)

// Runner drives an Engine at a fixed tick interval independent of the
// frame rate. After the session finishes it keeps stepping for a fade
// period so the last particles can decay, then reports done.
type Runner struct {
	engine     *Engine
	interval   time.Duration
	fadeTicks  int
	maxCatchUp int

	accumulated time.Duration
	fade        int
	done        bool
	mu          sync.Mutex
}

// RunnerOption customizes a Runner
type RunnerOption func(*Runner)

// WithTickInterval sets the simulated time per step
func WithTickInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithFadeTicks sets how many steps run after the session finishes
func WithFadeTicks(n int) RunnerOption {
	return func(r *Runner) {
		if n >= 0 {
			r.fadeTicks = n
		}
	}
}

// WithMaxCatchUp caps the steps run by a single Advance
func WithMaxCatchUp(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.maxCatchUp = n
		}
	}
}

// NewRunner creates a runner for engine
func NewRunner(engine *Engine, opts ...RunnerOption) *Runner {
	r := &Runner{
		engine:     engine,
		interval:   DefaultTickInterval,
		fadeTicks:  DefaultFadeTicks,
		maxCatchUp: DefaultMaxCatchUp,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Engine returns the driven engine
func (r *Runner) Engine() *Engine {
	return r.engine
}

// Interval returns the simulated time per step
func (r *Runner) Interval() time.Duration {
	return r.interval
}

// Advance accounts for elapsed wall time and runs the steps it covers.
// Time beyond maxCatchUp steps is dropped. While the engine's block alert
// is set nothing is stepped and elapsed time is discarded.
func (r *Runner) Advance(elapsed time.Duration) (steps int, done bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.done {
		return 0, true
	}
	if r.engine.BlockAlert() {
		r.accumulated = 0
		return 0, false
	}

	r.accumulated += elapsed
	for r.accumulated >= r.interval && steps < r.maxCatchUp {
		r.accumulated -= r.interval
		steps++
		if r.tick() {
			r.done = true
			r.accumulated = 0
			return steps, true
		}
	}
	if r.accumulated >= r.interval {
		r.accumulated = 0
	}
	return steps, false
}

// tick steps the engine once and reports whether the fade has completed
func (r *Runner) tick() bool {
	r.engine.Step()
	if !r.engine.Finished() {
		return false
	}
	r.fade++
	return r.fade >= r.fadeTicks
}

// Done reports whether the fade after the end of the session has completed
func (r *Runner) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// FadeProgress returns how far the end-of-session fade has gone, 0 to 1
func (r *Runner) FadeProgress() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fadeTicks == 0 {
		if r.done {
			return 1
		}
		return 0
	}
	return float64(r.fade) / float64(r.fadeTicks)
}

// Render draws the current frame including the fade level
func (r *Runner) Render(renderer entity.Renderer) {
	r.engine.RenderWithFade(renderer, r.FadeProgress())
}

// Run steps the engine from a ticker until the session is done or ctx is
// cancelled. onFrame, if set, is called after every tick that ran steps.
func (r *Runner) Run(ctx context.Context, onFrame func()) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			steps, done := r.Advance(now.Sub(last))
			last = now
			if steps > 0 && onFrame != nil {
				onFrame()
			}
			if done {
				return nil
			}
		}
	}
}
