package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/opd-ai/go-lander/pkg/engine"
	"github.com/opd-ai/go-lander/pkg/logging"
	"github.com/opd-ai/go-lander/pkg/render"
	"github.com/opd-ai/go-lander/pkg/resource"
)

// action is what a key press asks of the session
type action int

const (
	actionNone action = iota
	actionThrust
	actionLeft
	actionRight
	actionPause
	actionQuit
)

// keyAction maps a terminal key press. Terminals report no key releases,
// so the engine toggles on thrust and each rotate press turns one step.
func keyAction(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyUp:
		return actionThrust
	case tcell.KeyLeft:
		return actionLeft
	case tcell.KeyRight:
		return actionRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'w', 'W', ' ':
			return actionThrust
		case 'a', 'A':
			return actionLeft
		case 'd', 'D':
			return actionRight
		case 'p', 'P':
			return actionPause
		case 'q', 'Q':
			return actionQuit
		}
	}
	return actionNone
}

// terminalSession plays one session on a tcell screen
type terminalSession struct {
	screen   tcell.Screen
	runner   *engine.Runner
	renderer *render.TerminalRenderer
	logger   *logging.Logger
	thrust   bool
}

func newTerminalSession(screen tcell.Screen, runner *engine.Runner, logger *logging.Logger) *terminalSession {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &terminalSession{
		screen:   screen,
		runner:   runner,
		renderer: render.NewTerminalRenderer(screen, logger),
		logger:   logger,
	}
}

// apply performs a; it reports false when the session should end
func (s *terminalSession) apply(a action) bool {
	e := s.runner.Engine()
	switch a {
	case actionThrust:
		s.thrust = !s.thrust
		e.SetThrust(s.thrust)
	case actionLeft:
		e.Rotate(-engine.RotationStep)
	case actionRight:
		e.Rotate(engine.RotationStep)
	case actionPause:
		e.SetBlockAlert(!e.BlockAlert())
	case actionQuit:
		return false
	}
	return true
}

// run polls input on a supervised task and steps the runner on a ticker.
// It returns when the session fades out or the player quits.
func (s *terminalSession) run(ctx context.Context, tasks *resource.Manager) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event, 16)
	err := tasks.Go(ctx, "terminal-input", func(ctx context.Context) error {
		defer close(events)
		for {
			// PollEvent returns nil once the screen is finalized
			ev := s.screen.PollEvent()
			if ev == nil {
				return nil
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return nil
			}
		}
	})
	if err != nil {
		return err
	}

	ticker := time.NewTicker(s.runner.Interval())
	defer ticker.Stop()

	s.runner.Render(s.renderer)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !s.apply(keyAction(ev)) {
					s.logger.Info(ctx, "session abandoned", "steps", s.runner.Engine().Steps())
					return nil
				}
			case *tcell.EventResize:
				s.screen.Sync()
			}
			s.runner.Render(s.renderer)
		case now := <-ticker.C:
			_, done := s.runner.Advance(now.Sub(last))
			last = now
			s.runner.Render(s.renderer)
			if done {
				return nil
			}
		}
	}
}
