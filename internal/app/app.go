package app

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/layout"
	"github.com/samdwyer/dungeonlayout/internal/snapshot"
	"github.com/samdwyer/dungeonlayout/internal/telemetry"
	"github.com/samdwyer/dungeonlayout/internal/ui"
)

// Factory builds a fresh pipeline. The viewer calls it at start and on
// every regenerate request.
type Factory func() (*layout.Pipeline, error)

// App owns the screen and the pipeline it animates.
type App struct {
	screen   *ui.Screen
	renderer *ui.Renderer
	factory  Factory
	pipeline *layout.Pipeline
	logger   *log.Logger
	frame    time.Duration
	state    State
	running  bool
}

// New creates a viewer drawing to screen at rate frames per second.
func New(screen *ui.Screen, factory Factory, rate int, logger *log.Logger) (*App, error) {
	if rate <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "frame rate must be positive, got %d", rate)
	}
	p, err := factory()
	if err != nil {
		return nil, err
	}
	return &App{
		screen:   screen,
		renderer: ui.NewRenderer(screen),
		factory:  factory,
		pipeline: p,
		logger:   logger,
		frame:    time.Second / time.Duration(rate),
		state:    StateRunning,
		running:  true,
	}, nil
}

// Run executes the frame loop until the user quits or ctx is cancelled.
// The caller closes the screen afterwards.
func (a *App) Run(ctx context.Context) error {
	tracer := telemetry.Tracer("app")
	ctx, span := tracer.Start(ctx, "app.view")
	defer span.End()
	defer func() { a.pipeline.Close() }()

	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()

	frames := 0
	a.renderer.Render(snapshot.Take(a.pipeline))
	for a.running {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if err := a.handleEvent(ev); err != nil {
				return err
			}
		case <-ticker.C:
			a.tick(ctx)
			frames++
		}
	}

	span.SetAttributes(
		attribute.Int("app.frames", frames),
		telemetry.KeyRunID.String(a.pipeline.RunID()),
	)
	return nil
}

// tick steps the pipeline once unless paused, then redraws.
func (a *App) tick(ctx context.Context) {
	if a.state == StateRunning && !a.pipeline.Done() {
		phase, err := a.pipeline.Step(ctx)
		if err != nil {
			a.logger.Warn("step", "phase", phase, "err", err)
		}
		if phase == layout.PhaseDone {
			w, h := a.pipeline.Means()
			a.logger.Info("layout complete",
				"run", a.pipeline.RunID(),
				"passes", a.pipeline.Passes(),
				"mean_w", w,
				"mean_h", h)
		}
	}
	a.renderer.Render(snapshot.Take(a.pipeline))
}

// handleEvent processes a single input event.
func (a *App) handleEvent(ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return a.handleKeyEvent(ev)
	case *tcell.EventResize:
		a.screen.Sync()
	}
	return nil
}

// handleKeyEvent processes keyboard input.
func (a *App) handleKeyEvent(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		a.running = false

	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			a.running = false
		case ' ':
			if a.state == StateRunning {
				a.state = StatePaused
			} else {
				a.state = StateRunning
			}
		case 'r', 'R':
			p, err := a.factory()
			if err != nil {
				return err
			}
			a.logger.Debug("regenerating", "previous", a.pipeline.RunID(), "run", p.RunID())
			a.pipeline.Close()
			a.pipeline = p
		case 'g', 'G':
			a.renderer.ShowGraph = !a.renderer.ShowGraph
		}
	}
	return nil
}

// State returns whether the viewer is stepping or paused.
func (a *App) State() State {
	return a.state
}

// Pipeline returns the pipeline currently on screen.
func (a *App) Pipeline() *layout.Pipeline {
	return a.pipeline
}
