package layout

import (
	"context"
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samdwyer/dungeonlayout/internal/config"
	"github.com/samdwyer/dungeonlayout/internal/delaunay"
	"github.com/samdwyer/dungeonlayout/internal/errors"
	"github.com/samdwyer/dungeonlayout/internal/geom"
	"github.com/samdwyer/dungeonlayout/internal/grid"
	"github.com/samdwyer/dungeonlayout/internal/sampling"
	"github.com/samdwyer/dungeonlayout/internal/telemetry"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger for phase transitions and warnings.
func WithLogger(l *log.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the tracer used for phase spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// Pipeline owns a room set and moves it through the layout phases.
//
// The host calls Step once per frame. Each call does a bounded amount of
// synchronous work and the pipeline never runs concurrently with itself, so
// a Pipeline must only be used from one goroutine.
type Pipeline struct {
	cfg     config.Config
	sampler sampling.Sampler

	rooms        []Room
	meanW, meanH float64
	heightMean   float64
	heightStdDev float64

	phase  Phase
	passes int
	err    error

	graph      *delaunay.Graph
	graphRooms []int

	major, minor, outline Color

	runID  uuid.UUID
	logger *log.Logger
	tracer trace.Tracer
	span   trace.Span
	start  time.Time
}

// New validates cfg and returns a pipeline in the scatter phase.
func New(cfg config.Config, sampler sampling.Sampler, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	major, minor, outline, err := cfg.Palette()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "colors")
	}

	p := &Pipeline{
		cfg:     cfg,
		sampler: sampler,
		rooms:   make([]Room, 0, cfg.Rooms),
		major:   Color(major),
		minor:   Color(minor),
		outline: Color(outline),
		runID:   uuid.New(),
		logger:  log.Default(),
		tracer:  telemetry.Tracer("layout"),
	}
	p.heightMean, p.heightStdDev = cfg.HeightDistribution()
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Step performs one unit of work for the current phase and advances when the
// phase is complete. It returns the phase the pipeline is in afterwards.
//
// The only error Step reports is NOT_CONVERGED, returned once when the
// separate phase hits its pass cap. The pipeline still advances to classify.
func (p *Pipeline) Step(ctx context.Context) (Phase, error) {
	if p.phase == PhaseDone {
		return p.phase, nil
	}
	if p.span == nil {
		p.start = time.Now()
		_, p.span = p.tracer.Start(ctx, "layout."+p.phase.String())
	}

	var err error
	switch p.phase {
	case PhaseScatter:
		if len(p.rooms) < p.cfg.Rooms {
			p.scatter()
		}
		if len(p.rooms) == p.cfg.Rooms {
			p.advance(PhaseMerge)
		}

	case PhaseMerge:
		if p.cfg.Merge.Strategy == config.MergeCluster {
			p.mergeClusters()
		} else {
			p.mergeOrdered()
		}
		p.advance(PhaseSeparate)

	case PhaseSeparate:
		if !p.separate() {
			p.advance(PhaseClassify)
			break
		}
		p.passes++
		if p.passes >= p.cfg.Separate.MaxPasses {
			err = errors.New(errors.ErrCodeNotConverged,
				"rooms still overlap after %d separation passes", p.passes)
			p.err = err
			p.logger.Warn("separation did not converge", "passes", p.passes, "overlap", p.OverlapArea())
			p.span.AddEvent("separation cap reached")
			p.advance(PhaseClassify)
		}

	case PhaseClassify:
		p.classify()
		if cerr := p.connect(); cerr != nil {
			p.logger.Error("connectivity graph failed", "err", cerr)
			p.span.RecordError(cerr)
			err = cerr
		}
		p.advance(PhaseDone)
	}
	return p.phase, err
}

// Run steps the pipeline until it is done or ctx is cancelled. It returns
// the recorded NOT_CONVERGED error, if any, after finishing the remaining
// phases.
func (p *Pipeline) Run(ctx context.Context) error {
	ctx, span := p.tracer.Start(ctx, "layout.generate")
	defer span.End()

	start := time.Now()
	var runErr error
	for p.phase != PhaseDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := p.Step(ctx); err != nil && !errors.Is(err, errors.ErrCodeNotConverged) {
			runErr = err
		}
	}

	span.SetAttributes(telemetry.RunAttributes(p.runID.String(), p.cfg.Seed, p.cfg.Rooms)...)
	span.SetAttributes(
		telemetry.KeyRoomCount.Int(len(p.rooms)),
		telemetry.KeyPasses.Int(p.passes),
		attribute.Int64("layout.generation_ms", time.Since(start).Milliseconds()),
	)
	if runErr != nil {
		return runErr
	}
	return p.err
}

// Close ends the span of a phase left unfinished, for hosts that drop a
// pipeline before it is done. It is a no-op once the pipeline is done.
func (p *Pipeline) Close() {
	if p.span == nil {
		return
	}
	p.span.SetAttributes(
		telemetry.KeyRunID.String(p.runID.String()),
		telemetry.KeyRoomCount.Int(len(p.rooms)),
		telemetry.KeyPasses.Int(p.passes),
		attribute.Bool("layout.abandoned", true),
	)
	p.span.End()
	p.span = nil
	p.logger.Debug("pipeline closed", "run", p.runID, "phase", p.phase)
}

// advance closes the current phase span and moves to next.
func (p *Pipeline) advance(next Phase) {
	p.span.SetAttributes(
		telemetry.KeyRunID.String(p.runID.String()),
		telemetry.KeyRoomCount.Int(len(p.rooms)),
		telemetry.KeyPasses.Int(p.passes),
		telemetry.KeyMeanW.Float64(p.meanW),
		telemetry.KeyMeanH.Float64(p.meanH),
	)
	p.span.End()
	p.span = nil

	p.logger.Debug("phase complete",
		"phase", p.phase,
		"rooms", len(p.rooms),
		"passes", p.passes,
		"elapsed", time.Since(p.start).Round(time.Millisecond))
	p.phase = next
}

// scatter samples one room and folds its size into the running means.
func (p *Pipeline) scatter() {
	step := p.cfg.Grid.Step
	origin := grid.Align(p.sampler.PointInDisc(p.cfg.Scatter.SpreadX, p.cfg.Scatter.SpreadY), step)

	w, h := p.sampler.JitteredSize(p.cfg.Size.MeanW, p.heightMean, p.cfg.Size.StdDevW, p.heightStdDev)
	size := grid.Align(geom.Point{
		X: math.Max(w, p.cfg.Size.Min),
		Y: math.Max(h, p.cfg.Size.Min),
	}, step)

	p.rooms = append(p.rooms, Room{
		Rect: geom.Rect{X: origin.X, Y: origin.Y, W: size.X, H: size.Y},
		Fill: Color(p.sampler.Color()),
	})

	n := float64(p.cfg.Rooms)
	p.meanW += size.X / n
	p.meanH += size.Y / n
}

// mergeOrdered copies the second room's color onto the first for every
// ordered pair of intersecting rooms. The result depends on pair order when
// more than two rooms overlap.
func (p *Pipeline) mergeOrdered() {
	for i := range p.rooms {
		for j := range p.rooms {
			if i != j && p.rooms[i].Intersects(p.rooms[j].Rect) {
				p.rooms[i].Fill = p.rooms[j].Fill
			}
		}
	}
}

// mergeClusters gives every connected group of overlapping rooms the color of
// its lowest-index member.
func (p *Pipeline) mergeClusters() {
	parent := make([]int, len(p.rooms))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	for i := range p.rooms {
		for j := i + 1; j < len(p.rooms); j++ {
			if !p.rooms[i].Intersects(p.rooms[j].Rect) {
				continue
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			if ri < rj {
				parent[rj] = ri
			} else {
				parent[ri] = rj
			}
		}
	}
	for i := range p.rooms {
		p.rooms[i].Fill = p.rooms[find(i)].Fill
	}
}

// separate runs one relaxation pass and reports whether any room moved.
//
// Each room whose inflated bounds meet another's is pushed away from it along
// the line between their centers, scaled by 1/(1+distance). The first room's
// bounds are refreshed after every push so the rest of its scan sees where it
// now is.
func (p *Pipeline) separate() bool {
	step := p.cfg.Grid.Step
	speed := p.cfg.Separate.Speed
	moved := false

	for i := range p.rooms {
		lhs := &p.rooms[i]
		bounds := grid.AlignedBounds(lhs.Rect, step)
		for j := range p.rooms {
			if i == j {
				continue
			}
			rhs := &p.rooms[j]
			if !bounds.Intersects(grid.AlignedBounds(rhs.Rect, step)) {
				continue
			}

			d := rhs.Center().Sub(lhs.Center())
			mag := d.Len()
			if mag == 0 {
				// coincident centers: push along +X
				d = geom.Point{X: 1}
			}
			d = d.Scale(speed / (1 + mag))

			lhs.Rect = lhs.Translate(d.Scale(-1))
			rhs.Rect = rhs.Translate(d)
			bounds = grid.AlignedBounds(lhs.Rect, step)
			moved = true
		}
	}
	return moved
}

// classify snaps every room to the grid and labels it major or minor against
// the inflated running means. A room with no peers is always major.
func (p *Pipeline) classify() {
	step := p.cfg.Grid.Step
	minW := p.meanW * p.cfg.Classify.Inflation
	minH := p.meanH * p.cfg.Classify.Inflation
	alone := len(p.rooms) == 1

	for i := range p.rooms {
		r := &p.rooms[i]
		origin := grid.Align(r.Origin(), step)
		r.X, r.Y = origin.X, origin.Y

		if alone || (r.W >= minW && r.H >= minH) {
			r.Kind = KindMajor
			r.Fill = p.major
		} else {
			r.Kind = KindMinor
			r.Fill = p.minor
		}
		r.Outline = p.outline
	}
}

// connect triangulates the selected room centers.
func (p *Pipeline) connect() error {
	if p.cfg.Connect.Rooms == config.ConnectNone {
		return nil
	}

	var centers []geom.Point
	var owners []int
	extent := geom.Point{X: p.cfg.Grid.Step, Y: p.cfg.Grid.Step}
	for i, r := range p.rooms {
		if p.cfg.Connect.Rooms == config.ConnectMajor && r.Kind != KindMajor {
			continue
		}
		c := r.Center()
		centers = append(centers, c)
		owners = append(owners, i)
		extent.X = math.Max(extent.X, math.Abs(c.X)+p.cfg.Grid.Step)
		extent.Y = math.Max(extent.Y, math.Abs(c.Y)+p.cfg.Grid.Step)
	}

	g, err := delaunay.New(extent.X, extent.Y)
	if err != nil {
		return err
	}
	var graphRooms []int
	for k, c := range centers {
		if err := g.Insert(c); err != nil {
			if errors.Is(err, errors.ErrCodeDuplicateVertex) {
				p.logger.Warn("skipping room with duplicate center", "room", owners[k], "center", c)
				continue
			}
			return err
		}
		graphRooms = append(graphRooms, owners[k])
	}
	if err := g.Finalize(); err != nil {
		return err
	}

	p.graph = g
	p.graphRooms = graphRooms
	return nil
}

// Phase returns the current phase.
func (p *Pipeline) Phase() Phase {
	return p.phase
}

// Done reports whether the pipeline reached its terminal phase.
func (p *Pipeline) Done() bool {
	return p.phase == PhaseDone
}

// Rooms returns a copy of the room set in creation order.
func (p *Pipeline) Rooms() []Room {
	return slices.Clone(p.rooms)
}

// Means returns the running mean room width and height.
func (p *Pipeline) Means() (w, h float64) {
	return p.meanW, p.meanH
}

// Passes returns how many separation passes moved at least one room.
func (p *Pipeline) Passes() int {
	return p.passes
}

// Err returns the NOT_CONVERGED error if separation hit its cap.
func (p *Pipeline) Err() error {
	return p.err
}

// RunID identifies this generation run in logs, spans and snapshots.
func (p *Pipeline) RunID() string {
	return p.runID.String()
}

// Config returns the configuration the pipeline was built with.
func (p *Pipeline) Config() config.Config {
	return p.cfg
}

// Graph returns the connectivity triangulation, or nil before classify or
// when connection is disabled.
func (p *Pipeline) Graph() *delaunay.Graph {
	return p.graph
}

// GraphRooms maps each graph vertex index to the index of its room.
func (p *Pipeline) GraphRooms() []int {
	return slices.Clone(p.graphRooms)
}

// OverlapArea sums the pairwise overlap of the rooms' inflated bounds at
// their current positions. It is zero when separate converges. Classify
// snaps origins to the grid afterwards, which can bring inflated bounds back
// into contact while the rooms themselves stay disjoint.
func (p *Pipeline) OverlapArea() float64 {
	step := p.cfg.Grid.Step
	bounds := make([]geom.Rect, len(p.rooms))
	for i, r := range p.rooms {
		bounds[i] = grid.AlignedBounds(r.Rect, step)
	}

	var total float64
	for i := range bounds {
		for j := i + 1; j < len(bounds); j++ {
			total += bounds[i].Overlap(bounds[j])
		}
	}
	return total
}
