// Package sim owns the soft body world and its fixed step pipeline.
//
// A World is single-threaded: Step and every mutator must be called from
// one goroutine. Independent worlds may run in parallel (see Ensemble).
package sim

import (
	"log/slog"
	"slices"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/integrators"
	"github.com/san-kum/softbody/internal/spatial"
	"github.com/san-kum/softbody/internal/vmath"
)

type World struct {
	cfg        Config
	integrator integrators.Integrator
	points     []*body.Point
	actPoints  []*body.Point
	springs    []*body.Spring
	actuators  []*body.Spring
	actSet     map[body.ID]struct{}
	byID       map[body.ID]*body.Point
	conn       *Connectivity
	index      *spatial.Index[*body.Point]
	selection  map[body.ID]struct{}
	rng        *source
	nextID     body.ID
	bodies     int
	timestep   uint64
	collisions uint64
	timings    Timings
	controller Controller
	logger     *slog.Logger
}

// BodyHandle describes a body after it joined the world. Point ids of the
// body are the contiguous range [FirstID, LastID].
type BodyHandle struct {
	Index     int
	FirstID   body.ID
	LastID    body.ID
	Points    int
	Springs   int
	Actuators int
}

func New(cfg Config) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	integ, err := integrators.New(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	index, err := spatial.New[*body.Point](cfg.CellSide)
	if err != nil {
		return nil, err
	}
	return &World{
		cfg:        cfg,
		integrator: integ,
		actSet:     make(map[body.ID]struct{}),
		byID:       make(map[body.ID]*body.Point),
		conn:       NewConnectivity(),
		index:      index,
		selection:  make(map[body.ID]struct{}),
		rng:        newSource(cfg.Seed),
		nextID:     1,
		logger:     slog.Default(),
	}, nil
}

func (w *World) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	w.logger = l
}

func (w *World) SetController(c Controller) { w.controller = c }

func (w *World) Config() Config { return w.cfg }

func (w *World) Timestep() uint64 { return w.timestep }

// Collisions is the number of resolved collision pairs since creation.
func (w *World) Collisions() uint64 { return w.collisions }

func (w *World) Timings() Timings { return w.timings }

func (w *World) IndexStats() spatial.Stats { return w.index.Stats() }

// Points returns the structural points. The slice is owned by the world
// and reordered every step.
func (w *World) Points() []*body.Point { return w.points }

// ActPoints returns points touched only by actuator springs.
func (w *World) ActPoints() []*body.Point { return w.actPoints }

func (w *World) Springs() []*body.Spring { return w.springs }

func (w *World) Actuators() []*body.Spring { return w.actuators }

// AllPoints returns a fresh slice of every point, structural first.
func (w *World) AllPoints() []*body.Point {
	out := make([]*body.Point, 0, len(w.points)+len(w.actPoints))
	out = append(out, w.points...)
	return append(out, w.actPoints...)
}

// AllSprings returns a fresh slice of every spring, structural first.
func (w *World) AllSprings() []*body.Spring {
	out := make([]*body.Spring, 0, len(w.springs)+len(w.actuators))
	out = append(out, w.springs...)
	return append(out, w.actuators...)
}

func (w *World) Point(id body.ID) (*body.Point, bool) {
	p, ok := w.byID[id]
	return p, ok
}

func (w *World) isActPoint(p *body.Point) bool {
	_, ok := w.actSet[p.ID]
	return ok
}

func (w *World) NumPoints() int { return len(w.byID) }

func (w *World) Bonded(a, b body.ID) bool { return w.conn.Bonded(a, b) }

func (w *World) Connectivity() *Connectivity { return w.conn }

// AddSoftBody validates b and merges it into the world. Points get fresh
// ids; springs are split into structural springs and actuators, points
// into those touched only by actuators and the rest.
func (w *World) AddSoftBody(b *body.Body) (BodyHandle, error) {
	if err := b.Validate(); err != nil {
		return BodyHandle{}, err
	}
	for i, p := range b.Points {
		if p.ID != 0 {
			return BodyHandle{}, &body.Error{Kind: "point", Index: i, Wrapped: ErrPointReused}
		}
	}

	h := BodyHandle{Index: w.bodies, FirstID: w.nextID, Points: len(b.Points)}
	for _, p := range b.Points {
		p.ID = w.nextID
		w.nextID++
		w.byID[p.ID] = p
	}
	h.LastID = w.nextID - 1

	structural := make(map[*body.Point]bool, len(b.Points))
	actuated := make(map[*body.Point]bool)
	for _, s := range b.Springs {
		w.conn.Link(s.A.ID, s.B.ID)
		if s.Actuator {
			w.actuators = append(w.actuators, s)
			actuated[s.A], actuated[s.B] = true, true
			h.Actuators++
		} else {
			w.springs = append(w.springs, s)
			structural[s.A], structural[s.B] = true, true
			h.Springs++
		}
	}

	for _, p := range b.Points {
		if actuated[p] && !structural[p] {
			w.actPoints = append(w.actPoints, p)
			w.actSet[p.ID] = struct{}{}
		} else {
			w.points = append(w.points, p)
		}
		// Ids are fresh, so Add cannot report a duplicate.
		_ = w.index.Add(p, w.conn)
	}

	w.bodies++
	w.logger.Debug("body added",
		"body", h.Index,
		"points", h.Points,
		"springs", h.Springs,
		"actuators", h.Actuators)
	return h, nil
}

// CheckState reports ErrInvalidState if any point left the finite range
// and ErrDanglingSpring if a spring points outside the world.
func (w *World) CheckState() error {
	for _, p := range w.points {
		if !vmath.IsFinite(p.Pos) {
			return &StepError{Tick: w.timestep, Wrapped: ErrInvalidState}
		}
	}
	for _, p := range w.actPoints {
		if !vmath.IsFinite(p.Pos) {
			return &StepError{Tick: w.timestep, Wrapped: ErrInvalidState}
		}
	}
	return w.checkSprings()
}

// IDs returns every point id in ascending order.
func (w *World) IDs() []body.ID {
	ids := make([]body.ID, 0, len(w.byID))
	for id := range w.byID {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
