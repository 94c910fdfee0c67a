package sim

import (
	"fmt"

	"github.com/san-kum/softbody/internal/integrators"
)

const (
	ResponsePosition = "position"
	ResponsePenalty  = "penalty"

	SolverPosition = "position"
	SolverPenalty  = "penalty"

	FrictionSimple      = "simple"
	FrictionAnisotropic = "anisotropic"
)

// Config holds every tunable of a World. The zero value is not usable;
// start from DefaultConfig.
type Config struct {
	Collisions          bool    `yaml:"collisions" json:"collisions"`
	CollisionIndex      bool    `yaml:"collision_index" json:"collision_index"`
	CollisionResponse   string  `yaml:"collision_response" json:"collision_response"`
	CollisionStiffness  float64 `yaml:"collision_stiffness" json:"collision_stiffness"`
	CellSide            float64 `yaml:"cell_side" json:"cell_side"`
	SurfaceStiffness    float64 `yaml:"surface_stiffness" json:"surface_stiffness"`
	SurfaceDrag         float64 `yaml:"surface_drag" json:"surface_drag"`
	SurfaceDragTan      float64 `yaml:"surface_drag_tan" json:"surface_drag_tan"`
	SurfaceDragNorm     float64 `yaml:"surface_drag_norm" json:"surface_drag_norm"`
	Friction            string  `yaml:"friction" json:"friction"`
	AirDrag             float64 `yaml:"air_drag" json:"air_drag"`
	Gravity             float64 `yaml:"gravity" json:"gravity"`
	Integrator          string  `yaml:"integrator" json:"integrator"`
	BondSolver          string  `yaml:"bond_solver" json:"bond_solver"`
	BondIterations      int     `yaml:"bond_iterations" json:"bond_iterations"`
	ActuatorIterations  int     `yaml:"actuator_iterations" json:"actuator_iterations"`
	ActuatorRestitution float64 `yaml:"actuator_restitution" json:"actuator_restitution"`
	SortForRender       bool    `yaml:"sort_for_render" json:"sort_for_render"`
	Seed                uint64  `yaml:"seed" json:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Collisions:          true,
		CollisionIndex:      true,
		CollisionResponse:   ResponsePosition,
		CollisionStiffness:  30,
		CellSide:            1.01,
		SurfaceStiffness:    10,
		SurfaceDrag:         0.28,
		SurfaceDragTan:      0.28,
		SurfaceDragNorm:     0.01,
		Friction:            FrictionSimple,
		AirDrag:             0.1,
		Gravity:             0.2,
		Integrator:          "verlet",
		BondSolver:          SolverPosition,
		BondIterations:      3,
		ActuatorIterations:  30,
		ActuatorRestitution: 0.5,
		Seed:                12317,
	}
}

func (c Config) Validate() error {
	if !(c.CellSide > 0) {
		return fmt.Errorf("%w: cell side must be positive, got %v", ErrConfig, c.CellSide)
	}
	if c.BondIterations < 0 || c.ActuatorIterations < 0 {
		return fmt.Errorf("%w: iteration counts must be non-negative", ErrConfig)
	}
	switch c.CollisionResponse {
	case ResponsePosition, ResponsePenalty:
	default:
		return fmt.Errorf("%w: unknown collision response %q", ErrConfig, c.CollisionResponse)
	}
	switch c.BondSolver {
	case SolverPosition, SolverPenalty:
	default:
		return fmt.Errorf("%w: unknown bond solver %q", ErrConfig, c.BondSolver)
	}
	switch c.Friction {
	case FrictionSimple, FrictionAnisotropic:
	default:
		return fmt.Errorf("%w: unknown friction model %q", ErrConfig, c.Friction)
	}
	if _, err := integrators.New(c.Integrator); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return nil
}
