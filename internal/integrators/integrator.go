// Package integrators advances point masses by one timestep from their
// accumulated force.
//
// Every integrator clears the force accumulator after use.
package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/softbody/internal/body"
)

type Integrator interface {
	Name() string
	Integrate(p *body.Point, dt float64)
}

var registry = map[string]func() Integrator{
	"euler":  func() Integrator { return NewEuler() },
	"verlet": func() Integrator { return NewVerlet() },
}

func New(name string) (Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
