package sim

// Controller is called once at the end of every step with the index of the
// tick that just completed. It may change actuator rest lengths and
// colors; anything else is off limits.
type Controller interface {
	Control(w *World, dt float64, tick uint64)
}

type ControllerFunc func(w *World, dt float64, tick uint64)

func (f ControllerFunc) Control(w *World, dt float64, tick uint64) { f(w, dt, tick) }
