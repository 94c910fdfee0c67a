package controllers

import (
	"math"

	"github.com/san-kum/softbody/internal/body"
	"github.com/san-kum/softbody/internal/sim"
)

type PID struct {
	Kp       float64
	Ki       float64
	Kd       float64
	Target   float64
	integral float64
	prevErr  float64
	prevT    float64
	first    bool
}

func NewPID(kp, ki, kd, target float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		first:  true,
	}
}

// Update returns the control output for a measurement taken at time t.
func (p *PID) Update(measured, t float64) float64 {
	err := p.Target - measured

	if p.first {
		p.prevErr = err
		p.prevT = t
		p.first = false
		return p.Kp * err
	}

	dt := t - p.prevT
	if dt <= 0 {
		return p.Kp * err
	}
	p.integral += err * dt
	derivative := (err - p.prevErr) / dt
	p.prevErr = err
	p.prevT = t
	return p.Kp*err + p.Ki*p.integral + p.Kd*derivative
}

func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevT = 0
	p.first = true
}

// LengthHold steers the rest length of a group of actuator springs so
// their mean current length tracks the PID target.
type LengthHold struct {
	PID      *PID
	Springs  []*body.Spring
	Base     float64
	Min, Max float64
}

func NewLengthHold(pid *PID, springs []*body.Spring, base, min, max float64) *LengthHold {
	return &LengthHold{PID: pid, Springs: springs, Base: base, Min: min, Max: max}
}

func (h *LengthHold) MeanLength() float64 {
	if len(h.Springs) == 0 {
		return 0
	}
	var sum float64
	for _, s := range h.Springs {
		sum += s.Length()
	}
	return sum / float64(len(h.Springs))
}

func (h *LengthHold) Control(_ *sim.World, dt float64, tick uint64) {
	if len(h.Springs) == 0 {
		return
	}
	u := h.PID.Update(h.MeanLength(), float64(tick)*dt)
	rest := math.Min(h.Max, math.Max(h.Min, h.Base+u))
	for _, s := range h.Springs {
		s.RestLength = rest
	}
}
