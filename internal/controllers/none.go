// Package controllers drives actuator springs of bodies in a world.
package controllers

import "github.com/san-kum/softbody/internal/sim"

// None leaves every actuator alone.
type None struct{}

func NewNone() *None { return &None{} }

func (*None) Control(*sim.World, float64, uint64) {}

var _ sim.Controller = (*None)(nil)
