package sim

import (
	"slices"

	"github.com/san-kum/softbody/internal/body"
)

// Connectivity records which points share a spring. Relations are
// symmetric.
type Connectivity struct {
	adj map[body.ID]map[body.ID]struct{}
}

func NewConnectivity() *Connectivity {
	return &Connectivity{adj: make(map[body.ID]map[body.ID]struct{})}
}

func (c *Connectivity) ensure(id body.ID) map[body.ID]struct{} {
	set, ok := c.adj[id]
	if !ok {
		set = make(map[body.ID]struct{})
		c.adj[id] = set
	}
	return set
}

func (c *Connectivity) Link(a, b body.ID) {
	c.ensure(a)[b] = struct{}{}
	c.ensure(b)[a] = struct{}{}
}

func (c *Connectivity) Unlink(a, b body.ID) {
	delete(c.adj[a], b)
	delete(c.adj[b], a)
}

// Drop forgets id and every relation that names it.
func (c *Connectivity) Drop(id body.ID) {
	for other := range c.adj[id] {
		delete(c.adj[other], id)
	}
	delete(c.adj, id)
}

func (c *Connectivity) Bonded(a, b body.ID) bool {
	_, ok := c.adj[a][b]
	return ok
}

// Excluded implements spatial.Mask so bonded pairs never become collision
// candidates.
func (c *Connectivity) Excluded(a, b uint64) bool {
	return c.Bonded(body.ID(a), body.ID(b))
}

// Neighbours returns the ids bonded to id in ascending order.
func (c *Connectivity) Neighbours(id body.ID) []body.ID {
	set := c.adj[id]
	out := make([]body.ID, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func (c *Connectivity) Degree(id body.ID) int { return len(c.adj[id]) }

func (c *Connectivity) Len() int { return len(c.adj) }
