// Package spatial implements a uniform 3D grid with per-object neighbour
// caches.
//
// An object's cache lists every other object in the 27 cells around it,
// minus pairs rejected by a [Mask]. Caches are kept symmetric: b is in a's
// cache iff a is in b's. Queries are exact for interaction radii up to the
// cell side.
package spatial

import (
	"errors"
	"slices"

	"github.com/san-kum/softbody/internal/vmath"
)

var (
	ErrCellSide  = errors.New("spatial: cell side must be positive")
	ErrDuplicate = errors.New("spatial: object already indexed")
)

type Object interface {
	GridID() uint64
	GridPos() vmath.Vec3
}

// Mask rejects pairs that must never appear in each other's caches.
type Mask interface {
	Excluded(a, b uint64) bool
}

type MaskFunc func(a, b uint64) bool

func (f MaskFunc) Excluded(a, b uint64) bool { return f(a, b) }

type noMask struct{}

func (noMask) Excluded(a, b uint64) bool { return false }

// NoMask excludes nothing.
var NoMask Mask = noMask{}

type entry[T Object] struct {
	obj        T
	key        Key
	slot       int
	neighbours []T
}

type Index[T Object] struct {
	side    float64
	invSide float64
	cells   map[Key][]T
	entries map[uint64]*entry[T]
	objects []T
	scratch []T
}

func New[T Object](side float64) (*Index[T], error) {
	if !(side > 0) {
		return nil, ErrCellSide
	}
	return &Index[T]{
		side:    side,
		invSide: 1 / side,
		cells:   make(map[Key][]T),
		entries: make(map[uint64]*entry[T]),
	}, nil
}

func (ix *Index[T]) Side() float64 { return ix.side }

func (ix *Index[T]) Len() int { return len(ix.objects) }

func (ix *Index[T]) Contains(id uint64) bool {
	_, ok := ix.entries[id]
	return ok
}

// KeyOf returns the cell key for pos.
func (ix *Index[T]) KeyOf(pos vmath.Vec3) Key {
	return CellOf(pos, ix.invSide).Key()
}

// Add inserts obj into its cell and links it with every unmasked object
// in the surrounding block.
func (ix *Index[T]) Add(obj T, mask Mask) error {
	id := obj.GridID()
	if _, ok := ix.entries[id]; ok {
		return ErrDuplicate
	}
	if mask == nil {
		mask = NoMask
	}

	cell := CellOf(obj.GridPos(), ix.invSide)
	e := &entry[T]{
		obj:        obj,
		key:        cell.Key(),
		slot:       len(ix.objects),
		neighbours: make([]T, 0, 8),
	}

	cell.moore(func(k Key) {
		for _, other := range ix.cells[k] {
			oid := other.GridID()
			if oid == id || mask.Excluded(id, oid) {
				continue
			}
			e.neighbours = append(e.neighbours, other)
			oe := ix.entries[oid]
			oe.neighbours = append(oe.neighbours, obj)
		}
	})

	ix.cells[e.key] = append(ix.cells[e.key], obj)
	ix.entries[id] = e
	ix.objects = append(ix.objects, obj)
	return nil
}

// Remove unlinks obj from its cell and from every neighbour cache.
// Unknown objects are ignored.
func (ix *Index[T]) Remove(obj T) {
	id := obj.GridID()
	e, ok := ix.entries[id]
	if !ok {
		return
	}

	for _, n := range e.neighbours {
		if ne, ok := ix.entries[n.GridID()]; ok {
			ne.neighbours = deleteID(ne.neighbours, id)
		}
	}
	e.neighbours = e.neighbours[:0]

	bucket := deleteID(ix.cells[e.key], id)
	if len(bucket) == 0 {
		delete(ix.cells, e.key)
	} else {
		ix.cells[e.key] = bucket
	}

	last := len(ix.objects) - 1
	if e.slot != last {
		moved := ix.objects[last]
		ix.objects[e.slot] = moved
		ix.entries[moved.GridID()].slot = e.slot
	}
	var zero T
	ix.objects[last] = zero
	ix.objects = ix.objects[:last]

	delete(ix.entries, id)
}

// Update re-files obj if it has crossed into another cell.
func (ix *Index[T]) Update(obj T, mask Mask) {
	e, ok := ix.entries[obj.GridID()]
	if !ok {
		return
	}
	if ix.KeyOf(obj.GridPos()) == e.key {
		return
	}
	ix.Remove(obj)
	// Cannot collide: obj was just removed.
	_ = ix.Add(obj, mask)
}

// UpdateAll calls Update for every indexed object.
func (ix *Index[T]) UpdateAll(mask Mask) {
	snapshot := append(ix.scratch[:0], ix.objects...)
	ix.scratch = nil
	for _, obj := range snapshot {
		ix.Update(obj, mask)
	}
	clear(snapshot)
	ix.scratch = snapshot[:0]
}

// ForEachNeighbour calls fn(neighbour, obj) for each cached neighbour of
// obj. When fn reports that it moved the pair, both objects are re-filed
// before the next neighbour is visited. Iteration runs over a snapshot of
// the cache taken on entry.
func (ix *Index[T]) ForEachNeighbour(obj T, fn func(neighbour, obj T) bool, mask Mask) {
	e, ok := ix.entries[obj.GridID()]
	if !ok || len(e.neighbours) == 0 {
		return
	}

	snapshot := append(ix.scratch[:0], e.neighbours...)
	ix.scratch = nil
	for _, n := range snapshot {
		if !ix.Contains(n.GridID()) {
			continue
		}
		if fn(n, obj) {
			ix.Update(n, mask)
			ix.Update(obj, mask)
		}
	}
	clear(snapshot)
	ix.scratch = snapshot[:0]
}

// Neighbours returns a copy of obj's cache, nil if obj is not indexed.
func (ix *Index[T]) Neighbours(obj T) []T {
	e, ok := ix.entries[obj.GridID()]
	if !ok {
		return nil
	}
	return slices.Clone(e.neighbours)
}

// Objects returns the indexed objects in slot order.
func (ix *Index[T]) Objects() []T {
	return slices.Clone(ix.objects)
}

func deleteID[T Object](s []T, id uint64) []T {
	i := slices.IndexFunc(s, func(o T) bool { return o.GridID() == id })
	if i < 0 {
		return s
	}
	return slices.Delete(s, i, i+1)
}
