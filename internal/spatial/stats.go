package spatial

import "log/slog"

type Stats struct {
	Objects             int
	OccupiedCells       int
	AvgObjectsPerCell   float64
	AvgNeighbours       float64
	MaxNeighbours       int
	EmptyNeighbourLists int
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("objects", s.Objects),
		slog.Int("occupied_cells", s.OccupiedCells),
		slog.Float64("avg_objects_per_cell", s.AvgObjectsPerCell),
		slog.Float64("avg_neighbours", s.AvgNeighbours),
		slog.Int("max_neighbours", s.MaxNeighbours),
		slog.Int("empty_neighbour_lists", s.EmptyNeighbourLists),
	)
}

func (ix *Index[T]) Stats() Stats {
	s := Stats{
		Objects:       len(ix.objects),
		OccupiedCells: len(ix.cells),
	}
	if s.OccupiedCells > 0 {
		s.AvgObjectsPerCell = float64(s.Objects) / float64(s.OccupiedCells)
	}
	total := 0
	for _, obj := range ix.objects {
		n := len(ix.entries[obj.GridID()].neighbours)
		total += n
		if n == 0 {
			s.EmptyNeighbourLists++
		}
		if n > s.MaxNeighbours {
			s.MaxNeighbours = n
		}
	}
	if s.Objects > 0 {
		s.AvgNeighbours = float64(total) / float64(s.Objects)
	}
	return s
}

// CheckSymmetry reports the first id whose cache references an object that
// does not reference it back, and false when every relation is mutual.
func (ix *Index[T]) CheckSymmetry() (uint64, bool) {
	for _, obj := range ix.objects {
		id := obj.GridID()
		for _, n := range ix.entries[id].neighbours {
			ne, ok := ix.entries[n.GridID()]
			if !ok {
				return id, true
			}
			if !containsID(ne.neighbours, id) {
				return id, true
			}
		}
	}
	return 0, false
}

func containsID[T Object](s []T, id uint64) bool {
	for _, o := range s {
		if o.GridID() == id {
			return true
		}
	}
	return false
}
