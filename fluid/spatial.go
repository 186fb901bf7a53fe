package fluid

import "math"

type cellKey struct {
	x, y int
}

// SpatialHash buckets arena indices into square cells for O(1) neighborhood
// lookups. Unlike a fixed grid it covers an unbounded plane, so particles that
// leave the world bounds mid-step still hash correctly.
//
// The hash is rebuilt from scratch every sub-step. Stored indices point into
// that sub-step's particle arena and are meaningless after the next rebuild.
type SpatialHash struct {
	cellSize float64
	inv      float64
	cells    map[cellKey][]int
}

// NewSpatialHash creates an empty hash with the given cell size.
func NewSpatialHash(cellSize float64) *SpatialHash {
	return &SpatialHash{
		cellSize: cellSize,
		inv:      1 / cellSize,
		cells:    make(map[cellKey][]int, 256),
	}
}

// CellSize returns the current cell edge length.
func (s *SpatialHash) CellSize() float64 {
	return s.cellSize
}

// SetCellSize changes the cell size and drops all buckets.
func (s *SpatialHash) SetCellSize(cellSize float64) {
	s.cellSize = cellSize
	s.inv = 1 / cellSize
	clear(s.cells)
}

// Clear removes all indices. Buckets are truncated and reused; buckets that
// were already empty are dropped so the map does not grow without bound as
// particles move.
func (s *SpatialHash) Clear() {
	for k, bucket := range s.cells {
		if len(bucket) == 0 {
			delete(s.cells, k)
			continue
		}
		s.cells[k] = bucket[:0]
	}
}

// Insert adds an arena index at the given position.
func (s *SpatialHash) Insert(index int, x, y float64) {
	k := s.key(x, y)
	s.cells[k] = append(s.cells[k], index)
}

// QueryInto appends every index stored in the 3x3 block of cells around
// (x, y) to dst and returns it. Results are candidates only: callers filter by
// exact distance. No deduplication is done.
func (s *SpatialHash) QueryInto(dst []int, x, y float64) []int {
	c := s.key(x, y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			dst = append(dst, s.cells[cellKey{c.x + dx, c.y + dy}]...)
		}
	}
	return dst
}

// ForEachInNeighborhood calls fn for every index in the 3x3 block of cells
// around (x, y).
func (s *SpatialHash) ForEachInNeighborhood(x, y float64, fn func(index int)) {
	c := s.key(x, y)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, i := range s.cells[cellKey{c.x + dx, c.y + dy}] {
				fn(i)
			}
		}
	}
}

// Len returns the number of occupied cells.
func (s *SpatialHash) Len() int {
	n := 0
	for _, bucket := range s.cells {
		if len(bucket) > 0 {
			n++
		}
	}
	return n
}

func (s *SpatialHash) key(x, y float64) cellKey {
	return cellKey{
		x: int(math.Floor(x * s.inv)),
		y: int(math.Floor(y * s.inv)),
	}
}
