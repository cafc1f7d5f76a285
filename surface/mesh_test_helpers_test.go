package surface

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// newClosedBox returns a unit footprint box of the given height with
// outward facing triangles; each side is split as (b0,b1,t1),(b0,t1,t0)
func newClosedBox(height float64) *Mesh {
	return &Mesh{
		Points: []r3.Vec{
			{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: height}, {X: 1, Y: 0, Z: height}, {X: 1, Y: 1, Z: height}, {X: 0, Y: 1, Z: height},
		},
		Triangles: [][3]int{
			{0, 2, 1}, {0, 3, 2}, // floor
			{4, 5, 6}, {4, 6, 7}, // ceiling
			{0, 1, 5}, {0, 5, 4},
			{1, 2, 6}, {1, 6, 5},
			{2, 3, 7}, {2, 7, 6},
			{3, 0, 4}, {3, 4, 7},
		},
	}
}

func zArray(m *Mesh) *Array {
	vals := make([]float64, len(m.Points))
	for i, p := range m.Points {
		vals[i] = p.Z
	}
	return NewScalarArray("Z", vals)
}

func countEdgeTypes(m *Mesh) map[EdgeType]int {
	counts := make(map[EdgeType]int)
	for _, v := range m.Array(CellData, EdgeTypeArrayName).Values {
		counts[EdgeType(v)]++
	}
	return counts
}
