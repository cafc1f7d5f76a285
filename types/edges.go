package types

import (
	"fmt"
	"math"
)

/*
EdgeKey stores the two vertex indices of an undirected edge packed into one
uint64, so an edge between vertices [4] and [0] has the same key as [0,4].
Used to share cut points between neighbouring triangles and to index edges.
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey, err error) {
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			err = fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1])
			return
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(uint64(i1) | uint64(i2)<<32)
	return
}

// MustEdgeKey is NewEdgeKey for indices already known to lie inside a mesh
func MustEdgeKey(v0, v1 int) EdgeKey {
	ek, err := NewEdgeKey([2]int{v0, v1})
	if err != nil {
		panic(err)
	}
	return ek
}
