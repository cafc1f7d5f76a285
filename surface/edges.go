package surface

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/spatial/r3"
)

// EdgeType classifies a feature edge, stored per line in the "EdgeType" cell array
type EdgeType uint8

const (
	BoundaryEdge EdgeType = iota
	NonManifoldEdge
	FeatureEdge
)

func (e EdgeType) String() string {
	return [...]string{"Boundary", "NonManifold", "Feature"}[e]
}

const (
	EdgeTypeArrayName   = "EdgeType"
	DefaultFeatureAngle = 30. // degrees
)

// incidence builds the sparse triangle-to-vertex matrix, one row per triangle
func (m *Mesh) incidence() *sparse.CSR {
	TToV := sparse.NewDOK(len(m.Triangles), len(m.Points))
	for k, tri := range m.Triangles {
		for _, v := range tri {
			TToV.Set(k, v, 1)
		}
	}
	return TToV.ToCSR()
}

/*
TriangleNeighbors returns, for each triangle and each local edge
(v0,v1), (v1,v2), (v2,v0), the other triangles sharing that edge. Sharing is
found from the product TToV * TToV^T, whose off diagonal entries count the
vertices two triangles have in common.
*/
func (m *Mesh) TriangleNeighbors() (nbrs [][3][]int) {
	nbrs = make([][3][]int, len(m.Triangles))
	if len(m.Triangles) == 0 || len(m.Points) == 0 {
		return
	}
	TToV := m.incidence()
	TToT := sparse.NewCSR(len(m.Triangles), len(m.Triangles), nil, nil, nil)
	TToT.Mul(TToV, TToV.T())
	TToT.DoNonZero(func(i, j int, v float64) {
		if i == j || v < 2 {
			return
		}
		tri, other := m.Triangles[i], m.Triangles[j]
		for e := 0; e < 3; e++ {
			if contains(other, tri[e]) && contains(other, tri[(e+1)%3]) {
				nbrs[i][e] = append(nbrs[i][e], j)
			}
		}
	})
	return
}

func contains(tri [3]int, v int) bool {
	return tri[0] == v || tri[1] == v || tri[2] == v
}

/*
FeatureEdges extracts the outline of a surface as line cells: boundary edges
used by one triangle, non-manifold edges used by more than two, and sharp
edges whose adjacent triangle normals differ by more than featureAngle
degrees. Each edge is emitted once, in the order of its lowest numbered
triangle. Points are compacted to those used by an edge and point arrays
follow them.
*/
func (m *Mesh) FeatureEdges(featureAngle float64) *Mesh {
	var (
		nbrs     = m.TriangleNeighbors()
		cosAngle = math.Cos(featureAngle * math.Pi / 180.)
		out      = &Mesh{}
		newID    = make(map[int]int)
		oldIDs   []int
		eTypes   []float64
	)
	keep := func(v int) int {
		if id, ok := newID[v]; ok {
			return id
		}
		id := len(out.Points)
		newID[v] = id
		out.Points = append(out.Points, m.Points[v])
		oldIDs = append(oldIDs, v)
		return id
	}
	for k, tri := range m.Triangles {
		for e := 0; e < 3; e++ {
			users := nbrs[k][e]
			var lowest = true
			for _, j := range users {
				if j < k {
					lowest = false
				}
			}
			if !lowest {
				continue
			}
			var et EdgeType
			switch len(users) {
			case 0:
				et = BoundaryEdge
			case 1:
				n1, n2 := m.TriangleNormal(k), m.TriangleNormal(users[0])
				l1, l2 := r3.Norm(n1), r3.Norm(n2)
				if l1 == 0 || l2 == 0 || r3.Dot(n1, n2)/(l1*l2) > cosAngle {
					continue
				}
				et = FeatureEdge
			default:
				et = NonManifoldEdge
			}
			out.Lines = append(out.Lines, [2]int{keep(tri[e]), keep(tri[(e+1)%3])})
			eTypes = append(eTypes, float64(et))
		}
	}
	for _, arr := range m.PointData {
		res := &Array{Name: arr.Name, NumComponents: arr.NumComponents,
			Values: make([]float64, 0, len(oldIDs)*arr.NumComponents)}
		for _, v := range oldIDs {
			res.Values = append(res.Values, arr.Tuple(v)...)
		}
		out.PointData = append(out.PointData, res)
	}
	out.CellData = []*Array{NewScalarArray(EdgeTypeArrayName, eTypes)}
	return out
}

/*
CellToPoint averages a triangle cell array onto the points, each point
taking the mean of the triangles that use it. Points used by no triangle get
zero. Line cells are ignored.
*/
func (m *Mesh) CellToPoint(arr *Array) *Array {
	var (
		nc     = arr.NumComponents
		nLines = len(m.Lines)
		sum    = make([]float64, len(m.Points)*nc)
		count  = make([]float64, len(m.Points))
	)
	if len(m.Triangles) != 0 && len(m.Points) != 0 {
		m.incidence().DoNonZero(func(k, v int, _ float64) {
			tuple := arr.Tuple(nLines + k)
			for n := 0; n < nc; n++ {
				sum[v*nc+n] += tuple[n]
			}
			count[v]++
		})
	}
	for v, cnt := range count {
		if cnt == 0 {
			continue
		}
		for n := 0; n < nc; n++ {
			sum[v*nc+n] /= cnt
		}
	}
	return &Array{Name: arr.Name, NumComponents: nc, Values: sum}
}
