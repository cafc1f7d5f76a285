package surface

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/smartair/types"
)

// Location says whether an array holds one tuple per point or per cell
type Location uint8

const (
	PointData Location = iota
	CellData
)

func (l Location) String() string {
	return [...]string{"PointData", "CellData"}[l]
}

// Array is a named attribute array stored tuple-major
type Array struct {
	Name          string
	NumComponents int
	Values        []float64 // [ntuples*NumComponents]
}

func NewScalarArray(name string, values []float64) *Array {
	return &Array{Name: name, NumComponents: 1, Values: values}
}

func (a *Array) Tuples() int {
	if a.NumComponents <= 0 {
		return 0
	}
	return len(a.Values) / a.NumComponents
}

// Tuple returns the components of tuple i without copying
func (a *Array) Tuple(i int) []float64 {
	return a.Values[i*a.NumComponents : (i+1)*a.NumComponents]
}

// Magnitude is the value itself for scalars and the euclidean norm otherwise
func (a *Array) Magnitude(i int) float64 {
	if a.NumComponents == 1 {
		return a.Values[i]
	}
	return floats.Norm(a.Tuple(i), 2)
}

// Range returns the min and max over tuple magnitudes, skipping non-finite values
func (a *Array) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for i := 0; i < a.Tuples(); i++ {
		v := a.Magnitude(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo > hi {
		lo, hi = 0, 0
	}
	return
}

func (a *Array) clone() *Array {
	vals := make([]float64, len(a.Values))
	copy(vals, a.Values)
	return &Array{Name: a.Name, NumComponents: a.NumComponents, Values: vals}
}

/*
Mesh is a triangulated surface, optionally carrying line cells (feature
edges) and named point or cell arrays. Cells are ordered lines first, then
triangles, so cell arrays index that combined sequence.

A Mesh is treated as immutable once built: operations return a new Mesh.
*/
type Mesh struct {
	Points    []r3.Vec
	Triangles [][3]int
	Lines     [][2]int
	PointData []*Array
	CellData  []*Array
}

func (m *Mesh) NumPoints() int { return len(m.Points) }

func (m *Mesh) NumCells() int { return len(m.Lines) + len(m.Triangles) }

func (m *Mesh) Arrays(loc Location) []*Array {
	if loc == CellData {
		return m.CellData
	}
	return m.PointData
}

func (m *Mesh) Array(loc Location, name string) *Array {
	for _, a := range m.Arrays(loc) {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindArray looks in point data first, then cell data
func (m *Mesh) FindArray(name string) (a *Array, loc Location, ok bool) {
	if a = m.Array(PointData, name); a != nil {
		return a, PointData, true
	}
	if a = m.Array(CellData, name); a != nil {
		return a, CellData, true
	}
	return nil, PointData, false
}

// WithArray returns a shallow copy of the mesh with arr added at loc,
// replacing any array of the same name there
func (m *Mesh) WithArray(loc Location, arr *Array) *Mesh {
	out := *m
	replace := func(arrays []*Array) []*Array {
		res := make([]*Array, 0, len(arrays)+1)
		var found bool
		for _, a := range arrays {
			if a.Name == arr.Name {
				res = append(res, arr)
				found = true
				continue
			}
			res = append(res, a)
		}
		if !found {
			res = append(res, arr)
		}
		return res
	}
	if loc == CellData {
		out.CellData = replace(m.CellData)
	} else {
		out.PointData = replace(m.PointData)
	}
	return &out
}

// Bounds returns the axis aligned bounding box, ok is false for an empty mesh
func (m *Mesh) Bounds() (min, max r3.Vec, ok bool) {
	if len(m.Points) == 0 {
		return
	}
	min, max = m.Points[0], m.Points[0]
	for _, p := range m.Points[1:] {
		min = r3.Vec{X: math.Min(min.X, p.X), Y: math.Min(min.Y, p.Y), Z: math.Min(min.Z, p.Z)}
		max = r3.Vec{X: math.Max(max.X, p.X), Y: math.Max(max.Y, p.Y), Z: math.Max(max.Z, p.Z)}
	}
	return min, max, true
}

// Validate checks connectivity indices and array sizes
func (m *Mesh) Validate() error {
	np := len(m.Points)
	for i, p := range m.Points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			return types.NewInvalidMeshError("point %d has a NaN coordinate", i)
		}
	}
	for k, tri := range m.Triangles {
		for _, v := range tri {
			if v < 0 || v >= np {
				return types.NewInvalidMeshError("triangle %d references vertex %d, have %d points", k, v, np)
			}
		}
	}
	for k, line := range m.Lines {
		for _, v := range line {
			if v < 0 || v >= np {
				return types.NewInvalidMeshError("line %d references vertex %d, have %d points", k, v, np)
			}
		}
	}
	check := func(loc Location, n int) error {
		for _, a := range m.Arrays(loc) {
			if a.NumComponents <= 0 {
				return types.NewInvalidMeshError("%s array %q has %d components", loc, a.Name, a.NumComponents)
			}
			if len(a.Values) != n*a.NumComponents {
				return types.NewInvalidMeshError("%s array %q has %d values, expected %d",
					loc, a.Name, len(a.Values), n*a.NumComponents)
			}
		}
		return nil
	}
	if err := check(PointData, np); err != nil {
		return err
	}
	return check(CellData, m.NumCells())
}
