package surface

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// TriangleNormal returns the unnormalised normal, twice the triangle area in length
func (m *Mesh) TriangleNormal(k int) r3.Vec {
	tri := m.Triangles[k]
	v0, v1, v2 := m.Points[tri[0]], m.Points[tri[1]], m.Points[tri[2]]
	return r3.Cross(r3.Sub(v1, v0), r3.Sub(v2, v0))
}

func (m *Mesh) TriangleArea(k int) float64 {
	return 0.5 * r3.Norm(m.TriangleNormal(k))
}

// SurfaceArea is the summed area of all triangles
func (m *Mesh) SurfaceArea() (area float64) {
	for k := range m.Triangles {
		area += m.TriangleArea(k)
	}
	return
}
