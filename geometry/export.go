package geometry

import (
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/notargets/smartair/surface"
)

// ExportSTL writes the triangles of msh to path as a binary STL
func ExportSTL(path string, msh *surface.Mesh) error {
	if err := msh.Validate(); err != nil {
		return err
	}
	tris := make([]*sdf.Triangle3, len(msh.Triangles))
	for k, tri := range msh.Triangles {
		var t sdf.Triangle3
		for i, v := range tri {
			p := msh.Points[v]
			t[i] = v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
		}
		tris[k] = &t
	}
	return render.SaveSTL(path, tris)
}
