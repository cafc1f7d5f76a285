package cmd

import (
	"math"

	"github.com/notargets/avs/chart2d"
	"github.com/notargets/avs/geometry"
	utils2 "github.com/notargets/avs/utils"

	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/pipeline"
	"github.com/notargets/smartair/surface"
)

// PlotView draws the metric plane seen from above with the wall outline.
// It does not return.
func PlotView(view *pipeline.View) {
	var (
		gm      = planeTriMesh(view.Sources.Plane.Mesh)
		field   = vertexField(view.Sources.Plane)
		outline = outlineXY(view.Sources.Walls.Edges)
		rng     = view.Sources.Plane.DisplayRange
	)
	xMin, xMax, yMin, yMax := getMinMax(append(append([]float32{}, gm.XY...), outline...))
	ch := chart2d.NewChart2D(xMin, xMax, yMin, yMax,
		1024, 1024, utils2.BLACK, utils2.WHITE)
	vs := geometry.VertexScalar{
		TMesh:       &gm,
		FieldValues: field,
	}
	ch.AddShadedVertexScalar(&vs, float32(rng[0]), float32(rng[1]))
	ch.AddLine(outline, utils2.BLACK)
	select {}
}

func planeTriMesh(msh *surface.Mesh) geometry.TriMesh {
	xy := make([]float32, 0, 2*len(msh.Points))
	for _, p := range msh.Points {
		xy = append(xy, float32(p.X), float32(p.Y))
	}
	verts := make([][3]int64, len(msh.Triangles))
	for k, tri := range msh.Triangles {
		verts[k] = [3]int64{int64(tri[0]), int64(tri[1]), int64(tri[2])}
	}
	return geometry.NewTriMesh(xy, verts)
}

// vertexField returns one magnitude per point; cell fields are averaged
// onto the points first
func vertexField(f *fields.Field) []float32 {
	arr := f.Mesh.Array(f.Location, f.ArrayName)
	if arr == nil {
		return make([]float32, len(f.Mesh.Points))
	}
	if f.Location == surface.CellData {
		arr = f.Mesh.CellToPoint(arr)
	}
	vals := make([]float32, arr.Tuples())
	for i := range vals {
		vals[i] = float32(arr.Magnitude(i))
	}
	return vals
}

func outlineXY(msh *surface.Mesh) (xy []float32) {
	for _, l := range msh.Lines {
		a, b := msh.Points[l[0]], msh.Points[l[1]]
		xy = append(xy, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y))
	}
	return
}

func getMinMax(XY []float32) (xMin, xMax, yMin, yMax float32) {
	xMin, yMin = math.MaxFloat32, math.MaxFloat32
	xMax, yMax = -math.MaxFloat32, -math.MaxFloat32
	for i := 0; i+1 < len(XY); i += 2 {
		x, y := XY[i], XY[i+1]
		xMin, xMax = min(xMin, x), max(xMax, x)
		yMin, yMax = min(yMin, y), max(yMax, y)
	}
	return
}
