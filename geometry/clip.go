/*
Package geometry produces the wall representation of a level: the room
surface cut just below its ceiling, plus the outline edges of the cut
surface.
*/
package geometry

import (
	"github.com/notargets/smartair/casedir"
	"github.com/notargets/smartair/readers"
	"github.com/notargets/smartair/surface"
	"github.com/notargets/smartair/types"
)

// ClipOffset is the distance below the ceiling at which walls are cut, in mesh units
const ClipOffset = 0.1

type Walls struct {
	Surface       *surface.Mesh // clipped walls
	Edges         *surface.Mesh // feature edges of Surface, lines only
	CeilingHeight float64
}

// ClipHeight is the plane the walls are cut at for a given ceiling height
func ClipHeight(ceilingHeight float64) float64 {
	return ceilingHeight - ClipOffset
}

/*
Clip loads <case>/constant/triSurface/<name>.stl, cuts it at the clip height
and extracts its feature edges. The ceiling height is taken as the maximum Z
of the loaded surface, so a sloped or stepped ceiling is cut relative to its
highest point. The resolved height is stored on the case, replacing any
earlier value.
*/
func Clip(c *casedir.Case, name string) (w *Walls, err error) {
	var msh *surface.Mesh
	if msh, err = readers.ReadSurfaceFile(c.GeometryFile(name)); err != nil {
		return
	}
	if w, err = ClipMesh(msh); err != nil {
		return
	}
	c.SetCeilingHeight(w.CeilingHeight)
	return
}

// ClipMesh is Clip for a surface that is already loaded
func ClipMesh(msh *surface.Mesh) (*Walls, error) {
	_, max, ok := msh.Bounds()
	if !ok {
		return nil, types.NewInvalidMeshError("geometry has no points")
	}
	clipped := msh.ClipAbove(ClipHeight(max.Z))
	return &Walls{
		Surface:       clipped,
		Edges:         clipped.FeatureEdges(surface.DefaultFeatureAngle),
		CeilingHeight: max.Z,
	}, nil
}
