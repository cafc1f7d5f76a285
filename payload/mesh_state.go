/*
Package payload converts surfaces into the renderer neutral layout consumed
by the web front end: flat coordinate arrays, VTK style cell arrays and at
most one colouring field, wrapped in representations that carry the display
hints.
*/
package payload

import (
	"math"

	"github.com/notargets/smartair/surface"
	"github.com/notargets/smartair/types"
)

// MeshArrays holds the geometry. Cell arrays are laid out as
// [n, i0 .. in-1, n, ...]
type MeshArrays struct {
	Points []float32 `json:"points"`
	Lines  []int32   `json:"lines,omitempty"`
	Polys  []int32   `json:"polys,omitempty"`
}

type FieldState struct {
	Name               string     `json:"name"`
	Values             []float32  `json:"values"`
	NumberOfComponents int        `json:"numberOfComponents"`
	Type               string     `json:"type"`
	Location           string     `json:"location"`
	DataRange          [2]float64 `json:"dataRange"`
}

type MeshState struct {
	Mesh  MeshArrays  `json:"mesh"`
	Field *FieldState `json:"field,omitempty"`
}

/*
Pack lays out msh for the renderer. When field is not empty the named array
is attached, looked up in point data first. Pack fails only with an
InvalidMeshError, for broken connectivity, arrays whose length does not
match the point or cell count, a missing field or a non-finite field value.
*/
func Pack(msh *surface.Mesh, field string) (ms *MeshState, err error) {
	if err = msh.Validate(); err != nil {
		return
	}
	ms = &MeshState{}
	ms.Mesh.Points = make([]float32, 0, 3*len(msh.Points))
	for _, p := range msh.Points {
		ms.Mesh.Points = append(ms.Mesh.Points, float32(p.X), float32(p.Y), float32(p.Z))
	}
	if len(msh.Lines) != 0 {
		ms.Mesh.Lines = make([]int32, 0, 3*len(msh.Lines))
		for _, l := range msh.Lines {
			ms.Mesh.Lines = append(ms.Mesh.Lines, 2, int32(l[0]), int32(l[1]))
		}
	}
	if len(msh.Triangles) != 0 {
		ms.Mesh.Polys = make([]int32, 0, 4*len(msh.Triangles))
		for _, tri := range msh.Triangles {
			ms.Mesh.Polys = append(ms.Mesh.Polys, 3, int32(tri[0]), int32(tri[1]), int32(tri[2]))
		}
	}
	if field == "" {
		return
	}
	arr, loc, ok := msh.FindArray(field)
	if !ok {
		return nil, types.NewInvalidMeshError("no array named %q to colour by", field)
	}
	fs := &FieldState{
		Name:               arr.Name,
		Values:             make([]float32, len(arr.Values)),
		NumberOfComponents: arr.NumComponents,
		Type:               "Float32Array",
		Location:           loc.String(),
	}
	for i, v := range arr.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, types.NewInvalidMeshError("array %q has a non-finite value at %d", field, i/arr.NumComponents)
		}
		fs.Values[i] = float32(v)
	}
	fs.DataRange[0], fs.DataRange[1] = arr.Range()
	ms.Field = fs
	return
}
