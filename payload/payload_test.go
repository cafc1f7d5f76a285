package payload

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/smartair/surface"
	"github.com/notargets/smartair/types"
)

func newSquare() *surface.Mesh {
	msh := &surface.Mesh{
		Points:    []r3.Vec{{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1}},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
		Lines:     [][2]int{{0, 1}},
	}
	return msh.WithArray(surface.PointData, surface.NewScalarArray("ACH", []float64{0.5, 1, 1.5, 3}))
}

func TestPackGeometry(t *testing.T) {
	ms, err := Pack(newSquare(), "")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1, 1, 0, 1, 1, 1, 1, 0, 1, 1}, ms.Mesh.Points)
	assert.Equal(t, []int32{3, 0, 1, 2, 3, 0, 2, 3}, ms.Mesh.Polys)
	assert.Equal(t, []int32{2, 0, 1}, ms.Mesh.Lines)
	assert.Nil(t, ms.Field)

	ms, err = Pack(&surface.Mesh{}, "")
	require.NoError(t, err)
	assert.Empty(t, ms.Mesh.Points)
}

func TestPackField(t *testing.T) {
	ms, err := Pack(newSquare(), "ACH")
	require.NoError(t, err)
	require.NotNil(t, ms.Field)
	assert.Equal(t, "ACH", ms.Field.Name)
	assert.Equal(t, "PointData", ms.Field.Location)
	assert.Equal(t, 1, ms.Field.NumberOfComponents)
	assert.Equal(t, []float32{0.5, 1, 1.5, 3}, ms.Field.Values)
	assert.Equal(t, [2]float64{0.5, 3}, ms.Field.DataRange)

	cells := newSquare().WithArray(surface.CellData, surface.NewScalarArray("id", []float64{7, 8, 9}))
	ms, err = Pack(cells, "id")
	require.NoError(t, err)
	assert.Equal(t, "CellData", ms.Field.Location)
}

func TestPackInvalid(t *testing.T) {
	var ime *types.InvalidMeshError

	_, err := Pack(newSquare(), "FAR")
	assert.True(t, errors.As(err, &ime))

	broken := newSquare()
	broken.Triangles = [][3]int{{0, 1, 4}}
	_, err = Pack(broken, "")
	assert.True(t, errors.As(err, &ime))

	short := newSquare().WithArray(surface.CellData, surface.NewScalarArray("id", []float64{1}))
	_, err = Pack(short, "ACH")
	assert.True(t, errors.As(err, &ime))

	nan := newSquare().WithArray(surface.PointData, surface.NewScalarArray("ACH", []float64{0, math.NaN(), 0, 0}))
	_, err = Pack(nan, "ACH")
	require.True(t, errors.As(err, &ime))
	assert.Contains(t, err.Error(), "at 1")
}

func TestPackIsDeterministic(t *testing.T) {
	a, err := Pack(newSquare(), "ACH")
	require.NoError(t, err)
	b, err := Pack(newSquare(), "ACH")
	require.NoError(t, err)
	ja, err := json.Marshal(a)
	require.NoError(t, err)
	jb, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, ja, jb)
}

func TestRepresentations(t *testing.T) {
	ms, err := Pack(newSquare(), "ACH")
	require.NoError(t, err)

	walls := Walls("walls", ms, 0.6)
	assert.Equal(t, []float64{1, 1, 1}, walls.Property.Color)
	assert.Equal(t, 0.6, *walls.Property.Opacity)
	assert.Equal(t, 0.3, walls.Property.Ambient)
	assert.Nil(t, walls.Mapper)

	edges := Edges("wallsedges", ms, 1)
	assert.Equal(t, []float64{0, 0, 0}, edges.Property.Color)
	assert.Zero(t, edges.Property.Ambient)

	plane := FieldPlane(ms, "Black, Blue and White", [2]float64{0, 2})
	require.NotNil(t, plane.Mapper)
	assert.Equal(t, "ACH", plane.Mapper.ColorByArrayName)
	assert.True(t, plane.Mapper.InterpolateScalarsBeforeMapping)
	assert.True(t, plane.Mapper.UseInvertibleColors)

	var decoded map[string]interface{}
	data, err := json.Marshal(plane)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []interface{}{0., 2.}, decoded["colorDataRange"])
	assert.Equal(t, "Black, Blue and White", decoded["colorMapPreset"])
	assert.Equal(t, map[string]interface{}{"ambient": 0.3}, decoded["property"])
	mapper := decoded["mapper"].(map[string]interface{})
	assert.Equal(t, 0., mapper["scalarMode"])
}
