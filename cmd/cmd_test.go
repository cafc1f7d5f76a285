package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/smartair/casedir/casetest"
	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/pipeline"
	"github.com/notargets/smartair/readers"
	"github.com/notargets/smartair/surface"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestProcessInput(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Case: office
Level: level01
Field: CO2
FreshAir: 5
`)
	icFile := filepath.Join(t.TempDir(), "request.yaml")
	require.NoError(t, os.WriteFile(icFile, fileInput, 0644))

	vo := &ViewOptions{ICFile: icFile}
	require.NoError(t, processInput(vo))
	assert.Equal(t, "CO2", vo.Params.Field)
	assert.Equal(t, 5., vo.Params.FreshAir)

	err := processInput(&ViewOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Case: office")
}

func TestViewCommand(t *testing.T) {
	root := t.TempDir()
	casetest.Default.Write(t, root, "office", "level01")
	output := filepath.Join(t.TempDir(), "view.json")

	_, err := execute(t, "--root", root, "view", "-c", "office", "-l", "level01", "-f", "FAR", "-a", "10", "-o", output)
	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var view pipeline.View
	require.NoError(t, json.Unmarshal(data, &view))
	assert.Equal(t, "10%", view.FreshAirLabel)
	assert.Equal(t, "FAR", view.Plane.State.Field.Name)
	assert.InDelta(t, 0.02, view.Plane.State.Field.Values[0], 1.e-6)

	_, err = execute(t, "--root", root, "view", "-c", "office", "-l", "level01", "-f", "PMV", "-o", output)
	assert.Error(t, err)
}

func TestLevelsCommand(t *testing.T) {
	root := t.TempDir()
	casetest.Default.Write(t, root, "office", "level01")
	casetest.Default.Write(t, root, "office", "level02")
	out, err := execute(t, "--root", root, "levels", "office")
	require.NoError(t, err)
	assert.Equal(t, "level01\nlevel02\n", out)
}

func TestCalcCommand(t *testing.T) {
	root := t.TempDir()
	casetest.Default.Write(t, root, "office", "level01")
	out, err := execute(t, "--root", root, "calc", "office", "level01", "scaled = AoA/100", "--field", "AoA")
	require.NoError(t, err)
	assert.Equal(t, "scaled\tPointData\t[1.5, 6]\n", out)

	_, err = execute(t, "--root", root, "calc", "office", "level01", "3600/AoA")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	root := t.TempDir()
	casetest.Default.Write(t, root, "office", "level01")
	output := filepath.Join(t.TempDir(), "walls.stl")
	_, err := execute(t, "--root", root, "export", "office", "level01", output)
	require.NoError(t, err)
	msh, err := readers.ReadSurfaceFile(output)
	require.NoError(t, err)
	_, max, _ := msh.Bounds()
	assert.InDelta(t, 2.9, max.Z, 1.e-6)
}

func TestPlotInputs(t *testing.T) {
	square := &surface.Mesh{
		Points:    []r3.Vec{{X: 0, Y: 0, Z: 1}, {X: 2, Y: 0, Z: 1}, {X: 2, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1}},
		Triangles: [][3]int{{0, 1, 2}, {0, 2, 3}},
		Lines:     [][2]int{},
	}
	gm := planeTriMesh(square)
	assert.Equal(t, []float32{0, 0, 2, 0, 2, 1, 0, 1}, gm.XY)
	assert.Equal(t, [][3]int64{{0, 1, 2}, {0, 2, 3}}, gm.TriVerts)

	cells := square.WithArray(surface.CellData, surface.NewScalarArray("FAR", []float64{2, 4}))
	vals := vertexField(&fields.Field{Mesh: cells, ArrayName: "FAR", Location: surface.CellData})
	assert.Equal(t, []float32{3, 2, 3, 4}, vals)

	u := &surface.Array{Name: "U", NumComponents: 3, Values: []float64{3, 4, 0, 0, 0, 1, 0, 0, 0, 1, 2, 2}}
	vals = vertexField(&fields.Field{Mesh: square.WithArray(surface.PointData, u), ArrayName: "U", Location: surface.PointData})
	assert.Equal(t, []float32{5, 1, 0, 3}, vals)

	edges := &surface.Mesh{Points: square.Points, Lines: [][2]int{{0, 1}, {1, 2}}}
	outline := outlineXY(edges)
	assert.Equal(t, []float32{0, 0, 2, 0, 2, 0, 2, 1}, outline)
	xMin, xMax, yMin, yMax := getMinMax(outline)
	assert.Equal(t, [4]float32{0, 2, 0, 1}, [4]float32{xMin, xMax, yMin, yMax})
}

func TestViewSourcesFeedPlot(t *testing.T) {
	root := t.TempDir()
	casetest.Default.Write(t, root, "office", "level01")
	view, err := pipeline.Run(context.Background(), &pipeline.Config{Root: root},
		pipeline.Request{Case: "office", Level: "level01", Field: fields.FAR, FreshAir: 0.1})
	require.NoError(t, err)
	require.NotNil(t, view.Sources.Plane)
	require.NotNil(t, view.Sources.Walls)

	gm := planeTriMesh(view.Sources.Plane.Mesh)
	vals := vertexField(view.Sources.Plane)
	assert.Len(t, vals, len(gm.XY)/2)
	assert.Equal(t, view.Plane.State.Field.Values, vals)
	assert.NotEmpty(t, outlineXY(view.Sources.Walls.Edges))
}
