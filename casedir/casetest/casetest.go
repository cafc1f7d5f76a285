// Package casetest writes small case trees for tests
package casetest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/notargets/smartair/casedir"
)

/*
Level describes one level to write: a 5 x 2 room of height CeilingHeight,
supply patches named after their flow rates, and for each time step a
sampled plane at z = 1.2 covering the room floor plan, area 10, carrying
corner values of AoA and CO2. No U plane is written.
*/
type Level struct {
	CeilingHeight float64
	SupplyFlows   []int
	Timesteps     []string
	AoA           [4]float64
	CO2           [4]float64
}

// Default is a 3 m room supplied with 100 L/s, sampled at time steps 0 and
// 100, whose AoA gives FAI of 2, 1, 0.5 and 2 at the plane corners
var Default = Level{
	CeilingHeight: 3,
	SupplyFlows:   []int{50, 50},
	Timesteps:     []string{"0", "100"},
	AoA:           [4]float64{150, 300, 600, 150},
	CO2:           [4]float64{800, 900, 1000, 1100},
}

// Write creates <root>/<caseID>/<level> and returns its case
func (lv Level) Write(t testing.TB, root, caseID, level string) *casedir.Case {
	t.Helper()
	c, err := casedir.Resolve(root, caseID, level)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(c.TriSurfaceDir(), 0755))
	write(t, c.GeometryFile("walls"), roomSTL(lv.CeilingHeight))
	for i, q := range lv.SupplyFlows {
		write(t, filepath.Join(c.TriSurfaceDir(), fmt.Sprintf("supply_%d_%d.stl", i, q)), roomSTL(0.1))
	}
	for _, ts := range lv.Timesteps {
		write(t, c.FieldFile(ts, "AoA"), planeVTK("AoA", lv.AoA))
		write(t, c.FieldFile(ts, "CO2"), planeVTK("CO2", lv.CO2))
	}
	return c
}

func write(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func roomSTL(height float64) string {
	pts := [8][3]float64{
		{0, 0, 0}, {5, 0, 0}, {5, 2, 0}, {0, 2, 0},
		{0, 0, height}, {5, 0, height}, {5, 2, height}, {0, 2, height},
	}
	tris := [12][3]int{
		{0, 2, 1}, {0, 3, 2},
		{4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4},
		{1, 2, 6}, {1, 6, 5},
		{2, 3, 7}, {2, 7, 6},
		{3, 0, 4}, {3, 4, 7},
	}
	var sb strings.Builder
	sb.WriteString("solid room\n")
	for _, tri := range tris {
		sb.WriteString("facet normal 0 0 0\nouter loop\n")
		for _, v := range tri {
			fmt.Fprintf(&sb, "vertex %g %g %g\n", pts[v][0], pts[v][1], pts[v][2])
		}
		sb.WriteString("endloop\nendfacet\n")
	}
	sb.WriteString("endsolid room\n")
	return sb.String()
}

func planeVTK(name string, values [4]float64) string {
	return fmt.Sprintf(`# vtk DataFile Version 2.0
sampled
ASCII
DATASET POLYDATA
POINTS 4 float
0 0 1.2 5 0 1.2 5 2 1.2 0 2 1.2
POLYGONS 1 5
4 0 1 2 3
POINT_DATA 4
SCALARS %s float 1
LOOKUP_TABLE default
%g %g %g %g
`, name, values[0], values[1], values[2], values[3])
}
