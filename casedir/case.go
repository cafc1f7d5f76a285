/*
Package casedir resolves the on-disk layout of one simulated level of an
analysis case:

	<root>/<case>/<level>/constant/triSurface/<name>.stl
	<root>/<case>/<level>/constant/triSurface/supply*_<flow>.stl
	<root>/<case>/<level>/postProcessing/surfaces/<timestep>/<field>_surfaces0.vtk
*/
package casedir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/smartair/types"
)

const (
	TriSurfaceDir = "constant/triSurface"
	SurfacesDir   = "postProcessing/surfaces"
	SupplyPrefix  = "supply"
	LevelPrefix   = "level"
	FieldSuffix   = "_surfaces0.vtk"
)

/*
Case is the context of one request against one level of a case. The ceiling
height and the total inlet flow rate are resolved from that level's files
during the request and never carried over to another request.
*/
type Case struct {
	Dir string

	ceilingHeight, totalFlowRate float64
	hasCeiling, hasFlow          bool
}

func New(dir string) *Case {
	return &Case{Dir: dir}
}

// Resolve builds the Case for <root>/<caseID>/<level> after checking that
// both identifiers are single path elements
func Resolve(root, caseID, level string) (*Case, error) {
	if err := checkPathElement("case", caseID); err != nil {
		return nil, err
	}
	if err := checkPathElement("level", level); err != nil {
		return nil, err
	}
	return New(filepath.Join(root, caseID, level)), nil
}

func checkPathElement(field, name string) error {
	switch {
	case name == "":
		return &types.RequestError{Field: field, Reason: "empty"}
	case name == "." || name == "..", strings.ContainsAny(name, `/\`):
		return &types.RequestError{Field: field, Reason: fmt.Sprintf("%q is not a plain directory name", name)}
	}
	return nil
}

// SetCeilingHeight overwrites any previously resolved height
func (c *Case) SetCeilingHeight(h float64) {
	c.ceilingHeight, c.hasCeiling = h, true
}

func (c *Case) CeilingHeight() (float64, bool) {
	return c.ceilingHeight, c.hasCeiling
}

func (c *Case) SetTotalFlowRate(q float64) {
	c.totalFlowRate, c.hasFlow = q, true
}

// TotalFlowRate is the design inlet flow rate in L/s
func (c *Case) TotalFlowRate() (float64, bool) {
	return c.totalFlowRate, c.hasFlow
}

func (c *Case) TriSurfaceDir() string {
	return filepath.Join(c.Dir, filepath.FromSlash(TriSurfaceDir))
}

func (c *Case) GeometryFile(name string) string {
	return filepath.Join(c.TriSurfaceDir(), name+".stl")
}

func (c *Case) SurfacesDir() string {
	return filepath.Join(c.Dir, filepath.FromSlash(SurfacesDir))
}

func (c *Case) FieldFile(timestep, primitive string) string {
	return filepath.Join(c.SurfacesDir(), timestep, primitive+FieldSuffix)
}

// Levels lists the level directories of a case in name order
func Levels(root, caseID string) (levels []string, err error) {
	if err = checkPathElement("case", caseID); err != nil {
		return
	}
	var entries []os.DirEntry
	if entries, err = os.ReadDir(filepath.Join(root, caseID)); err != nil {
		return nil, fmt.Errorf("unable to list levels of case %q: %w", caseID, err)
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), LevelPrefix) {
			levels = append(levels, entry.Name())
		}
	}
	return
}
