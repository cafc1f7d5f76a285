package fields

import (
	"math"

	"github.com/notargets/smartair/casedir"
	"github.com/notargets/smartair/surface"
	"github.com/notargets/smartair/types"
)

const (
	FAIArrayName   = "FAI"
	secondsPerHour = 3600.
	litresToCubic  = 0.001
)

// DisplayRange is the fixed colour range of every metric
var DisplayRange = [2]float64{0, 2}

// Field is a field plane carrying the array to colour by
type Field struct {
	Mesh         *surface.Mesh
	ArrayName    string
	Location     surface.Location
	ColorPreset  string
	DisplayRange [2]float64
}

type derivationInput struct {
	plane         *surface.Mesh
	primitive     *surface.Array
	ceilingHeight float64 // m
	totalFlowRate float64 // L/s
	inletAir      float64
}

// derivation is implemented only by the metrics of this package
type derivation interface {
	derive(in derivationInput) []*surface.Array
}

type (
	achDerivation struct{}
	farDerivation struct{}
	passthrough   struct{}
)

// ACH = 3600 / AoA * f
func (achDerivation) derive(in derivationInput) []*surface.Array {
	ach := make([]float64, len(in.primitive.Values))
	for i, aoa := range in.primitive.Values {
		ach[i] = finite(secondsPerHour / aoa * in.inletAir)
	}
	return []*surface.Array{surface.NewScalarArray(ACH.String(), ach)}
}

/*
The plane area times the ceiling height gives the control volume, and the
volume over the supply flow its mean age of air. The fresh air index is that
mean over the local age, and FAR scales it by the supplied fresh air.
*/
func (farDerivation) derive(in derivationInput) []*surface.Array {
	var (
		volume  = in.plane.SurfaceArea() * in.ceilingHeight
		q       = in.totalFlowRate * litresToCubic
		aoaMean = volume / q
		fai     = make([]float64, len(in.primitive.Values))
		far     = make([]float64, len(in.primitive.Values))
	)
	for i, aoa := range in.primitive.Values {
		idx := aoaMean / aoa
		fai[i] = finite(idx)
		far[i] = finite(idx * q * in.inletAir)
	}
	return []*surface.Array{
		surface.NewScalarArray(FAIArrayName, fai),
		surface.NewScalarArray(FAR.String(), far),
	}
}

func (passthrough) derive(derivationInput) []*surface.Array { return nil }

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

/*
Compute returns the plane with the metric attached. The primitive field is
taken from point data when present, otherwise from cell data, and derived
arrays are written to the same location. Derived metrics need the ceiling
height and total flow rate already resolved on the case.
*/
func Compute(plane *surface.Mesh, m Metric, c *casedir.Case, inletAir float64) (*Field, error) {
	if m >= numMetrics {
		return nil, &types.RequestError{Field: "field", Reason: m.String()}
	}
	var (
		spec = m.Spec()
		in   = derivationInput{plane: plane, inletAir: inletAir}
	)
	if m.Derived() {
		var (
			missing []string
			ok      bool
		)
		if in.ceilingHeight, ok = c.CeilingHeight(); !ok {
			missing = append(missing, "ceiling height")
		}
		if in.totalFlowRate, ok = c.TotalFlowRate(); !ok {
			missing = append(missing, "total flow rate")
		}
		if len(missing) != 0 {
			return nil, &types.MissingCaseContextError{CaseDir: c.Dir, Missing: missing}
		}
	}
	arr, loc, ok := plane.FindArray(spec.Primitive)
	if !ok {
		return nil, types.NewInvalidMeshError("field plane has no %q array", spec.Primitive)
	}
	in.primitive = arr
	if m.Derived() && arr.NumComponents != 1 {
		return nil, types.NewInvalidMeshError("%q has %d components, expected a scalar",
			spec.Primitive, arr.NumComponents)
	}
	out := plane
	for _, derived := range spec.derivation.derive(in) {
		out = out.WithArray(loc, derived)
	}
	name := spec.Primitive
	if m.Derived() {
		name = m.String()
	}
	return &Field{
		Mesh:         out,
		ArrayName:    name,
		Location:     loc,
		ColorPreset:  spec.ColorPreset,
		DisplayRange: DisplayRange,
	}, nil
}
