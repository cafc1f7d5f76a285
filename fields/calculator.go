package fields

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/notargets/smartair/surface"
)

/*
Calculator evaluates an arithmetic expression tuple by tuple over the arrays
of a surface, for example "3600 / AoA * 0.1" or "CO2 - 400". Vector arrays
are seen through their magnitude and the point coordinates are available as
x, y and z when evaluating over point data.
*/
type Calculator struct {
	Name string
	expr *govaluate.EvaluableExpression
}

func NewCalculator(name, expression string) (*Calculator, error) {
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("unable to parse expression %q: %w", expression, err)
	}
	return &Calculator{Name: name, expr: expr}, nil
}

func (c *Calculator) String() string {
	return c.Name + " = " + c.expr.String()
}

type tupleParameters struct {
	msh    *surface.Mesh
	loc    surface.Location
	arrays []*surface.Array
	i      int
}

func (tp *tupleParameters) Get(name string) (interface{}, error) {
	if tp.loc == surface.PointData {
		switch name {
		case "x":
			return tp.msh.Points[tp.i].X, nil
		case "y":
			return tp.msh.Points[tp.i].Y, nil
		case "z":
			return tp.msh.Points[tp.i].Z, nil
		}
	}
	for _, arr := range tp.arrays {
		if arr.Name == name {
			return arr.Magnitude(tp.i), nil
		}
	}
	return nil, fmt.Errorf("no %s array named %q", tp.loc, name)
}

// Evaluate computes the expression for every tuple at loc and returns the
// surface with the result added as a scalar array named c.Name
func (c *Calculator) Evaluate(msh *surface.Mesh, loc surface.Location) (*surface.Mesh, error) {
	n := msh.NumPoints()
	if loc == surface.CellData {
		n = msh.NumCells()
	}
	var (
		params = &tupleParameters{msh: msh, loc: loc, arrays: msh.Arrays(loc)}
		values = make([]float64, n)
	)
	for i := range values {
		params.i = i
		res, err := c.expr.Eval(params)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s at tuple %d: %w", c.Name, i, err)
		}
		switch v := res.(type) {
		case float64:
			values[i] = v
		case bool:
			if v {
				values[i] = 1
			}
		default:
			return nil, fmt.Errorf("%s evaluates to %T, expected a number", c.Name, res)
		}
	}
	return msh.WithArray(loc, surface.NewScalarArray(c.Name, values)), nil
}
