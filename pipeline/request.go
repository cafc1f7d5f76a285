package pipeline

import (
	"fmt"
	"math"
	"strconv"

	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/types"
)

const (
	DefaultGeometry = "walls"
	DefaultOpacity  = 1.
)

// Request selects what to show. FreshAir is the inlet air fraction, 0.1
// for 10%.
type Request struct {
	Case     string        `json:"case"`
	Level    string        `json:"level"`
	Field    fields.Metric `json:"field"`
	FreshAir float64       `json:"freshAir"`
	Geometry string        `json:"geometry,omitempty"`
	Opacity  float64       `json:"opacity,omitempty"`
}

// withDefaults fills the geometry name and a zero opacity
func (r Request) withDefaults() Request {
	if r.Geometry == "" {
		r.Geometry = DefaultGeometry
	}
	if r.Opacity == 0 {
		r.Opacity = DefaultOpacity
	}
	return r
}

// Validate checks the parameters that do not need the filesystem
func (r Request) Validate() error {
	switch {
	case r.Field >= fields.Metric(len(fields.Metrics())):
		return &types.RequestError{Field: "field", Reason: r.Field.String()}
	case math.IsNaN(r.FreshAir) || r.FreshAir < 0 || r.FreshAir > 1:
		return &types.RequestError{Field: "freshAir", Reason: fmt.Sprintf("%v is not a fraction in [0,1]", r.FreshAir)}
	case r.Opacity < 0 || r.Opacity > 1:
		return &types.RequestError{Field: "opacity", Reason: fmt.Sprintf("%v is not in [0,1]", r.Opacity)}
	}
	return nil
}

// FreshAirLabel formats the fraction as a percentage, 0.1 as "10%"
func FreshAirLabel(fraction float64) string {
	return strconv.FormatFloat(math.Round(fraction*1.e4)/100., 'f', -1, 64) + "%"
}
