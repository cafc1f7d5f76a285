/*
Package fields turns a sampled field plane into the scalar surface for one
user facing metric. ACH and FAR are derived from the age of air, CO2 and U
are shown as sampled.
*/
package fields

import (
	"fmt"
	"strings"

	"github.com/notargets/smartair/types"
)

type Metric uint8

const (
	ACH Metric = iota // air changes per hour
	FAR               // fresh air rate
	CO2
	U
	numMetrics
)

var metricNames = [numMetrics]string{"ACH", "FAR", "CO2", "U"}

func (m Metric) String() string {
	if m >= numMetrics {
		return fmt.Sprintf("Metric(%d)", uint8(m))
	}
	return metricNames[m]
}

// Metrics lists the supported metrics in display order
func Metrics() []Metric {
	return []Metric{ACH, FAR, CO2, U}
}

// ParseMetric accepts a metric name in any letter case
func ParseMetric(name string) (Metric, error) {
	for m, n := range metricNames {
		if strings.EqualFold(n, name) {
			return Metric(m), nil
		}
	}
	return 0, &types.RequestError{Field: "field",
		Reason: fmt.Sprintf("%q is not one of %s", name, strings.Join(metricNames[:], ", "))}
}

func (m Metric) MarshalText() ([]byte, error) {
	if m >= numMetrics {
		return nil, fmt.Errorf("unknown metric %d", uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *Metric) UnmarshalText(text []byte) (err error) {
	*m, err = ParseMetric(string(text))
	return
}

/*
FieldSpec is the static description of a metric: the sampled field it is
computed from and the colour map the renderer should use for it.
*/
type FieldSpec struct {
	Metric      Metric
	Primitive   string
	ColorPreset string
	derivation  derivation
}

var fieldSpecs = [numMetrics]FieldSpec{
	ACH: {Metric: ACH, Primitive: "AoA", ColorPreset: "Black, Blue and White", derivation: achDerivation{}},
	FAR: {Metric: FAR, Primitive: "AoA", ColorPreset: "Viridis (matplotlib)", derivation: farDerivation{}},
	CO2: {Metric: CO2, Primitive: "CO2", ColorPreset: "Cool to Warm", derivation: passthrough{}},
	U:   {Metric: U, Primitive: "U", ColorPreset: "Rainbow Desaturated", derivation: passthrough{}},
}

func (m Metric) Spec() FieldSpec {
	return fieldSpecs[m]
}

// Derived reports whether the metric is computed rather than sampled
func (m Metric) Derived() bool {
	_, ok := fieldSpecs[m].derivation.(passthrough)
	return !ok
}
