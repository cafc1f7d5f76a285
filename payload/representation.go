package payload

type Property struct {
	Color   []float64 `json:"color,omitempty"`
	Opacity *float64  `json:"opacity,omitempty"`
	Ambient float64   `json:"ambient,omitempty"`
}

// Mapper selects the array the renderer colours by
type Mapper struct {
	ColorByArrayName                string `json:"colorByArrayName"`
	ScalarMode                      int    `json:"scalarMode"`
	InterpolateScalarsBeforeMapping bool   `json:"interpolateScalarsBeforeMapping"`
	UseInvertibleColors             bool   `json:"useInvertibleColors"`
}

// Representation is one drawable of the view with its display hints
type Representation struct {
	ID             string      `json:"id,omitempty"`
	Property       Property    `json:"property"`
	ColorMapPreset string      `json:"colorMapPreset,omitempty"`
	ColorDataRange *[2]float64 `json:"colorDataRange,omitempty"`
	Mapper         *Mapper     `json:"mapper,omitempty"`
	State          *MeshState  `json:"state"`
}

const surfaceAmbient = 0.3

var (
	White = []float64{1, 1, 1}
	Black = []float64{0, 0, 0}
)

// Walls draws opaque white faces
func Walls(id string, state *MeshState, opacity float64) *Representation {
	return &Representation{
		ID:       id,
		Property: Property{Color: White, Opacity: &opacity, Ambient: surfaceAmbient},
		State:    state,
	}
}

// Edges draws black outlines
func Edges(id string, state *MeshState, opacity float64) *Representation {
	return &Representation{
		ID:       id,
		Property: Property{Color: Black, Opacity: &opacity},
		State:    state,
	}
}

// FieldPlane colours a plane by its field through the named colour map.
// The state must carry a field.
func FieldPlane(state *MeshState, preset string, dataRange [2]float64) *Representation {
	rep := &Representation{
		Property:       Property{Ambient: surfaceAmbient},
		ColorMapPreset: preset,
		ColorDataRange: &dataRange,
		State:          state,
	}
	if state.Field != nil {
		rep.Mapper = &Mapper{
			ColorByArrayName:                state.Field.Name,
			ScalarMode:                      0,
			InterpolateScalarsBeforeMapping: true,
			UseInvertibleColors:             true,
		}
	}
	return rep
}
