package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/pipeline"
)

// Parameters obtained from the YAML input file
type ViewParameters struct {
	Title    string  `json:"Title"`
	Case     string  `json:"Case"`
	Level    string  `json:"Level"`
	Field    string  `json:"Field"`
	FreshAir float64 `json:"FreshAir"` // percent
	Geometry string  `json:"Geometry"`
	Opacity  float64 `json:"Opacity"`
	Output   string  `json:"Output"` // view JSON file, stdout when empty
}

func (vp *ViewParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, vp)
}

func (vp *ViewParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", vp.Title)
	fmt.Printf("[%s]\t\t= Case\n", vp.Case)
	fmt.Printf("[%s]\t\t= Level\n", vp.Level)
	fmt.Printf("[%s]\t\t\t= Field\n", vp.Field)
	fmt.Printf("%8.5f\t\t= FreshAir (%%)\n", vp.FreshAir)
	if vp.Geometry != "" {
		fmt.Printf("[%s]\t\t= Geometry\n", vp.Geometry)
	}
	if vp.Opacity != 0 {
		fmt.Printf("%8.5f\t\t= Opacity\n", vp.Opacity)
	}
}

// Request converts the file parameters, where fresh air is a percentage
func (vp *ViewParameters) Request() (req pipeline.Request, err error) {
	req = pipeline.Request{
		Case:     vp.Case,
		Level:    vp.Level,
		FreshAir: vp.FreshAir / 100.,
		Geometry: vp.Geometry,
		Opacity:  vp.Opacity,
	}
	if vp.Field != "" {
		if req.Field, err = fields.ParseMetric(vp.Field); err != nil {
			return
		}
	}
	err = req.Validate()
	return
}
