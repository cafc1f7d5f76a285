/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/smartair/InputParameters"
	"github.com/notargets/smartair/pipeline"
	"github.com/notargets/smartair/utils"
)

type ViewOptions struct {
	ICFile string
	Params InputParameters.ViewParameters
	Graph  bool
	Perf   bool
}

// ViewCmd represents the view command
var ViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Compute the walls, edges and metric plane of one case level",
	Long: `
Runs one visualization request and writes the resulting view as JSON, the
same document the server returns from /api/view.

smartair view -c office -l level01 -f FAR -a 10
smartair view -I request.yaml`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		vo := &ViewOptions{}
		if vo.ICFile, err = cmd.Flags().GetString("inputConditionsFile"); err != nil {
			return
		}
		vo.Params.Case, _ = cmd.Flags().GetString("case")
		vo.Params.Level, _ = cmd.Flags().GetString("level")
		vo.Params.Field, _ = cmd.Flags().GetString("field")
		vo.Params.FreshAir, _ = cmd.Flags().GetFloat64("freshAir")
		vo.Params.Geometry, _ = cmd.Flags().GetString("geometry")
		vo.Params.Opacity, _ = cmd.Flags().GetFloat64("opacity")
		vo.Params.Output, _ = cmd.Flags().GetString("output")
		vo.Graph, _ = cmd.Flags().GetBool("graph")
		vo.Perf, _ = cmd.Flags().GetBool("perf")
		if err = processInput(vo); err != nil {
			return
		}
		return RunView(vo)
	},
}

func init() {
	rootCmd.AddCommand(ViewCmd)
	ViewCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for the request, overrides the request flags")
	ViewCmd.Flags().StringP("case", "c", "", "case name")
	ViewCmd.Flags().StringP("level", "l", "", "level directory of the case")
	ViewCmd.Flags().StringP("field", "f", "ACH", "metric to show: ACH, FAR, CO2 or U")
	ViewCmd.Flags().Float64P("freshAir", "a", 10, "inlet fresh air, percent")
	ViewCmd.Flags().String("geometry", pipeline.DefaultGeometry, "name of the room geometry in constant/triSurface")
	ViewCmd.Flags().Float64("opacity", pipeline.DefaultOpacity, "wall opacity")
	ViewCmd.Flags().StringP("output", "o", "", "file to write the view JSON to, stdout when empty")
	ViewCmd.Flags().BoolP("graph", "g", false, "plot the metric plane and wall outline")
	ViewCmd.Flags().Bool("perf", false, "report hardware instruction counts")
}

func processInput(vo *ViewOptions) (err error) {
	if len(vo.ICFile) != 0 {
		var data []byte
		if data, err = os.ReadFile(vo.ICFile); err != nil {
			return
		}
		vo.Params = InputParameters.ViewParameters{}
		if err = vo.Params.Parse(data); err != nil {
			return fmt.Errorf("unable to parse %s: %w", vo.ICFile, err)
		}
		vo.Params.Print()
	}
	if len(vo.Params.Case) == 0 || len(vo.Params.Level) == 0 {
		exampleFile := `
########################################
Title: "Open plan office"
Case: office
Level: level01
Field: FAR # ACH, FAR, CO2 or U
FreshAir: 10 # percent
########################################
`
		return fmt.Errorf("must supply a case and a level (-c, -l) or an input file (-I) like:%s", exampleFile)
	}
	return
}

func RunView(vo *ViewOptions) (err error) {
	var (
		req  pipeline.Request
		view *pipeline.View
		cfg  = pipelineConfig()
	)
	if req, err = vo.Params.Request(); err != nil {
		return
	}
	run := func() (err error) {
		view, err = pipeline.Run(context.Background(), cfg, req)
		return
	}
	if vo.Perf {
		var instructions uint64
		if instructions, err = utils.CountInstructions(run); err != nil {
			return
		}
		log.WithFields(log.Fields{
			"instructions": instructions,
			"memory":       utils.GetMemUsage(),
		}).Info("performance")
	} else if err = run(); err != nil {
		return
	}
	if err = writeView(view, vo.Params.Output); err != nil {
		return
	}
	if vo.Graph {
		PlotView(view)
	}
	return
}

func writeView(view *pipeline.View, output string) (err error) {
	var data []byte
	if data, err = json.MarshalIndent(view, "", "  "); err != nil {
		return
	}
	if output == "" {
		_, err = fmt.Println(string(data))
		return
	}
	return os.WriteFile(output, data, 0644)
}
