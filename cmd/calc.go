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
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/smartair/casedir"
	"github.com/notargets/smartair/fields"
	"github.com/notargets/smartair/readers"
	"github.com/notargets/smartair/surface"
)

// CalcCmd represents the calc command
var CalcCmd = &cobra.Command{
	Use:   "calc <case> <level> <name=expression>",
	Short: "Evaluate an expression over the latest sampled plane of a field",
	Long: `
Evaluates an arithmetic expression over the arrays of the latest sampled
plane of one field and prints the range of the result.

smartair calc office level01 "ACH=3600/AoA*0.1" --field AoA`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		name, expression, ok := strings.Cut(args[2], "=")
		if !ok || strings.TrimSpace(name) == "" {
			return fmt.Errorf("expected name=expression, got %q", args[2])
		}
		primitive, _ := cmd.Flags().GetString("field")
		cellData, _ := cmd.Flags().GetBool("cellData")
		loc := surface.PointData
		if cellData {
			loc = surface.CellData
		}

		var (
			c     *casedir.Case
			ts    string
			plane *surface.Mesh
			calc  *fields.Calculator
		)
		if c, err = casedir.Resolve(viper.GetString("root"), args[0], args[1]); err != nil {
			return
		}
		if ts, err = c.LatestTimestep(); err != nil {
			return
		}
		if plane, err = readers.ReadSurfaceFile(c.FieldFile(ts, primitive)); err != nil {
			return
		}
		if calc, err = fields.NewCalculator(strings.TrimSpace(name), expression); err != nil {
			return
		}
		if plane, err = calc.Evaluate(plane, loc); err != nil {
			return
		}
		lo, hi := plane.Array(loc, calc.Name).Range()
		log.WithFields(log.Fields{"timestep": ts, "expression": calc.String()}).Debug("evaluated")
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t[%g, %g]\n", calc.Name, loc, lo, hi)
		return
	},
}

func init() {
	rootCmd.AddCommand(CalcCmd)
	CalcCmd.Flags().String("field", "AoA", "sampled field plane to read")
	CalcCmd.Flags().Bool("cellData", false, "evaluate over cell arrays instead of point arrays")
}
