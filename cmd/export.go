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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/smartair/casedir"
	"github.com/notargets/smartair/geometry"
)

// ExportCmd represents the export command
var ExportCmd = &cobra.Command{
	Use:   "export <case> <level> <output.stl>",
	Short: "Write the walls cut below the ceiling as a binary STL",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		name, _ := cmd.Flags().GetString("geometry")
		var (
			c     *casedir.Case
			walls *geometry.Walls
		)
		if c, err = casedir.Resolve(viper.GetString("root"), args[0], args[1]); err != nil {
			return
		}
		if walls, err = geometry.Clip(c, name); err != nil {
			return
		}
		if err = geometry.ExportSTL(args[2], walls.Surface); err != nil {
			return fmt.Errorf("unable to write %s: %w", args[2], err)
		}
		log.WithFields(log.Fields{
			"file":          args[2],
			"triangles":     len(walls.Surface.Triangles),
			"ceilingHeight": walls.CeilingHeight,
		}).Info("walls exported")
		return
	},
}

func init() {
	rootCmd.AddCommand(ExportCmd)
	ExportCmd.Flags().String("geometry", "walls", "name of the room geometry in constant/triSurface")
}
