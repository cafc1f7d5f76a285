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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/smartair/casedir"
)

// LevelsCmd represents the levels command
var LevelsCmd = &cobra.Command{
	Use:   "levels <case>",
	Short: "List the levels of a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		levels, err := casedir.Levels(viper.GetString("root"), args[0])
		if err != nil {
			return err
		}
		for _, level := range levels {
			fmt.Fprintln(cmd.OutOrStdout(), level)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(LevelsCmd)
}
