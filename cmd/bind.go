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

	"github.com/notargets/femview/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BindCmd represents the bind command
var BindCmd = &cobra.Command{
	Use:   "bind MESH RESULT...",
	Short: "Bind result files to a mesh as a time series of VTK snapshots",
	Long: `
Builds the mesh, then binds each result file in order. Every output set becomes
one step snapshot <base>_NNNN.vtm listed in <base>.pvd. Binding a second file
adds its fields to the existing steps.

femview bind motor.neu flux.neu force.neu -o out`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		params, err := importParameters()
		if err != nil {
			return err
		}
		s, err := pipeline.Open(cmd.Context(), args[0], viper.GetString("out"), params, logger)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := s.Close(); err == nil {
				err = cerr
			}
		}()
		out := cmd.OutOrStdout()
		for _, filename := range args[1:] {
			steps, err := s.BindFieldFromFile(cmd.Context(), filename)
			for _, st := range steps {
				action := "wrote"
				if st.Merged {
					action = "merged"
				}
				fmt.Fprintf(out, "%s\tstep %d\tt=%g\t%s\t%s\n", action, st.Index, st.Time, st.File, strings.Join(st.Fields, ","))
			}
			if err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(BindCmd)
}
