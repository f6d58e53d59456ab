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

	"github.com/notargets/femview/collection"
	"github.com/notargets/femview/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// MeshCmd represents the mesh command
var MeshCmd = &cobra.Command{
	Use:   "mesh FILE",
	Short: "Validate a neutral mesh file and write its geometry container",
	Long: `
Decodes the nodes, properties, elements and materials of a neutral file, prints
the validation findings and writes <base>.vtm with one piece per property.
Any ERROR finding stops the import unless AllowErrors is set in the params file.

femview mesh motor.neu -o out`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := importParameters()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		b, err := pipeline.BuildMeshFromFile(args[0], params)
		if b != nil {
			fmt.Fprintln(out, b.Model)
			for _, f := range b.Findings {
				fmt.Fprintln(out, f)
			}
			for _, line := range b.Model.Diagnostics.Summary() {
				fmt.Fprintln(out, line)
			}
		}
		if err != nil {
			return err
		}
		b.Mesh.PrintStatistics(out)
		if check, _ := cmd.Flags().GetBool("check"); check {
			return nil
		}
		w := collection.NewWriter(viper.GetString("out"), pipeline.BaseName(args[0]), b.Mesh, params)
		w.Logger = logger
		return w.WriteGeometry()
	},
}

func init() {
	rootCmd.AddCommand(MeshCmd)
	MeshCmd.Flags().BoolP("check", "c", false, "validate and print statistics only")
}
