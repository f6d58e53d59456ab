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
	"math"

	"github.com/notargets/femview/pipeline"
	"github.com/notargets/femview/probe"
	"github.com/spf13/cobra"
)

// QueryCmd represents the query command
var QueryCmd = &cobra.Command{
	Use:   "query PROBE_DB",
	Short: "Print per-entity time series from a probe store",
	Long: `
Prints one line per sample: field, kind, entity id, step, time and value.
Without filters every sample is printed.

femview query out/motor.probe.db --ids 12,14 --groups Property_1 --from 0 --to 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			q   probe.Query
			err error
		)
		if q.IDs, err = cmd.Flags().GetIntSlice("ids"); err != nil {
			return err
		}
		if q.Groups, err = cmd.Flags().GetStringSlice("groups"); err != nil {
			return err
		}
		if q.Fields, err = cmd.Flags().GetStringSlice("fields"); err != nil {
			return err
		}
		if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
			q.Range = &probe.TimeRange{}
			q.Range.From, _ = cmd.Flags().GetFloat64("from")
			q.Range.To, _ = cmd.Flags().GetFloat64("to")
		}
		series, err := pipeline.QueryFile(cmd.Context(), args[0], q)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, s := range series {
			for _, p := range s.Samples {
				fmt.Fprintf(out, "%s\t%s\t%d\t%d\t%g\t%g\n", s.Field, s.Kind, s.EntityID, p.Step, p.Time, p.Value)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(QueryCmd)
	QueryCmd.Flags().IntSliceP("ids", "i", nil, "node or element ids")
	QueryCmd.Flags().StringSliceP("groups", "g", nil, "group names, like Property_1")
	QueryCmd.Flags().StringSliceP("fields", "f", nil, "vector names as found in the result files")
	QueryCmd.Flags().Float64("from", math.Inf(-1), "start of the time range")
	QueryCmd.Flags().Float64("to", math.Inf(1), "end of the time range")
}
