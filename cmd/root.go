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
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/notargets/femview/InputParameters"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logger   *slog.Logger
	profiler interface{ Stop() }
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "femview",
	Short: "Converts neutral mesh and result files into time-series VTK collections",
	Long: `
Reads FEMAP style neutral files, validates and assembles the mesh into one
sub-mesh per property, binds result vectors per time step and writes VTK XML
snapshots with a .pvd manifest. Bound samples are kept in a SQLite probe
store for per-entity time series queries.

femview mesh motor.neu
femview bind motor.neu flux.neu force.neu
femview query motor.probe.db --ids 12,14 --from 0 --to 0.5`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		switch p := viper.GetString("profile"); p {
		case "":
		case "cpu":
			profiler = profile.Start(profile.CPUProfile, profile.ProfilePath(viper.GetString("out")), profile.Quiet)
		case "mem":
			profiler = profile.Start(profile.MemProfile, profile.ProfilePath(viper.GetString("out")), profile.Quiet)
		default:
			return fmt.Errorf("unknown profile %q, want cpu or mem", p)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if profiler != nil {
			profiler.Stop()
			profiler = nil
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.femview.yaml)")
	rootCmd.PersistentFlags().StringP("out", "o", ".", "output directory for VTK files and the probe store")
	rootCmd.PersistentFlags().StringP("params", "p", "", "YAML import parameters file, like:\n\t- ElementStride\n\t- FieldAliases\n\t- CellToPoint")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().String("profile", "", "profile the run: cpu or mem")
	for _, name := range []string{"out", "params", "verbose", "profile"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".femview" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".femview")
	}

	viper.SetEnvPrefix("FEMVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// importParameters reads the --params file, or returns the defaults
func importParameters() (*InputParameters.ImportParameters, error) {
	filename := viper.GetString("params")
	if filename == "" {
		return InputParameters.NewImportParameters(), nil
	}
	ip, err := InputParameters.ReadImportParameters(filename)
	if err != nil {
		return nil, err
	}
	if viper.GetBool("verbose") {
		ip.Fprint(os.Stderr)
	}
	return ip, nil
}
