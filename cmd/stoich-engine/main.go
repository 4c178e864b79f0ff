// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the stoich-engine CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/stoich-engine/internal/logging"
	"github.com/pdiddy/stoich-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the stoich-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "stoich-engine",
	Short: "Balance stoichiometric coefficients for chemical reactions",
	Long: `stoich-engine determines mass-balanced stoichiometric coefficients for
user-declared reactions from component molar weights and roles.

Projects are JSON or YAML files listing reactants, products, reactions, and
the total reactant mass flow. Each reaction is solved by an exhaustive
small-integer search, with a bounded continuous optimization as fallback.
Solved runs are kept in a local SQLite history.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./stoich-engine.yaml or ~/.config/stoich-engine/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "directory holding the run history database (default .stoich)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default info)")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json (default text)")
	rootCmd.PersistentFlags().String("metrics-textfile", "", "write Prometheus metrics to this file after solving")

	bindFlag("store.data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	bindFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	bindFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	bindFlag("metrics.textfile", rootCmd.PersistentFlags().Lookup("metrics-textfile"))
}

func initConfig() {
	setDefaults(types.DefaultConfig())

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("stoich-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "stoich-engine"))
		}
	}

	viper.SetEnvPrefix("STOICH_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every configuration key with its default so that
// environment variables and Unmarshal see the full key set.
func setDefaults(cfg types.Config) {
	s := cfg.Solver
	viper.SetDefault("solver.max_coefficient", s.MaxCoefficient)
	viper.SetDefault("solver.min_reactant_magnitude", s.MinReactantMagnitude)
	viper.SetDefault("solver.exact_tolerance", s.ExactTolerance)
	viper.SetDefault("solver.search_tolerance", s.SearchTolerance)
	viper.SetDefault("solver.accept_tolerance", s.AcceptTolerance)
	viper.SetDefault("solver.max_slots", s.MaxSlots)
	viper.SetDefault("solver.penalty_weight", s.PenaltyWeight)
	viper.SetDefault("solver.zero_threshold", s.ZeroThreshold)
	viper.SetDefault("solver.lower_bound", s.LowerBound)
	viper.SetDefault("solver.upper_bound", s.UpperBound)
	viper.SetDefault("solver.max_iterations", s.MaxIterations)

	viper.SetDefault("store.data_dir", cfg.Store.DataDir)
	viper.SetDefault("store.max_results", cfg.Store.MaxResults)
	viper.SetDefault("log.level", cfg.Log.Level)
	viper.SetDefault("log.format", cfg.Log.Format)
	viper.SetDefault("metrics.textfile", cfg.Metrics.Textfile)
	viper.SetDefault("engine.workers", cfg.Engine.Workers)
}

// bindFlag binds a flag to a config key. Flags only override the config
// when they are set on the command line.
func bindFlag(key string, flag *pflag.Flag) {
	if err := viper.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag for %s: %v", key, err))
	}
}

// loadConfig decodes the merged viper configuration.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, WrapExitError(ExitCommandError, "loading configuration", err)
	}
	return cfg, nil
}

// newLogger builds the command logger. Logs go to stderr so stdout stays
// clean for reports and JSON.
func newLogger(cmd *cobra.Command, cfg types.Config) logging.Logger {
	return logging.New(cfg.Log, cmd.ErrOrStderr())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(GetExitCode(err))
	}
}
