// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the rowdoc CLI. Run without
// arguments, rowdoc converts "Please Convert - Sheet1.csv" into one JSON
// document per row under output/.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/rowdoc/internal/convert"
	"github.com/pdiddy/rowdoc/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is built in PersistentPreRunE and synced after the command runs.
var logger = zap.NewNop()

// rootCmd converts the spreadsheet export; subcommands manage the catalog.
var rootCmd = &cobra.Command{
	Use:   "rowdoc",
	Short: "Convert spreadsheet rows into JSON rubric documents",
	Long: `rowdoc reads a CSV exported from a spreadsheet and writes one JSON
document per non-blank row: id, title, description, answer, rubric and
metadata. File names are slugs of the question text, made unique within
the run with -2, -3, ... suffixes.

Rows with a malformed rubric are still written, with an empty rubric, and
reported as warnings. A missing input file or an unwritable output
directory aborts the run with a non-zero exit status.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := loggerConfig(verbose).Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
	RunE: runConvert,
}

// loggerConfig returns a console logger config with readable timestamps.
func loggerConfig(verbose bool) zap.Config {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./rowdoc.yaml or ~/.config/rowdoc/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log every row at debug level")

	rootCmd.Flags().String("input", types.DefaultInputPath, "CSV file to convert")
	rootCmd.Flags().String("output-dir", types.DefaultOutputDir, "directory for the JSON documents")
	rootCmd.Flags().Int("slug-max-length", types.DefaultSlugMaxLength, "maximum slug length in characters")
	rootCmd.Flags().String("source", types.DefaultSource, "metadata.source for rows without a Source column value")
	rootCmd.Flags().String("manifest", "", "write a YAML run manifest to this path")

	for key, flag := range map[string]string{
		"input":           "input",
		"output_dir":      "output-dir",
		"slug_max_length": "slug-max-length",
		"source":          "source",
		"manifest":        "manifest",
	} {
		_ = viper.BindPFlag(key, rootCmd.Flags().Lookup(flag))
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("rowdoc")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "rowdoc"))
		}
	}

	viper.SetEnvPrefix("ROWDOC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// convertConfig assembles the run settings from flags, environment and
// config file, in that order of precedence.
func convertConfig() types.ConvertConfig {
	return types.ConvertConfig{
		InputPath:     viper.GetString("input"),
		OutputDir:     viper.GetString("output_dir"),
		SlugMaxLength: viper.GetInt("slug_max_length"),
		Source:        viper.GetString("source"),
		ManifestPath:  viper.GetString("manifest"),
	}.WithDefaults()
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := convertConfig()
	out := cmd.OutOrStdout()

	result, err := convert.New(cfg, nil, logger).Run(cmd.Context(), out)
	if err != nil {
		return err
	}

	if cfg.ManifestPath != "" {
		if err := convert.WriteManifest(cfg.ManifestPath, convert.NewManifest(cfg, result)); err != nil {
			return fmt.Errorf("writing manifest: %w", err)
		}
		fmt.Fprintf(out, "Manifest written to %s\n", cfg.ManifestPath)
	}

	reportFailures(out, result)
	fmt.Fprintf(out, "Done! Created %d JSON files in %s/\n", result.Written, cfg.OutputDir)
	return nil
}

// reportFailures warns about rows the CSV reader rejected. They do not fail
// the run, but the operator should know the output is incomplete.
func reportFailures(w io.Writer, result convert.BatchResult) {
	if !result.HasFailures() {
		return
	}
	logger.Warn("rows could not be parsed and were not converted", zap.Int("failed", result.Failed))
	fmt.Fprintf(w, "Warning: %d row(s) could not be parsed and have no JSON file\n", result.Failed)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
