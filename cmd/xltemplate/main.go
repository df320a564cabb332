// Command xltemplate runs template jobs and describes templates.
//
//	xltemplate run job.yaml
//	xltemplate describe template.xlsx
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/javajack/xltemplate"
	"github.com/javajack/xltemplate/internal/job"
	"github.com/spf13/cobra"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("xltemplate failed", "error", err)
		os.Exit(1)
	}
}

func run(output io.Writer, args []string) error {
	var verbose bool

	newLogger := func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
		return logger
	}

	rootCmd := &cobra.Command{
		Use:           "xltemplate",
		Short:         "Tile and fill Excel templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every sheet operation")

	runCmd := &cobra.Command{
		Use:   "run <job.yaml|job.toml>",
		Short: "Run a template job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			logger.Info("Loading job", "file", args[0])
			j, err := job.Load(args[0])
			if err != nil {
				return err
			}
			return j.Run(logger)
		},
	}

	describeCmd := &cobra.Command{
		Use:   "describe <template.xlsx>",
		Short: "Print the sheets, extents, merges and formulas of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := xltemplate.Describe(args[0], xltemplate.WithLogger(newLogger()))
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	rootCmd.AddCommand(runCmd, describeCmd)
	rootCmd.SetOut(output)
	rootCmd.SetErr(output)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
