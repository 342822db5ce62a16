package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/codellm-devkit/codeanalyzer-py/internal/engine"
	"github.com/codellm-devkit/codeanalyzer-py/internal/geometry"
	"github.com/codellm-devkit/codeanalyzer-py/internal/graphdb"
	"github.com/codellm-devkit/codeanalyzer-py/internal/lint"
	"github.com/codellm-devkit/codeanalyzer-py/internal/loader"
	"github.com/codellm-devkit/codeanalyzer-py/internal/output"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

func newDotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dot <file>",
		Short: "Print the styled Graphviz description of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := opts.loadOverrides(args[0])
			if err != nil {
				return err
			}
			eng := engine.New(engine.Options{Overrides: ov, Font: opts.font, Logger: opts.log})
			res, err := eng.AnalyzeFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(res.DOT)
			return err
		},
	}
}

func newHotspotsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "hotspots <svg>",
		Short: "Print the node bounding boxes of a rendered flowchart SVG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := geometry.ExtractFile(args[0])
			opts.log.Debug("hotspots extracted", slog.Int("nodes", len(m)))
			return output.Encode(cmd.OutOrStdout(), m, true)
		},
	}
}

func newLintCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lint <file>",
		Short: "Run the style checker and print its findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, f := range lint.NewRunner(opts.linter, opts.log).Run(cmd.Context(), args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), f.Message)
			}
			return nil
		},
	}
}

func newExportCmd(opts *options) *cobra.Command {
	var keep bool
	cmd := &cobra.Command{
		Use:   "export-neo4j <file|dir>",
		Short: "Analyse Python sources and load the call graph into Neo4j",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), opts, args[0], keep)
		},
	}
	cmd.Flags().BoolVar(&keep, "keep", false, "Do not remove previously exported nodes of each module")
	cmd.Flags().BoolVar(&opts.includeTests, "include-tests", false, "Include test_*.py and *_test.py files")
	cmd.Flags().StringVar(&opts.excludeDirs, "exclude-dirs", "", "Comma-separated directory basenames to exclude")
	return cmd
}

func runExport(ctx context.Context, opts *options, input string, keep bool) error {
	if !opts.env.Neo4j.Enabled() {
		return fmt.Errorf("NEO4J_URI is not set")
	}
	prog, err := loader.LoadWithOptions(input, loader.Options{
		IncludeTests: opts.includeTests,
		ExcludeDirs:  splitCSV(opts.excludeDirs),
	})
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}

	exp, err := graphdb.NewExporter(ctx, graphdb.Config{
		URI:      opts.env.Neo4j.URI,
		User:     opts.env.Neo4j.User,
		Password: opts.env.Neo4j.Password,
		Database: opts.env.Neo4j.Database,
		Logger:   opts.log,
	})
	if err != nil {
		return err
	}
	defer exp.Close(ctx)

	if err := exp.CreateIndexes(ctx); err != nil {
		return err
	}

	return exportProgram(ctx, opts, exp, prog, keep)
}

// moduleExporter is the part of graphdb.Exporter the export loop needs.
type moduleExporter interface {
	Clean(ctx context.Context, module string) error
	Export(ctx context.Context, module string, a *schema.Analysis) error
}

// exportProgram analyses every file of prog and loads it under its
// root-relative module key, so same-named files in different packages
// stay apart.
func exportProgram(ctx context.Context, opts *options, exp moduleExporter, prog *loader.Program, keep bool) error {
	for _, path := range prog.Files {
		ov, err := opts.loadOverrides(path)
		if err != nil {
			return err
		}
		eng := engine.New(engine.Options{Overrides: ov, Logger: opts.log})
		res, err := eng.AnalyzeFile(ctx, path)
		if err != nil {
			opts.log.Warn("source skipped", slog.String("path", path), slog.Any("error", err))
			continue
		}
		key := prog.ModuleKey(path)
		if !keep {
			if err := exp.Clean(ctx, key); err != nil {
				return err
			}
		}
		if err := exp.Export(ctx, key, res.Schema(version)); err != nil {
			return fmt.Errorf("export %s: %w", path, err)
		}
	}
	opts.log.Info("neo4j export complete", slog.Int("modules", len(prog.Files)))
	return nil
}
