package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codellm-devkit/codeanalyzer-py/internal/config"
	"github.com/codellm-devkit/codeanalyzer-py/internal/engine"
	"github.com/codellm-devkit/codeanalyzer-py/internal/layout"
	"github.com/codellm-devkit/codeanalyzer-py/internal/lint"
	"github.com/codellm-devkit/codeanalyzer-py/internal/loader"
	"github.com/codellm-devkit/codeanalyzer-py/internal/output"
	"github.com/codellm-devkit/codeanalyzer-py/internal/style"
)

func newAnalyzeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file|dir>",
		Short: "Analyse Python sources and write report, flowchart and JSON artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), opts, args[0], cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.outputDir, "output", "o", "", "Artifact directory (default: $CODEANALYZER_OUTPUT_DIR or ./codeanalyzer-output)")
	f.StringVarP(&opts.format, "format", "f", "json", "Format of the analysis printed on stdout: json|compact|none")
	f.BoolVar(&opts.noRender, "no-render", false, "Skip the Graphviz flowchart")
	f.BoolVar(&opts.noLint, "no-lint", false, "Skip the external style check")
	f.BoolVar(&opts.includeTests, "include-tests", false, "Include test_*.py and *_test.py files when analysing a directory")
	f.StringVar(&opts.excludeDirs, "exclude-dirs", "", "Comma-separated directory basenames to exclude")
	f.StringVar(&opts.onlyPath, "only-path", "", "Comma-separated relative path filters (substring match)")
	return cmd
}

func runAnalyze(ctx context.Context, opts *options, input string, stdout io.Writer) error {
	format, err := output.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	prog, err := loader.LoadWithOptions(input, loader.Options{
		IncludeTests: opts.includeTests,
		ExcludeDirs:  splitCSV(opts.excludeDirs),
		OnlyPath:     splitCSV(opts.onlyPath),
	})
	if err != nil {
		return fmt.Errorf("load sources: %w", err)
	}
	opts.log.Debug("sources loaded", slog.String("root", prog.Root), slog.Int("files", len(prog.Files)))

	store, err := opts.artifactStore()
	if err != nil {
		return err
	}

	var linter *lint.Runner
	if !opts.noLint {
		linter = lint.NewRunner(opts.linter, opts.log)
	}
	var renderer *layout.Renderer
	if !opts.noRender {
		renderer = layout.NewRenderer(layout.Config{Binary: opts.dot, Logger: opts.log})
	}

	for _, path := range prog.Files {
		src, err := loader.Load(path)
		if err != nil {
			opts.log.Warn("source skipped", slog.String("path", path), slog.Any("error", err))
			continue
		}
		ov, err := opts.loadOverrides(path)
		if err != nil {
			return err
		}

		var fileStore output.ArtifactStore = store
		if len(prog.Files) > 1 {
			if rel, err := filepath.Rel(prog.Root, filepath.Dir(path)); err == nil {
				fileStore = output.Prefixed{Store: store, Dir: rel}
			}
		}

		eng := engine.New(engine.Options{
			Linter:    linter,
			Renderer:  renderer,
			Store:     fileStore,
			Overrides: ov,
			Font:      opts.font,
			Version:   version,
			Logger:    opts.log,
		})
		res := eng.Analyze(ctx, src)
		opts.log.Info(res.Status, slog.String("module", res.Module))
		if err := output.Write(res.Schema(version), output.Config{Format: format, Indent: true, Stdout: stdout}); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// artifactStore returns the disk store, mirrored to S3 when configured.
func (o *options) artifactStore() (output.ArtifactStore, error) {
	disk, err := output.NewDiskStore(o.outputDir)
	if err != nil {
		return nil, err
	}
	if !o.env.Artifact.Enabled() {
		return disk, nil
	}
	s3, err := output.NewS3Store(o.env.Artifact)
	if err != nil {
		return nil, fmt.Errorf("artifact store: %w", err)
	}
	o.log.Debug("mirroring artifacts to s3", slog.String("bucket", o.env.Artifact.Bucket))
	return output.Tee{Primary: disk, Mirrors: []output.ArtifactStore{s3}}, nil
}

// loadOverrides legge --overrides o codeanalyzer.yaml accanto al sorgente.
func (o *options) loadOverrides(sourcePath string) (style.Overrides, error) {
	p := o.overrides
	if p == "" {
		p = config.FindOverrides(sourcePath)
	}
	ovr, err := config.LoadOverrides(p)
	if err != nil {
		return ovr, fmt.Errorf("overrides: %w", err)
	}
	return ovr, nil
}
