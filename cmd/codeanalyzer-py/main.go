package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/codellm-devkit/codeanalyzer-py/internal/config"
)

const version = "1.0.0"

// options raccoglie i flag condivisi da tutti i comandi.
type options struct {
	// Flag globali
	verbose   bool
	quiet     bool
	dot       string
	linter    string
	font      string
	overrides string

	// Flag di analyze
	outputDir    string
	format       string
	noRender     bool
	noLint       bool
	includeTests bool
	excludeDirs  string
	onlyPath     string

	env *config.Config
	log *slog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "codeanalyzer-py",
		Short: "Static analysis and call-graph flowcharts for Python sources",
		Long: `codeanalyzer-py parses a Python module, builds its symbol table and
call graph, tags declarations (async, generator, io, net, recursive), runs
style and refactoring checks and renders a styled flowchart with Graphviz.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging to stderr")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "Suppress all non-error output")
	pf.StringVar(&opts.dot, "dot", "", "Graphviz dot binary (default: $CODEANALYZER_DOT or dot)")
	pf.StringVar(&opts.linter, "linter", "", "Style checker binary (default: $CODEANALYZER_LINTER or flake8)")
	pf.StringVar(&opts.font, "font", "", "Font name for flowchart labels (default: $CODEANALYZER_FONT)")
	pf.StringVar(&opts.overrides, "overrides", "", "YAML file with entry_symbols/leaf_symbols (default: codeanalyzer.yaml next to the source)")

	rootCmd.AddCommand(
		newAnalyzeCmd(opts),
		newDotCmd(opts),
		newHotspotsCmd(opts),
		newLintCmd(opts),
		newExportCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Show version and exit",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "codeanalyzer-py %s\n", version)
			},
		},
	)
	return rootCmd
}

// setup configura il logger e carica l'ambiente.
func (o *options) setup() error {
	level := slog.LevelInfo
	switch {
	case o.quiet:
		level = slog.LevelError
	case o.verbose:
		level = slog.LevelDebug
	}
	o.log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(o.log)

	env, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	o.env = env

	// I flag hanno la precedenza sull'ambiente
	if o.dot == "" {
		o.dot = env.DotBinary
	}
	if o.linter == "" {
		o.linter = env.Linter
	}
	if o.font == "" {
		o.font = env.Font
	}
	if o.outputDir == "" {
		o.outputDir = env.OutputDir
	}
	return nil
}

// ============================================================================
// Helper functions
// ============================================================================

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
