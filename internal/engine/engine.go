// Package engine esegue la pipeline di analisi su un singolo sorgente.
package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/codellm-devkit/codeanalyzer-py/internal/advisor"
	"github.com/codellm-devkit/codeanalyzer-py/internal/callgraph"
	"github.com/codellm-devkit/codeanalyzer-py/internal/geometry"
	"github.com/codellm-devkit/codeanalyzer-py/internal/layout"
	"github.com/codellm-devkit/codeanalyzer-py/internal/lint"
	"github.com/codellm-devkit/codeanalyzer-py/internal/loader"
	"github.com/codellm-devkit/codeanalyzer-py/internal/output"
	"github.com/codellm-devkit/codeanalyzer-py/internal/pyast"
	"github.com/codellm-devkit/codeanalyzer-py/internal/report"
	"github.com/codellm-devkit/codeanalyzer-py/internal/style"
	"github.com/codellm-devkit/codeanalyzer-py/internal/symbols"
	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// Options configura l'engine. Collaboratori nil disabilitano lo stadio.
type Options struct {
	Linter    *lint.Runner
	Renderer  *layout.Renderer
	Store     output.ArtifactStore
	Overrides style.Overrides
	Font      string
	Version   string
	Logger    *slog.Logger
}

// Engine runs the analysis pipeline.
type Engine struct {
	opts Options
	log  *slog.Logger
}

// New crea un engine.
func New(opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{opts: opts, log: opts.Logger}
}

// AnalyzeFile loads path and analyses it. The error is non-nil only when
// the source cannot be read.
func (e *Engine) AnalyzeFile(ctx context.Context, path string) (*Result, error) {
	src, err := loader.Load(path)
	if err != nil {
		return nil, err
	}
	return e.Analyze(ctx, src), nil
}

// Analyze runs every stage on src. Failures of individual stages degrade
// the result and are recorded as findings, status and issues.
func (e *Engine) Analyze(ctx context.Context, src *loader.Source) *Result {
	res := &Result{
		SourcePath: src.Path,
		Module:     src.Base,
		Tags:       map[string]schema.TagSet{},
		Artifacts:  map[string]string{},
		Started:    time.Now(),
	}
	log := e.log.With(slog.String("module", src.Base))

	tree, parseErr := pyast.Parse(ctx, src.Code)
	if parseErr != nil {
		log.Warn("parse failed", slog.Any("error", parseErr))
		res.RefactorFindings = []schema.Finding{advisor.SyntaxFinding()}
		res.issue("error", schema.IssueSyntax, parseErr.Error())
	} else {
		defer tree.Close()
		table := symbols.Build(tree)
		graph := callgraph.Extract(tree, table, callgraph.Options{Logger: log})
		res.Declarations = table.Declarations()
		res.Callers = graph.Callers()
		res.Edges = graph.Edges()
		res.Tags = graph.TagMap()
		res.RefactorFindings = advisor.Suggest(src.Code, tree)
		log.Debug("call graph extracted",
			slog.Int("declarations", len(res.Declarations)),
			slog.Int("edges", len(res.Edges)))
	}

	res.StyleFindings = e.lint(ctx, src, res)
	res.Keywords, res.Builtins = report.Glossary(src.Code)

	res.Styled = style.Derive(style.Input{
		Declarations: res.Declarations,
		Edges:        res.Edges,
		Tags:         res.Tags,
	}, e.opts.Overrides)
	res.DOT = res.Styled.DOT(src.Base, e.opts.Font)

	names := output.ArtifactNames(src.Base)
	e.put(ctx, res, names.DOT, res.DOT)

	// Hotspots of a previous render never survive a skipped or failed one.
	res.Hotspots = geometry.Map{}
	e.remove(ctx, names.Map)
	if parseErr != nil {
		res.Status = StatusSyntaxError
	} else {
		e.render(ctx, res, names)
	}

	res.Duration = time.Since(res.Started)

	var buf bytes.Buffer
	if err := report.Write(&buf, res.Report()); err == nil {
		e.put(ctx, res, names.Report, buf.Bytes())
	}
	if b, err := output.ToJSON(res.Schema(e.opts.Version)); err == nil {
		e.put(ctx, res, names.Analysis, b)
	}

	log.Info("analysis complete", slog.String("status", res.Status), slog.Duration("duration", res.Duration))
	return res
}

func (e *Engine) lint(ctx context.Context, src *loader.Source, res *Result) []schema.Finding {
	if e.opts.Linter == nil {
		return nil
	}
	path, cleanup, err := lintTarget(src)
	if err != nil {
		e.log.Warn("style check skipped", slog.Any("error", err))
		res.issue("warning", schema.IssueLinterMissing, err.Error())
		return []schema.Finding{lint.Unavailable(e.opts.Linter.Command)}
	}
	defer cleanup()

	out, err := e.opts.Linter.Exec(ctx, path)
	if err != nil {
		e.log.Warn("style check skipped", slog.String("linter", e.opts.Linter.Command), slog.Any("error", err))
		res.issue("warning", schema.IssueLinterMissing, err.Error())
		return []schema.Finding{lint.Unavailable(e.opts.Linter.Command)}
	}
	return lint.Parse(out)
}

// lintTarget returns a file holding the source: the original path when it
// still matches the loaded code, a temporary copy otherwise.
func lintTarget(src *loader.Source) (string, func(), error) {
	if disk, err := os.ReadFile(src.Path); err == nil && bytes.Equal(disk, src.Code) {
		return src.Path, func() {}, nil
	}
	dir, err := os.MkdirTemp("", "codeanalyzer-lint-")
	if err != nil {
		return "", nil, fmt.Errorf("create lint dir: %w", err)
	}
	p := filepath.Join(dir, src.Base+".py")
	if err := os.WriteFile(p, src.Code, 0o644); err != nil {
		os.RemoveAll(dir)
		return "", nil, fmt.Errorf("write lint copy: %w", err)
	}
	return p, func() { os.RemoveAll(dir) }, nil
}

func (e *Engine) render(ctx context.Context, res *Result, names output.Names) {
	if e.opts.Renderer == nil {
		res.Status = StatusRenderSkipped
		return
	}
	out, err := e.opts.Renderer.Render(ctx, res.DOT)
	switch {
	case errors.Is(err, layout.ErrUnavailable):
		res.Status = StatusNoRenderer
		res.issue("warning", schema.IssueRendererMissing, err.Error())
		return
	case err != nil:
		res.Status = StatusRenderFailed
		res.issue("warning", schema.IssueRenderFailed, err.Error())
		return
	}
	res.Rendered = out
	res.Status = StatusRendered

	if len(out.PNG) > 0 {
		e.put(ctx, res, names.PNG, out.PNG)
	}
	if len(out.SVG) > 0 {
		e.put(ctx, res, names.SVG, out.SVG)
		res.Hotspots = geometry.Extract(bytes.NewReader(out.SVG))
		if b, err := output.ToJSON(res.Hotspots); err == nil {
			e.put(ctx, res, names.Map, b)
		}
	}
}

// put persists an artifact; failures are logged and recorded, never returned.
func (e *Engine) put(ctx context.Context, res *Result, name string, content []byte) {
	if e.opts.Store == nil {
		return
	}
	loc, err := e.opts.Store.Put(ctx, name, content)
	if err != nil {
		e.log.Warn("artifact write failed", slog.String("artifact", name), slog.Any("error", err))
		res.issue("warning", schema.IssueArtifactWrite, fmt.Sprintf("%s: %v", name, err))
		if loc == "" {
			return
		}
	}
	res.Artifacts[name] = loc
}

func (e *Engine) remove(ctx context.Context, name string) {
	if e.opts.Store == nil {
		return
	}
	if err := e.opts.Store.Remove(ctx, name); err != nil {
		e.log.Debug("stale artifact not removed", slog.String("artifact", name), slog.Any("error", err))
	}
}
