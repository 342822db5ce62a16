// Package layout drives the external Graphviz dot binary.
package layout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"
)

// DefaultBinary is the layout engine looked up on PATH.
const DefaultBinary = "dot"

var (
	// ErrUnavailable is returned when the dot binary cannot be found.
	ErrUnavailable = errors.New("graphviz dot not found")
	// ErrNoOutput is returned when no format was produced.
	ErrNoOutput = errors.New("renderer produced no output")
)

// Rendered holds the output of one render. A format that failed is nil.
type Rendered struct {
	PNG []byte
	SVG []byte
}

// Config configura il renderer.
type Config struct {
	Binary    string // default: dot
	CacheSize int    // default: 64 rendered outputs
	Logger    *slog.Logger
}

// Renderer runs dot once per output format and caches results by the hash
// of the input graph.
type Renderer struct {
	binary string
	cache  *lru.Cache[string, []byte]
	log    *slog.Logger
}

// NewRenderer returns a renderer for cfg.
func NewRenderer(cfg Config) *Renderer {
	if strings.TrimSpace(cfg.Binary) == "" {
		cfg.Binary = DefaultBinary
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 64
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cache, _ := lru.New[string, []byte](cfg.CacheSize)
	return &Renderer{binary: cfg.Binary, cache: cache, log: cfg.Logger}
}

// Available reports whether the dot binary can be found.
func (r *Renderer) Available() bool {
	_, err := exec.LookPath(r.binary)
	return err == nil
}

// Render lays out dot as PNG and SVG concurrently and waits for both. One
// failed format does not discard the other; only when both fail is an
// error returned.
func (r *Renderer) Render(ctx context.Context, dot []byte) (*Rendered, error) {
	bin, err := exec.LookPath(r.binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var out Rendered
	var g errgroup.Group
	g.Go(func() error {
		b, err := r.format(ctx, bin, dot, "png")
		out.PNG = b
		return err
	})
	g.Go(func() error {
		b, err := r.format(ctx, bin, dot, "svg")
		out.SVG = b
		return err
	})
	err = g.Wait()

	if len(out.PNG) == 0 && len(out.SVG) == 0 {
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoOutput, err)
		}
		return nil, ErrNoOutput
	}
	if err != nil {
		r.log.Warn("partial render", slog.Any("error", err))
	}
	return &out, nil
}

func (r *Renderer) format(ctx context.Context, bin string, dot []byte, format string) ([]byte, error) {
	key := fmt.Sprintf("%s:%016x", format, xxh3.Hash(dot))
	if b, ok := r.cache.Get(key); ok {
		r.log.Debug("render cache hit", slog.String("format", format))
		return b, nil
	}

	cmd := exec.CommandContext(ctx, bin, "-T"+format)
	cmd.Stdin = bytes.NewReader(dot)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("dot -T%s: %w: %s", format, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("dot -T%s: empty output", format)
	}
	b := stdout.Bytes()
	r.cache.Add(key, b)
	return b, nil
}
