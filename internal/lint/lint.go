// Package lint runs the external style checker and turns its report into
// findings.
package lint

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/codellm-devkit/codeanalyzer-py/pkg/schema"
)

// DefaultCommand is the linter looked up on PATH when none is configured.
const DefaultCommand = "flake8"

// ErrUnavailable is returned when the linter cannot be found or started.
var ErrUnavailable = errors.New("linter unavailable")

// linePattern matches "<path>:<line>:<col>: <code> <message>". The path
// may itself contain colons, so the match is anchored on the tail.
var linePattern = regexp.MustCompile(`:(\d+):(\d+): ([A-Z]+[0-9]+) (.*)$`)

// Runner invokes the linter binary.
type Runner struct {
	Command string
	Args    []string
	Logger  *slog.Logger
}

// NewRunner returns a runner for command, DefaultCommand when empty.
func NewRunner(command string, logger *slog.Logger) *Runner {
	if strings.TrimSpace(command) == "" {
		command = DefaultCommand
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Command: command, Logger: logger}
}

// Run lints path. When the linter is unavailable the result is a single
// advisory finding.
func (r *Runner) Run(ctx context.Context, path string) []schema.Finding {
	out, err := r.Exec(ctx, path)
	if err != nil {
		r.Logger.Warn("style check skipped", slog.String("linter", r.Command), slog.Any("error", err))
		return []schema.Finding{Unavailable(r.Command)}
	}
	return Parse(out)
}

// Exec runs the linter and returns its standard output. A non-zero exit
// status with output is the normal "violations found" case.
func (r *Runner) Exec(ctx context.Context, path string) ([]byte, error) {
	bin, err := exec.LookPath(r.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	args := append(append([]string(nil), r.Args...), path)
	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr) && stdout.Len() > 0:
	case errors.As(err, &exitErr):
		return nil, fmt.Errorf("%s exited with %d: %s", r.Command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return stdout.Bytes(), nil
}

// Unavailable is the advisory finding emitted when the linter is missing.
func Unavailable(command string) schema.Finding {
	return schema.Finding{
		Category: schema.CategoryStyle,
		Message:  fmt.Sprintf("%s was not found or could not run; check that it is installed.", command),
	}
}

// Parse converts linter output into findings, one per non-blank line.
func Parse(out []byte) []schema.Finding {
	var fs []schema.Finding
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fs = append(fs, ParseLine(line))
	}
	return fs
}

// ParseLine parses one report line. Lines that do not match the expected
// shape are kept verbatim as the message.
func ParseLine(line string) schema.Finding {
	f := schema.Finding{Category: schema.CategoryStyle, Message: line}
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return f
	}
	f.Line, _ = strconv.Atoi(m[1])
	f.Column, _ = strconv.Atoi(m[2])
	f.Code = m[3]
	return f
}
