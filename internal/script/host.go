// Package script hosts the calculator inside a Go interpreter so that
// scripts can import it the way a host language imports a native module.
package script

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"

	"github.com/pengelbrecht/calc/internal/calculator"
)

// DefaultTimeout bounds a single script run when no option overrides it.
const DefaultTimeout = 5 * time.Second

// allowedImports are the packages a script may import besides the calculator.
var allowedImports = map[string]bool{
	ImportPath: true,
	"errors":   true,
	"fmt":      true,
	"math":     true,
	"strconv":  true,
	"strings":  true,
	"time":     true,
}

// Host evaluates scripts against the calculator module.
// Every run gets a fresh interpreter; nothing survives between runs.
type Host struct {
	timeout time.Duration
	logger  *zap.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// Option configures a Host.
type Option func(*Host)

// WithTimeout sets the per-run deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) { h.timeout = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithOutput redirects script stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(h *Host) {
		h.stdout = stdout
		h.stderr = stderr
	}
}

// New creates a Host.
func New(opts ...Option) *Host {
	h := &Host{
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run evaluates a script program. A missing package clause is treated as
// package main; if the program declares main, it is executed.
func (h *Host) Run(ctx context.Context, name, src string) error {
	src = wrapCode(src)
	if err := validateImports(src); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	i, err := h.newInterpreter()
	if err != nil {
		return err
	}
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		h.logger.Debug("script failed", zap.String("name", name), zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	h.logger.Debug("script finished", zap.String("name", name), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// Expr evaluates a single float-valued expression with the calculator imported,
// e.g. `calculator.Mul(4, 2.5)`. Declarations and statements are rejected, so
// the expression can reach no package other than the calculator.
func (h *Host) Expr(ctx context.Context, expr string) (float64, error) {
	if _, err := parser.ParseExpr(expr); err != nil {
		return 0, fmt.Errorf("eval %q: not a single expression: %w", expr, err)
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	i, err := h.newInterpreter()
	if err != nil {
		return 0, err
	}
	if _, err := i.Eval(`import "` + ImportPath + `"`); err != nil {
		return 0, fmt.Errorf("import calculator: %w", err)
	}

	v, err := i.EvalWithContext(ctx, expr)
	if err != nil {
		return 0, fmt.Errorf("eval %q: %w", expr, err)
	}
	if !v.IsValid() {
		return 0, fmt.Errorf("eval %q: expression has no value", expr)
	}
	f, err := calculator.ToFloat(v.Interface())
	if err != nil {
		return 0, fmt.Errorf("eval %q: result %w", expr, err)
	}
	return f, nil
}

func (h *Host) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Host) newInterpreter() (*interp.Interpreter, error) {
	i := interp.New(interp.Options{
		Stdout: h.stdout,
		Stderr: h.stderr,
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, fmt.Errorf("failed to load stdlib: %w", err)
	}
	if err := i.Use(Symbols); err != nil {
		return nil, fmt.Errorf("failed to load calculator: %w", err)
	}
	return i, nil
}

func wrapCode(src string) string {
	if strings.HasPrefix(strings.TrimSpace(src), "package ") {
		return src
	}
	return "package main\n\n" + src
}

func validateImports(src string) error {
	f, err := parser.ParseFile(token.NewFileSet(), "", src, parser.ImportsOnly)
	if err != nil {
		return fmt.Errorf("parse imports: %w", err)
	}

	var forbidden []string
	for _, imp := range f.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return fmt.Errorf("parse imports: %w", err)
		}
		if !allowedImports[path] {
			forbidden = append(forbidden, path)
		}
	}
	if len(forbidden) > 0 {
		return fmt.Errorf("forbidden imports detected: %v (allowed: %v)", forbidden, allowedList())
	}
	return nil
}

func allowedList() []string {
	pkgs := make([]string, 0, len(allowedImports))
	for pkg := range allowedImports {
		pkgs = append(pkgs, pkg)
	}
	sort.Strings(pkgs)
	return pkgs
}
