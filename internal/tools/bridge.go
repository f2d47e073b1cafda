package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/model"
)

// Facet selects what `forge inspect` reports about a contract.
type Facet string

const (
	FacetABI           Facet = "abi"
	FacetMethods       Facet = "methods"
	FacetStorageLayout Facet = "storage-layout"
)

const absent = "absent"

// slitherReportName is the transient file slither writes its JSON into.
const slitherReportName = ".slither-report.tmp.json"

// Output is what an introspection call produced: decoded JSON when the tool
// printed JSON, the trimmed text otherwise.
type Output struct {
	Raw   string
	Value any
	JSON  bool
}

// Introspector answers compiler-introspection queries for one project.
type Introspector interface {
	Introspect(ctx context.Context, contract model.ContractName, facet Facet) (Output, error)
}

// Bridge wraps every external binary the pipeline consults. None of its
// methods treat a failing tool as fatal; they return classified errors the
// caller degrades to "absent".
type Bridge struct {
	root    string
	tools   config.Tools
	timeout time.Duration
	run     Runner
	logger  *zap.Logger
}

type Option func(*Bridge)

func WithRunner(r Runner) Option { return func(b *Bridge) { b.run = r } }

func WithLogger(l *zap.Logger) Option { return func(b *Bridge) { b.logger = l } }

func NewBridge(root string, cfg config.Config, opts ...Option) *Bridge {
	b := &Bridge{root: root, tools: cfg.Tools, timeout: cfg.Timeout(), run: RunWithTimeout, logger: zap.NewNop()}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bridge) exec(ctx context.Context, tool string, args ...string) Result {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	res := b.run(ctx, b.root, tool, args...)
	if res.Err != nil {
		b.logger.Debug("external tool unavailable",
			zap.String("tool", tool),
			zap.Strings("args", args),
			zap.Duration("elapsed", res.Duration),
			zap.String("stderr", tail(string(res.Stderr), 512)),
			zap.Error(res.Err))
	}
	return res
}

func (b *Bridge) binary(name string) string {
	switch name {
	case "forge":
		return b.tools.Forge
	case "cast":
		return b.tools.Cast
	case "solc":
		return b.tools.Solc
	case "slither":
		return b.tools.Slither
	}
	return name
}

// DetectTool returns the version banner of a tool.
func (b *Bridge) DetectTool(ctx context.Context, name string) (string, error) {
	res := b.exec(ctx, b.binary(name), "--version")
	if res.Err != nil {
		return "", res.Err
	}
	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		out = strings.TrimSpace(string(res.Stderr))
	}
	return out, nil
}

// DetectAll reports every tool of the Tooling section, "absent" where missing.
func (b *Bridge) DetectAll(ctx context.Context) model.Tooling {
	version := func(name string) string {
		v, err := b.DetectTool(ctx, name)
		if err != nil {
			return absent
		}
		return v
	}
	return model.Tooling{
		Forge:   version("forge"),
		Cast:    version("cast"),
		Solc:    version("solc"),
		Slither: version("slither"),
	}
}

// Introspect runs `forge inspect <contract> <facet>`.
func (b *Bridge) Introspect(ctx context.Context, contract model.ContractName, facet Facet) (Output, error) {
	res := b.exec(ctx, b.tools.Forge, "inspect", string(contract), string(facet))
	if res.Err != nil {
		return Output{}, res.Err
	}
	return decodeOutput(res.Stdout)
}

func decodeOutput(stdout []byte) (Output, error) {
	raw := strings.TrimSpace(string(stdout))
	if raw == "" {
		return Output{}, fmt.Errorf("empty output: %w", ErrParseFailed)
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return Output{Raw: raw}, nil
	}
	return Output{Raw: raw, Value: v, JSON: true}, nil
}

// Build runs `forge clean` followed by `forge build` and returns whether the
// build succeeded together with the combined output of both steps.
func (b *Bridge) Build(ctx context.Context) (bool, string) {
	clean := b.exec(ctx, b.tools.Forge, "clean")
	build := b.exec(ctx, b.tools.Forge, "build")
	out := clean.Combined() + "\n" + build.Combined()
	return clean.Err == nil && build.Err == nil, out
}

// GasReport runs the test suite with a gas report.
func (b *Bridge) GasReport(ctx context.Context) (string, error) {
	res := b.exec(ctx, b.tools.Forge, "test", "-vv", "--gas-report")
	if res.Err != nil {
		return "", res.Err
	}
	return res.Combined(), nil
}

// RunSecurityScan runs slither over the project root and normalizes its JSON
// report. The transient report file is removed afterwards on a best-effort basis.
func (b *Bridge) RunSecurityScan(ctx context.Context) ([]model.SecurityFinding, error) {
	reportPath := filepath.Join(b.root, slitherReportName)
	defer func() {
		if err := os.Remove(reportPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.logger.Warn("could not remove slither report", zap.String("path", reportPath), zap.Error(err))
		}
	}()
	res := b.exec(ctx, b.tools.Slither, ".", "--json", reportPath)
	if res.Err != nil {
		return nil, res.Err
	}
	raw, err := os.ReadFile(reportPath)
	if err != nil {
		// slither writes to stdout when the path is "-"; accept that too
		if len(strings.TrimSpace(string(res.Stdout))) == 0 {
			return nil, fmt.Errorf("read slither report: %v: %w", err, ErrParseFailed)
		}
		raw = res.Stdout
	}
	findings, err := normalizeSlither(raw)
	if err != nil {
		return nil, fmt.Errorf("slither: %v: %w", err, ErrParseFailed)
	}
	return findings, nil
}
