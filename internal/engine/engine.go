// Package engine runs the status pipeline: tooling, build, per-contract
// facts, subsystem analyzers, storage snapshots, security scan and test
// inventory. Rendering is left to the report package.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xab-mack/devstatus/internal/analyzers"
	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/facts"
	"github.com/xab-mack/devstatus/internal/inventory"
	"github.com/xab-mack/devstatus/internal/locator"
	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/snapshot"
	"github.com/xab-mack/devstatus/internal/tools"
)

// Toolchain is the external tool surface the pipeline consumes.
// *tools.Bridge implements it.
type Toolchain interface {
	tools.Introspector
	DetectAll(ctx context.Context) model.Tooling
	Build(ctx context.Context) (bool, string)
	GasReport(ctx context.Context) (string, error)
	RunSecurityScan(ctx context.Context) ([]model.SecurityFinding, error)
}

type BuildStatus struct {
	Ran      bool     `json:"ran"`
	OK       bool     `json:"ok"`
	Warnings []string `json:"warnings"`
}

// SecuritySummary is nil in a Result when the scan was skipped or failed.
type SecuritySummary struct {
	Total      int                     `json:"total"`
	Suppressed int                     `json:"suppressed"`
	Findings   []model.SecurityFinding `json:"findings"` // medium and above
}

// Result is everything the renderer needs. Collections follow the contract
// enumeration order or are sorted, so rendering never depends on discovery order.
type Result struct {
	Project  string               `json:"project"`
	Order    []model.ContractName `json:"order"`
	Tooling  model.Tooling        `json:"tooling"`
	Build    BuildStatus          `json:"build"`

	Contracts []model.ContractFacts                       `json:"contracts"`
	Storage   map[model.ContractName]model.StorageStatus `json:"storage"`
	Analysis  analyzers.Report                            `json:"analysis"`
	Security  *SecuritySummary                            `json:"security"`
	Tests     model.TestInventory                         `json:"tests"`
	Env       []model.EnvVar                              `json:"env"`

	GasRequested bool          `json:"gasRequested"`
	GasCollected bool          `json:"gasCollected"`
	ParityFile   bool          `json:"parityFile"`
	Elapsed      time.Duration `json:"-"`
}

// Facts returns the record of name, or an empty one.
func (r *Result) Facts(name model.ContractName) model.ContractFacts {
	for _, f := range r.Contracts {
		if f.Name == name {
			return f
		}
	}
	return facts.Empty(name)
}

type Engine struct {
	cfg     config.Config
	tools   Toolchain
	logger  *zap.Logger
	workers int
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithWorkers bounds concurrent per-contract extraction.
func WithWorkers(n int) Option { return func(e *Engine) { e.workers = n } }

func New(cfg config.Config, tc Toolchain, opts ...Option) *Engine {
	e := &Engine{cfg: cfg, tools: tc, logger: zap.NewNop(), workers: runtime.NumCPU()}
	for _, o := range opts {
		o(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

// Run executes the pipeline against req.Root. Sub-analyses degrade to
// Unknown on their own; only cancellation of ctx makes Run fail.
func (e *Engine) Run(ctx context.Context, req model.RunRequest) (*Result, error) {
	start := time.Now()
	root := req.Root
	order := e.cfg.ContractNames()
	res := &Result{Project: e.cfg.Project, Order: order, GasRequested: req.RunGas}

	res.Tooling = e.tools.DetectAll(ctx)
	if !req.SkipBuild {
		res.Build = e.build(ctx)
	}

	loc := locator.New(root, e.cfg)
	ex := facts.NewExtractor(loc, e.tools, e.cfg.Roles, e.logger)
	contracts, err := e.extractAll(ctx, ex, order)
	if err != nil {
		return nil, err
	}
	for i := range contracts {
		if contracts[i].Located() {
			contracts[i].Path = loc.Rel(contracts[i].Path)
		}
	}
	res.Contracts = contracts

	res.Analysis = analyzers.RunAll(analyzers.LoadSources(loc, order), order)

	cmp := snapshot.New(root, e.cfg.Layout, e.tools, e.logger)
	res.Storage = cmp.Compare(ctx, order)

	if req.RunGas {
		res.GasCollected = e.gas(ctx)
	}
	if !req.SkipSlither {
		res.Security = e.security(ctx, root)
	}

	inv := inventory.NewScanner(root, e.cfg.TestDomains, e.logger)
	res.Tests = inv.Tests(e.cfg.Layout.TestDir)
	res.Env = inv.DeployEnv(e.cfg.Layout.ScriptDir)

	if _, err := os.Stat(filepath.Join(root, e.cfg.Layout.ParityFile)); err == nil {
		res.ParityFile = true
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(start)
	e.logger.Info("status collected",
		zap.Int("contracts", len(order)),
		zap.Int("located", countLocated(res.Contracts)),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// extractAll runs the extractor per contract on a bounded pool. Each worker
// writes its own slot, so the result keeps enumeration order.
func (e *Engine) extractAll(ctx context.Context, ex *facts.Extractor, order []model.ContractName) ([]model.ContractFacts, error) {
	out := make([]model.ContractFacts, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, name := range order {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = ex.Extract(gctx, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func countLocated(fs []model.ContractFacts) int {
	n := 0
	for _, f := range fs {
		if f.Located() {
			n++
		}
	}
	return n
}
