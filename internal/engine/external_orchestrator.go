package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/tools"
)

const maxBuildWarnings = 20

// build runs forge clean and build. A failed build is logged and the run
// carries on with whatever artifacts exist.
func (e *Engine) build(ctx context.Context) BuildStatus {
	ok, out := e.tools.Build(ctx)
	if !ok {
		e.logger.Warn("forge build failed; continuing to collect available info")
	}
	return BuildStatus{Ran: true, OK: ok, Warnings: buildWarnings(out, maxBuildWarnings)}
}

func buildWarnings(out string, limit int) []string {
	warnings := []string{}
	for _, ln := range strings.Split(out, "\n") {
		if len(warnings) == limit {
			break
		}
		if strings.Contains(ln, "Warning") {
			warnings = append(warnings, strings.TrimRight(ln, "\r"))
		}
	}
	return warnings
}

func (e *Engine) gas(ctx context.Context) bool {
	if _, err := e.tools.GasReport(ctx); err != nil {
		e.logger.Warn("gas report not collected", zap.Error(err))
		return false
	}
	return true
}

// security runs the scanner and reduces its findings to the medium and
// above that are neither ignored nor accepted in the baseline.
func (e *Engine) security(ctx context.Context, root string) *SecuritySummary {
	raw, err := e.tools.RunSecurityScan(ctx)
	if err != nil {
		level := e.logger.Warn
		if errors.Is(err, tools.ErrToolAbsent) {
			level = e.logger.Debug
		}
		level("security scan skipped", zap.Error(err))
		return nil
	}
	merged := calibrateFindings(raw)
	kept := applyIgnores(merged, e.cfg, root)

	if e.cfg.SecurityBaseline != "" {
		b, err := loadBaseline(filepath.Join(root, e.cfg.SecurityBaseline))
		if err != nil {
			e.logger.Warn("security baseline unreadable", zap.Error(err))
		}
		kept = filterByBaseline(kept, b)
	}
	return &SecuritySummary{
		Total:      len(merged),
		Suppressed: len(merged) - len(kept),
		Findings:   filterBySeverity(kept, model.SeverityMedium),
	}
}
