package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xab-mack/devstatus/internal/engine"
	"github.com/xab-mack/devstatus/internal/model"
)

const (
	roleSamplesPerContract = 2
	functionsPerSample     = 5
	maxSecurityLines       = 20
	maxTestFiles           = 30
	maxSecurityNotes       = 6
)

// RenderStatus produces the status narrative.
func RenderStatus(res *engine.Result) string {
	var p page
	p.line("# %s — Dev Status (auto-generated)", res.Project)
	p.blank()
	writeTooling(&p, res)
	writeInventory(&p, res)
	writeRoles(&p, res)
	writeSelectors(&p, res)
	writeUpgrades(&p, res)
	writeChecks(&p, "Fees & Release Model (Router/Spoke)", res.Analysis.Fees.Checks())
	writeChecks(&p, "Factory Hygiene", res.Analysis.Factory.Checks())
	writeChecks(&p, "Messaging & Replay", res.Analysis.Messaging.Checks())
	writeChecks(&p, "Gateways, Policy & PPS", res.Analysis.Gateway.Checks())
	writeChecks(&p, "Pause Semantics & Withdraw Queue", res.Analysis.Pause.Checks())
	writeOracles(&p, res)
	writeSecurity(&p, res)
	writeTests(&p, res)
	writeEnv(&p, res)
	writeParity(&p, res)
	writeBuild(&p, res)
	writeGaps(&p, res)
	return p.String()
}

func writeTooling(p *page, res *engine.Result) {
	p.section("Tooling")
	p.line("- Foundry/Forge: %s", res.Tooling.Forge)
	p.line("- Cast: %s", res.Tooling.Cast)
	p.line("- solc: %s", res.Tooling.Solc)
	slither := "present"
	if res.Tooling.Slither == "" || res.Tooling.Slither == "absent" {
		slither = "absent"
	}
	p.line("- Slither: %s", slither)
	p.blank()
}

func writeInventory(p *page, res *engine.Result) {
	p.section("Contract Inventory")
	var missing []string
	for _, f := range res.Contracts {
		if !f.Located() {
			missing = append(missing, string(f.Name))
			continue
		}
		if f.Introspected() {
			p.line("- %s.sol: `%s` (%d functions, %d events)", f.Name, f.Path, len(f.Functions), len(f.Events))
		} else {
			p.line("- %s.sol: `%s` (ABI unavailable)", f.Name, f.Path)
		}
	}
	p.line("- Not found: %s", listOrNone(missing))
	p.blank()
}

func writeRoles(p *page, res *engine.Result) {
	p.section("Roles & AccessControl")
	seen := map[string]bool{}
	var union []string
	for _, f := range res.Contracts {
		for _, r := range f.Roles {
			if !seen[r] {
				seen[r] = true
				union = append(union, r)
			}
		}
	}
	sort.Strings(union)
	p.line("- Roles discovered: %s", listOrNone(union))
	p.line("- Role → Functions map (samples):")
	for _, f := range res.Contracts {
		keys := make([]string, 0, len(f.RoleFunctionMap))
		for k := range f.RoleFunctionMap {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > roleSamplesPerContract {
			keys = keys[:roleSamplesPerContract]
		}
		for _, k := range keys {
			fns := f.RoleFunctionMap[k]
			if len(fns) > functionsPerSample {
				fns = fns[:functionsPerSample]
			}
			p.line("  - %s → %s.%s", k, f.Name, strings.Join(fns, ", "))
		}
	}
	p.blank()
}

func writeSelectors(p *page, res *engine.Result) {
	p.section("Function Selectors")
	listed := false
	for _, f := range res.Contracts {
		if len(f.Signatures) == 0 {
			continue
		}
		listed = true
		p.line("- %s:", f.Name)
		for _, s := range f.Signatures {
			p.line("  - `%s` %s", s.Signature, s.Selector)
		}
	}
	if !listed {
		p.line("- none (ABI introspection unavailable)")
	}
	p.blank()
}

func writeUpgrades(p *page, res *engine.Result) {
	p.section("Upgradeability & Storage")
	for _, f := range res.Contracts {
		if !f.Located() {
			continue
		}
		p.line("- %s: UUPS=%t, _authorizeUpgrade=%t, __gap=%t, storage=%s",
			f.Name, f.IsUpgradeable, f.HasAuthorizeUpgradeHook, f.HasStorageGapMarker, storageStatus(res, f.Name))
	}
	p.blank()
}

func storageStatus(res *engine.Result, name model.ContractName) model.StorageStatus {
	if st, ok := res.Storage[name]; ok {
		return st
	}
	return model.StorageUnknown
}

func writeChecks(p *page, title string, checks []model.NamedVerdict) {
	p.section(title)
	for _, c := range checks {
		p.line("- %s: [%s]", strings.ReplaceAll(c.Name, "_", " "), c.Verdict)
	}
	p.blank()
}

func writeOracles(p *page, res *engine.Result) {
	o := res.Analysis.Oracles
	p.section("Oracles (DIA/Chainlink)")
	p.line("- Feeds used: %s", listOrNone(o.Feeds))
	p.line("- priceDecimals support (8/18): %s", o.PriceDecimals)
	p.line("- Staleness windows: %s", o.Staleness)
	p.line("- Fallback order: %s", o.Fallback)
	p.blank()
}

func writeSecurity(p *page, res *engine.Result) {
	p.section("Security Summary")
	switch sec := res.Security; {
	case sec == nil:
		p.line("- Slither Medium/High: [skipped]")
	case len(sec.Findings) == 0:
		p.line("- Slither Medium/High: none")
	default:
		p.line("- Slither Medium/High: %d", len(sec.Findings))
		for i, f := range sec.Findings {
			if i == maxSecurityLines {
				p.line("  - ... (+%d more)", len(sec.Findings)-maxSecurityLines)
				break
			}
			p.line("  - %s: %s @ %s", severityLabel(f.Impact), f.Check, location(f))
		}
	}
	if res.Security != nil && res.Security.Suppressed > 0 {
		p.line("- Suppressed by ignores or baseline: %d", res.Security.Suppressed)
	}
	notes := res.Analysis.Security
	if len(notes) > maxSecurityNotes {
		notes = notes[:maxSecurityNotes]
	}
	if len(notes) == 0 {
		p.line("- CEI + nonReentrant: heuristic — no guards found")
	} else {
		p.line("- CEI + nonReentrant: heuristic — %s", strings.Join(notes, "; "))
	}
	p.line("- SafeERC20 used on external transfers: heuristic — see above")
	p.line("- External calls in loops: [Unknown]")
	p.blank()
}

func severityLabel(s model.Severity) string {
	if s == "" {
		return "Unknown"
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func location(f model.SecurityFinding) string {
	if f.File == "" {
		return "unknown location"
	}
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d", f.File, f.Line)
	}
	return f.File
}

func writeTests(p *page, res *engine.Result) {
	p.section("Tests & Gas")
	p.line("- Test files discovered:")
	files := res.Tests.Files
	for i, f := range files {
		if i == maxTestFiles {
			p.line("  - ... (+%d more)", len(files)-maxTestFiles)
			break
		}
		p.line("  - %s", f)
	}
	p.line("- Domains covered: %s", listOrNone(res.Tests.Domains))
	switch {
	case !res.GasRequested:
		p.line("- Gas report: skipped")
	case res.GasCollected:
		p.line("- Gas report: collected (see local run output)")
	default:
		p.line("- Gas report: failed")
	}
	p.line("- Test count (approx): %d", res.Tests.ApproxCount)
	p.blank()
}

func writeEnv(p *page, res *engine.Result) {
	p.section("Deploy Scripts & Envs")
	p.line("- Env vars:")
	if len(res.Env) == 0 {
		p.line("  - none found")
	}
	for _, e := range res.Env {
		p.line("  - %s | used in %s", e.Name, e.UsedIn)
	}
	p.blank()
}

func writeParity(p *page, res *engine.Result) {
	p.section("Cross-Repo Parity (optional)")
	if res.ParityFile {
		p.line("- Hash/fee parity checks with other repos: [skipped — hook not implemented]")
	} else {
		p.line("- Hash/fee parity checks with other repos: [skipped]")
	}
	p.blank()
}

func writeBuild(p *page, res *engine.Result) {
	p.section("Build Output")
	switch {
	case !res.Build.Ran:
		p.line("- forge build: skipped")
	case res.Build.OK:
		p.line("- forge build: ok")
	default:
		p.line("- forge build: failed (best-effort data below)")
	}
	p.line("- build warnings (first 20):")
	for _, w := range res.Build.Warnings {
		p.line("  - %s", w)
	}
	if res.Security != nil {
		p.line("- slither: collected (Medium/High summarized above)")
	} else {
		p.line("- slither: skipped or not installed")
	}
	p.blank()
}

func writeGaps(p *page, res *engine.Result) {
	p.section("Gaps & Action Items")
	p.line("- [ ] Fill any Unknowns by refining parser or adding explicit annotations in code comments")
	for _, c := range res.Analysis.Fees.Checks() {
		if c.Verdict.Kind == model.VerdictUnknown || c.Verdict.Kind == model.VerdictNoUnsure {
			p.line("- [ ] Check %s in Router.sol", c.Name)
		}
	}
	for _, name := range res.Order {
		if st := storageStatus(res, name); strings.HasPrefix(string(st), "Changes") {
			p.line("- [ ] Review storage layout changes for %s", name)
		}
	}
	for _, f := range res.Contracts {
		if !f.Located() {
			p.line("- [ ] Locate source for %s", f.Name)
		}
	}
}
