package report

import (
	"fmt"
	"strings"

	"github.com/xab-mack/devstatus/internal/analyzers"
	"github.com/xab-mack/devstatus/internal/engine"
	"github.com/xab-mack/devstatus/internal/model"
)

// Row is one checklist line.
type Row struct {
	Area        string
	Expectation string
	Status      string
	Notes       string
}

func verdictRow(area, expectation string, v model.Verdict) Row {
	return Row{Area: area, Expectation: expectation, Status: v.Glyph(), Notes: v.String()}
}

// Checklist builds the expectation rows: the suite-wide rows first, then a
// fixed block per contract in enumeration order.
func Checklist(res *engine.Result) []Row {
	a := res.Analysis
	rows := []Row{
		verdictRow("Fees", "protocolFeeBps ≤ 5", a.Fees.ProtocolFeeCap),
		verdictRow("Fees", "protocolShareBps + lpShareBps = 10_000", a.Fees.ShareSum),
		verdictRow("Fees", "Destination-side skim, LP share retained in vault", a.Fees.DestinationSkimming),
		verdictRow("Router", "FeeApplied telemetry event present", a.Fees.FeeEventsPresent),
		verdictRow("Factory", "Proxies born paused", a.Factory.ProxiesPaused),
		verdictRow("Factory", "Router gets BORROWER_ROLE", a.Factory.RouterGetsBorrower),
		verdictRow("Factory", "Factory renounces roles on proxies", a.Factory.RenouncesRoles),
		verdictRow("Messaging", "Adapter-authority enforced; legacy pre-adapter allowed only for whitelisted src", a.Messaging.AdapterAuthority),
		verdictRow("Messaging", "Replay protection marks used[hash]", a.Messaging.ReplayProtection),
		verdictRow("Gateway", "mintFromGateway behind GATEWAY_ROLE", a.Messaging.MinterGatewayRole),
		verdictRow("Hub", "requestWithdraw() allowed while paused", a.Pause.RequestWithdrawAllowed),
		oracleRow(a.Oracles),
		{Area: "Security", Expectation: "CEI + nonReentrant around external transfers", Status: model.GlyphPartial},
		{Area: "Security", Expectation: "SafeERC20 everywhere funds move", Status: model.GlyphPartial},
		slitherRow(res.Security),
	}
	rows = append(rows, upgradeRows(res.Contracts)...)
	rows = append(rows,
		storageRow(res),
		Row{Area: "Scripts", Expectation: "Phase-1/1.5/2 scripts set fees, collector, adapter, roles", Status: model.GlyphUnsure},
		Row{Area: "Docs", Expectation: "IDs/roles/params documented", Status: model.GlyphUnsure},
	)
	for _, f := range res.Contracts {
		rows = append(rows, contractRows(f, storageStatus(res, f.Name))...)
	}
	return rows
}

func oracleRow(o analyzers.OracleChecks) Row {
	r := Row{Area: "Oracles", Expectation: "DIA/Chainlink staleness + decimals handled", Status: model.GlyphUnsure}
	if len(o.Feeds) > 0 {
		r.Status = model.GlyphOK
		r.Notes = strings.Join(o.Feeds, ", ")
	}
	return r
}

// slitherRow only passes when the scan ran and listed nothing.
func slitherRow(sec *engine.SecuritySummary) Row {
	r := Row{Area: "Security", Expectation: "No Slither Medium/High in src/", Status: model.GlyphUnsure}
	switch {
	case sec == nil:
		r.Notes = "scan skipped"
	case len(sec.Findings) == 0:
		r.Status = model.GlyphOK
	default:
		r.Notes = fmt.Sprintf("%d finding(s), see report", len(sec.Findings))
	}
	return r
}

// upgradeRows need at least one located contract; an empty suite proves nothing.
func upgradeRows(contracts []model.ContractFacts) []Row {
	hook := Row{Area: "Upgrades", Expectation: "UUPS _authorizeUpgrade role-gated", Status: model.GlyphUnsure}
	gap := Row{Area: "Upgrades", Expectation: "__gap present in upgradables", Status: model.GlyphUnsure}
	located := 0
	hookOK, gapOK := true, true
	var noHook, noGap []string
	for _, f := range contracts {
		if !f.Located() {
			continue
		}
		located++
		if !(f.HasAuthorizeUpgradeHook && f.IsUpgradeable) {
			hookOK = false
			noHook = append(noHook, string(f.Name))
		}
		if f.IsUpgradeable && !f.HasStorageGapMarker {
			gapOK = false
			noGap = append(noGap, string(f.Name))
		}
	}
	if located == 0 {
		hook.Notes = "no contracts located"
		gap.Notes = "no contracts located"
		return []Row{hook, gap}
	}
	if hookOK {
		hook.Status = model.GlyphOK
	} else {
		hook.Notes = "missing: " + strings.Join(noHook, ", ")
	}
	if gapOK {
		gap.Status = model.GlyphOK
	} else {
		gap.Notes = "missing: " + strings.Join(noGap, ", ")
	}
	return []Row{hook, gap}
}

func storageRow(res *engine.Result) Row {
	r := Row{Area: "Storage", Expectation: "Snapshots up-to-date / diffs reviewed", Status: model.GlyphOK}
	var open []string
	for _, name := range res.Order {
		switch st := storageStatus(res, name); st {
		case model.StorageNoChanges, model.StorageSnapshotCreated:
		default:
			open = append(open, fmt.Sprintf("%s: %s", name, st))
		}
	}
	if len(res.Order) == 0 || len(open) > 0 {
		r.Status = model.GlyphUnsure
		r.Notes = strings.Join(open, "; ")
	}
	return r
}

// contractRows reports one contract. Without ABI introspection every row is
// unconfirmed; the notes still carry what the source text showed.
func contractRows(f model.ContractFacts, storage model.StorageStatus) []Row {
	area := string(f.Name)
	if !f.Located() {
		return []Row{
			verdictRow(area, "ABI introspected", model.Unknown()),
			verdictRow(area, "Role-gated functions mapped", model.Unknown()),
			verdictRow(area, "Upgrade hook present", model.Unknown()),
			verdictRow(area, "Storage gap reserved", model.Unknown()),
			verdictRow(area, "Storage snapshot", model.Unknown()),
		}
	}

	abiRow := Row{Area: area, Expectation: "ABI introspected", Status: model.GlyphUnsure, Notes: "unavailable"}
	if f.Introspected() {
		abiRow.Status = model.GlyphOK
		abiRow.Notes = fmt.Sprintf("%d functions, %d events", len(f.Functions), len(f.Events))
	}

	guarded := 0
	for _, fns := range f.RoleFunctionMap {
		guarded += len(fns)
	}
	rolesRow := verdictRow(area, "Role-gated functions mapped", model.YesIf(guarded > 0))
	rolesRow.Notes = fmt.Sprintf("%d guarded function(s)", guarded)

	var hookRow, gapRow Row
	if f.IsUpgradeable {
		hookRow = verdictRow(area, "Upgrade hook present", model.YesIf(f.HasAuthorizeUpgradeHook))
		gapRow = verdictRow(area, "Storage gap reserved", model.YesIf(f.HasStorageGapMarker))
	} else {
		hookRow = verdictRow(area, "Upgrade hook present", model.Text("not upgradeable"))
		gapRow = verdictRow(area, "Storage gap reserved", model.Text("not upgradeable"))
	}
	storageRow := verdictRow(area, "Storage snapshot", model.Text(string(storage)))

	rows := []Row{abiRow, rolesRow, hookRow, gapRow, storageRow}
	if !f.Introspected() {
		for i := range rows {
			rows[i].Status = model.GlyphUnsure
		}
	}
	return rows
}

// RenderChecklist renders rows as a markdown table.
func RenderChecklist(rows []Row) string {
	var p page
	p.line("| Area | Expectation | Status | Notes |")
	p.line("|---|---|---|---|")
	for _, r := range rows {
		p.line("| %s | %s | %s | %s |", cell(r.Area), cell(r.Expectation), cell(r.Status), cell(r.Notes))
	}
	return p.String()
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
