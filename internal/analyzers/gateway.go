package analyzers

import (
	"regexp"
	"strings"

	"github.com/xab-mack/devstatus/internal/model"
)

var (
	reHaircut   = regexp.MustCompile(`haircutBps`)
	reStaleness = regexp.MustCompile(`(?i)stale|staleness|maxStaleness`)
	reDecimals  = regexp.MustCompile(`decimals`)
	reCaps      = regexp.MustCompile(`(?i)cap`)
	rePolicyRef = regexp.MustCompile(`interface|IPolicy|Policy`)
	rePpsRef    = regexp.MustCompile(`(?i)Mirror|Pps`)
	reSequencer = regexp.MustCompile(`(?i)sequencer|L2|Arbitrum`)
)

const (
	sequencerPresent = "present/toggleable"
	sequencerAbsent  = "absent"
)

type GatewayChecks struct {
	GatewaySummary model.Verdict
	PolicyPpsRefs  model.Verdict
	SequencerGuard model.Verdict
}

func (c GatewayChecks) Checks() []model.NamedVerdict {
	return []model.NamedVerdict{
		{Name: "gateway_summary", Verdict: c.GatewaySummary},
		{Name: "policy_pps_refs", Verdict: c.PolicyPpsRefs},
		{Name: "sequencer_guard", Verdict: c.SequencerGuard},
	}
}

// GatewayPolicyPrice summarizes the deposit gateway parameters and its
// collaborators. The sequencer guard is never Unknown: with no hint in any of
// the four files it reads "absent".
func GatewayPolicyPrice(gateway, policy, pps, hub Source) GatewayChecks {
	var c GatewayChecks
	if gateway.Present {
		s := gateway.Text
		var parts []string
		if reHaircut.MatchString(s) {
			parts = append(parts, "haircutBps")
		}
		if reStaleness.MatchString(s) {
			parts = append(parts, "staleness")
		}
		if reDecimals.MatchString(s) {
			parts = append(parts, "decimals")
		}
		if reCaps.MatchString(s) {
			parts = append(parts, "caps")
		}
		if len(parts) > 0 {
			c.GatewaySummary = model.Text(strings.Join(parts, ", "))
		}
	}

	var refs []string
	if policy.Present && rePolicyRef.MatchString(policy.Text) {
		refs = append(refs, string(model.ContractPolicyBeacon))
	}
	if pps.Present && rePpsRef.MatchString(pps.Text) {
		refs = append(refs, string(model.ContractPpsMirror))
	}
	if len(refs) > 0 {
		c.PolicyPpsRefs = model.Text(strings.Join(refs, ", "))
	}

	c.SequencerGuard = model.Text(sequencerAbsent)
	for _, src := range []Source{gateway, policy, pps, hub} {
		if src.Present && reSequencer.MatchString(src.Text) {
			c.SequencerGuard = model.Text(sequencerPresent)
			break
		}
	}
	return c
}
