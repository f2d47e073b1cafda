package analyzers

import (
	"regexp"
	"strings"

	"github.com/xab-mack/devstatus/internal/model"
)

var (
	reFeeCap           = regexp.MustCompile(`setProtocolFeeBps\(.*?\)\s*\{[\s\S]*?require\([^;]*?<=\s*5\b`)
	reShareSum         = regexp.MustCompile(`protocolShareBps\s*\+\s*lpShareBps\s*==\s*10000`)
	reFeeEvents        = regexp.MustCompile(`FeeApplied|FillExecuted`)
	reCollectorNonZero = regexp.MustCompile(`feeCollector\s*!=\s*address\(0\)`)
	reFeeParams        = regexp.MustCompile(`protocolFeeBps|protocolShareBps|lpShareBps`)
	reVaultRef         = regexp.MustCompile(`vault|SpokeVault`)
)

// FeeChecks are the router fee invariants.
type FeeChecks struct {
	ProtocolFeeCap       model.Verdict
	ShareSum             model.Verdict
	DestinationSkimming  model.Verdict
	LPShareRetained      model.Verdict
	RelayerFeeUsed       model.Verdict
	FeeEventsPresent     model.Verdict
	FeeCollectorRequired model.Verdict
}

func (c FeeChecks) Checks() []model.NamedVerdict {
	return []model.NamedVerdict{
		{Name: "protocolFeeBps_cap_le_5", Verdict: c.ProtocolFeeCap},
		{Name: "protocolShare_plus_lpShare_eq_10000", Verdict: c.ShareSum},
		{Name: "destination_skimming", Verdict: c.DestinationSkimming},
		{Name: "lp_share_retained", Verdict: c.LPShareRetained},
		{Name: "relayerFeeBps_used", Verdict: c.RelayerFeeUsed},
		{Name: "fee_events_present", Verdict: c.FeeEventsPresent},
		{Name: "feeCollector_required_when_protocol_fee", Verdict: c.FeeCollectorRequired},
	}
}

// FeeInvariants inspects the router. Checks without positive evidence stay
// Unknown, except the fee cap which reads No/Unsure when the parameter exists
// but no bound of 5 follows its setter.
func FeeInvariants(router Source) FeeChecks {
	var c FeeChecks
	if !router.Present {
		return c
	}
	s := router.Text
	switch {
	case reFeeCap.MatchString(s):
		c.ProtocolFeeCap = model.Yes()
	case strings.Contains(s, "protocolFeeBps"):
		c.ProtocolFeeCap = model.NoUnsure()
	}
	if reShareSum.MatchString(s) {
		c.ShareSum = model.Yes()
	}
	if reFeeEvents.MatchString(s) {
		c.FeeEventsPresent = model.Yes()
	}
	if strings.Contains(s, "relayerFeeBps") {
		c.RelayerFeeUsed = model.Yes()
	}
	if reCollectorNonZero.MatchString(s) {
		c.FeeCollectorRequired = model.Yes()
	}
	// skim and retention share one signal: fee parameters next to a vault reference
	if reFeeParams.MatchString(s) && reVaultRef.MatchString(s) {
		c.DestinationSkimming = model.Yes()
		c.LPShareRetained = model.Yes()
	}
	return c
}
