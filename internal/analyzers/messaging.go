package analyzers

import (
	"regexp"
	"strings"

	"github.com/xab-mack/devstatus/internal/model"
)

var (
	reAdapterRequire = regexp.MustCompile(`require\(msg\.sender\s*==\s*adapter`)
	reLegacyPath     = regexp.MustCompile(`allowlist|whitelist|srcChainId|srcAddr`)
	reReplayMark     = regexp.MustCompile(`used\[|_verifyAndMark`)
	reMintEntry      = regexp.MustCompile(`mintFromGateway`)
	reMintEvents     = regexp.MustCompile(`Minted|Gateway|Reported`)
)

type MessagingChecks struct {
	AdapterAuthority      model.Verdict
	LegacyDirectWhitelist model.Verdict
	ReplayProtection      model.Verdict
	MinterGatewayRole     model.Verdict
	Observability         model.Verdict
}

func (c MessagingChecks) Checks() []model.NamedVerdict {
	return []model.NamedVerdict{
		{Name: "adapter_authority", Verdict: c.AdapterAuthority},
		{Name: "legacy_direct_whitelist", Verdict: c.LegacyDirectWhitelist},
		{Name: "replay_protection", Verdict: c.ReplayProtection},
		{Name: "minter_gateway_role", Verdict: c.MinterGatewayRole},
		{Name: "observability", Verdict: c.Observability},
	}
}

// MessagingReplay covers the endpoint receiver and the remote minter; each
// file only decides its own checks.
func MessagingReplay(endpoint, minter Source) MessagingChecks {
	var c MessagingChecks
	if endpoint.Present {
		s := endpoint.Text
		c.AdapterAuthority = model.YesIf(strings.Contains(s, "onlyAdapter") || reAdapterRequire.MatchString(s))
		c.LegacyDirectWhitelist = model.YesIf(reLegacyPath.MatchString(s))
		c.ReplayProtection = model.YesIf(reReplayMark.MatchString(s))
	}
	if minter.Present {
		s := minter.Text
		c.MinterGatewayRole = model.YesIf(strings.Contains(s, "GATEWAY_ROLE") && reMintEntry.MatchString(s))
		c.Observability = model.YesIf(reMintEvents.MatchString(s))
	}
	return c
}
