package analyzers

import (
	"regexp"

	"github.com/xab-mack/devstatus/internal/model"
)

var (
	reImplCache     = regexp.MustCompile(`spokeVaultImpl|routerImpl`)
	rePauseCall     = regexp.MustCompile(`pause\(\)`)
	reBorrowerRole  = regexp.MustCompile(`BORROWER_ROLE`)
	reRenounce      = regexp.MustCompile(`renounceRole|renounce`)
	reSpokeDeployed = regexp.MustCompile(`(?i)SpokeDeployed`)
)

type FactoryChecks struct {
	ImplCaching        model.Verdict
	ProxiesPaused      model.Verdict
	RouterGetsBorrower model.Verdict
	RenouncesRoles     model.Verdict
	SpokeDeployedEvent model.Verdict
}

func (c FactoryChecks) Checks() []model.NamedVerdict {
	return []model.NamedVerdict{
		{Name: "impl_caching", Verdict: c.ImplCaching},
		{Name: "proxies_paused", Verdict: c.ProxiesPaused},
		{Name: "router_gets_borrower", Verdict: c.RouterGetsBorrower},
		{Name: "renounces_roles", Verdict: c.RenouncesRoles},
		{Name: "spoke_deployed_event", Verdict: c.SpokeDeployedEvent},
	}
}

func FactoryHygiene(factory Source) FactoryChecks {
	var c FactoryChecks
	if !factory.Present {
		return c
	}
	s := factory.Text
	c.ImplCaching = model.YesIf(reImplCache.MatchString(s))
	c.ProxiesPaused = model.YesIf(rePauseCall.MatchString(s))
	c.RouterGetsBorrower = model.YesIf(reBorrowerRole.MatchString(s))
	c.RenouncesRoles = model.YesIf(reRenounce.MatchString(s))
	c.SpokeDeployedEvent = model.YesIf(reSpokeDeployed.MatchString(s))
	return c
}
