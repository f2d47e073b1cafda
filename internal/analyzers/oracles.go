package analyzers

import (
	"regexp"

	"github.com/xab-mack/devstatus/internal/model"
)

var (
	reDIA       = regexp.MustCompile(`DIA|DIAAddress|DIAOracle`)
	reChainlink = regexp.MustCompile(`AggregatorV3Interface|Chainlink`)
	rePriceDec  = regexp.MustCompile(`priceDecimals|feedDecimals|\b8\b|\b18\b`)
	reStaleCfg  = regexp.MustCompile(`(?i)stale|maxStaleness|staleness`)
)

// OracleChecks lists the detected feeds. Fallback order cannot be read from
// source text and stays Unknown.
type OracleChecks struct {
	Feeds         []string
	PriceDecimals model.Verdict
	Staleness     model.Verdict
	Fallback      model.Verdict
}

func (c OracleChecks) Checks() []model.NamedVerdict {
	return []model.NamedVerdict{
		{Name: "price_decimals", Verdict: c.PriceDecimals},
		{Name: "staleness", Verdict: c.Staleness},
		{Name: "fallback", Verdict: c.Fallback},
	}
}

// Oracles scans the hub and gateway together for price-feed providers.
func Oracles(hub, gateway Source) OracleChecks {
	c := OracleChecks{Feeds: []string{}}
	var combined string
	for _, src := range []Source{hub, gateway} {
		if src.Present {
			combined += src.Text + "\n"
		}
	}
	if combined == "" {
		return c
	}
	if reDIA.MatchString(combined) {
		c.Feeds = append(c.Feeds, "DIA")
	}
	if reChainlink.MatchString(combined) {
		c.Feeds = append(c.Feeds, "Chainlink")
	}
	if rePriceDec.MatchString(combined) {
		c.PriceDecimals = model.Text("8/18 supported")
	}
	if reStaleCfg.MatchString(combined) {
		c.Staleness = model.Text("configured")
	}
	return c
}
