package analyzers

import (
	"regexp"
	"strings"

	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/solidity"
)

const (
	pauseGuard        = "whenNotPaused"
	requestWithdrawFn = "requestWithdraw"
)

var (
	reDepositClaimGated = regexp.MustCompile(`(?s)(deposit|claimWithdraw).*whenNotPaused`)
	withdrawQueueTokens = []string{"withdrawDelay", "WithdrawRequested", "WithdrawClaimed"}
)

type PauseChecks struct {
	PauseSummary           model.Verdict
	RequestWithdrawAllowed model.Verdict
	DepositClaimGated      model.Verdict
	WithdrawQueue          model.Verdict
}

func (c PauseChecks) Checks() []model.NamedVerdict {
	return []model.NamedVerdict{
		{Name: "pause_summary", Verdict: c.PauseSummary},
		{Name: "request_withdraw_allowed", Verdict: c.RequestWithdrawAllowed},
		{Name: "deposit_claim_gated", Verdict: c.DepositClaimGated},
		{Name: "withdraw_queue", Verdict: c.WithdrawQueue},
	}
}

// PauseWithdraw inspects the hub's pause semantics. The withdraw request is
// judged on the first declaration of requestWithdraw, its body delimited by
// brace depth: Yes when it is callable and carries no pause guard, No/Unsure
// when the guard appears in its header or body.
func PauseWithdraw(hub Source) PauseChecks {
	var c PauseChecks
	if !hub.Present {
		return c
	}
	s := hub.Text
	if strings.Contains(s, "Pausable") || strings.Contains(s, pauseGuard) {
		c.PauseSummary = model.Text("Pausable present")
	} else {
		c.PauseSummary = model.Text("Absent")
	}

	if fn, ok := solidity.FindFunction(s, requestWithdrawFn); ok && fn.Callable() && fn.Body != "" {
		c.RequestWithdrawAllowed = model.YesIf(!fn.Mentions(pauseGuard))
	}

	if reDepositClaimGated.MatchString(s) {
		c.DepositClaimGated = model.Yes()
	}

	var found []string
	for _, tok := range withdrawQueueTokens {
		if strings.Contains(s, tok) {
			found = append(found, tok)
		}
	}
	switch {
	case len(found) == len(withdrawQueueTokens):
		c.WithdrawQueue = model.Text("Delay+events present")
	case len(found) > 0:
		c.WithdrawQueue = model.Text("Partial: " + strings.Join(found, ", "))
	}
	return c
}
