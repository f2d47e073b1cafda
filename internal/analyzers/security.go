package analyzers

import (
	"strings"

	"github.com/xab-mack/devstatus/internal/model"
)

// SecurityNotes lists reentrancy-guard and SafeERC20 usage per contract, in
// the order given.
func SecurityNotes(order []model.ContractName, src Sources) []string {
	var out []string
	for _, name := range order {
		s := src.Get(name)
		if !s.Present {
			continue
		}
		if strings.Contains(s.Text, "nonReentrant") || strings.Contains(s.Text, "ReentrancyGuard") {
			out = append(out, string(name)+": nonReentrant present")
		}
		if strings.Contains(s.Text, "SafeERC20") {
			out = append(out, string(name)+": SafeERC20 used")
		}
	}
	return out
}
