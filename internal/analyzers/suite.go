// Package analyzers holds the subsystem analyzers. Each one is a pure
// function of source texts returning a typed record of verdicts, so check
// names are fields rather than map keys.
package analyzers

import (
	"sync"

	"github.com/xab-mack/devstatus/internal/model"
)

// Report collects every analyzer's record.
type Report struct {
	Fees      FeeChecks
	Factory   FactoryChecks
	Messaging MessagingChecks
	Gateway   GatewayChecks
	Pause     PauseChecks
	Oracles   OracleChecks
	Security  []string
}

// RunAll runs the analyzers concurrently. They share only the read-only
// sources and each writes its own field, so the join is the WaitGroup.
func RunAll(src Sources, order []model.ContractName) Report {
	var (
		r  Report
		wg sync.WaitGroup
	)
	run := func(f func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f()
		}()
	}
	run(func() { r.Fees = FeeInvariants(src.Get(model.ContractRouter)) })
	run(func() { r.Factory = FactoryHygiene(src.Get(model.ContractFactory)) })
	run(func() {
		r.Messaging = MessagingReplay(src.Get(model.ContractMessagingEndpoint), src.Get(model.ContractRemoteMinter))
	})
	run(func() {
		r.Gateway = GatewayPolicyPrice(
			src.Get(model.ContractLocalDepositGateway),
			src.Get(model.ContractPolicyBeacon),
			src.Get(model.ContractPpsMirror),
			src.Get(model.ContractHub),
		)
	})
	run(func() { r.Pause = PauseWithdraw(src.Get(model.ContractHub)) })
	run(func() { r.Oracles = Oracles(src.Get(model.ContractHub), src.Get(model.ContractLocalDepositGateway)) })
	run(func() { r.Security = SecurityNotes(order, src) })
	wg.Wait()
	return r
}
