// Package facts builds the per-contract fact records from compiler
// introspection and source scanning.
package facts

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/solidity"
	"github.com/xab-mack/devstatus/internal/tools"
)

// Locator resolves a contract to its source file.
type Locator interface {
	Locate(name model.ContractName) (string, bool)
}

type Extractor struct {
	locator    Locator
	introspect tools.Introspector
	roles      []string
	logger     *zap.Logger
}

func NewExtractor(l Locator, in tools.Introspector, roles []string, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{locator: l, introspect: in, roles: roles, logger: logger}
}

// Empty is the record of a contract nothing is known about.
func Empty(name model.ContractName) model.ContractFacts {
	return model.ContractFacts{
		Name:            name,
		Events:          []string{},
		Functions:       []string{},
		Roles:           []string{},
		RoleFunctionMap: map[string][]string{},
	}
}

// Extract never fails: every collaborator problem leaves the affected
// fields empty. A contract without a source file yields Empty(name).
func (e *Extractor) Extract(ctx context.Context, name model.ContractName) model.ContractFacts {
	info := Empty(name)
	path, ok := e.locator.Locate(name)
	if !ok {
		e.logger.Debug("contract source not found", zap.String("contract", string(name)))
		return info
	}
	info.Path = path

	if out, err := e.introspect.Introspect(ctx, name, tools.FacetABI); err != nil {
		e.logger.Debug("abi unavailable", zap.String("contract", string(name)), zap.Error(err))
	} else if out.JSON {
		abiFacts, err := solidity.DecodeABI(out.Raw)
		if err != nil {
			e.logger.Warn("abi unparsable", zap.String("contract", string(name)), zap.Error(err))
		} else {
			info.ABI = abiFacts.Entries
			info.Events = abiFacts.Events
			info.Functions = abiFacts.Functions
			info.Signatures = abiFacts.Signatures
		}
	}
	if out, err := e.introspect.Introspect(ctx, name, tools.FacetMethods); err == nil && out.JSON {
		if methods, err := solidity.DecodeMethods(out.Raw); err == nil {
			info.Methods = methods
		}
	}

	b, err := os.ReadFile(path)
	if err != nil {
		e.logger.Warn("contract source unreadable", zap.String("contract", string(name)), zap.String("path", path), zap.Error(err))
		return info
	}
	src := string(b)
	if roles := solidity.Roles(src, e.roles); roles != nil {
		info.Roles = roles
	}
	info.RoleFunctionMap = solidity.RoleFunctionMap(src)
	info.IsUpgradeable = solidity.IsUpgradeable(src)
	info.HasAuthorizeUpgradeHook = solidity.HasAuthorizeUpgradeHook(src)
	info.HasStorageGapMarker = solidity.HasStorageGap(src)
	return info
}
