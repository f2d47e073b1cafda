package model

import "strings"

// ContractName identifies one contract of the enumerated suite.
type ContractName string

const (
	ContractHub                 ContractName = "Hub"
	ContractUSDzy               ContractName = "USDzy"
	ContractRouter              ContractName = "Router"
	ContractSpokeVault          ContractName = "SpokeVault"
	ContractFactory             ContractName = "Factory"
	ContractMessagingEndpoint   ContractName = "MessagingEndpointReceiver"
	ContractRemoteMinter        ContractName = "USDzyRemoteMinter"
	ContractLocalDepositGateway ContractName = "LocalDepositGateway"
	ContractPolicyBeacon        ContractName = "PolicyBeacon"
	ContractPpsMirror           ContractName = "PpsMirror"
	ContractZPXArb              ContractName = "ZPXArb"
	ContractMintGateArb         ContractName = "MintGate_Arb"
	ContractZPXRewarder         ContractName = "ZPXRewarder"
)

type Severity string

const (
	SeverityInformational Severity = "informational"
	SeverityLow           Severity = "low"
	SeverityMedium        Severity = "medium"
	SeverityHigh          Severity = "high"
	SeverityCritical      Severity = "critical"
)

// ParseSeverity maps a scanner impact tag ("High", "medium", ...) onto a Severity.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(SeverityCritical):
		return SeverityCritical
	case string(SeverityHigh):
		return SeverityHigh
	case string(SeverityMedium):
		return SeverityMedium
	case string(SeverityLow):
		return SeverityLow
	default:
		return SeverityInformational
	}
}

func SeverityGTE(a, b Severity) bool {
	order := map[Severity]int{SeverityInformational: 0, SeverityLow: 1, SeverityMedium: 2, SeverityHigh: 3, SeverityCritical: 4}
	return order[a] >= order[b]
}

// ABIEntry is one element of a compiled contract ABI, kept in artifact order.
type ABIEntry struct {
	Type            string `json:"type"`
	Name            string `json:"name,omitempty"`
	StateMutability string `json:"stateMutability,omitempty"`
}

// FunctionSig is a callable function derived from the ABI.
type FunctionSig struct {
	Name      string `json:"name"`
	Signature string `json:"signature"`
	Selector  string `json:"selector"`
}

type ContractFacts struct {
	Name ContractName `json:"name"`
	Path string       `json:"path,omitempty"`

	// ABI is nil when introspection was unavailable.
	ABI        []ABIEntry        `json:"abi,omitempty"`
	Methods    map[string]string `json:"methods,omitempty"`
	Events     []string          `json:"events"`
	Functions  []string          `json:"functions"`
	Signatures []FunctionSig     `json:"signatures,omitempty"`
	Roles      []string          `json:"roles"`

	// RoleFunctionMap keys are comma-joined role expressions; values are never empty.
	RoleFunctionMap         map[string][]string `json:"roleFunctionMap"`
	IsUpgradeable           bool                `json:"isUpgradeable"`
	HasAuthorizeUpgradeHook bool                `json:"hasAuthorizeUpgradeHook"`
	HasStorageGapMarker     bool                `json:"hasStorageGapMarker"`
}

// Located reports whether a source file was resolved for the contract.
func (f ContractFacts) Located() bool { return f.Path != "" }

// Introspected reports whether ABI introspection produced entries.
func (f ContractFacts) Introspected() bool { return f.ABI != nil }

// SecurityFinding is one normalized static-scanner result.
type SecurityFinding struct {
	Check       string   `json:"check"`
	Impact      Severity `json:"impact"`
	Confidence  string   `json:"confidence"`
	Description string   `json:"description"`
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Fingerprint string   `json:"fingerprint"`
}

type TestInventory struct {
	Files       []string `json:"files"`
	Domains     []string `json:"domains"`
	ApproxCount int      `json:"approxCount"`
}

// EnvVar is an environment variable read by a deployment script.
type EnvVar struct {
	Name   string `json:"name"`
	UsedIn string `json:"usedIn"`
}

// Tooling lists the version string of each detected external tool, "absent" otherwise.
type Tooling struct {
	Forge   string `json:"forge"`
	Cast    string `json:"cast"`
	Solc    string `json:"solc"`
	Slither string `json:"slither"`
}

type RunRequest struct {
	Root        string
	RunGas      bool
	SkipBuild   bool
	SkipSlither bool
}

// StorageStatus is the outcome of comparing a storage layout with its baseline.
type StorageStatus string

const (
	StorageNoChanges       StorageStatus = "No changes"
	StorageSnapshotCreated StorageStatus = "Snapshot created"
	StorageUnknown         StorageStatus = "Unknown"
)

// StorageChanges is the drift status for the named contract.
func StorageChanges(name ContractName) StorageStatus {
	return StorageStatus("Changes in " + string(name))
}
