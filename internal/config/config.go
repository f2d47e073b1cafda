package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xab-mack/devstatus/internal/model"
)

const FileName = ".devstatus.yaml"

type IgnoreRule struct {
	Check  string `yaml:"check"`
	Path   string `yaml:"path"`
	Reason string `yaml:"reason"`
}

// ContractEntry maps a contract name to its conventional source path.
type ContractEntry struct {
	Name model.ContractName `yaml:"name"`
	Path string             `yaml:"path"`
}

type Tools struct {
	Forge     string `yaml:"forge"`
	Cast      string `yaml:"cast"`
	Solc      string `yaml:"solc"`
	Slither   string `yaml:"slither"`
	TimeoutMs int    `yaml:"timeoutMs"`
}

type Layout struct {
	SourceRoot    string `yaml:"sourceRoot"`
	TestDir       string `yaml:"testDir"`
	ScriptDir     string `yaml:"scriptDir"`
	StorageDir    string `yaml:"storageDir"`
	SnapshotsDir  string `yaml:"snapshotsDir"`
	DocsDir       string `yaml:"docsDir"`
	StatusFile    string `yaml:"statusFile"`
	ChecklistFile string `yaml:"checklistFile"`
	ParityFile    string `yaml:"parityFile"`
}

type Config struct {
	Project     string          `yaml:"project"`
	Contracts   []ContractEntry `yaml:"contracts"`
	Roles       []string        `yaml:"roles"`
	TestDomains []string        `yaml:"testDomains"`
	Layout      Layout          `yaml:"layout"`
	Tools       Tools           `yaml:"tools"`
	Ignore      []IgnoreRule    `yaml:"ignore"`

	// SecurityBaseline lists accepted scanner findings by fingerprint,
	// relative to the project root.
	SecurityBaseline string `yaml:"securityBaseline"`
}

func Default() Config {
	return Config{
		Project: "ZPX-LP-Vaults",
		Contracts: []ContractEntry{
			{Name: model.ContractHub, Path: "src/Hub.sol"},
			{Name: model.ContractUSDzy, Path: "src/USDzy.sol"},
			{Name: model.ContractRouter, Path: "src/router/Router.sol"},
			{Name: model.ContractSpokeVault, Path: "src/spoke/SpokeVault.sol"},
			{Name: model.ContractFactory, Path: "src/factory/Factory.sol"},
			{Name: model.ContractMessagingEndpoint, Path: "src/messaging/MessagingEndpointReceiver.sol"},
			{Name: model.ContractRemoteMinter, Path: "src/usdzy/USDzyRemoteMinter.sol"},
			{Name: model.ContractLocalDepositGateway, Path: "src/gateway/LocalDepositGateway.sol"},
			{Name: model.ContractPolicyBeacon, Path: "src/policy/PolicyBeacon.sol"},
			{Name: model.ContractPpsMirror, Path: "src/pps/PpsMirror.sol"},
			{Name: model.ContractZPXArb, Path: "src/zpx/ZPXArb.sol"},
			{Name: model.ContractMintGateArb, Path: "src/zpx/MintGate_Arb.sol"},
			{Name: model.ContractZPXRewarder, Path: "src/zpx/ZPXRewarder.sol"},
		},
		Roles: []string{
			"DEFAULT_ADMIN_ROLE",
			"PAUSER_ROLE",
			"KEEPER_ROLE",
			"BORROWER_ROLE",
			"MINTER_ROLE",
			"BURNER_ROLE",
			"GATEWAY_ROLE",
			"REBALANCER_ROLE",
			"RELAYER_ROLE",
			"UPGRADER_ROLE",
		},
		TestDomains: []string{"router", "factory", "messaging", "spoke", "hub", "gateway", "policy", "pps", "upgrade", "zpx", "usdzy"},
		Layout: Layout{
			SourceRoot:    "src",
			TestDir:       "test",
			ScriptDir:     "script",
			StorageDir:    "storage",
			SnapshotsDir:  filepath.Join("storage", "snapshots"),
			DocsDir:       "docs",
			StatusFile:    "DEV_STATUS_VAULTS.md",
			ChecklistFile: "CHECKLIST_EXPECTED.md",
			ParityFile:    ".zpx-repos.json",
		},
		Tools:            Tools{Forge: "forge", Cast: "cast", Solc: "solc", Slither: "slither", TimeoutMs: 120000},
		SecurityBaseline: ".devstatus-baseline.json",
	}
}

// Timeout is the bound applied to every external tool invocation.
func (c Config) Timeout() time.Duration {
	if c.Tools.TimeoutMs <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.Tools.TimeoutMs) * time.Millisecond
}

// ContractNames returns the enumeration order used for every rendered listing.
func (c Config) ContractNames() []model.ContractName {
	out := make([]model.ContractName, 0, len(c.Contracts))
	for _, e := range c.Contracts {
		out = append(out, e.Name)
	}
	return out
}

// Load searches upwards from startDir for .devstatus.yaml and merges it over
// the defaults. It returns the path of the file used, empty when none exists.
func Load(startDir string) (Config, string, error) {
	cfg := Default()
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	// best effort; forge projects usually keep RPC keys and tool paths in .env
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	path := ""
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			b, err := os.ReadFile(candidate)
			if err != nil {
				return cfg, candidate, err
			}
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return cfg, candidate, fmt.Errorf("parse %s: %w", candidate, err)
			}
			path = candidate
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	applyEnv(&cfg)
	return cfg, path, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DEVSTATUS_FORGE"); v != "" {
		cfg.Tools.Forge = v
	}
	if v := os.Getenv("DEVSTATUS_SLITHER"); v != "" {
		cfg.Tools.Slither = v
	}
	if v := os.Getenv("DEVSTATUS_TIMEOUT_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Tools.TimeoutMs = ms
		}
	}
}

// Marshal renders cfg as YAML for `devstatus init`.
func Marshal(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
