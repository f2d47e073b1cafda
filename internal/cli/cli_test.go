package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/engine"
	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/tools"
)

// offlineToolchain behaves like a machine with no Foundry install except for
// a canned slither result.
type offlineToolchain struct {
	findings []model.SecurityFinding
}

func (offlineToolchain) Introspect(context.Context, model.ContractName, tools.Facet) (tools.Output, error) {
	return tools.Output{}, tools.ErrToolAbsent
}

func (offlineToolchain) DetectAll(context.Context) model.Tooling {
	return model.Tooling{Forge: "absent", Cast: "absent", Solc: "absent", Slither: "absent"}
}

func (offlineToolchain) Build(context.Context) (bool, string) { return false, "" }

func (offlineToolchain) GasReport(context.Context) (string, error) { return "", tools.ErrToolAbsent }

func (o offlineToolchain) RunSecurityScan(context.Context) ([]model.SecurityFinding, error) {
	if o.findings == nil {
		return nil, tools.ErrToolAbsent
	}
	return o.findings, nil
}

func useToolchain(t *testing.T, tc engine.Toolchain) {
	t.Helper()
	prev := newToolchain
	newToolchain = func(string, config.Config, *zap.Logger) engine.Toolchain { return tc }
	t.Cleanup(func() { newToolchain = prev })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "devstatus", SilenceUsage: true, SilenceErrors: true}
	AddCommands(root)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestInit_WritesDefaultsAndRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "init", "-d", dir)
	require.NoError(t, err)
	assert.Contains(t, out, config.FileName)

	cfg, path, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.FileName), path)
	assert.Equal(t, config.Default().Layout, cfg.Layout)

	_, err = execute(t, "init", "-d", dir)
	assert.ErrorContains(t, err, "already exists")

	_, err = execute(t, "init", "-d", dir, "--force")
	assert.NoError(t, err)
}

func TestContractsList(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "hub", "Hub.sol"), "contract Hub {}")

	out, err := execute(t, "contracts", "list", root)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(config.Default().Contracts)+1)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))

	var hub, router string
	for _, l := range lines[1:] {
		switch strings.Fields(l)[0] {
		case string(model.ContractHub):
			hub = l
		case string(model.ContractRouter):
			router = l
		}
	}
	assert.Contains(t, hub, "src/hub/Hub.sol")
	assert.Contains(t, router, "not found")
}

func TestGenerate_WritesDocuments(t *testing.T) {
	useToolchain(t, offlineToolchain{})
	root := t.TempDir()

	out, err := execute(t, "generate", root, "--no-build", "--no-slither")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote")

	cfg := config.Default()
	status, err := os.ReadFile(filepath.Join(root, cfg.Layout.DocsDir, cfg.Layout.StatusFile))
	require.NoError(t, err)
	assert.Contains(t, string(status), "## Tooling")
	assert.Contains(t, string(status), "## Gaps & Action Items")

	checklist, err := os.ReadFile(filepath.Join(root, cfg.Layout.DocsDir, cfg.Layout.ChecklistFile))
	require.NoError(t, err)
	assert.Contains(t, string(checklist), "| Area |")
}

func TestGenerate_JSONOutput(t *testing.T) {
	useToolchain(t, offlineToolchain{})
	root := t.TempDir()

	out, err := execute(t, "generate", root, "--no-build", "--no-slither", "--json")
	require.NoError(t, err)

	start := strings.Index(out, "{")
	require.GreaterOrEqual(t, start, 0)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out[start:]), &decoded))
	assert.Contains(t, decoded, "contracts")
	assert.Nil(t, decoded["security"])
}

func TestGenerate_ExportsAndAcceptsFindings(t *testing.T) {
	useToolchain(t, offlineToolchain{findings: []model.SecurityFinding{
		{Check: "reentrancy-eth", Impact: model.SeverityHigh, Description: "Reentrancy in Hub.withdraw()", File: "src/hub/Hub.sol", Line: 3, Fingerprint: "fp-1"},
		{Check: "naming-convention", Impact: model.SeverityInformational, File: "src/hub/Hub.sol", Line: 9, Fingerprint: "fp-2"},
	}})
	root := t.TempDir()
	sarifPath := filepath.Join(root, "slither.sarif")

	_, err := execute(t, "generate", root, "--no-build", "--sarif-out", sarifPath, "--accept-findings")
	require.NoError(t, err)

	sarif, err := os.ReadFile(sarifPath)
	require.NoError(t, err)
	assert.Contains(t, string(sarif), "reentrancy-eth")
	assert.NotContains(t, string(sarif), "naming-convention")

	baseline, err := os.ReadFile(filepath.Join(root, config.Default().SecurityBaseline))
	require.NoError(t, err)
	var accepted []string
	require.NoError(t, json.Unmarshal(baseline, &accepted))
	assert.Equal(t, []string{"fp-1"}, accepted)

	// the accepted finding no longer appears on the next run
	_, err = execute(t, "generate", root, "--no-build")
	require.NoError(t, err)
	status, err := os.ReadFile(filepath.Join(root, "docs", config.Default().Layout.StatusFile))
	require.NoError(t, err)
	assert.NotContains(t, string(status), "reentrancy-eth")
	assert.Contains(t, string(status), "Slither Medium/High: none")
}
