package tools

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/model"
)

// fakeRunner answers invocations from a table keyed by "tool arg1 arg2 ...".
type fakeRunner struct {
	answers map[string]Result
	calls   []string
	onCall  func(args []string)
}

func (f *fakeRunner) run(ctx context.Context, dir, tool string, args ...string) Result {
	key := strings.TrimSpace(tool + " " + strings.Join(args, " "))
	f.calls = append(f.calls, key)
	if f.onCall != nil {
		f.onCall(args)
	}
	if r, ok := f.answers[key]; ok {
		r.Tool = tool
		return r
	}
	return Result{Tool: tool, Err: ErrToolAbsent}
}

func newTestBridge(t *testing.T, f *fakeRunner) (*Bridge, string) {
	t.Helper()
	root := t.TempDir()
	return NewBridge(root, config.Default(), WithRunner(f.run)), root
}

func TestIntrospect_DecodesJSON(t *testing.T) {
	f := &fakeRunner{answers: map[string]Result{
		"forge inspect Hub abi": {Stdout: []byte(`[{"type":"function","name":"pause"}]`)},
	}}
	b, _ := newTestBridge(t, f)
	out, err := b.Introspect(context.Background(), model.ContractHub, FacetABI)
	require.NoError(t, err)
	assert.True(t, out.JSON)
	list, ok := out.Value.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestIntrospect_RawTextFallback(t *testing.T) {
	f := &fakeRunner{answers: map[string]Result{
		"forge inspect Hub methods": {Stdout: []byte("| Method | Identifier |\n")},
	}}
	b, _ := newTestBridge(t, f)
	out, err := b.Introspect(context.Background(), model.ContractHub, FacetMethods)
	require.NoError(t, err)
	assert.False(t, out.JSON)
	assert.Equal(t, "| Method | Identifier |", out.Raw)
}

func TestIntrospect_AbsentAndFailed(t *testing.T) {
	f := &fakeRunner{answers: map[string]Result{
		"forge inspect Router abi": {ExitCode: 1, Err: ErrToolFailed},
		"forge inspect Hub abi":    {Stdout: []byte("   ")},
	}}
	b, _ := newTestBridge(t, f)

	_, err := b.Introspect(context.Background(), model.ContractRouter, FacetABI)
	assert.ErrorIs(t, err, ErrToolFailed)

	_, err = b.Introspect(context.Background(), model.ContractFactory, FacetABI)
	assert.ErrorIs(t, err, ErrToolAbsent)

	_, err = b.Introspect(context.Background(), model.ContractHub, FacetABI)
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestDetectAll(t *testing.T) {
	f := &fakeRunner{answers: map[string]Result{
		"forge --version": {Stdout: []byte("forge 1.2.3 (abc)\n")},
		"solc --version":  {Stderr: []byte("solc, the solidity compiler\n")},
	}}
	b, _ := newTestBridge(t, f)
	tooling := b.DetectAll(context.Background())
	assert.Equal(t, model.Tooling{
		Forge:   "forge 1.2.3 (abc)",
		Cast:    "absent",
		Solc:    "solc, the solidity compiler",
		Slither: "absent",
	}, tooling)
}

func TestBuild_ReportsFailureButKeepsOutput(t *testing.T) {
	f := &fakeRunner{answers: map[string]Result{
		"forge clean": {},
		"forge build": {Stdout: []byte("Warning: unused variable"), Err: ErrToolFailed},
	}}
	b, _ := newTestBridge(t, f)
	ok, out := b.Build(context.Background())
	assert.False(t, ok)
	assert.Contains(t, out, "Warning: unused variable")
	assert.Equal(t, []string{"forge clean", "forge build"}, f.calls)
}

const slitherJSON = `{
  "success": true,
  "error": null,
  "results": {
    "detectors": [
      {"check": "reentrancy-eth", "impact": "High", "confidence": "Medium",
       "description": "Reentrancy in Hub.withdraw()\nmore",
       "elements": [{"source_mapping": {"filename_relative": "src/Hub.sol", "lines": [88, 89]}}]},
      {"check": "naming-convention", "impact": "Informational", "confidence": "High",
       "description": "Parameter _x is not in mixedCase", "elements": []}
    ]
  }
}`

func TestRunSecurityScan_ReadsAndRemovesReport(t *testing.T) {
	f := &fakeRunner{}
	b, root := newTestBridge(t, f)
	reportPath := filepath.Join(root, slitherReportName)
	f.answers = map[string]Result{"slither . --json " + reportPath: {}}
	f.onCall = func(args []string) {
		if len(args) == 3 && args[1] == "--json" {
			require.NoError(t, os.WriteFile(args[2], []byte(slitherJSON), 0o644))
		}
	}

	findings, err := b.RunSecurityScan(context.Background())
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, "reentrancy-eth", findings[0].Check)
	assert.Equal(t, model.SeverityHigh, findings[0].Impact)
	assert.Equal(t, "src/Hub.sol", findings[0].File)
	assert.Equal(t, 88, findings[0].Line)
	assert.NotEmpty(t, findings[0].Fingerprint)
	assert.Equal(t, model.SeverityInformational, findings[1].Impact)

	_, statErr := os.Stat(reportPath)
	assert.True(t, os.IsNotExist(statErr), "transient report must be deleted")
}

func TestRunSecurityScan_NonzeroExitIsSkipped(t *testing.T) {
	f := &fakeRunner{}
	b, root := newTestBridge(t, f)
	reportPath := filepath.Join(root, slitherReportName)
	f.answers = map[string]Result{"slither . --json " + reportPath: {ExitCode: 255, Err: ErrToolFailed}}
	f.onCall = func(args []string) {
		_ = os.WriteFile(reportPath, []byte("{}"), 0o644)
	}
	findings, err := b.RunSecurityScan(context.Background())
	assert.ErrorIs(t, err, ErrToolFailed)
	assert.Nil(t, findings)
	_, statErr := os.Stat(reportPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunSecurityScan_MalformedReport(t *testing.T) {
	f := &fakeRunner{}
	b, root := newTestBridge(t, f)
	reportPath := filepath.Join(root, slitherReportName)
	f.answers = map[string]Result{"slither . --json " + reportPath: {}}
	f.onCall = func(args []string) {
		_ = os.WriteFile(reportPath, []byte("not json"), 0o644)
	}
	_, err := b.RunSecurityScan(context.Background())
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestRunWithTimeout_Classification(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a POSIX shell")
	}
	ctx := context.Background()

	res := RunWithTimeout(ctx, t.TempDir(), "devstatus-no-such-binary")
	assert.ErrorIs(t, res.Err, ErrToolAbsent)

	res = RunWithTimeout(ctx, t.TempDir(), "sh", "-c", "echo out; echo err >&2; exit 3")
	assert.ErrorIs(t, res.Err, ErrToolFailed)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "out\n", string(res.Stdout))
	assert.Equal(t, "err\n", string(res.Stderr))

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	res = RunWithTimeout(short, t.TempDir(), "sh", "-c", "sleep 5")
	assert.ErrorIs(t, res.Err, ErrToolAbsent)
}
