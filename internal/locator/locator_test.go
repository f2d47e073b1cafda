package locator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/model"
)

func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLocate_DeclaredPathWins(t *testing.T) {
	root := t.TempDir()
	declared := writeFile(t, root, "src/router/Router.sol", "contract Router {}")
	writeFile(t, root, "src/a/Router.sol", "contract Router {}")

	l := New(root, config.Default())
	p, ok := l.Locate(model.ContractRouter)
	require.True(t, ok)
	assert.Equal(t, declared, p)
	assert.Equal(t, "src/router/Router.sol", l.Rel(p))
}

func TestLocate_GlobFallback(t *testing.T) {
	root := t.TempDir()
	moved := writeFile(t, root, "src/core/deep/Hub.sol", "contract Hub {}")

	l := New(root, config.Default())
	p, ok := l.Locate(model.ContractHub)
	require.True(t, ok)
	assert.Equal(t, moved, p)
}

func TestLocate_AbsentAndCached(t *testing.T) {
	root := t.TempDir()
	l := New(root, config.Default())
	_, ok := l.Locate(model.ContractFactory)
	assert.False(t, ok)

	// resolution is fixed for the run even if the file appears later
	writeFile(t, root, "src/factory/Factory.sol", "contract Factory {}")
	_, ok = l.Locate(model.ContractFactory)
	assert.False(t, ok)

	fresh := New(root, config.Default())
	_, ok = fresh.Locate(model.ContractFactory)
	assert.True(t, ok)
}

func TestLocate_UnknownNameUsesGlobOnly(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "src/extra/Vault.sol", "contract Vault {}")
	l := New(root, config.Default())
	got, ok := l.Locate(model.ContractName("Vault"))
	require.True(t, ok)
	assert.Equal(t, p, got)
}
