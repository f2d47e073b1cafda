// Package locator resolves contract names to Solidity source files.
package locator

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/xab-mack/devstatus/internal/config"
	"github.com/xab-mack/devstatus/internal/model"
)

// Locator resolves each contract once per run. A declared path wins when the
// file exists; otherwise the first <name>.sol found under the source root is
// used. The fallback walk follows lexical directory order, which need not
// match another platform's glob order.
type Locator struct {
	root       string
	sourceRoot string
	table      map[model.ContractName]string

	mu    sync.Mutex
	cache map[model.ContractName]string
}

func New(root string, cfg config.Config) *Locator {
	table := make(map[model.ContractName]string, len(cfg.Contracts))
	for _, c := range cfg.Contracts {
		table[c.Name] = c.Path
	}
	return &Locator{
		root:       root,
		sourceRoot: filepath.Join(root, cfg.Layout.SourceRoot),
		table:      table,
		cache:      make(map[model.ContractName]string),
	}
}

// Locate returns the source path of name, or "" and false when none exists.
func (l *Locator) Locate(name model.ContractName) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.cache[name]; ok {
		return p, p != ""
	}
	p := l.resolve(name)
	l.cache[name] = p
	return p, p != ""
}

func (l *Locator) resolve(name model.ContractName) string {
	if rel, ok := l.table[name]; ok && rel != "" {
		p := filepath.Join(l.root, rel)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	want := string(name) + ".sol"
	var found string
	_ = filepath.WalkDir(l.sourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == want {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found
}

// Rel returns path relative to the project root, slash separated.
func (l *Locator) Rel(path string) string {
	if rel, err := filepath.Rel(l.root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}
