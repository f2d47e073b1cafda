// Package inventory surveys the test suite and deployment scripts.
package inventory

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/xab-mack/devstatus/internal/model"
)

const (
	testSuffix   = ".t.sol"
	scriptSuffix = ".s.sol"
)

var (
	reTestFunc = regexp.MustCompile(`function\s+test`)
	reEnvRead  = regexp.MustCompile(`env(Addr(?:ess)?|Uint|Int|String|Bytes32|Bool)?\("([A-Z0-9_]+)"\)`)
)

type Scanner struct {
	root    string
	domains []string
	logger  *zap.Logger
}

func NewScanner(root string, domains []string, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{root: root, domains: domains, logger: logger}
}

// Tests lists the test files under dir, infers the covered domains from their
// paths and counts test functions. A missing directory is an empty inventory.
func (s *Scanner) Tests(dir string) model.TestInventory {
	inv := model.TestInventory{Files: []string{}, Domains: []string{}}
	paths := s.find(dir, testSuffix)
	for _, p := range paths {
		inv.Files = append(inv.Files, s.rel(p))
	}
	for _, d := range s.domains {
		if coversDomain(inv.Files, d) {
			inv.Domains = append(inv.Domains, d)
		}
	}
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			s.logger.Debug("test file unreadable", zap.String("path", p), zap.Error(err))
			continue
		}
		inv.ApproxCount += len(reTestFunc.FindAllIndex(b, -1))
	}
	return inv
}

// coversDomain matches a domain as a path segment or by its capitalized form
// anywhere in a path, so test/router/Fees.t.sol and test/RouterFees.t.sol both count.
func coversDomain(files []string, domain string) bool {
	segment := "/" + domain + "/"
	title := capitalize(domain)
	for _, f := range files {
		if strings.Contains("/"+f, segment) || strings.Contains(f, title) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// DeployEnv collects the environment variables read by deployment scripts,
// sorted by name. A variable read by several scripts keeps the last one in
// path order.
func (s *Scanner) DeployEnv(dir string) []model.EnvVar {
	used := map[string]string{}
	for _, p := range s.find(dir, scriptSuffix) {
		b, err := os.ReadFile(p)
		if err != nil {
			s.logger.Debug("script unreadable", zap.String("path", p), zap.Error(err))
			continue
		}
		for _, m := range reEnvRead.FindAllSubmatch(b, -1) {
			used[string(m[2])] = s.rel(p)
		}
	}
	names := make([]string, 0, len(used))
	for n := range used {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]model.EnvVar, 0, len(names))
	for _, n := range names {
		out = append(out, model.EnvVar{Name: n, UsedIn: used[n]})
	}
	return out
}

// find returns the files under root/dir ending in suffix, sorted.
func (s *Scanner) find(dir, suffix string) []string {
	var out []string
	base := filepath.Join(s.root, dir)
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == base {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			out = append(out, path)
		}
		return nil
	})
	sort.Strings(out)
	return out
}

func (s *Scanner) rel(path string) string {
	r, err := filepath.Rel(s.root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}
