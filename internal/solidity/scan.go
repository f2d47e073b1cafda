// Package solidity holds the lexical Solidity heuristics behind the fact
// records. Nothing here parses Solidity; every signal is a text pattern.
package solidity

import (
	"regexp"
	"sort"
	"strings"
)

const (
	roleGuardMarker    = "onlyRole("
	upgradeableBase    = "UUPSUpgradeable"
	authorizeUpgradeFn = "_authorizeUpgrade("
	functionDeclPrefix = "function "
)

var (
	reRoleGuard  = regexp.MustCompile(`onlyRole\(([^\)]+)\)`)
	reFuncName   = regexp.MustCompile(`^function\s+(\w+)`)
	reStorageGap = regexp.MustCompile(`__gap\s*;`)
)

// Roles returns the members of vocab that occur in src as whole words, sorted.
func Roles(src string, vocab []string) []string {
	var out []string
	for _, rn := range vocab {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(rn) + `\b`)
		if re.MatchString(src) {
			out = append(out, rn)
		}
	}
	sort.Strings(out)
	return dedupe(out)
}

// roleScan is the accumulator threaded through RoleFunctionMap: the role
// expressions of guard markers seen since the last function declaration,
// and the mapping built so far.
type roleScan struct {
	pending []string
	out     map[string][]string
}

func (s roleScan) step(line string) roleScan {
	trimmed := strings.TrimSpace(line)
	if strings.Contains(line, roleGuardMarker) {
		if m := reRoleGuard.FindStringSubmatch(trimmed); m != nil {
			s.pending = append(s.pending, strings.TrimSpace(m[1]))
		}
	}
	if !strings.HasPrefix(trimmed, functionDeclPrefix) {
		return s
	}
	m := reFuncName.FindStringSubmatch(trimmed)
	if m == nil {
		return s
	}
	if len(s.pending) > 0 {
		roles := dedupe(sortedCopy(s.pending))
		key := strings.Join(roles, ", ")
		s.out[key] = append(s.out[key], m[1])
	}
	s.pending = nil
	return s
}

// RoleFunctionMap associates each function declaration with the role guards
// seen on lines since the previous declaration, keyed by the sorted,
// comma-joined role expressions. The scan is line based and unaware of scope:
// a guard placed on a continuation line of a multi-line header is credited to
// the next function. Entries never hold an empty function list.
func RoleFunctionMap(src string) map[string][]string {
	s := roleScan{out: map[string][]string{}}
	for _, line := range strings.Split(src, "\n") {
		s = s.step(line)
	}
	for k, fns := range s.out {
		s.out[k] = dedupe(sortedCopy(fns))
	}
	return s.out
}

// IsUpgradeable reports a UUPS base contract or an authorize-upgrade hook.
func IsUpgradeable(src string) bool {
	return strings.Contains(src, upgradeableBase) || HasAuthorizeUpgradeHook(src)
}

func HasAuthorizeUpgradeHook(src string) bool {
	return strings.Contains(src, authorizeUpgradeFn)
}

func HasStorageGap(src string) bool {
	return reStorageGap.MatchString(src)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

// dedupe drops adjacent duplicates of a sorted slice.
func dedupe(in []string) []string {
	if len(in) < 2 {
		return in
	}
	out := in[:1]
	for _, s := range in[1:] {
		if s != out[len(out)-1] {
			out = append(out, s)
		}
	}
	return out
}
