package engine

import (
	"sort"

	"github.com/xab-mack/devstatus/internal/model"
)

// calibrateFindings merges findings reported more than once for the same
// check and location, keeping the highest impact, and sorts the result.
func calibrateFindings(in []model.SecurityFinding) []model.SecurityFinding {
	type key struct {
		file  string
		line  int
		check string
	}
	index := map[key]int{}
	var out []model.SecurityFinding
	for _, f := range in {
		k := key{file: f.File, line: f.Line, check: f.Check}
		i, seen := index[k]
		if !seen {
			index[k] = len(out)
			out = append(out, f)
			continue
		}
		if !model.SeverityGTE(out[i].Impact, f.Impact) {
			out[i].Impact = f.Impact
		}
	}
	sortFindings(out)
	return out
}

// sortFindings orders by impact, highest first, then location and check.
func sortFindings(fs []model.SecurityFinding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Impact != b.Impact {
			return model.SeverityGTE(a.Impact, b.Impact)
		}
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Check < b.Check
	})
}
