package engine

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"time"

	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/util"
)

// baseline holds the fingerprints of accepted scanner findings. The file is
// either a bare JSON array of fingerprints or this struct.
type baseline struct {
	GeneratedAt  time.Time       `json:"generatedAt"`
	Fingerprints map[string]bool `json:"fingerprints"`
}

// loadBaseline treats a missing file as an empty baseline.
func loadBaseline(path string) (baseline, error) {
	b := baseline{Fingerprints: map[string]bool{}}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return b, err
	}
	var fp []string
	if err := json.Unmarshal(data, &fp); err == nil {
		for _, f := range fp {
			b.Fingerprints[f] = true
		}
		return b, nil
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return baseline{Fingerprints: map[string]bool{}}, err
	}
	if b.Fingerprints == nil {
		b.Fingerprints = map[string]bool{}
	}
	return b, nil
}

func filterByBaseline(findings []model.SecurityFinding, b baseline) []model.SecurityFinding {
	if len(b.Fingerprints) == 0 {
		return findings
	}
	var out []model.SecurityFinding
	for _, f := range findings {
		if f.Fingerprint != "" && b.Fingerprints[f.Fingerprint] {
			continue
		}
		out = append(out, f)
	}
	return out
}

// WriteBaseline adds the given findings to the accepted set at path; later
// runs no longer list them.
func WriteBaseline(path string, findings []model.SecurityFinding) error {
	existing, err := loadBaseline(path)
	if err != nil {
		return err
	}
	seen := existing.Fingerprints
	for _, f := range findings {
		if f.Fingerprint != "" {
			seen[f.Fingerprint] = true
		}
	}
	arr := make([]string, 0, len(seen))
	for k := range seen {
		arr = append(arr, k)
	}
	sort.Strings(arr)
	data, err := json.MarshalIndent(arr, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, append(data, '\n'), 0o644)
}
