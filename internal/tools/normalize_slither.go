package tools

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xab-mack/devstatus/internal/model"
	"github.com/xab-mack/devstatus/internal/util"
)

// Slither JSON (simplified)
type slitherLocation struct {
	Filename         string `json:"filename"`
	FilenameRelative string `json:"filename_relative"`
	Lines            []int  `json:"lines"`
}
type slitherDetection struct {
	Check       string `json:"check"`
	Impact      string `json:"impact"`
	Severity    string `json:"severity"`
	Confidence  string `json:"confidence"`
	Description string `json:"description"`
	Elements    []struct {
		SourceMapping slitherLocation `json:"source_mapping"`
	} `json:"elements"`
}
type slitherOut struct {
	Success bool                       `json:"success"`
	Error   *string                    `json:"error"`
	Results map[string]json.RawMessage `json:"results"`
}

func normalizeSlither(raw []byte) ([]model.SecurityFinding, error) {
	var o slitherOut
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, err
	}
	if o.Error != nil && *o.Error != "" {
		return nil, errors.New(*o.Error)
	}
	// every list under results is a detector family; walk them in key order
	keys := make([]string, 0, len(o.Results))
	for k := range o.Results {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []model.SecurityFinding
	for _, k := range keys {
		var ds []slitherDetection
		if err := json.Unmarshal(o.Results[k], &ds); err != nil {
			continue
		}
		for _, d := range ds {
			impact := d.Impact
			if impact == "" {
				impact = d.Severity
			}
			if impact == "" {
				continue
			}
			file, line := "", 0
			if len(d.Elements) > 0 {
				sm := d.Elements[0].SourceMapping
				file = sm.FilenameRelative
				if file == "" {
					file = sm.Filename
				}
				if len(sm.Lines) > 0 {
					line = sm.Lines[0]
				}
			}
			file = filepath.ToSlash(file)
			name := d.Check
			if name == "" {
				name = firstLine(d.Description)
			}
			if name == "" {
				name = "finding"
			}
			out = append(out, model.SecurityFinding{
				Check:       name,
				Impact:      model.ParseSeverity(impact),
				Confidence:  d.Confidence,
				Description: strings.TrimSpace(d.Description),
				File:        file,
				Line:        line,
				Fingerprint: util.Fingerprint(name, file, line, firstLine(d.Description)),
			})
		}
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
