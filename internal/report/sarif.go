package report

import (
	"encoding/json"

	"github.com/xab-mack/devstatus/internal/model"
)

type sarif struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name string `json:"name"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}
type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}
type sarifArt struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// ToSARIF exports scanner findings for code-scanning dashboards.
func ToSARIF(findings []model.SecurityFinding) ([]byte, error) {
	results := []sarifResult{}
	for _, f := range findings {
		level := "note"
		switch f.Impact {
		case model.SeverityMedium:
			level = "warning"
		case model.SeverityHigh, model.SeverityCritical:
			level = "error"
		}
		r := sarifResult{
			RuleID:  f.Check,
			Level:   level,
			Message: sarifMessage{Text: f.Description},
		}
		if f.File != "" {
			loc := sarifLoc{Physical: sarifPhys{ArtifactLocation: sarifArt{URI: f.File}}}
			if f.Line > 0 {
				loc.Physical.Region = &sarifRegion{StartLine: f.Line}
			}
			r.Locations = []sarifLoc{loc}
		}
		if f.Fingerprint != "" {
			r.PartialFingerprints = map[string]string{"devstatus/v1": f.Fingerprint}
		}
		results = append(results, r)
	}
	s := sarif{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs:    []sarifRun{{Tool: sarifTool{Driver: sarifDriver{Name: "slither via devstatus"}}, Results: results}},
	}
	return json.MarshalIndent(s, "", "  ")
}
