package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerdict_ZeroValueIsUnknown(t *testing.T) {
	var v Verdict
	assert.True(t, v.IsUnknown())
	assert.Equal(t, "Unknown", v.String())
	assert.Equal(t, GlyphUnsure, v.Glyph())
}

func TestVerdict_Glyph(t *testing.T) {
	cases := []struct {
		v    Verdict
		want string
	}{
		{Yes(), GlyphOK},
		{NoUnsure(), GlyphUnsure},
		{Unknown(), GlyphUnsure},
		{YesIf(true), GlyphOK},
		{YesIf(false), GlyphUnsure},
		{Text(string(StorageNoChanges)), GlyphOK},
		{Text(string(StorageSnapshotCreated)), GlyphOK},
		{Text(string(StorageChanges(ContractHub))), GlyphUnsure},
		{Text(string(StorageUnknown)), GlyphUnsure},
		{Text("Yes (both)"), GlyphOK},
		{Text("No/Unsure: yes-ish"), GlyphUnsure},
		{Text("  "), GlyphUnsure},
		{Text("missing"), GlyphUnsure},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.v.Glyph(), "verdict %q", c.v.String())
	}
}

func TestVerdict_MarshalsAsDisplayString(t *testing.T) {
	data, err := json.Marshal(map[string]Verdict{"feeCap": Yes(), "skim": NoUnsure(), "storage": Text("Changes in Hub")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"feeCap":"Yes","skim":"No/Unsure","storage":"Changes in Hub"}`, string(data))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeverityHigh, ParseSeverity(" High "))
	assert.Equal(t, SeverityInformational, ParseSeverity("Optimization"))
	assert.True(t, SeverityGTE(SeverityCritical, SeverityMedium))
	assert.True(t, SeverityGTE(SeverityMedium, SeverityMedium))
	assert.False(t, SeverityGTE(SeverityLow, SeverityMedium))
}
