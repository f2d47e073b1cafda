package model

import "strings"

type VerdictKind int

const (
	VerdictUnknown VerdictKind = iota
	VerdictYes
	VerdictNoUnsure
	VerdictText
)

// Verdict is the outcome of one heuristic check. The zero value is Unknown:
// no evidence could be located. NoUnsure means the marker was found but did
// not match the expected pattern. Text carries a free-form status.
type Verdict struct {
	Kind VerdictKind
	text string
}

func Yes() Verdict      { return Verdict{Kind: VerdictYes} }
func NoUnsure() Verdict { return Verdict{Kind: VerdictNoUnsure} }
func Unknown() Verdict  { return Verdict{Kind: VerdictUnknown} }

func Text(s string) Verdict { return Verdict{Kind: VerdictText, text: s} }

// YesIf returns Yes when ok holds and NoUnsure otherwise.
func YesIf(ok bool) Verdict {
	if ok {
		return Yes()
	}
	return NoUnsure()
}

func (v Verdict) IsUnknown() bool { return v.Kind == VerdictUnknown }

func (v Verdict) String() string {
	switch v.Kind {
	case VerdictYes:
		return "Yes"
	case VerdictNoUnsure:
		return "No/Unsure"
	case VerdictText:
		return v.text
	default:
		return "Unknown"
	}
}

// MarshalText encodes the verdict as its display string.
func (v Verdict) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

const (
	GlyphOK      = "✅"
	GlyphUnsure  = "❔"
	GlyphPartial = "✅/heuristic"
)

// Glyph condenses a verdict for the checklist. Free-text verdicts count as
// satisfied only when they read as a positive status.
func (v Verdict) Glyph() string {
	switch v.Kind {
	case VerdictYes:
		return GlyphOK
	case VerdictNoUnsure, VerdictUnknown:
		return GlyphUnsure
	}
	low := strings.ToLower(strings.TrimSpace(v.text))
	switch {
	case low == "":
		return GlyphUnsure
	case low == "yes" || low == "no changes" || low == "snapshot created":
		return GlyphOK
	case strings.HasPrefix(low, "unknown") || strings.HasPrefix(low, "no/unsure"):
		return GlyphUnsure
	case strings.Contains(low, "yes"):
		return GlyphOK
	default:
		return GlyphUnsure
	}
}

// NamedVerdict pairs a stable check name with its verdict for ordered rendering.
type NamedVerdict struct {
	Name    string
	Verdict Verdict
}
