package irc

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CaseMapping selects the fold function used to compare nicknames and channel names, negotiated
// via ISUPPORT CASEMAPPING. The default, CaseMapRFC1459, matches what most networks advertise and
// what rfc1459 itself specifies.
type CaseMapping int

const (
	// CaseMapRFC1459 folds '{', '}', '|', '^' to '[', ']', '\', '~' in addition to ASCII case,
	// matching the historical rfc1459 CASEMAPPING value.
	CaseMapRFC1459 CaseMapping = iota
	// CaseMapRFC1459Strict is the same as CaseMapRFC1459 but does not fold '^' to '~'.
	CaseMapRFC1459Strict
	// CaseMapASCII folds only ASCII letters, ignoring the rfc1459 special characters.
	CaseMapASCII
	// CaseMapUTF8 folds using Unicode case folding (CASEMAPPING=utf-8, used by some modern networks).
	CaseMapUTF8
)

// parseCaseMapping maps an ISUPPORT CASEMAPPING value to a CaseMapping. Unrecognized values fall
// back to CaseMapRFC1459, the most common default.
func parseCaseMapping(value string) CaseMapping {
	switch strings.ToLower(value) {
	case "ascii":
		return CaseMapASCII
	case "rfc1459-strict":
		return CaseMapRFC1459Strict
	case "utf-8", "utf8":
		return CaseMapUTF8
	default:
		return CaseMapRFC1459
	}
}

var utf8Caser = cases.Fold(cases.Compact)

// fold returns the case-folded form of s under the given CaseMapping, used by every nickname
// and channel name comparison in the package so that all comparisons agree on the same rules.
func fold(s string, cm CaseMapping) string {
	switch cm {
	case CaseMapUTF8:
		return utf8Caser.String(s)
	case CaseMapASCII:
		return strings.ToLower(s)
	case CaseMapRFC1459Strict:
		return foldRFC1459(s, false)
	default: // CaseMapRFC1459
		return foldRFC1459(s, true)
	}
}

// foldRFC1459 lowercases ASCII letters and additionally maps '{','}','|' to '[',']','\' (and '^'
// to '~' when foldTilde is set), per the historical rfc1459 CASEMAPPING definition. No pack
// library implements this table; golang.org/x/text only covers Unicode case folding.
func foldRFC1459(s string, foldTilde bool) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		case r == '{':
			r = '['
		case r == '}':
			r = ']'
		case r == '|':
			r = '\\'
		case r == '^' && foldTilde:
			r = '~'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// equalFold reports whether a and b are equal under the given case mapping.
func equalFold(a, b string, cm CaseMapping) bool {
	return fold(a, cm) == fold(b, cm)
}

var _ = language.English // referenced to keep the golang.org/x/text/language import meaningful
// for callers that build their own cases.Caser with an explicit language tag; cases.Fold itself
// is language-agnostic for IRC's purposes (nicknames are not natural-language text).
