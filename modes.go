package irc

import (
	"strings"
)

// ChanModes categorizes every channel mode letter the server supports into one of the four
// CHANMODES groups from ISUPPORT:
//
//	A: always takes a parameter, for both +mode and -mode (e.g. ban list "b")
//	B: always takes a parameter (e.g. key "k")
//	C: takes a parameter only when being set, never when being removed (e.g. limit "l")
//	D: never takes a parameter (e.g. "m", "n", "t", "i", "s")
//
// Mode letters belonging to the negotiated PREFIX set (o/v/h/etc.) are a separate category again:
// they always take a parameter (a nickname) whether being set or removed, but are not listed in
// CHANMODES at all.
type ChanModes struct {
	A string
	B string
	C string
	D string
}

// defaultChanModes is used until ISUPPORT CHANMODES is negotiated, matching the modes described
// by rfc2812 itself.
var defaultChanModes = ChanModes{
	A: "beI",
	B: "k",
	C: "l",
	D: "psitnm",
}

// parseChanModes parses a CHANMODES token value of the form "A,B,C,D" (trailing categories, if a
// server advertises more than four comma-separated groups, are folded into D).
func parseChanModes(value string) (ChanModes, error) {
	parts := strings.Split(value, ",")
	if len(parts) < 4 {
		return ChanModes{}, newFacadeError(KindValidation, "CHANMODES token does not have four categories: "+value)
	}
	cm := ChanModes{A: parts[0], B: parts[1], C: parts[2]}
	cm.D = strings.Join(parts[3:], "")
	return cm, nil
}

// category returns the CHANMODES group ('A', 'B', 'C', or 'D') that mode belongs to, or 0 if
// mode is not listed in any category (including when it is a PREFIX letter).
func (cm ChanModes) category(mode byte) byte {
	switch {
	case strings.IndexByte(cm.A, mode) >= 0:
		return 'A'
	case strings.IndexByte(cm.B, mode) >= 0:
		return 'B'
	case strings.IndexByte(cm.C, mode) >= 0:
		return 'C'
	case strings.IndexByte(cm.D, mode) >= 0:
		return 'D'
	default:
		return 0
	}
}

// TakesParam reports whether mode consumes a parameter when it is being set (adding=true) or
// unset (adding=false), given prefix as the negotiated PREFIX set (whose letters always take a
// parameter, in either direction).
func (cm ChanModes) TakesParam(mode byte, adding bool, prefix PrefixSet) bool {
	if prefix.isModeLetter(mode) {
		return true
	}
	switch cm.category(mode) {
	case 'A', 'B':
		return true
	case 'C':
		return adding
	default:
		return false
	}
}

// PrefixSet is the negotiated PREFIX token: an ordered list of channel status mode letters
// (highest first) and their corresponding display sigils, e.g. PREFIX=(ohv)@%+ gives the modes
// "ohv" and sigils "@%+", where 'o'/'@' (operator) outranks 'h'/'%' (half-op) outranks 'v'/'+'
// (voice).
type PrefixSet struct {
	Modes  string
	Sigils string
}

// defaultPrefixSet is used until ISUPPORT PREFIX is negotiated.
var defaultPrefixSet = PrefixSet{Modes: "ov", Sigils: "@+"}

// parsePrefixSet parses a PREFIX token value of the form "(modes)sigils".
func parsePrefixSet(value string) (PrefixSet, error) {
	if !strings.HasPrefix(value, "(") {
		return PrefixSet{}, newFacadeError(KindValidation, "PREFIX token missing '(': "+value)
	}
	end := strings.IndexByte(value, ')')
	if end < 0 {
		return PrefixSet{}, newFacadeError(KindValidation, "PREFIX token missing ')': "+value)
	}
	modes := value[1:end]
	sigils := value[end+1:]
	if len(modes) != len(sigils) {
		return PrefixSet{}, newFacadeError(KindValidation, "PREFIX token modes/sigils length mismatch: "+value)
	}
	return PrefixSet{Modes: modes, Sigils: sigils}, nil
}

// isModeLetter reports whether mode is one of the negotiated PREFIX mode letters.
func (p PrefixSet) isModeLetter(mode byte) bool {
	return strings.IndexByte(p.Modes, mode) >= 0
}

// SigilFor returns the display sigil for the given PREFIX mode letter, or 0 if mode is not a
// recognized status mode.
func (p PrefixSet) SigilFor(mode byte) byte {
	i := strings.IndexByte(p.Modes, mode)
	if i < 0 {
		return 0
	}
	return p.Sigils[i]
}

// ModeFor returns the PREFIX mode letter corresponding to the given display sigil, or 0 if sigil
// is not a recognized status sigil.
func (p PrefixSet) ModeFor(sigil byte) byte {
	i := strings.IndexByte(p.Sigils, sigil)
	if i < 0 {
		return 0
	}
	return p.Modes[i]
}

// HighestSigil returns the highest-ranked sigil present among sigils (a name prefix string such
// as "@+" as seen in a NAMESX-enabled NAMES reply), or 0 if none of the characters in sigils are
// recognized status sigils.
func (p PrefixSet) HighestSigil(sigils string) byte {
	for i := 0; i < len(p.Sigils); i++ {
		if strings.IndexByte(sigils, p.Sigils[i]) >= 0 {
			return p.Sigils[i]
		}
	}
	return 0
}

// ModeChange is a single +mode or -mode change parsed out of a MODE command, along with its
// parameter if it has one.
type ModeChange struct {
	Add   bool
	Mode  byte
	Param string
}

// String renders the change the way it would appear in a single-mode MODE line, e.g. "+o" or
// "-b hostmask!*@*".
func (c ModeChange) String() string {
	sign := byte('+')
	if !c.Add {
		sign = '-'
	}
	if c.Param == "" {
		return string([]byte{sign, c.Mode})
	}
	return string([]byte{sign, c.Mode}) + " " + c.Param
}

// ParseModeString splits a MODE command's mode string and trailing parameters into individual
// ModeChanges, consuming parameters from params in order according to cm and prefix. This is the
// building block both for the client's own mode-change events (one ModeChange per +/- flag,
// rather than a single opaque string) and for rendering outgoing MODE commands.
func ParseModeString(modeStr string, params []string, cm ChanModes, prefix PrefixSet) ([]ModeChange, error) {
	var changes []ModeChange
	add := true
	pi := 0

	for i := 0; i < len(modeStr); i++ {
		switch c := modeStr[i]; c {
		case '+':
			add = true
		case '-':
			add = false
		default:
			change := ModeChange{Add: add, Mode: c}
			if cm.TakesParam(c, add, prefix) {
				if pi >= len(params) {
					return changes, newFacadeError(KindValidation, "mode string is missing a parameter for mode "+string(c))
				}
				change.Param = params[pi]
				pi++
			}
			changes = append(changes, change)
		}
	}
	return changes, nil
}

// RenderModeString builds a MODE command's mode-string and parameter list from a slice of
// ModeChanges, grouping consecutive changes of the same sign under a single '+' or '-' the way a
// server expects, e.g. [+o dave, +v amy, -b *!*@host] becomes "+ov-b" with params
// ["dave","amy","*!*@host"].
func RenderModeString(changes []ModeChange) (modeStr string, params []string) {
	var b strings.Builder
	var lastSign byte
	for _, c := range changes {
		sign := byte('+')
		if !c.Add {
			sign = '-'
		}
		if sign != lastSign {
			b.WriteByte(sign)
			lastSign = sign
		}
		b.WriteByte(c.Mode)
		if c.Param != "" {
			params = append(params, c.Param)
		}
	}
	return b.String(), params
}
