package irc

import (
	"net"
	"regexp"
	"strings"
)

// EqualFold tests whether two strings are equal according to the given case mapping.
func EqualFold(s1, s2 string, mapping CaseMapping) bool {
	return equalFold(s1, s2, mapping)
}

var maskSpecial = regexp.MustCompile(`[.+()|\[\]{}^$]`)

// MaskToRegex converts an IRC wildcard expression (as used in ban masks, SILENCE masks, and
// WHO/WHOIS masks) into its equivalent regex. '?' matches one and only one character, and '*'
// matches any number of characters. Both can be escaped with a preceding '\'.
// https://modern.ircdocs.horse/#wildcard-expressions
func MaskToRegex(mask string) string {
	var b strings.Builder
	b.WriteByte('^')
	for i := 0; i < len(mask); i++ {
		switch c := mask[i]; c {
		case '\\':
			if i+1 < len(mask) {
				i++
				b.WriteString(regexp.QuoteMeta(string(mask[i])))
			}
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteString(maskSpecial.ReplaceAllString(string(c), `\$0`))
		}
	}
	b.WriteByte('$')
	return b.String()
}

// IsWM reports whether text matches the IRC wildcard expression wildText.
func IsWM(wildText string, text string) bool {
	re, err := regexp.Compile(MaskToRegex(wildText))
	if err != nil {
		return false
	}
	return re.MatchString(text)
}

// MaskType selects which portion of a nick!user@host address Mask replaces with wildcards.
type MaskType int

const (
	// MaskTypeHost replaces only the host, e.g. "nick!user@*".
	MaskTypeHost MaskType = iota
	// MaskTypeUserHost replaces the user and host, e.g. "nick!*@*".
	MaskTypeUserHost
	// MaskTypeNickUserHost replaces the nick, user, and host, e.g. "*!*@*".
	MaskTypeNickUserHost
	// MaskTypeDomain replaces the user and host's leftmost label, e.g. "nick!*@*.example.com".
	MaskTypeDomain
)

// Mask converts a full nick!user@host address into a ban-style mask according to maskType.
// It returns the input unchanged if fulladdress is not a well-formed nick!user@host string.
func Mask(fulladdress string, maskType MaskType) string {
	parts := fullAddress.FindStringSubmatch(fulladdress)
	if parts == nil {
		return fulladdress
	}
	nick, user, host := parts[1], parts[2], parts[3]

	switch maskType {
	case MaskTypeUserHost:
		return nick + "!*@*"
	case MaskTypeNickUserHost:
		return "*!*@*"
	case MaskTypeDomain:
		host = maskDomain(host)
		return nick + "!*@" + host
	default: // MaskTypeHost
		return nick + "!" + user + "@*"
	}
}

// maskDomain replaces the leftmost label of a dotted hostname with a wildcard, e.g.
// "host.example.com" becomes "*.example.com". An IP address or single-label host is replaced
// entirely with "*".
func maskDomain(host string) string {
	i := strings.IndexByte(host, '.')
	if i < 0 || net.ParseIP(host) != nil {
		return "*"
	}
	return "*" + host[i:]
}

var colorCode = regexp.MustCompile(`\x03(\d{1,2}(,\d{1,2})?)?`)

// StripColors removes mIRC-style color codes (\x03 optionally followed by foreground,background
// digits) from text.
func StripColors(text string) string {
	return colorCode.ReplaceAllString(text, "")
}

// formattingChars are the single-byte control characters used for bold, italic, underline,
// strikethrough, monospace, reverse, and reset formatting.
const formattingChars = "\x02\x1d\x1f\x1e\x11\x16\x0f"

var formatStripper = func() *strings.Replacer {
	pairs := make([]string, 0, len(formattingChars)*2)
	for i := 0; i < len(formattingChars); i++ {
		pairs = append(pairs, string(formattingChars[i]), "")
	}
	return strings.NewReplacer(pairs...)
}()

// StripFormatting removes IRC formatting control characters (bold, italic, underline,
// strikethrough, monospace, reverse, reset) from text, leaving color codes untouched; pair this
// with StripColors to strip both.
func StripFormatting(text string) string {
	return formatStripper.Replace(text)
}

// Decode decodes a line of IRC text into a Message struct. line must not end with line endings \r\n.
func Decode(line []byte) (*Message, error) {
	m := new(Message)
	err := m.UnmarshalText(line)
	return m, err
}

// Encode marshals a command and its parameters into the bytes that would be sent on an IRC
// connection.
func Encode(command string, params ...string) ([]byte, error) {
	m := NewMessage(Command(command), params...)
	return m.MarshalText()
}
