package irc

import "strings"

// illegalCharsReplacer strips the bytes which may never appear in an outgoing IRC line.
// rfc2812 delimits lines with CRLF, so a payload containing either character (or NUL) would
// corrupt the framing of the line that carries it.
var illegalCharsReplacer = strings.NewReplacer("\r", "", "\n", "", "\x00", "")

// stripIllegal removes CR, LF, and NUL from s. Stripping is idempotent: stripping an
// already-stripped string returns it unchanged.
func stripIllegal(s string) string {
	return illegalCharsReplacer.Replace(s)
}

// splitPayload splits text into one or more chunks such that a line built as
// "<prefixLen bytes><chunk>\r\n" never exceeds wireLimit octets. prefixLen is the number of
// octets that will precede the chunk on the wire -- for a PRIVMSG this is
// len("PRIVMSG <target> :"), optionally plus the estimated length of our own hostmask if the
// receiving server is expected to relay the line with our prefix attached.
//
// The split happens at a fixed byte boundary; it does not try to avoid splitting mid-rune or
// mid-word, matching the simple 510-octet boundary behavior described by the protocol. The last
// chunk returned is never empty, and splitPayload("", ...) of an empty string returns one empty
// chunk so that callers always get at least one line to send.
func splitPayload(prefixLen int, text string) []string {
	text = stripIllegal(text)

	maxBody := wireLimit - len(lineTerminator) - prefixLen
	if maxBody < 1 {
		maxBody = 1
	}

	if len(text) <= maxBody {
		return []string{text}
	}

	var chunks []string
	for len(text) > maxBody {
		chunks = append(chunks, text[:maxBody])
		text = text[maxBody:]
	}
	if len(text) > 0 {
		chunks = append(chunks, text)
	}
	return chunks
}

const lineTerminator = "\r\n"
