package irc

import (
	"strconv"
	"strings"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// ISupport tracks the server capabilities announced via RPL_ISUPPORT (005). A client receives
// many 005 lines during registration, each contributing a handful of tokens, so ISupport merges
// tokens as they arrive rather than requiring a single line to carry everything.
//
// ISupport is safe for concurrent use: tokens may be read from event handlers running on a
// different goroutine than the one applying new 005 lines.
type ISupport struct {
	tokens cmap.ConcurrentMap[string, string]

	chanModes   ChanModes
	prefix      PrefixSet
	hasPrefix   bool
	hasChanMode bool
}

// NewISupport returns an empty ISupport populated with the rfc2812 defaults, used until the
// server sends its own 005 lines.
func NewISupport() *ISupport {
	s := &ISupport{tokens: cmap.New[string]()}
	s.chanModes = defaultChanModes
	s.prefix = defaultPrefixSet
	return s
}

// Apply merges the tokens carried by a RPL_ISUPPORT message into the tracked set. The final
// parameter of a 005 line is the human-readable "are supported by this server" trailer and is
// ignored; every parameter before it is a token, optionally of the form NAME=VALUE.
//
// A NETWORK token whose value differs from the previously tracked value indicates the client has
// been redirected to a server on a different network (seen on some bouncers and round-robin
// connects); callers should treat this as a reason to reset any network-scoped assumptions and
// re-announce WATCH/MONITOR/SILENCE lists. Apply reports whether NETWORK changed.
func (s *ISupport) Apply(msg *Message) (networkChanged bool) {
	oldNetwork, hadNetwork := s.tokens.Get("NETWORK")

	n := len(msg.Params)
	for i := 1; i < n-1; i++ { // Params[0] is the target nick; the last param is the trailer text
		tok := msg.Params[i]
		if tok == "" {
			continue
		}
		if strings.HasPrefix(tok, "-") {
			s.tokens.Remove(strings.TrimPrefix(tok, "-"))
			continue
		}
		name, value, _ := strings.Cut(tok, "=")
		name = strings.ToUpper(name)
		s.tokens.Set(name, value)

		switch name {
		case "CHANMODES":
			if cm, err := parseChanModes(value); err == nil {
				s.chanModes = cm
				s.hasChanMode = true
			}
		case "PREFIX":
			if ps, err := parsePrefixSet(value); err == nil {
				s.prefix = ps
				s.hasPrefix = true
			}
		}
	}

	newNetwork, _ := s.tokens.Get("NETWORK")
	return hadNetwork && newNetwork != oldNetwork
}

// Has reports whether the server announced the named token, with or without a value.
func (s *ISupport) Has(name string) bool {
	_, ok := s.tokens.Get(strings.ToUpper(name))
	return ok
}

// Get returns the raw value of the named token, or "" if it was never announced or was announced
// as a bare flag with no "=value".
func (s *ISupport) Get(name string) string {
	v, _ := s.tokens.Get(strings.ToUpper(name))
	return v
}

// getInt returns the named token's value parsed as an integer, or def if the token is absent or
// not a valid integer.
func (s *ISupport) getInt(name string, def int) int {
	v := s.Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// Network returns the NETWORK token value, or "" if unannounced.
func (s *ISupport) Network() string { return s.Get("NETWORK") }

// NickLen returns the negotiated maximum nickname length, or defaultNicknameLen.
func (s *ISupport) NickLen() int { return s.getInt("NICKLEN", defaultNicknameLen) }

// ChannelLen returns the negotiated maximum channel name length, or defaultChannelLen.
func (s *ISupport) ChannelLen() int { return s.getInt("CHANNELLEN", defaultChannelLen) }

// TopicLen returns the negotiated maximum topic length, or 0 (unlimited) if unannounced.
func (s *ISupport) TopicLen() int { return s.getInt("TOPICLEN", 0) }

// KickLen returns the negotiated maximum KICK reason length, or 0 (unlimited) if unannounced.
func (s *ISupport) KickLen() int { return s.getInt("KICKLEN", 0) }

// AwayLen returns the negotiated maximum AWAY message length, or 0 (unlimited) if unannounced.
func (s *ISupport) AwayLen() int { return s.getInt("AWAYLEN", 0) }

// ModesPerLine returns the negotiated maximum number of mode changes a single MODE command may
// carry, or 3 (the rfc2812 default) if unannounced.
func (s *ISupport) ModesPerLine() int { return s.getInt("MODES", 3) }

// MaxTargets returns the negotiated maximum number of comma-separated targets a single PRIVMSG or
// NOTICE may carry, or 1 if unannounced.
func (s *ISupport) MaxTargets() int { return s.getInt("MAXTARGETS", 1) }

// ChanTypes returns the set of channel name sigils the server recognizes, or the rfc2812 default
// "#&" if unannounced.
func (s *ISupport) ChanTypes() string {
	v := s.Get("CHANTYPES")
	if v == "" {
		return "#&"
	}
	return v
}

// ChanModes returns the negotiated CHANMODES categorization.
func (s *ISupport) ChanModes() ChanModes {
	if !s.hasChanMode {
		return defaultChanModes
	}
	return s.chanModes
}

// Prefix returns the negotiated PREFIX mode/sigil mapping.
func (s *ISupport) Prefix() PrefixSet {
	if !s.hasPrefix {
		return defaultPrefixSet
	}
	return s.prefix
}

// CaseMapping returns the negotiated CASEMAPPING, defaulting to CaseMapRFC1459.
func (s *ISupport) CaseMapping() CaseMapping {
	v := s.Get("CASEMAPPING")
	if v == "" {
		return CaseMapRFC1459
	}
	return parseCaseMapping(v)
}

// SupportsWatch reports whether the server announced the WATCH token (server-side presence list).
func (s *ISupport) SupportsWatch() bool { return s.Has("WATCH") }

// WatchLen returns the maximum size of the WATCH list, or 0 if unannounced/unbounded.
func (s *ISupport) WatchLen() int { return s.getInt("WATCH", 0) }

// SupportsMonitor reports whether the server announced the MONITOR token (IRCv3 presence list).
// Per the negotiated preference, a client that sees both WATCH and MONITOR should prefer MONITOR.
func (s *ISupport) SupportsMonitor() bool { return s.Has("MONITOR") }

// MonitorLen returns the maximum size of the MONITOR list, or 0 if unannounced/unbounded.
func (s *ISupport) MonitorLen() int { return s.getInt("MONITOR", 0) }

// SupportsSilence reports whether the server announced the SILENCE token (server-side ignore
// list keyed by hostmask).
func (s *ISupport) SupportsSilence() bool { return s.Has("SILENCE") }

// SilenceLen returns the maximum size of the SILENCE list, or 0 if unannounced/unbounded.
func (s *ISupport) SilenceLen() int { return s.getInt("SILENCE", 0) }

// PreferMonitorOverWatch reports whether presence tracking should use MONITOR rather than WATCH,
// resolving the case where a server announces both: MONITOR is the IRCv3-standardized replacement
// for the older, non-standard WATCH extension, so it wins when both are available.
func (s *ISupport) PreferMonitorOverWatch() bool {
	return s.SupportsMonitor()
}

// SupportsNamesX reports whether the server announced NAMESX (multiple status prefixes per nick
// in a NAMES/353 reply), negotiated via the legacy PROTOCTL command.
func (s *ISupport) SupportsNamesX() bool { return s.Has("NAMESX") }

// SupportsUHNames reports whether the server announced UHNAMES (user!ident@host form in a
// NAMES/353 reply instead of a bare nickname), negotiated via the legacy PROTOCTL command.
func (s *ISupport) SupportsUHNames() bool { return s.Has("UHNAMES") }

// StatusMsg returns the set of status-message sigils the server accepts as a PRIVMSG/NOTICE
// target prefix (e.g. "+#channel" to message only voiced-and-above users of #channel).
func (s *ISupport) StatusMsg() string { return s.Get("STATUSMSG") }

// SupportsSafeList reports whether LIST responses are safe to request on a busy network without
// risking a disconnect for flooding (SAFELIST token).
func (s *ISupport) SupportsSafeList() bool { return s.Has("SAFELIST") }

// ChanLimit returns the raw CHANLIMIT token value (e.g. "#&:10"), or "" if unannounced.
func (s *ISupport) ChanLimit() string { return s.Get("CHANLIMIT") }

// MaxListFor returns the maximum number of entries permitted in the given list mode (one of
// beIq, the ban/except/invex/quiet letters), from the MAXLIST token, or 0 if unbounded/unknown.
func (s *ISupport) MaxListFor(mode byte) int {
	raw := s.Get("MAXLIST")
	if raw == "" {
		return 0
	}
	for _, entry := range strings.Split(raw, ",") {
		letters, n, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		if strings.IndexByte(letters, mode) >= 0 {
			if v, err := strconv.Atoi(n); err == nil {
				return v
			}
		}
	}
	return 0
}
