package irc

import (
	"strconv"
	"strings"
	"time"
)

// CTCPReplies holds the strings the client sends in response to inbound CTCP VERSION, SOURCE,
// and CLIENTINFO queries. A zero-value CTCPReplies falls back to generic defaults.
type CTCPReplies struct {
	Version    string
	Source     string
	ClientInfo string
}

func (r CTCPReplies) version() string {
	if r.Version != "" {
		return r.Version
	}
	return "an irc client library"
}

func (r CTCPReplies) source() string {
	if r.Source != "" {
		return r.Source
	}
	return "unknown"
}

func (r CTCPReplies) clientInfo() string {
	if r.ClientInfo != "" {
		return r.ClientInfo
	}
	return strings.Join([]string{ctcpAction, ctcpPing, ctcpVersion, ctcpClientInfo, ctcpSource, ctcpTime, ctcpErrMsg}, " ")
}

// ctcpAutoResponder returns a middleware which answers standard CTCP queries (PING, VERSION,
// CLIENTINFO, SOURCE, TIME) automatically and replies to anything else with ERRMSG, per the
// auto-response table. ACTION is excluded: it is not a query and produces an emote event instead
// of a reply. DCC queries are not answered either. It must run after ctcpHandler has classified the message into one of the
// NewCTCPCmd(...)-shaped commands.
func ctcpAutoResponder(replies CTCPReplies) middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(mw MessageWriter, m *Message) {
			next.SpeakIRC(mw, m)

			cmd := string(m.Command)
			if !strings.HasPrefix(cmd, "_CTCP_QUERY_") || cmd == CTCPAction {
				return
			}

			reply, err := m.Target()
			if err != nil || reply == "" {
				return
			}
			sender := m.Source.Nick.String()
			if sender == "" {
				return
			}

			arg := m.Params.Get(2)
			switch cmd {
			case CTCPPingQuery:
				mw.WriteMessage(CTCPReply(sender, ctcpPing, arg))
			case CTCPVersionQuery:
				mw.WriteMessage(CTCPReply(sender, ctcpVersion, replies.version()))
			case CTCPClientInfoQuery:
				mw.WriteMessage(CTCPReply(sender, ctcpClientInfo, replies.clientInfo()))
			case CTCPSourceQuery:
				mw.WriteMessage(CTCPReply(sender, ctcpSource, replies.source()))
			case CTCPTimeQuery:
				mw.WriteMessage(CTCPReply(sender, ctcpTime, time.Now().Format(time.RFC1123Z)))
			case CTCPDCCQuery:
				// DCC negotiation is surfaced as an event by dcc.go; it is not auto-replied to.
			default:
				mw.WriteMessage(CTCPReply(sender, ctcpErrMsg, "unknown query "+strings.TrimPrefix(cmd, "_CTCP_QUERY_")))
			}
		})
	}
}

// CTCPPingRoundTrip sends a CTCP PING to target stamped with the current time, so that the
// reply's latency can be computed by CTCPPingLatency.
func CTCPPingRoundTrip(target string) *Message {
	return CTCP(target, ctcpPing, strconv.FormatInt(time.Now().UnixNano(), 10))
}

// CTCPPingLatency parses a CTCP PING reply argument as a UTC nanosecond timestamp (as produced by
// CTCPPingRoundTrip) and returns the elapsed time since it was sent. ok is false if arg isn't a
// decimal integer; any integer is accepted as a timestamp.
func CTCPPingLatency(arg string) (d time.Duration, ok bool) {
	ns, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, false
	}
	return time.Since(time.Unix(0, ns)), true
}

// CTCPReplyEvent wraps an inbound CTCP reply (a NOTICE that ctcpHandler rewrote into one of the
// "_CTCP_REPLY_*" commands) with its subcommand unwrapped, so a handler can distinguish it from
// an ordinary NOTICE without re-parsing the command string itself.
type CTCPReplyEvent struct {
	*Message
	IsCtcpReply bool
	Subcommand  string
}

// AsCTCPReply reports whether m is an inbound CTCP reply and, if so, returns it wrapped as a
// CTCPReplyEvent. It belongs after ctcpHandler has run, since that is what rewrites a plain
// NOTICE's Command into the "_CTCP_REPLY_*" form this checks for.
func AsCTCPReply(m *Message) (CTCPReplyEvent, bool) {
	cmd := string(m.Command)
	if !strings.HasPrefix(cmd, "_CTCP_REPLY_") {
		return CTCPReplyEvent{}, false
	}
	return CTCPReplyEvent{
		Message:     m,
		IsCtcpReply: true,
		Subcommand:  strings.TrimPrefix(cmd, "_CTCP_REPLY_"),
	}, true
}
