package irc

import (
	"fmt"
	"strings"
)

// isCTCP reports whether cmd is one of the internal CTCP query/reply commands that ctcpHandler
// rewrites PRIVMSG/NOTICE into. Such messages still behave like PRIVMSG/NOTICE for the purposes
// of Target/Chan/Text: ctcpHandler only swaps the Command field and strips the CTCP envelope from
// Params[1], leaving the parameter shape unchanged.
func isCTCP(cmd Command) bool {
	return strings.HasPrefix(string(cmd), "_CTCP_QUERY_") || strings.HasPrefix(string(cmd), "_CTCP_REPLY_")
}

// isChannelTarget reports whether target names a channel rather than a user, after stripping any
// leading STATUSMSG sigil -- "+#foo" targets only the voiced-and-above members of "#foo", but it
// is still a channel target, not a query.
func isChannelTarget(target string, isup *ISupport) bool {
	stripped := strings.TrimLeft(target, isup.StatusMsg())
	return stripped != "" && strings.ContainsRune(isup.ChanTypes(), rune(stripped[0]))
}

// PRIVMSG
// NOTICE
// CTCP ACTION
// TOPIC
// KICK
// PART
// QUIT
// ERROR
// INVITE
// MODE

// Text returns the free-form text portion of a message for the well-known (named) IRC commands.
// An error is returned if the method is called for unsupported message types.
// If err is not nil, then Text will contain the entire parameter list joined together as one string.
// However, for commands that return an error, it may be better to call Params.Get directly.
//
// Supported commands include PRIVMSG, NOTICE, PART, QUIT, ERROR, and more.
//
// In the case of PART and KICK, Text contains the <reason> message parameter.
//
// The error may be discarded without checking
// If it's known that the message will always be a supported command,
// for example when used inside a handler that is only ever called for PRIVMSG events,
// then it is safe to discard err.
// Errors are only returned to prevent the method from returning unexpected results to callers that assume it will work for all message types.
func (m *Message) Text() (string, error) {
	switch {
	case m.Command == CmdQuit || m.Command == CmdError:
		return m.Params.Get(1), nil
	case m.Command == CmdKick:
		return m.Params.Get(3), nil
	case m.Command == CmdPrivmsg || m.Command == CmdNotice || m.Command == CTCPAction ||
		m.Command == CmdTopic || m.Command == CmdPart || m.Command == CmdMode ||
		isCTCP(m.Command):
		return m.Params.Get(2), nil

	default:
		return strings.Join(m.Params, " "), fmt.Errorf("text: command %s is not supported", m.Command)
	}
}

// Target returns the intended target of a message.
// In the case of query messages, Target will equal our client's nickname.
// For channel messages, Target will usually be the name of the channel a message was sent to.
// If target is a channel,
// it may be prefixed with one or more channel membership prefixes (e.g. '@', '+' for Op, Voice)
// on servers that support the STATUSMSG response of RPL_ISUPPORT.

// Target is the target of the message, which will be the current nickname of
// the client in the case of direct messages (queries), or the channel
// name if sent to a channel, or a prefix followed by the channel name
// if sent to a specific group of users in a channel, e.g. "+#foo"
// for all users on a channel with +v or higher.
func (m *Message) Target() (string, error) {

	switch {
	case m.Command == CmdPrivmsg || m.Command == CmdNotice || m.Command == CTCPAction ||
		m.Command == CmdInvite || m.Command == CmdTopic || m.Command == CmdKick ||
		m.Command == CmdPart || m.Command == CmdMode || isCTCP(m.Command):
		return m.Params.Get(1), nil
	default:
		return "", fmt.Errorf("%s: target method not supported", m.Command)
	}
}

// Chan is the channel parameter of the message, returned as sent: the
// first parameter, or the second for INVITE.

// Chan returns the channel a message applies to.
// The parameter is not inspected: for a query message Chan returns the client's nickname rather
// than an empty string, and membership prefixes ('@', '+', etc.) on a target such as "+#foo" are not stripped.
func (m *Message) Chan() (string, error) {

	// todo: return empty string when target wasn't a channel
	/*
		- remove status prefixes (@%+)
		- if the next character is a chanprefix (#) then it is a channel
		- else return ""
	*/
	switch {
	case m.Command == CmdPrivmsg || m.Command == CmdNotice || m.Command == CTCPAction ||
		m.Command == CmdJoin || m.Command == CmdTopic || m.Command == CmdKick ||
		m.Command == CmdPart || isCTCP(m.Command):
		return m.Params.Get(1), nil
	case m.Command == CmdInvite:
		return m.Params.Get(2), nil
	default:
		return "", fmt.Errorf("%s: chan method not supported", m.Command)
	}
}
