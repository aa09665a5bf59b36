package irc

import "strings"

// Msg constructs a new Message of type PRIVMSG,
// with target being the intended target channel or nickname,
// and message being the text body.
func Msg(target, message string) *Message {
	return NewMessage(CmdPrivmsg, target, message)
}

// Notice constructs a new message of type NOTICE,
// with target being the intended target channel or nickname,
// and message being the text body.
func Notice(target, message string) *Message {
	return NewMessage(CmdNotice, target, message)
}

// Describe constructs a new Message of type CTCP ACTION,
// with target being the intended target channel or nickname,
// and message being the text body.
//
// Describe is equivalent to the "/me" or "/describe" commands that one might enter into the text input field of popular IRC clients.
//
// By convention, actions are written in third-person.
//
// Actions are often displayed with different formatting from regular messages.
// It is common for clients to display actions with italicised text and use a different color,
// and sometimes prefix the message with an asterisk followed by the user's nickname.
// The specific display formatting varies depending on which client program each user is connecting with.
//
// For example, compare an action message with a regular privmsg:
//
//  Describe("#foo", "slaps Bob around a bit with a large trout")
//  Msg("#foo", "take that!")
//
// is equivalent to typing
//
//  /me slaps Bob around a bit with a large trout
//  take that!
//
// in channel #foo on most IRC clients, and might be displayed by a receiving client as
//
//  * Alice slaps Bob around a bit with a large trout
//  <Alice> take that!
//
// but with italics and possibly colorized.
//
func Describe(target, action string) *Message {
	return CTCP(target, "ACTION", action)
}

// TagMsg constructs a TAGMSG command, defined in the IRCv3 message-tags capability.
func TagMsg(tags map[string]string) *Message {
	return &Message{
		Tags:    tags,
		Command: CmdTagMsg,
	}
}

// CTCP constructs a CTCP (Client-to-Client Protocol) encoded
// message to the target. command is the CTCP subcommand.
func CTCP(target, command, message string) *Message {
	return NewMessage(CmdPrivmsg, target, "\x01"+command+" "+message+"\x01")
}

// CTCPReply constructs a message encoded in the CTCP reply format.
// target should be the nickname that sent us a CTCP message,
// command is the subcommand that was sent to us,
// and message depends on the type of query.
func CTCPReply(target, command, message string) *Message {
	return NewMessage(CmdNotice, target, "\x01"+command+" "+message+"\x01")
}

// Nick constructs a nickname change command.
func Nick(name string) *Message {
	return NewMessage(CmdNick, name)
}

// Join constructs a channel join command.
func Join(channel string) *Message {
	return NewMessage(CmdJoin, channel)
}

// JoinWithKey constructs a channel join command for channels that require a key (channel mode +k is set).
func JoinWithKey(channel, key string) *Message {
	return NewMessage(CmdJoin, channel, key)
}

// Part constructs leave (depart) command for channel.
func Part(channel string) *Message {
	return NewMessage(CmdPart, channel)
}

// PartWithReason is the same as Part, but with a message
// that may be shown to other clients
func PartWithReason(channel, reason string) *Message {
	return NewMessage(CmdPart, channel, reason)
}

// PartAll constructs a command to leave all channels.
func PartAll() *Message {
	// "JOIN 0" is a special case defined in the protocol for leaving all channels
	// https://tools.ietf.org/html/rfc2812#section-3.2.1
	return NewMessage(CmdJoin, "0")
}

// Quit constructs a command that will cause the server to terminate the client's connection,
// and may display the quit message to clients that are configured to show quit messages.
func Quit(message string) *Message {
	return NewMessage(CmdQuit, message)
}

// Kick constructs a command to kick another user from a channel.
func Kick(channel, nick string) *Message {
	return NewMessage(CmdKick, channel, nick)
}

// KickWithReason is similar to Kick, but the kick message
// will display reason.
func KickWithReason(channel, nick, reason string) *Message {
	return NewMessage(CmdKick, channel, nick, reason)
}

// Mode constructs a command to change a mode on a channel or on our client connection.
func Mode(target, flag, flagParam string) *Message {
	return NewMessage(CmdMode, target, flag, flagParam)
}

// ModeQuery constructs a command to get the current modes of target.
func ModeQuery(target string) *Message {
	return NewMessage(CmdMode, target)
}

// Invite constructs a command to invite nick to channel.
func Invite(nick, channel string) *Message {
	return NewMessage(CmdInvite, nick, channel)
}

// Ping constructs a command to PING the connection.
// The server will typically respond with PONG <message>,
// although it is possible on some networks to ping a specific server,
// in which case the original message is not returned.
//
// Ping is not the same as a CTCP ping,
// which is sent to a client or channel via a PRIVMSG command instead.
// To build a CTCP ping, use CTCP(<target>, "PING", time.Now()).
// Replies will match a Message of type CTCPReply(<yournick>, "PING", <sent timestamp>).
func Ping(message string) *Message {
	return NewMessage(CmdPing, message)
}

// Pong builds the reply to a PING from the connection.
// The reply message must be the same as the original
// PING message.
func Pong(reply string) *Message {
	return NewMessage(CmdPong, reply)
}

// User is used at the beginning of a connection to specify
// the username and realname of a new user.
//
// realname may contain spaces.
//
// https://tools.ietf.org/html/rfc2812#section-3.1.3
func User(user, realname string) *Message {
	// The second param (mode) is typically not useful.
	// The third param is unused.
	// Sending "0" and "*" is specifically recommended by at least
	// one modern IRC overview, and is what mIRC does.
	return NewMessage(CmdUser, user, "0", "*", realname)
}

// Pass specifies the connection password.
func Pass(password string) *Message {
	return NewMessage(CmdPass, password)
}

// Topic requests the current topic of channel.
func Topic(channel string) *Message {
	return NewMessage(CmdTopic, channel)
}

// SetTopic changes the topic of channel.
func SetTopic(channel, topic string) *Message {
	return NewMessage(CmdTopic, channel, topic)
}

// Names requests the list of visible members of channel.
func Names(channel string) *Message {
	return NewMessage(CmdNames, channel)
}

// Away sets an automatic reply for any PRIVMSG received while away.
func Away(message string) *Message {
	return NewMessage(CmdAway, message)
}

// RemoveAway clears a previously set away message.
func RemoveAway() *Message {
	return NewMessage(CmdAway)
}

// Who requests a list of users matching mask.
func Who(mask string) *Message {
	return NewMessage(CmdWho, mask)
}

// Whois requests information about the given nickname.
func Whois(nick string) *Message {
	return NewMessage(CmdWhoIs, nick)
}

// Whowas requests information about a nickname that no longer exists.
func Whowas(nick string) *Message {
	return NewMessage(CmdWhoWas, nick)
}

// UserHost requests a list of information about up to 5 nicknames.
func UserHost(nicks ...string) *Message {
	return NewMessage(CmdUserHost, nicks...)
}

// UserIP requests the IP address of a set of users, via the non-standard USERIP command.
func UserIP(nicks ...string) *Message {
	return NewMessage(CmdUserIP, nicks...)
}

// IsOn checks whether the given nicknames are currently connected.
func IsOn(nicks ...string) *Message {
	return NewMessage(CmdIsOn, nicks...)
}

// List requests the list of channels and their topics. With no arguments it requests the
// entire list; channels, if given, restricts the reply to those channels.
func List(channels ...string) *Message {
	return NewMessage(CmdList, channels...)
}

// Oper authenticates the connection as an IRC operator.
func Oper(name, password string) *Message {
	return NewMessage(CmdOper, name, password)
}

// Knock requests an invite to an invite-only channel.
func Knock(channel string) *Message {
	return NewMessage(CmdKnock, channel)
}

// SetName changes the client's realname without reconnecting, via the IRCv3 SETNAME command.
func SetName(realname string) *Message {
	return NewMessage(CmdSetName, realname)
}

// CNotice sends a NOTICE to a user without requiring a shared channel, provided the sender has
// operator or half-op status in commonChannel.
func CNotice(nick, commonChannel, message string) *Message {
	return NewMessage(CmdCNotice, nick, commonChannel, message)
}

// CPrivmsg sends a PRIVMSG to a user without requiring a shared channel, provided the sender has
// operator or half-op status in commonChannel.
func CPrivmsg(nick, commonChannel, message string) *Message {
	return NewMessage(CmdCPrivmsg, nick, commonChannel, message)
}

// Silence adds mask to the server-side ignore list. A mask prefixed with '-' removes an entry
// instead of adding one.
func Silence(mask string) *Message {
	return NewMessage(CmdSilence, mask)
}

// Watch adds or removes nicknames from the server-side WATCH presence list. A nickname prefixed
// with '-' removes that entry instead of adding one.
func Watch(nicks ...string) *Message {
	return NewMessage(CmdWatch, nicks...)
}

// Monitor adds nicknames to the IRCv3 MONITOR presence list.
func Monitor(nicks ...string) *Message {
	return NewMessage(CmdMonitor, append([]string{"+"}, strings.Join(nicks, ","))...)
}

// MonitorRemove removes nicknames from the IRCv3 MONITOR presence list.
func MonitorRemove(nicks ...string) *Message {
	return NewMessage(CmdMonitor, "-", strings.Join(nicks, ","))
}

// MonitorClear removes every nickname from the MONITOR presence list.
func MonitorClear() *Message {
	return NewMessage(CmdMonitor, "C")
}

// MonitorList requests the current contents of the MONITOR presence list.
func MonitorList() *Message {
	return NewMessage(CmdMonitor, "L")
}

// Version requests the server's version string.
func Version(target string) *Message {
	return NewMessage(CmdVersion, target)
}

// Time requests the local time of the given server.
func Time(target string) *Message {
	return NewMessage(CmdTime, target)
}

// Stats requests server statistics of the given query letter.
func Stats(query string) *Message {
	return NewMessage(CmdStats, query)
}

// Links requests the list of server names known to the queried server, optionally restricted to
// those matching mask.
func Links(mask string) *Message {
	if mask == "" {
		return NewMessage(CmdLinks)
	}
	return NewMessage(CmdLinks, mask)
}

// Trace attempts to trace the route to target, or the local server if target is empty.
func Trace(target string) *Message {
	if target == "" {
		return NewMessage(CmdTrace)
	}
	return NewMessage(CmdTrace, target)
}

// Users requests the list of users logged into target, or the local server if target is empty.
func Users(target string) *Message {
	if target == "" {
		return NewMessage(CmdUsers)
	}
	return NewMessage(CmdUsers, target)
}

// Summon asks the server to notify user to join IRC, optionally suggesting channel. Most networks
// disable this command outright (ERR_SUMMONDISABLED).
func Summon(user, channel string) *Message {
	if channel == "" {
		return NewMessage(CmdSummon, user)
	}
	return NewMessage(CmdSummon, user, channel)
}
