package irc

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// requireRegistered returns ErrNotRegistered unless the client has completed the registration
// handshake (RPL_WELCOME received). Connection-establishing operations (none are exposed on the
// facade; ConnectAndRun owns those) are exempt by not calling this.
func (c *Client) requireRegistered() error {
	if c.State() != Registered {
		return ErrNotRegistered
	}
	return nil
}

// channelLimit returns the smallest per-prefix join limit named in the negotiated CHANLIMIT
// token, or 0 if the server didn't announce one (no limit enforced locally).
func (c *Client) channelLimit() int {
	raw := c.isupport.ChanLimit()
	if raw == "" {
		return 0
	}
	limit := 0
	for _, entry := range strings.Split(raw, ",") {
		_, nStr, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}
		n, err := strconv.Atoi(nStr)
		if err != nil || n <= 0 {
			continue
		}
		if limit == 0 || n < limit {
			limit = n
		}
	}
	return limit
}

// JoinChannel joins channel, optionally with a key, after validating the name against the
// negotiated CHANTYPES/CHANNELLEN and the joined-channel count against CHANLIMIT.
func (c *Client) JoinChannel(channel, key string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	name, err := NewChannelName(channel, c.isupport.ChanTypes(), c.isupport.ChannelLen())
	if err != nil {
		return err
	}
	if limit := c.channelLimit(); limit > 0 && len(c.Channels()) >= limit {
		return ErrTooManyChannels
	}
	if key != "" {
		c.WriteMessage(JoinWithKey(name.String(), key))
	} else {
		c.WriteMessage(Join(name.String()))
	}
	return nil
}

// PartChannel leaves channel with an optional reason.
func (c *Client) PartChannel(channel, reason string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	name, err := NewChannelName(channel, c.isupport.ChanTypes(), c.isupport.ChannelLen())
	if err != nil {
		return err
	}
	if reason != "" {
		c.WriteMessage(PartWithReason(name.String(), reason))
	} else {
		c.WriteMessage(Part(name.String()))
	}
	return nil
}

// PartAllChannels leaves every joined channel in a single PART command.
func (c *Client) PartAllChannels() error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(PartAll())
	return nil
}

// outgoingPrefixLen estimates the octets the server will prepend when relaying a cmd message to
// target back out to other clients -- our own hostmask plus the wire delimiters -- so
// splitPayload can keep every chunk under the 512-octet line limit end to end, not just on the
// wire between us and the server.
func (c *Client) outgoingPrefixLen(cmd Command, target string) int {
	n := len(cmd) + 1 + len(target) + 2 // "CMD" SP target SP ':'
	if p := c.prefix(); p != (Prefix{}) {
		n += 1 + len(p.String()) + 1 // ':' prefix SP
	}
	return n
}

// sendSplit writes text to target as one or more cmd messages, using splitPayload so an
// over-long body is split across multiple lines instead of silently dropped by WriteMessage's
// marshal-error path.
func (c *Client) sendSplit(cmd Command, target, text string) {
	for _, chunk := range splitPayload(c.outgoingPrefixLen(cmd, target), text) {
		c.WriteMessage(NewMessage(cmd, target, chunk))
	}
}

// PrivateMessage sends a PRIVMSG to target (a nick or channel, optionally STATUSMSG-prefixed),
// rejecting an attempt to message the client's own current nickname. A body that would exceed
// the negotiated line limit is split across multiple PRIVMSG lines.
func (c *Client) PrivateMessage(target, text string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	if err := c.validateNotSelf(target); err != nil {
		return err
	}
	c.sendSplit(CmdPrivmsg, target, text)
	if !isChannelTarget(target, c.isupport) {
		c.engine.queryFor(target, c.isupport.CaseMapping()).update(text, false, true, time.Now())
	}
	return nil
}

// NoticeMessage sends a NOTICE to target. A body that would exceed the negotiated line limit is
// split across multiple NOTICE lines.
func (c *Client) NoticeMessage(target, text string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	if err := c.validateNotSelf(target); err != nil {
		return err
	}
	c.sendSplit(CmdNotice, target, text)
	if !isChannelTarget(target, c.isupport) {
		c.engine.queryFor(target, c.isupport.CaseMapping()).update(text, false, true, time.Now())
	}
	return nil
}

// Action sends a CTCP ACTION (an emote, "/me") to target.
func (c *Client) Action(target, action string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Describe(target, action))
	return nil
}

// validateNotSelf strips any STATUSMSG sigil prefix before comparing target against the client's
// own nickname, since a channel target is never "self" regardless of its sigil.
func (c *Client) validateNotSelf(target string) error {
	stripped := strings.TrimLeft(target, c.isupport.Prefix().Sigils)
	if stripped != "" && stripped[0] != '#' && stripped[0] != '&' && equalFold(stripped, c.Nick().String(), c.isupport.CaseMapping()) {
		return ErrTargetIsSelf
	}
	return nil
}

// SetChannelTopic sets channel's topic, checking TOPICLEN and requiring operator/half-op status
// when the channel has mode +t set and the caller isn't one.
func (c *Client) SetChannelTopic(channel, topic string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	if n := c.isupport.TopicLen(); n > 0 && len(topic) > n {
		return ErrNameTooLong
	}
	if ch := c.Channel(channel); ch != nil && ch.TopicLocked {
		if ch.ClientUser == nil || !ch.ClientUser.IsTrusted() {
			return ErrPermissionDenied
		}
	}
	c.WriteMessage(SetTopic(channel, topic))
	return nil
}

// SetChannelMode writes a single mode change to channel, rejecting the change locally if the
// caller's tracked status doesn't meet the permission a PREFIX-letter change requires.
func (c *Client) SetChannelMode(channel string, change ModeChange) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	ps := c.isupport.Prefix()
	ch := c.Channel(channel)
	if ch != nil && ch.ClientUser != nil {
		switch {
		case ps.isModeLetter(change.Mode):
			switch change.Mode {
			case 'o', 'q', 'a':
				if !ch.ClientUser.IsAdmin() {
					return ErrPermissionDenied
				}
			case 'h', 'v':
				if !ch.ClientUser.IsTrusted() {
					return ErrPermissionDenied
				}
			}
		case change.Mode == 'b' || change.Mode == 'e' || change.Mode == 'I':
			if !ch.ClientUser.IsTrusted() {
				return ErrPermissionDenied
			}
		}
	}
	sign := "-"
	if change.Add {
		sign = "+"
	}
	c.WriteMessage(Mode(channel, sign+string(change.Mode), change.Param))
	return nil
}

// KickUser removes nick from channel with an optional reason, requiring the caller to be at
// least half-op in the client's tracked roster.
func (c *Client) KickUser(channel, nick, reason string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	if ch := c.Channel(channel); ch != nil && ch.ClientUser != nil && !ch.ClientUser.IsTrusted() {
		return ErrPermissionDenied
	}
	if reason != "" {
		c.WriteMessage(KickWithReason(channel, nick, reason))
	} else {
		c.WriteMessage(Kick(channel, nick))
	}
	return nil
}

// InviteUser invites nick to channel.
func (c *Client) InviteUser(nick, channel string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Invite(nick, channel))
	return nil
}

// RequestWhois queries the server for nick's WHOIS information. The result is delivered
// asynchronously via the engine's WHOIS accumulator and surfaced to handlers as the scattered
// 311/312/.../318 numerics arrive; there is no synchronous return value.
func (c *Client) RequestWhois(nick string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Whois(nick))
	return nil
}

// RequestWhowas queries the server for nick's last-known WHOWAS information.
func (c *Client) RequestWhowas(nick string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Whowas(nick))
	return nil
}

// RequestWho queries the server with a WHO mask.
func (c *Client) RequestWho(mask string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Who(mask))
	return nil
}

// SetAway sets (or, with an empty message, clears) the client's away status.
func (c *Client) SetAway(message string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	if n := c.isupport.AwayLen(); n > 0 && len(message) > n {
		return ErrNameTooLong
	}
	if message == "" {
		c.WriteMessage(RemoveAway())
	} else {
		c.WriteMessage(Away(message))
	}
	return nil
}

// SendOper attempts to gain operator status.
func (c *Client) SendOper(name, password string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Oper(name, password))
	return nil
}

// RequestList requests the channel list, optionally filtered to the given channels.
func (c *Client) RequestList(channels ...string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(List(channels...))
	return nil
}

// RequestUserHost queries user/host/operator/away information for up to 5 nicknames. The reply
// is read back via UserHostReply.
func (c *Client) RequestUserHost(nicks ...string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(UserHost(nicks...))
	return nil
}

// RequestUserIP queries the IP addresses of the given users via the non-standard USERIP command.
func (c *Client) RequestUserIP(nicks ...string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(UserIP(nicks...))
	return nil
}

// RequestIsOn checks whether each of nicks is currently connected. The reply is read back via
// IsOnReply.
func (c *Client) RequestIsOn(nicks ...string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(IsOn(nicks...))
	return nil
}

// RequestLinks queries the server names known to the network, optionally restricted to those
// matching mask.
func (c *Client) RequestLinks(mask string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Links(mask))
	return nil
}

// RequestTime queries the local time of target, or the connected server if target is empty.
func (c *Client) RequestTime(target string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Time(target))
	return nil
}

// RequestVersion queries the version string of target, or the connected server if target is
// empty.
func (c *Client) RequestVersion(target string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Version(target))
	return nil
}

// RequestStats queries server statistics for the given query letter.
func (c *Client) RequestStats(query string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Stats(query))
	return nil
}

// RequestTrace attempts to trace the route to target, or the local server if target is empty.
func (c *Client) RequestTrace(target string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Trace(target))
	return nil
}

// RequestUsers queries the list of users logged into target, or the local server if target is
// empty.
func (c *Client) RequestUsers(target string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Users(target))
	return nil
}

// SummonUser asks the server to notify user to join IRC, optionally suggesting channel. Most
// networks disable SUMMON outright (ERR_SUMMONDISABLED); this only sends the request.
func (c *Client) SummonUser(user, channel string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(Summon(user, channel))
	return nil
}

// Knock requests an invitation to an invite-only channel that supports the KNOCK extension.
func (c *Client) Knock(channel string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	if !c.isupport.Has("KNOCK") {
		return ErrNotSupported
	}
	c.WriteMessage(Knock(channel))
	return nil
}

// SendCTCPPing sends a round-tripped CTCP PING to target for latency measurement.
func (c *Client) SendCTCPPing(target string) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(CTCPPingRoundTrip(target))
	return nil
}

// OfferDCCChat offers a direct chat connection to target, listening on addr:port.
func (c *Client) OfferDCCChat(target string, addr net.IP, port int) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(DCCChatOffer(target, addr, port))
	return nil
}

// OfferDCCSend offers a file transfer to target, listening on addr:port.
func (c *Client) OfferDCCSend(target, filename string, addr net.IP, port int, filesize int64) error {
	if err := c.requireRegistered(); err != nil {
		return err
	}
	c.WriteMessage(DCCSendOffer(target, filename, addr, port, filesize))
	return nil
}
