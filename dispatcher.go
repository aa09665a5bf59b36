package irc

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// WhoisResult accumulates the scattered WHOIS numerics (301/311/312/313/317/319/330/335/338/
// 378/671) for a single nickname until RPL_ENDOFWHOIS (318) sets Done. The entry is kept (not
// discarded) after Done is set, so a caller can read it back via Client.Whois at its own pace.
type WhoisResult struct {
	Nick        Nickname
	Username    string
	Host        string
	Realname    string
	Server      string
	ServerInfo  string
	Operator    bool
	IdleSecs    int
	Channels    []string
	Account     string
	ActualHost  string
	SecureConn  bool
	Away        bool
	AwayMessage string
	Done        bool
}

// WhowasResult accumulates the RPL_WHOWASUSER (314) entries for a single nickname until
// RPL_ENDOFWHOWAS (369) sets Done. A nickname with no history on the server ends up Done with a
// nil Entries slice.
type WhowasResult struct {
	Nick    Nickname
	Entries []WhowasEntry
	Done    bool
}

// WhowasEntry is one historical sighting of a nickname, from a single RPL_WHOWASUSER line.
type WhowasEntry struct {
	Username string
	Host     string
	Realname string
}

// UserHostEntry is one parsed token from a USERHOST reply (302): "<nick>['*']=('+'/'-')<host>",
// where a trailing '*' marks an IRC operator and the leading sign marks away ('-') or present
// ('+') status.
type UserHostEntry struct {
	Nick     Nickname
	Operator bool
	Away     bool
	Host     string
}

// GenericEvent wraps an inbound Message. The dispatcher does not construct it: a numeric or verb
// the dispatcher doesn't specifically project still reaches the next handler as the original
// *Message, so unrecognized messages are not dropped.
type GenericEvent struct {
	*Message
}

// engineState holds the protocol-engine-owned projections described by the data model: the
// channel map, query map, presence lists, and in-flight WHOIS/WHOWAS accumulators. It is rebuilt
// fresh on every (re)connect; only Friend/Ignore entries are carried across a reconnect: runOnce
// copies them into the new engineState with seedPresence, and reregisterPresence re-sends them
// on RPL_WELCOME.
type engineState struct {
	mu       sync.Mutex
	channels map[string]*Channel
	queries  map[string]*PrivateMessage
	friends  map[string]*Friend
	ignores  map[string]*IgnoredUser

	whois  map[string]*WhoisResult
	whowas map[string]*WhowasResult

	lastUserHost []UserHostEntry
	lastIsOn     []string
	selfAway     bool
}

func newEngineState() *engineState {
	return &engineState{
		channels: make(map[string]*Channel),
		queries:  make(map[string]*PrivateMessage),
		friends:  make(map[string]*Friend),
		ignores:  make(map[string]*IgnoredUser),
		whois:    make(map[string]*WhoisResult),
		whowas:   make(map[string]*WhowasResult),
	}
}

func (e *engineState) channel(name string, cm CaseMapping) *Channel {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.channels[fold(name, cm)]
}

func (e *engineState) channelList() []*Channel {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Channel, 0, len(e.channels))
	for _, c := range e.channels {
		out = append(out, c)
	}
	return out
}

func (e *engineState) query(peer string, cm CaseMapping) *PrivateMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queries[fold(peer, cm)]
}

// queryFor returns (creating if necessary) the PrivateMessage tracking peer, so the first inbound
// or outbound message to a peer gives that peer a tracked entry.
func (e *engineState) queryFor(peer string, cm CaseMapping) *PrivateMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := fold(peer, cm)
	q, ok := e.queries[k]
	if !ok {
		q = &PrivateMessage{Peer: Nickname(peer)}
		e.queries[k] = q
	}
	return q
}

// seedPresence copies Friend/IgnoredUser entries from prev into e, so a reconnect's fresh
// engineState starts with the presence lists the caller had registered before the disconnect.
// Every carried-over Friend starts offline again: whether it's still online on the new connection
// is unknown until the server confirms it via reregisterPresence's replies.
func (e *engineState) seedPresence(prev *engineState) {
	prev.mu.Lock()
	defer prev.mu.Unlock()
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, f := range prev.friends {
		e.friends[k] = &Friend{Nick: f.Nick}
	}
	for k, ig := range prev.ignores {
		e.ignores[k] = ig
	}
}

func (e *engineState) friendList() []*Friend {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Friend, 0, len(e.friends))
	for _, f := range e.friends {
		out = append(out, f)
	}
	return out
}

func (e *engineState) ignoreList() []*IgnoredUser {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*IgnoredUser, 0, len(e.ignores))
	for _, ig := range e.ignores {
		out = append(out, ig)
	}
	return out
}

func (e *engineState) addFriends(c *Client, nicks []string) {
	e.mu.Lock()
	for _, n := range nicks {
		k := fold(n, c.isupport.CaseMapping())
		if _, ok := e.friends[k]; !ok {
			e.friends[k] = &Friend{Nick: Nickname(n)}
		}
	}
	e.mu.Unlock()

	switch SelectPresenceBackend(c.isupport) {
	case PresenceBackendMonitor:
		for _, m := range MonitorAddCommands(nicks) {
			c.WriteMessage(m)
		}
	case PresenceBackendWatch:
		for _, m := range WatchAddCommands(nicks) {
			c.WriteMessage(m)
		}
	}
}

func (e *engineState) removeFriends(c *Client, nicks []string) {
	e.mu.Lock()
	for _, n := range nicks {
		delete(e.friends, fold(n, c.isupport.CaseMapping()))
	}
	e.mu.Unlock()

	switch SelectPresenceBackend(c.isupport) {
	case PresenceBackendMonitor:
		for _, m := range MonitorRemoveCommands(nicks) {
			c.WriteMessage(m)
		}
	case PresenceBackendWatch:
		for _, m := range WatchRemoveCommands(nicks) {
			c.WriteMessage(m)
		}
	}
}

func (e *engineState) addIgnores(c *Client, masks []string) {
	e.mu.Lock()
	for _, m := range masks {
		e.ignores[m] = &IgnoredUser{Mask: m, Network: c.isupport.Network()}
	}
	e.mu.Unlock()
	for _, m := range SilenceAddCommands(masks) {
		c.WriteMessage(m)
	}
}

func (e *engineState) removeIgnores(c *Client, masks []string) {
	e.mu.Lock()
	for _, m := range masks {
		delete(e.ignores, m)
	}
	e.mu.Unlock()
	for _, m := range SilenceRemoveCommands(masks) {
		c.WriteMessage(m)
	}
}

// reregisterPresence re-sends every tracked friend/ignore entry. The client calls it on every
// RPL_WELCOME, so a reconnect re-registers the lists carried over by seedPresence; it is not
// called when a WATCH/MONITOR/SILENCE capability appears later in a session.
func (e *engineState) reregisterPresence(c *Client) {
	e.mu.Lock()
	nicks := make([]string, 0, len(e.friends))
	for _, f := range e.friends {
		nicks = append(nicks, f.Nick.String())
	}
	masks := make([]string, 0, len(e.ignores))
	for _, ig := range e.ignores {
		masks = append(masks, ig.Mask)
	}
	e.mu.Unlock()

	if len(nicks) > 0 {
		switch SelectPresenceBackend(c.isupport) {
		case PresenceBackendMonitor:
			for _, m := range MonitorAddCommands(nicks) {
				c.WriteMessage(m)
			}
		case PresenceBackendWatch:
			for _, m := range WatchAddCommands(nicks) {
				c.WriteMessage(m)
			}
		}
	}
	if len(masks) > 0 && c.isupport.SupportsSilence() {
		for _, m := range SilenceAddCommands(masks) {
			c.WriteMessage(m)
		}
	}
}

// middleware returns the global handler which keeps channel/query/presence/whois state current
// from inbound messages and always calls next, so user handlers still see the original Message,
// including numerics/verbs it does not project (these are not wrapped as GenericEvent).
func (e *engineState) middleware(c *Client) middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(mw MessageWriter, m *Message) {
			e.apply(c, m)
			next.SpeakIRC(mw, m)
		})
	}
}

func (e *engineState) apply(c *Client, m *Message) {
	cm := c.isupport.CaseMapping()
	ps := c.isupport.Prefix()

	switch m.Command {
	case CmdJoin:
		chName := m.Params.Get(1)
		selfJoin := m.Source.Nick.Is(c.Nick().String())
		e.mu.Lock()
		ch, ok := e.channels[fold(chName, cm)]
		if !ok {
			ch = newChannel(ChannelName(chName), cm)
			e.channels[fold(chName, cm)] = ch
		}
		e.mu.Unlock()
		if selfJoin && !ch.IsActive {
			// The channel is still in the map but was cleared (IsActive false); drop its stale
			// roster instead of merging it with the fresh NAMES reply that follows.
			ch.clear()
		}
		ch.IsActive = true
		ch.addUser(&ChannelUser{Nick: m.Source.Nick, Username: m.Source.User, Host: m.Source.Host}, c.Nick().String())

	case CmdPrivmsg, CmdNotice, CTCPAction:
		target := m.Params.Get(1)
		if isChannelTarget(target, c.isupport) {
			break
		}
		peer := m.Source.Nick.String()
		if peer == "" {
			break
		}
		e.queryFor(peer, cm).update(m.Params.Get(2), m.Command == CTCPAction, false, time.Now())

	case CmdPart:
		chName := m.Params.Get(1)
		if ch := e.channel(chName, cm); ch != nil {
			if m.Source.Nick.Is(c.Nick().String()) {
				e.mu.Lock()
				delete(e.channels, fold(chName, cm))
				e.mu.Unlock()
			} else {
				ch.removeUser(m.Source.Nick.String())
			}
		}

	case CmdKick:
		chName := m.Params.Get(1)
		victim := m.Params.Get(2)
		if ch := e.channel(chName, cm); ch != nil {
			if equalFold(victim, c.Nick().String(), cm) {
				ch.clear()
				e.mu.Lock()
				delete(e.channels, fold(chName, cm))
				e.mu.Unlock()
			} else {
				ch.removeUser(victim)
			}
		}

	case CmdQuit:
		nick := m.Source.Nick.String()
		for _, ch := range e.channelList() {
			ch.removeUser(nick)
		}
		e.mu.Lock()
		if f, ok := e.friends[fold(nick, cm)]; ok {
			f.applyOnlineTransition(false, "", "")
		}
		e.mu.Unlock()

	case CmdNick:
		from := m.Source.Nick.String()
		to := m.Params.Get(1)
		for _, ch := range e.channelList() {
			ch.renameUser(from, to)
		}

	case CmdMode:
		chName := m.Params.Get(1)
		if ch := e.channel(chName, cm); ch != nil && len(m.Params) >= 2 {
			changes, err := ParseModeString(m.Params.Get(2), m.Params[2:], c.isupport.ChanModes(), ps)
			if err == nil {
				for _, ch2 := range changes {
					ch.applyModeChange(ch2, ps)
				}
			}
		}

	case CmdTopic:
		if ch := e.channel(m.Params.Get(1), cm); ch != nil {
			ch.Topic = m.Params.Get(2)
		}

	case RplTopic:
		if ch := e.channel(m.Params.Get(2), cm); ch != nil {
			ch.Topic = m.Params.Get(3)
		}

	case RplTopicWhoTime:
		if ch := e.channel(m.Params.Get(2), cm); ch != nil {
			ch.TopicAuthor = m.Params.Get(3)
			if ts, err := strconv.ParseInt(m.Params.Get(4), 10, 64); err == nil {
				ch.TopicTime = time.Unix(ts, 0)
			}
		}

	case RplChannelCreated:
		if ch := e.channel(m.Params.Get(2), cm); ch != nil {
			ch.Creator = m.Params.Get(3)
		}

	case RplChannelURL:
		if ch := e.channel(m.Params.Get(2), cm); ch != nil {
			ch.HomepageURL = m.Params.Get(3)
		}

	case RplChannelModeIs:
		if ch := e.channel(m.Params.Get(2), cm); ch != nil && !ch.TopicLocked && !ch.InviteOnly &&
			!ch.Moderated && ch.Key == "" && ch.UserLimit == 0 && ch.JoinLimit == 0 {
			// only applied when none of the channel's tracked modes is set yet, to avoid
			// double-applying modes some servers echo again on JOIN.
			if changes, err := ParseModeString(m.Params.Get(3), m.Params[3:], c.isupport.ChanModes(), ps); err == nil {
				for _, ch2 := range changes {
					ch.applyModeChange(ch2, ps)
				}
			}
		}

	case RplNamReply:
		chName := m.Params.Get(3)
		if ch := e.channel(chName, cm); ch != nil {
			for _, entry := range strings.Fields(m.Params.Get(4)) {
				nick, sigils := splitNameEntry(entry, c.isupport)
				u := ch.User(nick)
				if u == nil {
					u = &ChannelUser{Nick: Nickname(nick)}
				}
				u.applySigils(sigils, ps)
				ch.addUser(u, c.Nick().String())
			}
		}

	case RplEndOfNames:
		// UserListReceived: no-op placeholder for an event bus; callers poll Channel.Users().

	case RplLogOn, RplNowOn:
		e.presenceOnline(c, m.Params.Get(2), m.Params.Get(3), m.Params.Get(4))
	case RplLogOff, RplNowOff, RplWatchOff:
		e.presenceOffline(c, m.Params.Get(2))
	case RplMonOnline:
		for _, entry := range strings.Split(m.Params.Get(2), ",") {
			nick, user, host := splitMonitorEntry(entry)
			e.presenceOnline(c, nick, user, host)
		}
	case RplMonOffline:
		for _, nick := range strings.Split(m.Params.Get(2), ",") {
			e.presenceOffline(c, nick)
		}

	case RplWhoIsUser:
		w := e.whoisFor(m.Params.Get(2), cm)
		w.Username = m.Params.Get(3)
		w.Host = m.Params.Get(4)
		w.Realname = m.Params.Get(6)
	case RplWhoIsServer:
		w := e.whoisFor(m.Params.Get(2), cm)
		w.Server = m.Params.Get(3)
		w.ServerInfo = m.Params.Get(4)
	case RplWhoIsOperator:
		e.whoisFor(m.Params.Get(2), cm).Operator = true
	case RplWhoIsIdle:
		w := e.whoisFor(m.Params.Get(2), cm)
		if secs, err := strconv.Atoi(m.Params.Get(3)); err == nil {
			w.IdleSecs = secs
		}
	case RplWhoIsChannels:
		w := e.whoisFor(m.Params.Get(2), cm)
		w.Channels = strings.Fields(m.Params.Get(3))
	case RplWhoisAccount:
		e.whoisFor(m.Params.Get(2), cm).Account = m.Params.Get(3)
	case RplWhoisActually:
		e.whoisFor(m.Params.Get(2), cm).ActualHost = m.Params.Get(3)
	case RplWhoisHost:
		e.whoisFor(m.Params.Get(2), cm).ActualHost = strings.TrimPrefix(m.Params.Get(3), "is connecting from ")
	case RplWhoisSecure:
		e.whoisFor(m.Params.Get(2), cm).SecureConn = true
	case RplAway:
		w := e.whoisFor(m.Params.Get(2), cm)
		w.Away = true
		w.AwayMessage = m.Params.Get(3)
	case RplEndOfWhoIs:
		e.whoisFor(m.Params.Get(2), cm).Done = true

	case RplUnAway:
		e.mu.Lock()
		e.selfAway = false
		e.mu.Unlock()
	case RplNowAway:
		e.mu.Lock()
		e.selfAway = true
		e.mu.Unlock()

	case RplUserHost:
		entries := parseUserHostReply(m.Params.Get(2))
		e.mu.Lock()
		e.lastUserHost = entries
		e.mu.Unlock()

	case RplIsOn:
		nicks := strings.Fields(m.Params.Get(2))
		e.mu.Lock()
		e.lastIsOn = nicks
		e.mu.Unlock()

	case RplWhoWasUser:
		w := e.whowasFor(m.Params.Get(2), cm)
		e.mu.Lock()
		w.Entries = append(w.Entries, WhowasEntry{
			Username: m.Params.Get(3),
			Host:     m.Params.Get(4),
			Realname: m.Params.Get(6),
		})
		e.mu.Unlock()
	case RplEndOfWhoWas:
		e.whowasFor(m.Params.Get(2), cm).Done = true

	case RplErrNicknameInUse:
		// handled by clientState.middleware for the collision-retry itself; nothing to project.

	case RplErrCantChangeNick:
		// not projected here; no ServerError is built, the reply reaches handlers as the original Message.
	}
}

// whoisFor returns (creating if necessary) the in-flight WhoisResult accumulator for nick.
func (e *engineState) whoisFor(nick string, cm CaseMapping) *WhoisResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := fold(nick, cm)
	w, ok := e.whois[k]
	if !ok {
		w = &WhoisResult{Nick: Nickname(nick)}
		e.whois[k] = w
	}
	return w
}

// whowasFor returns (creating if necessary) the in-flight WhowasResult accumulator for nick.
func (e *engineState) whowasFor(nick string, cm CaseMapping) *WhowasResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	k := fold(nick, cm)
	w, ok := e.whowas[k]
	if !ok {
		w = &WhowasResult{Nick: Nickname(nick)}
		e.whowas[k] = w
	}
	return w
}

// whoisResult returns the WhoisResult accumulator for nick without creating one, or nil if no
// WHOIS reply (or RPL_AWAY) about that nick has been received.
func (e *engineState) whoisResult(nick string, cm CaseMapping) *WhoisResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.whois[fold(nick, cm)]
}

// whowasResult returns the WhowasResult accumulator for nick without creating one, or nil if no
// WHOWAS for that nick has ever been requested.
func (e *engineState) whowasResult(nick string, cm CaseMapping) *WhowasResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.whowas[fold(nick, cm)]
}

// userHostReply returns a copy of the most recent USERHOST (302) reply.
func (e *engineState) userHostReply() []UserHostEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]UserHostEntry(nil), e.lastUserHost...)
}

// isOnReply returns a copy of the nicknames confirmed online by the most recent ISON (303) reply.
func (e *engineState) isOnReply() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.lastIsOn...)
}

// isAway reports whether the client has most recently been told it's marked away.
func (e *engineState) isAway() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selfAway
}

// parseUserHostReply splits a USERHOST reply body into its individual entries.
func parseUserHostReply(raw string) []UserHostEntry {
	fields := strings.Fields(raw)
	entries := make([]UserHostEntry, 0, len(fields))
	for _, f := range fields {
		nick, rest, ok := strings.Cut(f, "=")
		if !ok {
			continue
		}
		entry := UserHostEntry{
			Nick:     Nickname(strings.TrimSuffix(nick, "*")),
			Operator: strings.HasSuffix(nick, "*"),
		}
		if rest != "" {
			entry.Away = rest[0] == '-'
			entry.Host = rest[1:]
		}
		entries = append(entries, entry)
	}
	return entries
}

func (e *engineState) presenceOnline(c *Client, nick, user, host string) {
	e.mu.Lock()
	f, ok := e.friends[fold(nick, c.isupport.CaseMapping())]
	e.mu.Unlock()
	if ok {
		f.applyOnlineTransition(true, user, host)
	}
}

func (e *engineState) presenceOffline(c *Client, nick string) {
	e.mu.Lock()
	f, ok := e.friends[fold(nick, c.isupport.CaseMapping())]
	e.mu.Unlock()
	if ok {
		f.applyOnlineTransition(false, "", "")
	}
}

// splitNameEntry splits a single NAMES-reply token into its bare nickname and any leading status
// sigils, additionally stripping a UHNAMES-style "!user@host" suffix if present.
func splitNameEntry(entry string, s *ISupport) (nick, sigils string) {
	ps := s.Prefix()
	i := 0
	for i < len(entry) && ps.ModeFor(entry[i]) != 0 {
		i++
	}
	sigils, rest := entry[:i], entry[i:]
	if s.SupportsUHNames() {
		if bang := strings.IndexByte(rest, '!'); bang >= 0 {
			rest = rest[:bang]
		}
	}
	return rest, sigils
}

// splitMonitorEntry splits a single RPL_MONITOR-online token, which may be a bare nickname or a
// full nick!user@host, into its parts.
func splitMonitorEntry(entry string) (nick, user, host string) {
	parts := fullAddress.FindStringSubmatch(entry)
	if parts == nil {
		return entry, "", ""
	}
	return parts[1], parts[2], parts[3]
}
