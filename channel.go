package irc

import (
	"strconv"
	"strings"
	"sync"
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

// Channel is the client's view of a single joined channel: its topic, modes, member roster, and
// ban/exception lists. A Channel is created when the client's own JOIN is acknowledged and is
// removed from the client's channel map on the client's own PART or KICK (a kick clears it
// first). A reconnect rejoins the previous channels by name and builds fresh Channel values.
type Channel struct {
	Name ChannelName

	Topic       string
	TopicAuthor string
	TopicTime   time.Time

	Modes ChanModes

	Creator     string
	HomepageURL string

	// JoinLimit and JoinDuration describe the negotiated join-throttle (mode 'j', of the form
	// "limit:duration"), or zero values if unset.
	JoinLimit    int
	JoinDuration time.Duration

	// IsActive is true while the channel is tracked and is set false by clear. A channel that is
	// cleared on a kick is then removed from the channel map, so a rejoin (including an
	// auto-reconnect rejoin) yields a new, active Channel.
	IsActive bool

	// TopicLocked mirrors mode 't': when true, only a channel operator may change the topic.
	TopicLocked bool
	// InviteOnly mirrors mode 'i'.
	InviteOnly bool
	// Moderated mirrors mode 'm': only voiced-and-above users may speak.
	Moderated bool
	// Key mirrors mode 'k' (the join key), empty if unset.
	Key string
	// UserLimit mirrors mode 'l' (the join limit), 0 if unset.
	UserLimit int

	// users maps a case-folded nickname to its ChannelUser entry.
	users cmap.ConcurrentMap[string, *ChannelUser]

	// ClientUser is the roster entry whose nick equals the client's own current nickname.
	// It is kept up to date as the client's nickname changes.
	ClientUser *ChannelUser

	// listMu guards Bans/Excepts/InviteExcepts, which may be read by external enumerators
	// concurrently with mode-change events mutating them.
	listMu        sync.Mutex
	Bans          []string
	BanExcepts    []string
	InviteExcepts []string

	casemap CaseMapping
}

// newChannel returns a freshly joined, empty Channel.
func newChannel(name ChannelName, cm CaseMapping) *Channel {
	return &Channel{
		Name:     name,
		Modes:    defaultChanModes,
		IsActive: true,
		users:    cmap.New[*ChannelUser](),
		casemap:  cm,
	}
}

func (c *Channel) key(nick string) string { return fold(nick, c.casemap) }

// Users returns a snapshot slice of every tracked ChannelUser. The slice is safe to range over
// without holding any lock, but it is a point-in-time read-only view: it does not reflect
// mutations made after it was taken.
func (c *Channel) Users() []*ChannelUser {
	items := c.users.Items()
	out := make([]*ChannelUser, 0, len(items))
	for _, u := range items {
		out = append(out, u)
	}
	return out
}

// User returns the ChannelUser entry for nick, or nil if nick is not a member.
func (c *Channel) User(nick string) *ChannelUser {
	u, _ := c.users.Get(c.key(nick))
	return u
}

// Len returns the number of tracked members.
func (c *Channel) Len() int { return c.users.Count() }

// addUser adds or replaces the roster entry for u, and updates ClientUser if u's nick matches
// selfNick (case-folded).
func (c *Channel) addUser(u *ChannelUser, selfNick string) {
	c.users.Set(c.key(u.Nick.String()), u)
	if equalFold(u.Nick.String(), selfNick, c.casemap) {
		c.ClientUser = u
	}
}

// removeUser disposes of the roster entry for nick.
func (c *Channel) removeUser(nick string) {
	k := c.key(nick)
	if u, ok := c.users.Get(k); ok && c.ClientUser == u {
		c.ClientUser = nil
	}
	c.users.Remove(k)
}

// renameUser re-keys a roster entry after a NICK change, preserving its status flags, and
// updates ClientUser if the entry it points to moved.
func (c *Channel) renameUser(from, to string) {
	u, ok := c.users.Get(c.key(from))
	if !ok {
		return
	}
	u.Nick = Nickname(to)
	c.users.Remove(c.key(from))
	c.users.Set(c.key(to), u)
}

// clear drops the channel's membership and list state and sets IsActive false; Name is kept.
func (c *Channel) clear() {
	c.users.Clear()
	c.ClientUser = nil
	c.IsActive = false
	c.listMu.Lock()
	c.Bans = nil
	c.BanExcepts = nil
	c.InviteExcepts = nil
	c.listMu.Unlock()
}

// applyModeChange applies one already-parsed ModeChange to the channel: PREFIX letters update
// the named ChannelUser's status; 't'/'i'/'m'/'k'/'l'/'f'/'j' update the simple fields; 'b'/'e'/'I' mutate
// the relevant list under listMu; everything else is a no-op placeholder for modes this
// projection doesn't track individually (e.g. 'n', 's').
func (c *Channel) applyModeChange(change ModeChange, ps PrefixSet) {
	if ps.isModeLetter(change.Mode) {
		if u := c.User(change.Param); u != nil {
			u.applyPrefixMode(change.Mode, change.Add)
		}
		return
	}

	switch change.Mode {
	case 'b':
		c.mutateList(&c.Bans, change)
	case 'e':
		c.mutateList(&c.BanExcepts, change)
	case 'I':
		c.mutateList(&c.InviteExcepts, change)
	case 't':
		c.TopicLocked = change.Add
	case 'i':
		c.InviteOnly = change.Add
	case 'm':
		c.Moderated = change.Add
	case 'k':
		if change.Add {
			c.Key = change.Param
		} else {
			c.Key = ""
		}
	case 'l':
		if change.Add {
			if n, err := strconv.Atoi(change.Param); err == nil {
				c.UserLimit = n
			}
		} else {
			c.UserLimit = 0
		}
	case 'f', 'j':
		if change.Add {
			c.JoinLimit, c.JoinDuration = parseJoinThrottle(change.Param)
		} else {
			c.JoinLimit, c.JoinDuration = 0, 0
		}
	}
}

// parseJoinThrottle parses a join-throttle mode parameter of the form "limit:duration", where
// duration is a plain count of seconds. Either half that fails to parse as an integer is left
// zero.
func parseJoinThrottle(param string) (limit int, dur time.Duration) {
	limitStr, durStr, _ := strings.Cut(param, ":")
	if n, err := strconv.Atoi(limitStr); err == nil {
		limit = n
	}
	if n, err := strconv.Atoi(durStr); err == nil {
		dur = time.Duration(n) * time.Second
	}
	return limit, dur
}

func (c *Channel) mutateList(list *[]string, change ModeChange) {
	c.listMu.Lock()
	defer c.listMu.Unlock()
	if change.Add {
		for _, e := range *list {
			if e == change.Param {
				return
			}
		}
		*list = append(*list, change.Param)
		return
	}
	for i, e := range *list {
		if e == change.Param {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}
