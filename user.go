package irc

// ChannelUser represents a single user's membership record within one Channel: their address
// as last observed, plus the PREFIX-mapped status flags the server has granted them.
type ChannelUser struct {
	Nick     Nickname
	Username string
	Host     string

	Owner     bool // PREFIX mode 'q', sigil usually '~'
	Protected bool // PREFIX mode 'a', sigil usually '&'
	Operator  bool // PREFIX mode 'o', sigil usually '@'
	HalfOp    bool // PREFIX mode 'h', sigil usually '%'
	Voiced    bool // PREFIX mode 'v', sigil usually '+'
}

// Mask returns the user's full nick!user@host address, or just the nick if username/host are
// not yet known (e.g. an entry populated from a bare NAMES reply).
func (u *ChannelUser) Mask() string {
	if u.Username == "" && u.Host == "" {
		return u.Nick.String()
	}
	return u.Nick.String() + "!" + u.Username + "@" + u.Host
}

// applyPrefixMode updates the status flags in response to a single-letter PREFIX mode change
// (o/h/v/a/q), as categorized by the negotiated PrefixSet.
func (u *ChannelUser) applyPrefixMode(mode byte, add bool) {
	switch mode {
	case 'q':
		u.Owner = add
	case 'a':
		u.Protected = add
	case 'o':
		u.Operator = add
	case 'h':
		u.HalfOp = add
	case 'v':
		u.Voiced = add
	}
}

// applySigils sets the status flag for every sigil in a NAMES-reply sigil prefix (such as "@"
// or "@+" under multi-prefix/NAMESX), using ps to map sigils back to mode letters.
func (u *ChannelUser) applySigils(sigils string, ps PrefixSet) {
	for i := 0; i < len(sigils); i++ {
		mode := ps.ModeFor(sigils[i])
		if mode != 0 {
			u.applyPrefixMode(mode, true)
		}
	}
}

// Status returns the highest-ranked display sigil currently granted to the user (e.g. '@' for an
// operator), or 0 if the user has no status in the channel.
func (u *ChannelUser) Status(ps PrefixSet) byte {
	switch {
	case u.Owner:
		return ps.SigilFor('q')
	case u.Protected:
		return ps.SigilFor('a')
	case u.Operator:
		return ps.SigilFor('o')
	case u.HalfOp:
		return ps.SigilFor('h')
	case u.Voiced:
		return ps.SigilFor('v')
	default:
		return 0
	}
}

// IsTrusted reports whether the user has half-op or any higher status.
func (u *ChannelUser) IsTrusted() bool {
	return u.HalfOp || u.Operator || u.Protected || u.Owner
}

// IsAdmin reports whether the user has operator or any higher status.
func (u *ChannelUser) IsAdmin() bool {
	return u.Operator || u.Protected || u.Owner
}
