package irc

import "strings"

// Friend is a single entry in the unified presence list: whichever of MONITOR or WATCH the
// server supports, a Friend's nick is registered with that facility and its online/offline
// transitions update IsOnline.
type Friend struct {
	Nick     Nickname
	LastUser string
	LastHost string
	IsOnline bool
}

// IgnoredUser is a single entry in the server-side SILENCE list.
type IgnoredUser struct {
	Mask    string
	Network string
}

// PresenceBackend selects which server facility backs the Friend list.
type PresenceBackend int

const (
	// PresenceBackendNone is used when the server supports neither MONITOR nor WATCH; Friend
	// add/remove calls still update local state but never write to the connection.
	PresenceBackendNone PresenceBackend = iota
	PresenceBackendWatch
	PresenceBackendMonitor
)

// SelectPresenceBackend picks MONITOR over WATCH when the server offers both, per the negotiated
// preference.
func SelectPresenceBackend(s *ISupport) PresenceBackend {
	switch {
	case s.SupportsMonitor():
		return PresenceBackendMonitor
	case s.SupportsWatch():
		return PresenceBackendWatch
	default:
		return PresenceBackendNone
	}
}

// batchBudget is the maximum line length (510 octets, reserving 2 for the CRLF terminator that
// splitPayload/Message.MarshalText itself appends) available to a presence/ignore batch line.
const batchBudget = wireLimit - len(lineTerminator)

// batchJoined splits tokens into groups such that "prefix" + the group joined by sep never
// exceeds batchBudget octets (unless a single token alone does); every batch starts with prefix.
// It is used for MONITOR (comma-joined) and, through batchPrefixed, WATCH (space-joined);
// SILENCE sends one mask per line and does not batch.
func batchJoined(prefix string, tokens []string, sep string) []string {
	if len(tokens) == 0 {
		return nil
	}
	var batches []string
	cur := prefix
	curHasAny := false
	for _, t := range tokens {
		cand := t
		if curHasAny {
			cand = sep + t
		}
		if curHasAny && len(cur)+len(cand) > batchBudget {
			batches = append(batches, cur)
			cur = prefix + t
			curHasAny = true
			continue
		}
		cur += cand
		curHasAny = true
	}
	if curHasAny {
		batches = append(batches, cur)
	}
	return batches
}

// batchPrefixed splits tokens, each independently prefixed with sign (as WATCH requires, e.g.
// "+nick1 +nick2 ..."), into space-joined groups, each starting with "WATCH :" so that the whole
// WATCH line is bounded by batchBudget.
func batchPrefixed(sign string, tokens []string) []string {
	prefixed := make([]string, len(tokens))
	for i, t := range tokens {
		prefixed[i] = sign + t
	}
	return batchJoined(string(CmdWatch)+" :", prefixed, " ")
}

// MonitorAddCommands builds the outbound MONITOR + lines needed to register nicks, batching so
// each line's "MONITOR + " plus comma-joined nick list stays under the 510-octet budget.
func MonitorAddCommands(nicks []string) []*Message {
	return monitorCommands("+", nicks)
}

// MonitorRemoveCommands builds the outbound MONITOR - lines needed to unregister nicks.
func MonitorRemoveCommands(nicks []string) []*Message {
	return monitorCommands("-", nicks)
}

func monitorCommands(sign string, nicks []string) []*Message {
	prefix := string(CmdMonitor) + " " + sign + " :"
	batches := batchJoined(prefix, nicks, ",")
	msgs := make([]*Message, 0, len(batches))
	for _, b := range batches {
		msgs = append(msgs, NewMessage(CmdMonitor, sign, strings.TrimPrefix(b, prefix)))
	}
	return msgs
}

// WatchAddCommands builds the outbound WATCH lines needed to register nicks, each token
// individually prefixed with '+' and batched under the 510-octet budget.
func WatchAddCommands(nicks []string) []*Message {
	return watchCommands("+", nicks)
}

// WatchRemoveCommands builds the outbound WATCH lines needed to unregister nicks.
func WatchRemoveCommands(nicks []string) []*Message {
	return watchCommands("-", nicks)
}

func watchCommands(sign string, nicks []string) []*Message {
	batches := batchPrefixed(sign, nicks)
	msgs := make([]*Message, 0, len(batches))
	for _, b := range batches {
		msgs = append(msgs, NewMessage(CmdWatch, strings.Fields(strings.TrimPrefix(b, string(CmdWatch)+" :"))...))
	}
	return msgs
}

// SilenceAddCommands builds the outbound SILENCE lines to add masks to the ignore list.
func SilenceAddCommands(masks []string) []*Message {
	return silenceCommands("+", masks)
}

// SilenceRemoveCommands builds the outbound SILENCE lines to remove masks from the ignore list.
func SilenceRemoveCommands(masks []string) []*Message {
	return silenceCommands("-", masks)
}

func silenceCommands(sign string, masks []string) []*Message {
	msgs := make([]*Message, 0, len(masks))
	for _, m := range masks {
		msgs = append(msgs, NewMessage(CmdSilence, sign+m))
	}
	return msgs
}

// applyOnlineTransition updates f.IsOnline and reports whether the value actually changed, so
// callers only emit a presence-change event on a real transition.
func (f *Friend) applyOnlineTransition(online bool, user, host string) (changed bool) {
	changed = f.IsOnline != online
	f.IsOnline = online
	if online {
		if user != "" {
			f.LastUser = user
		}
		if host != "" {
			f.LastHost = host
		}
	}
	return changed
}
