package irc

import "time"

// PrivateMessage tracks the latest direct-message exchange with a single peer. Exactly one
// instance exists per peer nickname; it is created on the first inbound message from that peer,
// or when the caller explicitly opens a query.
type PrivateMessage struct {
	Peer Nickname

	LastText   string
	LastIsCTCP bool
	ReceivedAt time.Time

	// FromSelf is true when LastText was the last message we sent to Peer rather than received
	// from them, so a caller that only tracks one PrivateMessage entry per peer (rather than a
	// full transcript) can still tell which direction the last line went.
	FromSelf bool
}

// update records an incoming or outgoing message as the most recent activity with this peer.
func (q *PrivateMessage) update(text string, isCTCP, fromSelf bool, at time.Time) {
	q.LastText = text
	q.LastIsCTCP = isCTCP
	q.FromSelf = fromSelf
	q.ReceivedAt = at
}
