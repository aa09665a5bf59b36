package irc

import (
	"bufio"
	"bytes"
	"context"
	"crypto/tls"
	"encoding"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

var errPingTimeout = errors.New("ping timeout")

// ConnectionState describes where a Client is in its connection lifecycle.
type ConnectionState int

const (
	// Disconnected is the state of a Client that has never connected, or whose connection has
	// been closed (including while AutoReconnect waits to dial again).
	Disconnected ConnectionState = iota
	// Connecting is the state between starting to dial the remote address and the connection
	// being established.
	Connecting
	// Connected is the state after the connection has been established, while the registration
	// handshake (PASS/NICK/USER) is sent, and before the server has accepted it (RPL_WELCOME,
	// numeric 001).
	Connected
	// Registered is the state after RPL_WELCOME has been received: the connection is fully
	// usable and channel/presence operations are permitted.
	Registered
)

func (s ConnectionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Registered:
		return "registered"
	default:
		return "unknown"
	}
}

// reconnectDelay is how long the client waits before attempting to re-dial after an
// unintentional disconnect.
const reconnectDelay = 10 * time.Second

// A Client manages a connection to an IRC server.
// It reads/writes IRC lines on the connection,
// and calls the handler for each Message it parses from the connection.
type Client struct {

	// The address ("host:port") of the IRC server. Only TLS connections are supported by
	// default; use DialFn for anything else, including plaintext connections.
	Addr string

	// The nickname used by the Client when connecting to an IRC network (required).
	// Nicknames cannot contain spaces. If the server rejects it as already in use, the client
	// retries with a generated suffix rather than failing registration outright.
	Nickname string

	// The user name (required).
	// User cannot contain spaces.
	User string

	// The realname of the client (required).
	// Also referred to as the gecos field.
	// Realname may contain spaces
	Realname string

	// The connection password (optional: depends on the network).
	Pass string

	// AutoReconnect, when true, causes the client to automatically re-dial and re-register
	// after an unintentional disconnect, registering again with Nickname and preserving the channel list and
	// friend/ignore lists. It does not apply when ConnectAndRun's context is canceled or when
	// the caller sends a QUIT.
	AutoReconnect bool

	// CTCPReplies overrides the strings sent in response to inbound CTCP VERSION/SOURCE/
	// CLIENTINFO queries. The zero value uses generic built-in defaults.
	CTCPReplies CTCPReplies

	// FloodLimit bounds the outgoing message rate as messages per second, enforced with a
	// token-bucket limiter so a burst of queued messages (e.g. rejoining many channels after a
	// reconnect) doesn't get the client killed for flooding. Zero disables rate limiting.
	FloodLimit rate.Limit

	// DialFn is a function that accepts no parameters and returns an io.ReadWriteCloser and error.
	//
	// The returned connection can be any io.ReadWriteCloser: irc, ircs, ws, wss, a server mock, etc.
	// The only requirement is that the stream consists of CRLF-delimited IRC messages.
	//
	// When DialFn is nil, the default behavior dials Addr with tls.Dial.
	DialFn func() (io.ReadWriteCloser, error)

	// Log receives structured log entries for connection lifecycle events and parse errors.
	// If nil, logrus.StandardLogger() is used.
	Log *logrus.Logger

	conn    io.ReadWriteCloser
	router  *Router
	handler Handler
	state   clientState
	wg      sync.WaitGroup

	isupport *ISupport
	limiter  *rate.Limiter
	engine   *engineState

	// pendingRejoin holds the channels (and their keys, if known) captured from the previous
	// connection's engineState just before runOnce replaces it; the next RplWelcome drains this
	// into a single batched JOIN and then clears it.
	pendingRejoin []rejoinSpec

	// errC is a buffered channel of errors.
	// The channel may be nil, so senders must always have a default case if sending blocked.
	// Only the first error sent to the channel will be used.
	errC chan error
}

// noop performs no operation
var noop HandlerFunc = func(mw MessageWriter, m *Message) {}

// ConnectAndRun establishes a connection to the remote IRC server and sends the appropriate
// IRC protocol commands to begin registration.
//
// The Handler h is called for every incoming Message parsed from the connection.
// Handlers are called synchronously because the ordering of incoming messages matters.
//
// ConnectAndRun always returns an error, with one exception: if the client sends an IRC "QUIT"
// message followed by receiving an io.EOF from the connection, then the returned error
// will be nil. If AutoReconnect is set, ConnectAndRun does not return on an unintentional
// disconnect; it instead waits reconnectDelay and dials again. If ctx is canceled during that
// wait, ConnectAndRun returns nil.
func (c *Client) ConnectAndRun(ctx context.Context, h Handler) error {
	if c.Nickname == "" {
		panic("client nickname cannot be empty")
	}
	if c.User == "" {
		c.User = "guest"
	}
	if c.Realname == "" {
		c.Realname = "..."
	}
	if c.Log == nil {
		c.Log = logrus.StandardLogger()
	}
	if c.isupport == nil {
		c.isupport = NewISupport()
	}

	for {
		err := c.runOnce(ctx, h)
		c.state.status = Disconnected
		if !c.AutoReconnect || ctx.Err() != nil || errors.Is(err, errIntentionalQuit) {
			if errors.Is(err, errIntentionalQuit) {
				return nil
			}
			return err
		}
		c.Log.WithError(err).WithField("delay", reconnectDelay).Warn("connection lost, reconnecting")
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
	}
}

var errIntentionalQuit = errors.New("client sent QUIT")

// runOnce performs a single dial-register-run-until-disconnect cycle.
func (c *Client) runOnce(ctx context.Context, h Handler) error {
	var (
		err     error
		cancel  context.CancelFunc
		mainctx context.Context
	)

	if c.DialFn == nil {
		if c.Addr == "" {
			panic("ConnectAndRun: Addr cannot be empty when DialFn is nil")
		}
		c.DialFn = func() (io.ReadWriteCloser, error) {
			return tls.Dial("tcp", c.Addr, nil)
		}
	}

	mainctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	c.state = clientState{
		nick:   c.Nickname,
		user:   c.User,
		server: strings.Split(c.Addr, ":")[0],
		status: Connecting,
	}

	if c.FloodLimit > 0 {
		c.limiter = rate.NewLimiter(c.FloodLimit, int(c.FloodLimit)+1)
	}

	c.Log.WithField("addr", c.Addr).Info("dialing")
	if c.conn, err = c.DialFn(); err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer func() {
		_ = c.conn.Close()
		c.conn = nil
	}()
	c.state.status = Connected

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer c.conn.Close()
		defer cancel()

		c.errC = make(chan error, 1)
		err = <-c.errC
		c.errC = nil
	}()

	if h == nil {
		h = noop
	}

	pinger := &pingHandler{
		timeout: func() {
			c.exit(errPingTimeout)
		},
	}

	var pending []rejoinSpec
	if c.engine != nil {
		for _, ch := range c.engine.channelList() {
			pending = append(pending, rejoinSpec{Name: ch.Name.String(), Key: ch.Key})
		}
	}
	prevEngine := c.engine
	c.router = &Router{}
	c.engine = newEngineState()
	if prevEngine != nil {
		c.engine.seedPresence(prevEngine)
	}
	c.pendingRejoin = pending
	c.handler = wrap(h, ctcpHandler, pingMiddleware, pinger.pongHandler, c.state.middleware(c),
		c.router.handleMode, c.engine.middleware(c), ctcpAutoResponder(c.CTCPReplies))

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.mainLoop(mainctx, pinger)
	}()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		select {
		case <-mainctx.Done():
			return
		case <-ctx.Done():
			c.WriteMessage(Quit("closing link"))
			select {
			case <-mainctx.Done():
			case <-time.After(3 * time.Second):
				c.exit(nil)
			}
		}
	}()

	if c.Pass != "" {
		c.WriteMessage(Pass(c.Pass))
	}
	c.WriteMessage(Nick(c.Nickname))
	c.WriteMessage(User(c.User, c.Realname))

	c.wg.Wait()
	if c.state.status == statusDisconnecting {
		if err == io.EOF || err == nil {
			return errIntentionalQuit
		}
	}
	return err
}

func (c *Client) mainLoop(ctx context.Context, pinger *pingHandler) {
	readLine := c.startReading(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case l, ok := <-readLine:
			if !ok {
				c.exit(errors.New("read channel closed"))
				return
			}
			m := new(Message)
			m.IncludePrefix()
			if err := m.UnmarshalText(l); err != nil {
				// A parse error might be caused by a malformed line from the remote server
				// or a bug in our message parser. Both cases are interesting but not
				// a reason to cause the client to exit.
				c.logParseError(&ParseError{Raw: string(l), cause: err})
				continue
			}
			// rfc1459: if the prefix is missing from the message, it is assumed to have
			// originated from the connection from which it was received.
			if (m.Source == Prefix{}) {
				m.Source.Host = c.state.server
			}
			c.applyISupport(m)
			c.handler.SpeakIRC(c, m)
		case <-time.After(2 * time.Minute):
			pinger.ping(ctx, c, "TIMEOUTCHECK")
		}
	}
}

// applyISupport merges RPL_ISUPPORT tokens into the client's negotiated capability set and
// keeps the router's mode-splitting tables current. It runs ahead of the handler chain so
// user handlers always see the up-to-date capability set for the message that's about to fire.
func (c *Client) applyISupport(m *Message) {
	if !m.Command.is(RplISupport) {
		return
	}
	if c.isupport.Apply(m) {
		c.Log.Info("NETWORK token changed; resetting negotiated capability assumptions")
	}
	c.router.chanModes = c.isupport.ChanModes()
	c.router.prefix = c.isupport.Prefix()
}

func (c *Client) startReading(ctx context.Context) <-chan []byte {
	lines := make(chan []byte)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(lines)

		s := bufio.NewScanner(c.conn)
		for s.Scan() {
			l := s.Bytes()
			if len(l) == 0 {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case lines <- l:
			}
		}
		err := s.Err()
		if err == nil {
			c.exit(io.EOF)
		} else {
			c.exit(err)
		}
	}()
	return lines
}

// exit requests the client to exit and return with err. Only the first such error
// is returned; any successive calls to exit will drop the error.
func (c *Client) exit(err error) {
	select {
	case c.errC <- err:
	default:
	}
}

// WriteMessage implements irc.MessageWriter.
// It writes m to the client's connection.
// Marshaling errors will be logged. Write errors will cause the client's run method to return
// with the first error.
func (c *Client) WriteMessage(m encoding.TextMarshaler) {
	var (
		err error
		b   []byte
	)

	if c.conn == nil {
		c.Log.WithField("message", fmt.Sprintf("%#v", m)).Error("WriteMessage: conn is nil")
		return
	}

	if msg, ok := m.(*Message); ok && !msg.includePrefix {
		msg.Source = c.prefix()
	}

	b, err = m.MarshalText()
	if err != nil {
		c.Log.WithError(err).WithField("message", fmt.Sprintf("%#v", m)).Warn("marshal text")
		return
	}
	if !bytes.HasSuffix(b, []byte("\r\n")) {
		b = append(b, []byte("\r\n")...)
	}

	if bytes.HasPrefix(b, []byte("QUIT")) {
		c.state.status = statusDisconnecting
	}

	if c.limiter != nil {
		_ = c.limiter.Wait(context.Background())
	}

	if _, err = c.conn.Write(b); err != nil {
		c.exit(err)
	}
}

// logParseError reports a malformed inbound line without treating it as fatal.
func (c *Client) logParseError(e *ParseError) {
	c.Log.WithError(e).WithField("raw", e.Raw).Debug("malformed message")
}

// State returns the client's current connection state.
func (c *Client) State() ConnectionState {
	return c.state.status
}

// ISupport returns the server capability set negotiated for the current (or most recent)
// connection.
func (c *Client) ISupport() *ISupport {
	return c.isupport
}

// Channel returns the tracked Channel for name, or nil if the client is not (or no longer) on it.
func (c *Client) Channel(name string) *Channel {
	return c.engine.channel(name, c.isupport.CaseMapping())
}

// Channels returns a snapshot of every channel the client currently believes it is active in.
func (c *Client) Channels() []*Channel {
	return c.engine.channelList()
}

// Query returns the PrivateMessage tracking a direct-message exchange with peer, or nil.
func (c *Client) Query(peer string) *PrivateMessage {
	return c.engine.query(peer, c.isupport.CaseMapping())
}

// Whois returns the (possibly still in-flight) WHOIS accumulator for nick, or nil if no WHOIS
// reply (or RPL_AWAY, numeric 301) about nick has been received.
func (c *Client) Whois(nick string) *WhoisResult {
	return c.engine.whoisResult(nick, c.isupport.CaseMapping())
}

// Whowas returns the (possibly still in-flight) WHOWAS accumulator for nick, or nil if nick was
// never queried with RequestWhowas.
func (c *Client) Whowas(nick string) *WhowasResult {
	return c.engine.whowasResult(nick, c.isupport.CaseMapping())
}

// UserHostReply returns the most recently received USERHOST reply.
func (c *Client) UserHostReply() []UserHostEntry {
	return c.engine.userHostReply()
}

// IsOnReply returns the nicknames confirmed online by the most recently received ISON reply.
func (c *Client) IsOnReply() []string {
	return c.engine.isOnReply()
}

// IsAway reports whether the client has most recently been told (305/306) that it's marked away.
func (c *Client) IsAway() bool {
	return c.engine.isAway()
}

// Friends returns a snapshot of the unified presence list (WATCH/MONITOR-backed).
func (c *Client) Friends() []*Friend {
	return c.engine.friendList()
}

// Ignores returns a snapshot of the SILENCE-backed ignore list.
func (c *Client) Ignores() []*IgnoredUser {
	return c.engine.ignoreList()
}

// AddFriends registers nicks with the unified presence facility (MONITOR preferred over WATCH),
// writing whatever batch of commands the negotiated backend and list size require.
func (c *Client) AddFriends(nicks ...string) {
	c.engine.addFriends(c, nicks)
}

// RemoveFriends unregisters nicks from the presence facility.
func (c *Client) RemoveFriends(nicks ...string) {
	c.engine.removeFriends(c, nicks)
}

// Ignore adds masks to the server-side SILENCE list.
func (c *Client) Ignore(masks ...string) {
	c.engine.addIgnores(c, masks)
}

// Unignore removes masks from the server-side SILENCE list.
func (c *Client) Unignore(masks ...string) {
	c.engine.removeIgnores(c, masks)
}

// retryNickname appends a short, collision-resistant suffix to nick, used when the server
// rejects the requested nickname with ERR_NICKNAMEINUSE (433) during registration.
func retryNickname(nick string, maxLen int) string {
	suffix := "_" + uuid.New().String()[:4]
	n := nick + suffix
	if maxLen > 0 && len(n) > maxLen {
		if keep := maxLen - len(suffix); keep > 0 {
			n = nick[:keep] + suffix
		} else {
			n = n[:maxLen]
		}
	}
	return n
}

// clientState groups and manages access to a minimal set of
// state around each new connection to the IRC server.
type clientState struct {

	// the client's current nickname, used for calculating max outgoing message length and for
	// matching events that originated from our client.
	nick string

	// the client's user as seen by the server, used for calculating max outgoing message length.
	// this may differ from the name defined in Client.User on servers which use an
	// ident service to verify the user name. Such servers typically prefix
	// the user name with a tilde (~) to indicate the ident was not
	// validated against an identd server.
	user string

	// the client's host as seen by the server, used for calculating max outgoing message length.
	host string

	// the server the client is connected to, used as the message source when incoming messages didn't contain a prefix.
	server string

	// status contains the client's connection state.
	status ConnectionState
}

const statusDisconnecting = ConnectionState(-1)

// Nick returns the client's current nickname according to the client's internal state tracking.
// This is used by some route matchers to determine when a message originated from or targeted our client.
func (c *Client) Nick() Nickname {
	return Nickname(c.state.nick)
}

// prefix returns the estimated prefix based on internal state tracking,
// used by Message to calculate the actual limit of outgoing messages.
func (c *Client) prefix() Prefix {
	return Prefix{
		Nick: Nickname(c.state.nick),
		Host: c.state.host,
		User: c.state.user,
	}
}

// rejoinSpec names a channel to rejoin after a reconnect, carrying its key (if the channel
// required one) so the rejoin doesn't fail against a server that still enforces it.
type rejoinSpec struct {
	Name string
	Key  string
}

// batchRejoin builds the single JOIN message used to rejoin every channel in specs. RFC2812
// positions JOIN's key tokens against its channel names by index, so keyed channels are placed
// first in the command and their keys are listed; unkeyed channels follow with no key token.
func batchRejoin(specs []rejoinSpec) *Message {
	var keyed, unkeyed []rejoinSpec
	for _, s := range specs {
		if s.Key != "" {
			keyed = append(keyed, s)
		} else {
			unkeyed = append(unkeyed, s)
		}
	}
	ordered := append(keyed, unkeyed...)
	names := make([]string, len(ordered))
	for i, s := range ordered {
		names[i] = s.Name
	}
	if len(keyed) == 0 {
		return NewMessage(CmdJoin, strings.Join(names, ","))
	}
	keys := make([]string, len(keyed))
	for i, s := range keyed {
		keys[i] = s.Key
	}
	return NewMessage(CmdJoin, strings.Join(names, ","), strings.Join(keys, ","))
}

var fullAddress = regexp.MustCompile("^([^!@]+)!(.+?)@(.+)?$")

// stateMiddleware intercepts various events to keep the client state up to date.
func (s *clientState) middleware(c *Client) middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(mw MessageWriter, m *Message) {
			switch m.Command {

			// By saving our host (as seen by the server) we can more accurately calculate the
			// maximum length of any message we can send, because the 512-byte line length limit
			// defined by the IRC protocol will include our nickname and host in each message
			// when they are received by others.
			//
			// Format: "Welcome to the Internet Relay Network <nick>!<user>@<host>"
			case RplWelcome:
				s.status = Registered
				fields := strings.Fields(m.Params.Get(2))
				if len(fields) == 0 {
					fields = []string{""}
				}
				if parts := fullAddress.FindStringSubmatch(fields[len(fields)-1]); parts != nil {
					s.nick = parts[1]
					s.user = parts[2]
					s.host = parts[3]
				}
				if len(c.pendingRejoin) > 0 {
					mw.WriteMessage(batchRejoin(c.pendingRejoin))
					c.pendingRejoin = nil
				}
				c.engine.reregisterPresence(c)
			case RplMyInfo:
				if len(m.Params) > 2 {
					s.server = m.Params.Get(2)
				} else {
					s.server = m.Source.Host
				}
			case RplHostHidden:
				// "<target> <host> :is now your displayed host"
				if len(m.Params) > 1 {
					s.host = m.Params.Get(2)
				}
			case RplErrNicknameInUse, RplErrNickCollision:
				if s.status != Registered {
					next := retryNickname(s.nick, c.isupport.NickLen())
					s.nick = next
					mw.WriteMessage(Nick(next))
				}
			case CmdNick:
				if m.Source.Nick.Is(s.nick) {
					s.nick = m.Params.Get(1)
				}
			}

			next.SpeakIRC(mw, m)
		})
	}
}
