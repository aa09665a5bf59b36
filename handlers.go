package irc

import (
	"context"
	"regexp"
	"sync"
	"time"
)

// A Handler responds to an IRC message.
//
// An IRC message may be any type, including PRIVMSG, NOTICE, JOIN, Numerics,
// etc. It is up to the calling function to map incoming messages/commands
// to the appropriate handler.
//
// Handlers should avoid modifying the provided Message.
type Handler interface {
	SpeakIRC(MessageWriter, *Message)
}

// The HandlerFunc type is an adapter to allow the usage of ordinary functions
// as handlers, following the same pattern as http.HandlerFunc.
type HandlerFunc func(MessageWriter, *Message)

// SpeakIRC calls f(w, m).
func (f HandlerFunc) SpeakIRC(w MessageWriter, m *Message) {
	f(w, m)
}

type middleware func(Handler) Handler

func wrap(h Handler, mw ...middleware) Handler {
	if len(mw) < 1 {
		return h
	}

	wrapped := h
	// loop in reverse to preserve middleware order
	for i := len(mw) - 1; i >= 0; i-- {
		wrapped = mw[i](wrapped)
	}

	return wrapped
}

var ctcpRegex = regexp.MustCompile("^\\x01([^ \\x01]+) ?(.*?)\\x01?$")

// ctcpHandler looks for incoming PRIVMSG or NOTICE messages that match the CTCP protocol,
// and if found, modifies the Message's Command field and strips CTCP formatting from
// the message parameters before passing the message to the next Handler.
//
// ctcpHandler MUST be called before any handlers or middleware which need to
// differentiate between regular PRIVMSG/NOTICE and CTCP messages.
func ctcpHandler(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPrivmsg) && !m.Command.is(CmdNotice) {
			next.SpeakIRC(mw, m)
			return
		}
		body := m.Params.Get(2)
		if len(body) == 0 {
			next.SpeakIRC(mw, m)
			return
		}
		if body[0] != 0x01 { // "\x01" is the ctcp delim
			next.SpeakIRC(mw, m)
			return
		}
		parts := ctcpRegex.FindStringSubmatch(body)
		// parts should never be nil if we made it this far, but if it is we pass it on
		// because we don't know how to deal with it
		if parts == nil {
			next.SpeakIRC(mw, m)
			return
		}
		// now we know the message is either a CTCP or CTCP Reply
		subcommand := parts[1]
		body = parts[2]

		switch m.Command {
		case CmdPrivmsg:
			m.Command = CTCPAction
			m.Command = NewCTCPCmd(subcommand)
		case CmdNotice:
			m.Command = NewCTCPReplyCmd(subcommand)
		}
		m.Params[1] = body
		next.SpeakIRC(mw, m)
	})
}

// pingMiddleware intercepts server PING messages and replies with the appropriate PONG.
func pingMiddleware(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPing) {
			next.SpeakIRC(mw, m)
			return
		}
		mw.WriteMessage(Pong(m.Params.Get(1)))
	})
}

type pingHandler struct {
	sync.Mutex
	expecting map[string]chan bool
	timeout   func()
}

func (ph *pingHandler) ping(ctx context.Context, mw MessageWriter, m string) {
	ph.Lock()
	defer ph.Unlock()

	if ph.expecting == nil {
		ph.expecting = make(map[string]chan bool)
	}

	// if we're already expecting a reply for the given ping then we skip sending another
	// in order to simplify the logic. having duplicate in-flight pings would not
	// be of any benefit.
	if _, exists := ph.expecting[m]; exists {
		return
	}

	ret := make(chan bool, 1)
	ph.expecting[m] = ret
	go func() {
		// we know this is the only goroutine waiting for a reply to m, so when it exits
		// for any reason we must remove the reference.
		defer func() {
			ph.Lock()
			defer ph.Unlock()
			delete(ph.expecting, m)
		}()

		select {
		case <-ret:
		case <-ctx.Done():
		case <-time.After(10 * time.Second):
			ph.timeout()
		}
	}()
	mw.WriteMessage(Ping(m))
}

func (ph *pingHandler) pongHandler(next Handler) Handler {
	return HandlerFunc(func(mw MessageWriter, m *Message) {
		if !m.Command.is(CmdPong) {
			next.SpeakIRC(mw, m)
			return
		}

		ph.Lock()
		defer ph.Unlock()

		reply := m.Params.Get(2)

		// if we were not expecting the reply, pass it on
		if _, expected := ph.expecting[reply]; !expected {
			next.SpeakIRC(mw, m)
			return
		}

		// if we were expecting the reply, intercept it and don't pass it on
		select {
		case ph.expecting[reply] <- true:
		default:
		}
	})
}

// CAP LS negotiation is intentionally not wired up here: capability negotiation beyond the
// ISUPPORT numerics is out of scope for this client (see spec's non-goals).
