/*
Package irc provides a client-side IRC implementation covering RFC 2812 and the IRCv3-era
extensions in common use: ISUPPORT (005) capability negotiation, WATCH/MONITOR/SILENCE presence
tracking, CTCP and DCC negotiation, UHNAMES/NAMESX, STATUSMSG, and optional TLS.

API

These are the main interfaces and structs that you will interact with while using this package:

	// A Handler responds to an IRC message.
	type Handler interface {
		SpeakIRC(MessageWriter, *Message)
	}

	// A MessageWriter can write an IRC message.
	type MessageWriter interface {
		WriteMessage(encoding.TextMarshaler)
	}

	// Message represents any incoming or outgoing IRC line.
	// It also satisfies the encoding.TextMarshaler interface used by MessageWriter.
	type Message struct {

		// Tags contains any IRCv3 message tags.
		Tags    Tags

		// Source is where the message originated from.
		Source  Prefix

		// Command is the IRC verb or numeric (event type) such as PRIVMSG, NOTICE, 001, etc.
		Command Command

		// Params contains all the message parameters.
		Params  Params
	}

	// A Client manages a connection, negotiates ISUPPORT, and maintains the channel/query/
	// presence state derived from the messages it parses.
	type Client struct {
		// ...
	}

	// ConnectAndRun connects to the IRC server and runs the client until the connection is
	// closed, calling h for each message the client parses from the connection. If the Client's
	// AutoReconnect field is set, ConnectAndRun reconnects on disconnect, rejoining previously
	// joined channels and re-registering friend/ignore lists once registration completes again.
	func (c *Client) ConnectAndRun(ctx context.Context, h Handler) error {
		// ...
	}

Encoding and Decoding

The Message type can marshal and unmarshal itself to and from a raw line of IRC-formatted text.
If you only want IRC parsing and encoding, you can use this type for encoding or decoding IRC
messages without the rest of the client.

Request lifecycle

  - A Client's ConnectAndRun method is called and given a Handler.
  - The handler is wrapped in a middleware chain that implements PING/PONG keepalive, CTCP
    dispatch and auto-reply, connection-state tracking (nick/user/host, registration), mode-letter
    routing, and the channel/query/presence projection (engineState), before finally calling h.
  - ConnectAndRun calls the function in the DialFn field of the Client to connect to an IRC
    stream.
  - The client reads lines from the stream and parses them into Message structs until the
    connection is closed.
  - Each parsed Message results in a call through the middleware chain and then to the caller's
    handler, which is given an object implementing MessageWriter as well as a pointer to the
    parsed Message.
  - On RPL_WELCOME, any channels joined before a reconnect are rejoined in a single batched JOIN,
    and friend/ignore lists are re-registered via WATCH, MONITOR, or SILENCE, whichever the
    server's ISUPPORT advertises.

Facade

Client also exposes validated request methods (JoinChannel, PrivateMessage, SetChannelMode,
RequestWhois, and others) that check registration state and permission gates locally before
writing to the connection, so callers get an error back immediately instead of waiting on a
server-side rejection.
*/
package irc
