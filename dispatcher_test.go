package irc_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
	"github.com/zmilliron/irc/irctest"
)

func TestDispatcher_ChannelRosterAndModes(t *testing.T) {
	server := irctest.NewServer()
	defer server.Close()

	server.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch m.Command {
		case irc.CmdNick:
			server.WriteString(":irc.example.com 001 bot :welcome\r\n")
			server.WriteString(":irc.example.com 005 bot PREFIX=(ov)@+ CHANMODES=beI,k,l,imnpst :are supported by this server\r\n")
		case irc.CmdJoin:
			ch := m.Params.Get(1)
			server.WriteString(fmt.Sprintf(":bot!~bot@host JOIN :%s\r\n", ch))
			server.WriteString(fmt.Sprintf(":irc.example.com 353 bot = %s :@bot +amy dave\r\n", ch))
			server.WriteString(fmt.Sprintf(":irc.example.com 366 bot %s :End of NAMES list\r\n", ch))
			server.WriteString(fmt.Sprintf(":op!op@host MODE %s +t\r\n", ch))
		}
	})

	client := &irc.Client{Nickname: "bot"}
	client.DialFn = func() (io.ReadWriteCloser, error) { return server, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var ch *irc.Channel
	h := irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch m.Command {
		case irc.RplWelcome:
			w.WriteMessage(irc.Join("#test"))
		case irc.CmdMode:
			ch = client.Channel("#test")
			w.WriteMessage(irc.Quit("bye"))
			close(done)
		}
	})

	go func() { _ = client.ConnectAndRun(ctx, h) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for mode event")
	}

	require.NotNil(t, ch)
	assert.True(t, ch.TopicLocked)
	require.Equal(t, 3, ch.Len())

	op := ch.User("bot")
	require.NotNil(t, op)
	assert.True(t, op.Operator)

	voiced := ch.User("amy")
	require.NotNil(t, voiced)
	assert.True(t, voiced.Voiced)

	plain := ch.User("dave")
	require.NotNil(t, plain)
	assert.False(t, plain.Voiced)
	assert.False(t, plain.Operator)
}

func TestDispatcher_PartRemovesChannel(t *testing.T) {
	server := irctest.NewServer()
	defer server.Close()

	server.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch m.Command {
		case irc.CmdNick:
			server.WriteString(":irc.example.com 001 bot :welcome\r\n")
		case irc.CmdJoin:
			ch := m.Params.Get(1)
			server.WriteString(fmt.Sprintf(":bot!~bot@host JOIN :%s\r\n", ch))
			server.WriteString(fmt.Sprintf(":irc.example.com 366 bot %s :End of NAMES list\r\n", ch))
		case irc.CmdPart:
			ch := m.Params.Get(1)
			server.WriteString(fmt.Sprintf(":bot!~bot@host PART %s :leaving\r\n", ch))
		}
	})

	client := &irc.Client{Nickname: "bot"}
	client.DialFn = func() (io.ReadWriteCloser, error) { return server, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	var stillThere, afterPart *irc.Channel
	h := irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch m.Command {
		case irc.RplWelcome:
			w.WriteMessage(irc.Join("#gone"))
		case irc.RplEndOfNames:
			stillThere = client.Channel("#gone")
			w.WriteMessage(irc.PartWithReason("#gone", "leaving"))
		case irc.CmdPart:
			if m.Source.Nick.Is("bot") {
				afterPart = client.Channel("#gone")
				w.WriteMessage(irc.Quit("bye"))
				close(done)
			}
		}
	})

	go func() { _ = client.ConnectAndRun(ctx, h) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for part event")
	}

	assert.NotNil(t, stillThere)
	assert.Nil(t, afterPart)
}
