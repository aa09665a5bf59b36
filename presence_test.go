package irc_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
	"github.com/zmilliron/irc/irctest"
)

func TestMonitorAddCommands_BatchesUnderWireLimit(t *testing.T) {
	nicks := make([]string, 200)
	for i := range nicks {
		nicks[i] = strings.Repeat("n", 20)
	}
	msgs := irc.MonitorAddCommands(nicks)
	require.NotEmpty(t, msgs)
	for _, m := range msgs {
		b, err := m.MarshalText()
		require.NoError(t, err)
		assert.LessOrEqual(t, len(b), 512)
	}
}

func TestWatchAddCommands_PrefixesEachToken(t *testing.T) {
	msgs := irc.WatchAddCommands([]string{"amy", "dave"})
	require.Len(t, msgs, 1)
	b, err := msgs[0].MarshalText()
	require.NoError(t, err)
	assert.Contains(t, string(b), "+amy")
	assert.Contains(t, string(b), "+dave")
}

func TestPresence_FriendGoesOnlineViaMonitor(t *testing.T) {
	server := irctest.NewServer()
	defer server.Close()

	server.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch m.Command {
		case irc.CmdNick:
			server.WriteString(":irc.example.com 005 bot MONITOR=100 :are supported by this server\r\n")
			server.WriteString(":irc.example.com 001 bot :welcome\r\n")
		case irc.CmdMonitor:
			server.WriteString(":irc.example.com 730 bot :amy!amy@host.example.com\r\n")
		}
	})

	client := &irc.Client{Nickname: "bot"}
	client.DialFn = func() (io.ReadWriteCloser, error) { return server, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	h := irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		switch m.Command {
		case irc.RplWelcome:
			client.AddFriends("amy")
		case irc.RplMonOnline:
			w.WriteMessage(irc.Quit("bye"))
			close(done)
		}
	})

	go func() { _ = client.ConnectAndRun(ctx, h) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timed out waiting for presence update")
	}

	friends := client.Friends()
	require.Len(t, friends, 1)
	assert.True(t, friends[0].IsOnline)
	assert.Equal(t, "host.example.com", friends[0].LastHost)
}

