package irc_test

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zmilliron/irc"
	"github.com/zmilliron/irc/irctest"
)

func TestFacade_RejectsBeforeRegistration(t *testing.T) {
	c := &irc.Client{}

	assert.ErrorIs(t, c.JoinChannel("#foo", ""), irc.ErrNotRegistered)
	assert.ErrorIs(t, c.PartChannel("#foo", ""), irc.ErrNotRegistered)
	assert.ErrorIs(t, c.PrivateMessage("nick", "hi"), irc.ErrNotRegistered)
	assert.ErrorIs(t, c.SetAway("brb"), irc.ErrNotRegistered)
	assert.ErrorIs(t, c.RequestWhois("nick"), irc.ErrNotRegistered)
	assert.ErrorIs(t, c.Knock("#foo"), irc.ErrNotRegistered)
}

func TestFacade_PrivateMessageRejectsSelfTarget(t *testing.T) {
	server := irctest.NewServer()
	defer server.Close()

	server.Handler = irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		if m.Command == irc.CmdNick {
			server.WriteString(fmt.Sprintf(":irc.example.com 001 %s :welcome\r\n", m.Params.Get(1)))
		}
	})

	client := &irc.Client{Nickname: "bot"}
	client.DialFn = func() (io.ReadWriteCloser, error) { return server, nil }

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	ready := make(chan error, 1)
	h := irc.HandlerFunc(func(w irc.MessageWriter, m *irc.Message) {
		if m.Command == irc.RplWelcome {
			ready <- client.PrivateMessage("bot", "hi myself")
			w.WriteMessage(irc.Quit("done"))
		}
	})

	go func() { _ = client.ConnectAndRun(ctx, h) }()

	select {
	case err := <-ready:
		assert.ErrorIs(t, err, irc.ErrTargetIsSelf)
	case <-ctx.Done():
		t.Fatal("timed out waiting for registration")
	}
}
