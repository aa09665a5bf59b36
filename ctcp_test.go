package irc_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
)

func TestCTCPPingRoundTrip_LatencyParsesOwnTimestamp(t *testing.T) {
	m := irc.CTCPPingRoundTrip("dave")

	b, err := m.MarshalText()
	require.NoError(t, err)
	line := string(b)

	const marker = "\x01PING "
	start := strings.Index(line, marker)
	require.GreaterOrEqual(t, start, 0)
	start += len(marker)
	end := strings.LastIndex(line, "\x01")
	require.Greater(t, end, start)
	timestamp := line[start:end]

	d, ok := irc.CTCPPingLatency(timestamp)
	require.True(t, ok)
	assert.GreaterOrEqual(t, d, time.Duration(0))
	assert.Less(t, d, 5*time.Second)
}

func TestCTCPPingLatency_RejectsGarbage(t *testing.T) {
	_, ok := irc.CTCPPingLatency("not-a-timestamp")
	assert.False(t, ok)
}

func TestAsCTCPReply_ClassifiesRewrittenNotice(t *testing.T) {
	m := &irc.Message{
		Command: irc.Command("_CTCP_REPLY_VERSION"),
		Params:  irc.Params{"dave", "some client 1.0"},
	}

	ev, ok := irc.AsCTCPReply(m)
	require.True(t, ok)
	assert.True(t, ev.IsCtcpReply)
	assert.Equal(t, "VERSION", ev.Subcommand)
	assert.Equal(t, "some client 1.0", ev.Params.Get(2))
}

func TestAsCTCPReply_RejectsOrdinaryNotice(t *testing.T) {
	m := &irc.Message{
		Command: irc.CmdNotice,
		Params:  irc.Params{"dave", "just a notice"},
	}

	_, ok := irc.AsCTCPReply(m)
	assert.False(t, ok)
}
