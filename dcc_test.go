package irc_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
)

func dccBody(t *testing.T, m *irc.Message) string {
	t.Helper()
	text, err := m.Text()
	require.NoError(t, err)
	return trimCTCPBody(text)
}

// trimCTCPBody strips the CTCP delimiters and "DCC " subcommand prefix that CTCP() wraps the
// body in, e.g. "\x01DCC CHAT chat 3232235521 5000\x01" -> "CHAT chat 3232235521 5000".
func trimCTCPBody(s string) string {
	if len(s) > 0 && s[0] == 0x01 {
		s = s[1:]
	}
	if len(s) > 0 && s[len(s)-1] == 0x01 {
		s = s[:len(s)-1]
	}
	const prefix = "DCC "
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		s = s[len(prefix):]
	}
	return s
}

func TestDCCChatOffer_EncodesAddrAndPort(t *testing.T) {
	m := irc.DCCChatOffer("dave", net.ParseIP("192.168.0.1"), 5000)
	body := dccBody(t, m)
	assert.Equal(t, "CHAT chat 3232235521 5000", body)
}

func TestDCCSendOffer_ReplacesSpacesInFilename(t *testing.T) {
	m := irc.DCCSendOffer("dave", "my file.txt", net.ParseIP("10.0.0.1"), 1234, 9001)
	body := dccBody(t, m)
	assert.Equal(t, "SEND my_file.txt 167772161 1234 9001", body)
}

func TestParseDCC_ChatRoundTripsOfferedAddress(t *testing.T) {
	offer := irc.DCCChatOffer("dave", net.ParseIP("192.168.0.1"), 5000)
	body := dccBody(t, offer)

	req, err := irc.ParseDCC("amy", body)
	require.NoError(t, err)
	assert.Equal(t, irc.DCCChat, req.Kind)
	assert.Equal(t, "192.168.0.1", req.Addr.String())
	assert.Equal(t, 5000, req.Port)
	assert.False(t, req.Reverse)
}

func TestParseDCC_SendRoundTripsOfferedFields(t *testing.T) {
	offer := irc.DCCSendOffer("dave", "report.pdf", net.ParseIP("10.0.0.1"), 1234, 9001)
	body := dccBody(t, offer)

	req, err := irc.ParseDCC("amy", body+" "+irc.NewDCCToken())
	require.NoError(t, err)
	assert.Equal(t, irc.DCCSend, req.Kind)
	assert.Equal(t, "report.pdf", req.Filename)
	assert.Equal(t, "10.0.0.1", req.Addr.String())
	assert.Equal(t, 1234, req.Port)
	assert.EqualValues(t, 9001, req.Filesize)
	assert.NotEmpty(t, req.Token)
}

func TestParseDCC_ReverseDCCHasZeroPort(t *testing.T) {
	req, err := irc.ParseDCC("amy", "CHAT chat 3232235521 0")
	require.NoError(t, err)
	assert.True(t, req.Reverse)
}

func TestParseDCC_ResumeAndAccept(t *testing.T) {
	resume, err := irc.ParseDCC("amy", "RESUME report.pdf 1234 4096")
	require.NoError(t, err)
	assert.Equal(t, irc.DCCResume, resume.Kind)
	assert.EqualValues(t, 4096, resume.Position)
	assert.Equal(t, 1234, resume.Port)

	accept, err := irc.ParseDCC("amy", "ACCEPT report.pdf 1234 4096 some-token")
	require.NoError(t, err)
	assert.Equal(t, irc.DCCAccept, accept.Kind)
	assert.Equal(t, "some-token", accept.Token)
}

func TestParseDCC_RejectsUnknownSubcommand(t *testing.T) {
	_, err := irc.ParseDCC("amy", "FROB chat 1 2")
	assert.Error(t, err)
}

func TestParseDCC_RejectsMalformedPort(t *testing.T) {
	_, err := irc.ParseDCC("amy", "CHAT chat 3232235521 notaport")
	assert.Error(t, err)
}

func TestNewDCCToken_GeneratesDistinctValues(t *testing.T) {
	a := irc.NewDCCToken()
	b := irc.NewDCCToken()
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
