package irc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
)

func TestParseURI_PlaintextDefaultPort(t *testing.T) {
	p, err := irc.ParseURI("irc://irc.example.com")
	require.NoError(t, err)
	assert.Equal(t, "irc.example.com:6667", p.Addr)
	assert.False(t, p.TLS)
}

func TestParseURI_SecureDefaultPort(t *testing.T) {
	p, err := irc.ParseURI("ircs://irc.example.com")
	require.NoError(t, err)
	assert.Equal(t, "irc.example.com:6697", p.Addr)
	assert.True(t, p.TLS)
}

func TestParseURI_ExplicitPortOverridesDefault(t *testing.T) {
	p, err := irc.ParseURI("ircs://irc.example.com:6700")
	require.NoError(t, err)
	assert.Equal(t, "irc.example.com:6700", p.Addr)
	assert.True(t, p.TLS)
}

func TestParseURI_Irc6SchemeIsPlaintext(t *testing.T) {
	p, err := irc.ParseURI("irc6://[2001:db8::1]:6667")
	require.NoError(t, err)
	assert.Equal(t, "[2001:db8::1]:6667", p.Addr)
	assert.False(t, p.TLS)
}

func TestParseURI_BareHostPortDefaultsToPlaintext(t *testing.T) {
	p, err := irc.ParseURI("irc.example.com:6667")
	require.NoError(t, err)
	assert.Equal(t, "irc.example.com:6667", p.Addr)
	assert.False(t, p.TLS)
}

func TestParseURI_RejectsUnknownScheme(t *testing.T) {
	_, err := irc.ParseURI("https://irc.example.com")
	assert.Error(t, err)
}

func TestParseURI_RejectsEmpty(t *testing.T) {
	_, err := irc.ParseURI("")
	assert.Error(t, err)
}
