package irc_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
)

func TestNewNickname_AcceptsValidNames(t *testing.T) {
	n, err := irc.NewNickname("dave_", 28)
	require.NoError(t, err)
	assert.Equal(t, irc.Nickname("dave_"), n)
}

func TestNewNickname_RejectsEmpty(t *testing.T) {
	_, err := irc.NewNickname("", 28)
	assert.Error(t, err)
}

func TestNewNickname_RejectsLeadingDigit(t *testing.T) {
	_, err := irc.NewNickname("1dave", 28)
	assert.Error(t, err)
}

func TestNewNickname_RejectsOverLength(t *testing.T) {
	_, err := irc.NewNickname(strings.Repeat("a", 10), 9)
	assert.ErrorIs(t, err, irc.ErrNameTooLong)
}

func TestNewNickname_FallsBackToDefaultLenWhenUnset(t *testing.T) {
	_, err := irc.NewNickname(strings.Repeat("a", 29), 0)
	assert.ErrorIs(t, err, irc.ErrNameTooLong)

	n, err := irc.NewNickname(strings.Repeat("a", 28), 0)
	require.NoError(t, err)
	assert.Len(t, string(n), 28)
}

func TestNewChannelName_PrependsHashWhenSigilMissing(t *testing.T) {
	c, err := irc.NewChannelName("test", "#&", 50)
	require.NoError(t, err)
	assert.Equal(t, irc.ChannelName("#test"), c)
}

func TestNewChannelName_AcceptsNegotiatedSigil(t *testing.T) {
	c, err := irc.NewChannelName("&local", "#&", 50)
	require.NoError(t, err)
	assert.Equal(t, irc.ChannelName("&local"), c)
}

func TestNewChannelName_RejectsEmpty(t *testing.T) {
	_, err := irc.NewChannelName("", "#&", 50)
	assert.Error(t, err)
}

func TestNewChannelName_RejectsControlCharsAndCommas(t *testing.T) {
	_, err := irc.NewChannelName("#has,comma", "#&", 50)
	assert.Error(t, err)
}

func TestNewChannelName_RejectsOverLength(t *testing.T) {
	_, err := irc.NewChannelName("#"+strings.Repeat("a", 60), "#&", 10)
	assert.ErrorIs(t, err, irc.ErrNameTooLong)
}

func TestNewUsername_RejectsSpacesAndControlChars(t *testing.T) {
	_, err := irc.NewUsername("has space")
	assert.Error(t, err)

	_, err = irc.NewUsername("has\x00nul")
	assert.Error(t, err)

	u, err := irc.NewUsername("valid_user")
	require.NoError(t, err)
	assert.Equal(t, irc.Username("valid_user"), u)
}

func TestNewPassword_EmptyIsValid(t *testing.T) {
	p, err := irc.NewPassword("")
	require.NoError(t, err)
	assert.Equal(t, irc.Password(""), p)
}

func TestNewPassword_RejectsSpaces(t *testing.T) {
	_, err := irc.NewPassword("has space")
	assert.Error(t, err)
}
