package irc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
)

func TestMaskToRegex_WildcardsTranslate(t *testing.T) {
	assert.True(t, irc.IsWM("*!*@*.example.com", "dave!~dave@host.example.com"))
	assert.False(t, irc.IsWM("*!*@*.example.com", "dave!~dave@host.example.net"))
}

func TestMaskToRegex_EscapesLiteralWildcards(t *testing.T) {
	assert.True(t, irc.IsWM(`a\*b`, "a*b"))
	assert.False(t, irc.IsWM(`a\*b`, "axb"))
}

func TestMaskToRegex_QuestionMarkMatchesExactlyOneChar(t *testing.T) {
	assert.True(t, irc.IsWM("a?c", "abc"))
	assert.False(t, irc.IsWM("a?c", "ac"))
	assert.False(t, irc.IsWM("a?c", "abbc"))
}

func TestMaskToRegex_EscapesRegexMetacharacters(t *testing.T) {
	assert.True(t, irc.IsWM("a.b", "a.b"))
	assert.False(t, irc.IsWM("a.b", "aXb"))
}

func TestMask_HostType(t *testing.T) {
	got := irc.Mask("dave!~dave@host.example.com", irc.MaskTypeHost)
	assert.Equal(t, "dave!~dave@*", got)
}

func TestMask_UserHostType(t *testing.T) {
	got := irc.Mask("dave!~dave@host.example.com", irc.MaskTypeUserHost)
	assert.Equal(t, "dave!*@*", got)
}

func TestMask_NickUserHostType(t *testing.T) {
	got := irc.Mask("dave!~dave@host.example.com", irc.MaskTypeNickUserHost)
	assert.Equal(t, "*!*@*", got)
}

func TestMask_DomainType(t *testing.T) {
	got := irc.Mask("dave!~dave@host.example.com", irc.MaskTypeDomain)
	assert.Equal(t, "dave!*@*.example.com", got)
}

func TestMask_DomainTypeSingleLabelHost(t *testing.T) {
	got := irc.Mask("dave!~dave@localhost", irc.MaskTypeDomain)
	assert.Equal(t, "dave!*@*", got)
}

func TestMask_ReturnsInputUnchangedWhenMalformed(t *testing.T) {
	got := irc.Mask("not-a-full-address", irc.MaskTypeHost)
	assert.Equal(t, "not-a-full-address", got)
}

func TestStripColors_RemovesForegroundAndBackground(t *testing.T) {
	assert.Equal(t, "hello", irc.StripColors("\x0304,08hello"))
	assert.Equal(t, "hello", irc.StripColors("\x034hello"))
	assert.Equal(t, "hello", irc.StripColors("\x03hello"))
}

func TestStripFormatting_RemovesControlCharsLeavesColors(t *testing.T) {
	text := "\x02bold\x02 \x0304red\x03"
	stripped := irc.StripFormatting(text)
	assert.Equal(t, "bold \x0304red\x03", stripped)
}

func TestEncodeDecode_RoundTrips(t *testing.T) {
	b, err := irc.Encode("PRIVMSG", "#test", "hello world")
	require.NoError(t, err)

	m, err := irc.Decode(b[:len(b)-2])
	require.NoError(t, err)
	assert.Equal(t, irc.Command("PRIVMSG"), m.Command)
	assert.Equal(t, "#test", m.Params.Get(1))
	assert.Equal(t, "hello world", m.Params.Get(2))
}
