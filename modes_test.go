package irc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
)

func TestParseModeString_MixedSignsAndParams(t *testing.T) {
	cm := irc.ChanModes{A: "beI", B: "k", C: "l", D: "imnpst"}
	ps := irc.PrefixSet{Modes: "ov", Sigils: "@+"}

	changes, err := irc.ParseModeString("+ov-b", []string{"dave", "amy", "*!*@host"}, cm, ps)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	assert.Equal(t, irc.ModeChange{Add: true, Mode: 'o', Param: "dave"}, changes[0])
	assert.Equal(t, irc.ModeChange{Add: true, Mode: 'v', Param: "amy"}, changes[1])
	assert.Equal(t, irc.ModeChange{Add: false, Mode: 'b', Param: "*!*@host"}, changes[2])
}

func TestParseModeString_LimitOnlyTakesParamWhenSetting(t *testing.T) {
	cm := irc.ChanModes{A: "beI", B: "k", C: "l", D: "imnpst"}
	ps := irc.PrefixSet{Modes: "ov", Sigils: "@+"}

	changes, err := irc.ParseModeString("+l", []string{"50"}, cm, ps)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "50", changes[0].Param)

	changes, err = irc.ParseModeString("-l", nil, cm, ps)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Empty(t, changes[0].Param)
}

func TestParseModeString_MissingParamErrors(t *testing.T) {
	cm := irc.ChanModes{A: "beI", B: "k", C: "l", D: "imnpst"}
	ps := irc.PrefixSet{Modes: "ov", Sigils: "@+"}

	_, err := irc.ParseModeString("+o", nil, cm, ps)
	assert.Error(t, err)
}

func TestRenderModeString_GroupsConsecutiveSigns(t *testing.T) {
	changes := []irc.ModeChange{
		{Add: true, Mode: 'o', Param: "dave"},
		{Add: true, Mode: 'v', Param: "amy"},
		{Add: false, Mode: 'b', Param: "*!*@host"},
	}
	modeStr, params := irc.RenderModeString(changes)
	assert.Equal(t, "+ov-b", modeStr)
	assert.Equal(t, []string{"dave", "amy", "*!*@host"}, params)
}

func TestPrefixSet_SigilAndModeLookups(t *testing.T) {
	ps := irc.PrefixSet{Modes: "ohv", Sigils: "@%+"}
	assert.Equal(t, byte('@'), ps.SigilFor('o'))
	assert.Equal(t, byte('o'), ps.ModeFor('@'))
	assert.Equal(t, byte(0), ps.SigilFor('x'))
	assert.Equal(t, byte('@'), ps.HighestSigil("+@"))
}
