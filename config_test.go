package irc_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmilliron/irc"
)

const sampleConfig = `
uri = "ircs://irc.example.com:6697"
nickname = "bot"
user = "botuser"
realname = "Example Bot"
auto_reconnect = true
flood_limit = 2.5
ctcp_version = "examplebot v1"
`

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o644))

	cfg, err := irc.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ircs://irc.example.com:6697", cfg.URI)
	assert.Equal(t, "bot", cfg.Nickname)
	assert.True(t, cfg.AutoReconnect)
	assert.Equal(t, 2.5, cfg.FloodLimit)
	assert.Equal(t, "examplebot v1", cfg.CTCPVersion)
}

func TestConfig_NewClientPopulatesClientFields(t *testing.T) {
	cfg := &irc.Config{
		URI:      "ircs://irc.example.com:6697",
		Nickname: "bot",
		User:     "botuser",
		Realname: "Example Bot",
	}

	c, err := cfg.NewClient()
	require.NoError(t, err)
	assert.Equal(t, "irc.example.com:6697", c.Addr)
	assert.Equal(t, "bot", c.Nickname)
	assert.Nil(t, c.DialFn, "secure URIs without InsecureSkipVerify use the default tls.Dial path")
}

func TestConfig_NewClientPlaintextUsesDialFn(t *testing.T) {
	cfg := &irc.Config{
		URI:      "irc://irc.example.com:6667",
		Nickname: "bot",
	}

	c, err := cfg.NewClient()
	require.NoError(t, err)
	assert.NotNil(t, c.DialFn)
}

func TestConfig_NewClientRejectsBadURI(t *testing.T) {
	cfg := &irc.Config{URI: "ircs://"}
	_, err := cfg.NewClient()
	assert.Error(t, err)
}
