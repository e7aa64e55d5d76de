package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uqcs/haikubot/src/haikubot/db"
)

func TestConfigFromViper_Defaults(t *testing.T) {
	conf := configFromViper(newViper())

	assert.Equal(t, db.ConfigReactToHaiku|db.ConfigServeRandomHaiku, conf.ActionFlags)
	assert.Equal(t, []string{"💯", "🍙", "🍵", "🍶", "🍜"}, conf.PositiveReacts)
	assert.Equal(t, []string{"🚫", "⛔"}, conf.NegativeReacts)
	assert.Empty(t, conf.HaikuChannels)
	assert.Equal(t, "./haikuDB.sqlite3", conf.DBPath)
	assert.Equal(t, ":2112", conf.MetricsAddr)
	assert.False(t, conf.Debug)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	err := os.WriteFile(path, []byte(`
token: abc
reactHaiku: false
replyHaiku: true
yellHaiku: true
haikuChannels: ["100", "101"]
yellingChannels: ["102"]
positiveReacts: ["🌸"]
dbPath: /tmp/haiku.db
`), 0o600)
	require.NoError(t, err)

	v, err := loadConfig(path)
	require.NoError(t, err)
	conf := configFromViper(v)

	assert.Equal(t, "abc", conf.Token)
	assert.Equal(t, db.ConfigReplyToHaiku|db.ConfigServeRandomHaiku|db.ConfigYellHaiku, conf.ActionFlags)
	assert.Equal(t, []string{"100", "101"}, conf.HaikuChannels)
	assert.Equal(t, []string{"102"}, conf.YellingChannels)
	assert.Equal(t, []string{"🌸"}, conf.PositiveReacts)
	assert.Equal(t, "/tmp/haiku.db", conf.DBPath)
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("HAIKU_BOT_TOKEN", "from-env")
	t.Setenv("HAIKU_BOT_DETECTHAIKU", "true")
	t.Setenv("HAIKU_BOT_HAIKUCHANNELS", "1 2")

	conf := configFromViper(newViper())
	assert.Equal(t, "from-env", conf.Token)
	assert.True(t, conf.ActionFlags.DetectHaiku())
	assert.Equal(t, []string{"1", "2"}, conf.HaikuChannels)
}

func TestLoadConfig_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unclosed"), 0o600))

	_, err := loadConfig(path)
	assert.Error(t, err)
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSyllablesCommand(t *testing.T) {
	out, err := execute(t, "", "syllables", "hello", "uqcs", "😄")
	require.NoError(t, err)
	assert.Equal(t, "hello\t2\nuqcs\t4\n😄\t0\n", out)

	_, err = execute(t, "", "syllables")
	assert.Error(t, err)
}

func TestCheckCommand(t *testing.T) {
	out, err := execute(t, "I am all out of haikus on this fine morning good luck with your tests\n", "check")
	require.NoError(t, err)
	assert.Equal(t, "I am all out of\nhaikus on this fine morning\ngood luck with your tests\n", out)

	_, err = execute(t, "This is not a haiku", "check")
	assert.Error(t, err)
}
