package haikubot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uqcs/haikubot/src/haikubot/db"
)

func Test_parseCommand(t *testing.T) {
	tests := []struct {
		content string
		want    Command
	}{
		{"help", Command{Operation: OpHelp}},
		{"feature on global DetectHaiku", Command{OpFeatureOn, "global", db.ConfigDetectHaiku}},
		{"feature off <#1234> replytohaiku YellHaiku", Command{OpFeatureOff, "1234", db.ConfigReplyToHaiku | db.ConfigYellHaiku}},
		{"  feature   list   global ", Command{OpFeatureList, "global", 0}},
		{"feature list <#42>", Command{OpFeatureList, "42", 0}},
	}
	for _, tt := range tests {
		got, err := parseCommand(tt.content)
		if assert.NoError(t, err, tt.content) {
			assert.Equal(t, tt.want, got, tt.content)
		}
	}

	bad := []string{
		"",
		"feature",
		"feature on global",
		"feature off <#1234>",
		"feature list",
		"feature on #general DetectHaiku",
		"feature on <#abc> DetectHaiku",
		"feature on global DetectHaikus",
		"dance",
	}
	for _, content := range bad {
		_, err := parseCommand(content)
		assert.Error(t, err, content)
	}
}

func Test_parseFeatures(t *testing.T) {
	flags, err := parseFeatures([]string{"ReactToHaiku", "deletenonhaiku", "ServeRandomHaiku"})
	assert.NoError(t, err)
	assert.Equal(t, db.ConfigReactToHaiku|db.ConfigDeleteNonHaiku|db.ConfigServeRandomHaiku, flags)

	flags, err = parseFeatures(nil)
	assert.NoError(t, err)
	assert.Zero(t, flags)

	_, err = parseFeatures([]string{"ReactToHaiku", "Sing"})
	assert.Error(t, err)
}

func TestEnableDisableFeatures(t *testing.T) {
	flags := EnableFeatures(db.ConfigDetectHaiku, db.ConfigReactToHaiku|db.ConfigYellHaiku)
	assert.Equal(t, db.ConfigDetectHaiku|db.ConfigReactToHaiku|db.ConfigYellHaiku, flags)

	flags = DisableFeatures(flags, db.ConfigYellHaiku|db.ConfigDeleteNonHaiku)
	assert.Equal(t, db.ConfigDetectHaiku|db.ConfigReactToHaiku, flags)
}

func TestCommand_MentionTarget(t *testing.T) {
	assert.Equal(t, "global", Command{Target: "global"}.MentionTarget())
	assert.Equal(t, "<#1234>", Command{Target: "1234"}.MentionTarget())
}

func Test_memberPermissions(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "1", Name: "@everyone", Permissions: discordgo.PermissionSendMessages},
		{ID: "2", Name: "mods", Permissions: discordgo.PermissionManageChannels},
		{ID: "3", Name: "admins", Permissions: discordgo.PermissionAdministrator},
	}

	assert.Equal(t, int64(discordgo.PermissionSendMessages), memberPermissions("1", roles, nil))
	assert.Equal(t, int64(discordgo.PermissionSendMessages|discordgo.PermissionManageChannels), memberPermissions("1", roles, []string{"2"}))
	assert.Equal(t, int64(discordgo.PermissionAll), memberPermissions("1", roles, []string{"3"}))
	assert.Equal(t, int64(discordgo.PermissionSendMessages), memberPermissions("1", roles, []string{"unknown"}))
}

func TestFormatHaiku(t *testing.T) {
	lines := []string{"I am all out of", "Haiku but I promise the", "next one will be good"}

	assert.Equal(t, "That's a haiku!\n> I am all out of\n> Haiku but I promise the\n> next one will be good",
		FormatHaiku(lines, false))
	assert.Equal(t, "THAT'S A HAIKU!\n> I AM ALL OUT OF\n> HAIKU BUT I PROMISE THE\n> NEXT ONE WILL BE GOOD",
		FormatHaiku(lines, true))
}

func Test_hasCodeBlock(t *testing.T) {
	assert.True(t, hasCodeBlock("look at this ```go\nfunc main() {}\n```"))
	assert.False(t, hasCodeBlock("just `inline` code"))
}

func Test_detectIn(t *testing.T) {
	config := Config{HaikuChannels: []string{"10", "11"}}

	assert.True(t, detectIn(config, 0, "10"))
	assert.True(t, detectIn(config, db.ConfigDetectHaiku, "99"))
	assert.False(t, detectIn(config, db.ConfigReplyToHaiku, "99"))
}

func Test_yellFlag(t *testing.T) {
	config := Config{YellingChannels: []string{"20"}}

	assert.Equal(t, db.ConfigYellHaiku, yellFlag(config, "20"))
	assert.Zero(t, yellFlag(config, "21"))
}

func Test_quote(t *testing.T) {
	assert.Equal(t, "> one\n> two", quote("one\ntwo"))
	assert.Equal(t, "one\\ntwo", escape("one\ntwo"))
}

func Test_randomString(t *testing.T) {
	assert.Empty(t, randomString(nil))
	assert.Equal(t, "🌸", randomString([]string{"🌸"}))
}

func Test_toRecord(t *testing.T) {
	m := &discordgo.Message{
		ID:        "300",
		ChannelID: "200",
		GuildID:   "100",
		Content:   "some haiku",
		Author:    &discordgo.User{ID: "400"},
	}
	record, err := toRecord(m)
	require.NoError(t, err)
	assert.Equal(t, db.Haiku{GuildID: 100, ChannelID: 200, MessageID: 300, AuthorID: 400, AuthorMention: "<@400>", Content: "some haiku"}, record)

	m.GuildID = ""
	record, err = toRecord(m)
	require.NoError(t, err)
	assert.Zero(t, record.GuildID)

	m.ChannelID = "general"
	_, err = toRecord(m)
	assert.Error(t, err)
}

func Test_formatPoets(t *testing.T) {
	assert.Equal(t, "I haven't seen any haiku here yet.", formatPoets(nil))
	assert.Equal(t, "Top poets:\n1. <@2> - 3 haiku\n2. <@1> - 1 haiku", formatPoets([]db.Poet{
		{AuthorID: 2, AuthorMention: "<@2>", Count: 3},
		{AuthorID: 1, AuthorMention: "<@1>", Count: 1},
	}))
}

func newTestBot(t *testing.T) *HaikuBot {
	dbx, err := db.Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { dbx.Close() })
	return New(Config{}, dbx, zap.NewNop().Sugar())
}

func subcommand(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	}
}

func stringValue(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func TestHaikuBot_runCommand(t *testing.T) {
	ctx := context.Background()
	h := newTestBot(t)

	content, ephemeral, err := h.runCommand(ctx, "1", subcommand("check", stringValue("text", "I am all out of haikus on this fine morning good luck with your tests")))
	require.NoError(t, err)
	assert.True(t, ephemeral)
	assert.Equal(t, "That's a haiku!\n> I am all out of\n> haikus on this fine morning\n> good luck with your tests", content)

	content, _, err = h.runCommand(ctx, "1", subcommand("check", stringValue("text", "This is not a haiku")))
	require.NoError(t, err)
	assert.Equal(t, "That's not a haiku.", content)

	content, _, err = h.runCommand(ctx, "1", subcommand("syllables", stringValue("word", "hello")))
	require.NoError(t, err)
	assert.Equal(t, `"hello" has 2 syllables.`, content)

	content, ephemeral, err = h.runCommand(ctx, "1", subcommand("random"))
	require.NoError(t, err)
	assert.False(t, ephemeral)
	assert.Equal(t, "I haven't seen any haiku here yet.", content)

	_, err = db.HaikuDAO.Upsert(ctx, h.db, db.Haiku{GuildID: 1, ChannelID: 2, MessageID: 3, AuthorID: 4, AuthorMention: "<@4>", Content: "first line\nsecond line"})
	require.NoError(t, err)

	content, _, err = h.runCommand(ctx, "1", subcommand("random"))
	require.NoError(t, err)
	assert.Equal(t, "<@4> once wrote:\n> first line\n> second line", content)

	content, _, err = h.runCommand(ctx, "1", subcommand("poets"))
	require.NoError(t, err)
	assert.Equal(t, "Top poets:\n1. <@4> - 1 haiku", content)

	content, ephemeral, err = h.runCommand(ctx, "", subcommand("random"))
	require.NoError(t, err)
	assert.True(t, ephemeral)
	assert.Equal(t, "Haiku can only be served in a server.", content)

	_, _, err = h.runCommand(ctx, "not-a-guild", subcommand("poets"))
	assert.Error(t, err)
}

func TestHaikuBot_UpdateConfig(t *testing.T) {
	h := New(Config{Token: "secret", HaikuChannels: []string{"1"}}, nil, zap.NewNop().Sugar())

	h.UpdateConfig(Config{Token: "ignored", HaikuChannels: []string{"2"}})

	config := h.currentConfig()
	assert.Equal(t, "secret", config.Token)
	assert.Equal(t, []string{"2"}, config.HaikuChannels)
}
