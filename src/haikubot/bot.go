package haikubot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uqcs/haikubot/src/haiku"
	"github.com/uqcs/haikubot/src/haikubot/db"
	"github.com/uqcs/haikubot/src/metrics"
)

type Config struct {
	Token           string
	ActionFlags     db.ConfigFlag
	PositiveReacts  []string
	NegativeReacts  []string
	HaikuChannels   []string
	YellingChannels []string

	Debug       bool
	DBPath      string
	MetricsAddr string
}

func (c Config) String() string {
	return fmt.Sprintf("\tFeatures: %s\n\tHaikuChannels: %v\n\tYellingChannels: %v\n\tDBPath: %s\n\tMetricsAddr: %s\n",
		c.ActionFlags, c.HaikuChannels, c.YellingChannels, c.DBPath, c.MetricsAddr)
}

type HaikuBot struct {
	session *discordgo.Session
	db      *sqlx.DB
	log     *zap.SugaredLogger

	mu           sync.RWMutex
	config       Config
	channelCache map[string]*discordgo.Channel
	dmCache      map[string]*discordgo.Channel
}

func New(config Config, dbx *sqlx.DB, logger *zap.SugaredLogger) *HaikuBot {
	logger.Infof("Haiku Bot Config:\n%v", config)
	return &HaikuBot{
		config:       config,
		db:           dbx,
		log:          logger,
		channelCache: make(map[string]*discordgo.Channel),
		dmCache:      make(map[string]*discordgo.Channel),
	}
}

// UpdateConfig swaps in a reloaded configuration. The token of a running session cannot change.
func (h *HaikuBot) UpdateConfig(config Config) {
	h.mu.Lock()
	defer h.mu.Unlock()
	config.Token = h.config.Token
	h.config = config
	h.log.Infof("reloaded Haiku Bot Config:\n%v", config)
}

func (h *HaikuBot) currentConfig() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.config
}

func (h *HaikuBot) Open() error {
	var err error
	config := h.currentConfig()
	h.session, err = discordgo.New("Bot " + config.Token)
	if err != nil {
		return fmt.Errorf("error creating Discord session: %w", err)
	}

	if config.Debug {
		h.session.LogLevel = discordgo.LogDebug
	}

	h.session.AddHandler(h.ReceiveNewMessage)
	h.session.AddHandler(h.ReceiveInteraction)

	h.session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent | discordgo.IntentsGuildMessageReactions | discordgo.IntentsDirectMessageReactions

	err = h.session.Open()
	if err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	if err := h.registerCommands(); err != nil {
		h.session.Close()
		return err
	}
	return nil
}

func (h *HaikuBot) Close() error {
	return h.session.Close()
}

func (h *HaikuBot) ReceiveNewMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Errorw("recovered from panic handling message",
				"content", escape(m.Content), "panic", r, "stack", string(debug.Stack()))
		}
	}()
	if m.Author == nil || m.Author.Bot { // prevent SkyNet; don't talk to bots
		return
	}
	if m.Content == "!haiku" || strings.HasPrefix(m.Content, "!haiku ") {
		h.HandleAdminCommand(s, m.Message)
		return
	}

	ctx := context.Background()
	config := h.currentConfig()
	flags := h.flags(ctx, config, m.GuildID, m.ChannelID)

	if flags.ServeRandomHaiku() && m.GuildID != "" && isMentioned(s, m.Message) {
		h.ServeRandomHaiku(s, m.Message)
		return
	}
	if !detectIn(config, flags, m.ChannelID) || hasCodeBlock(m.Content) {
		return
	}

	metrics.MessagesEvaluated.Inc()
	if lines, ok := haiku.FindHaiku(m.Content); ok {
		h.log.Infow("received haiku", "channel_id", m.ChannelID, "message_id", m.ID, "content", escape(m.Content))
		h.HandleHaiku(s, m, lines, flags.Or(yellFlag(config, m.ChannelID)))
	} else {
		h.HandleNonHaiku(s, m, flags)
	}
}

// flags combines the configured defaults with any features enabled for the channel or its guild.
func (h *HaikuBot) flags(ctx context.Context, config Config, guildID, channelID string) db.ConfigFlag {
	flags := config.ActionFlags
	if guildID == "" { // direct messages have no stored config
		return flags
	}
	gid, err1 := strconv.ParseInt(guildID, 10, 64)
	cid, err2 := strconv.ParseInt(channelID, 10, 64)
	if err1 != nil || err2 != nil {
		h.log.Warnw("could not parse snowflake IDs", "guild_id", guildID, "channel_id", channelID)
		return flags
	}
	stored, err := db.LookupFlags(ctx, h.db, gid, cid)
	if err != nil {
		h.log.Errorw("could not look up channel features", "channel_id", channelID, "error", err)
		return flags
	}
	return flags.Or(stored)
}

func (h *HaikuBot) HandleHaiku(s *discordgo.Session, m *discordgo.MessageCreate, lines []string, flags db.ConfigFlag) {
	if original, err := h.store(m.Message); errors.Is(err, db.ErrDuplicate) {
		metrics.HaikuDetected.WithLabelValues("duplicate").Inc()
		h.log.Infow("received duplicate haiku", "message_id", m.ID, "original_message_id", original)
		return
	} else if err != nil {
		h.log.Errorw("could not store haiku", "message_id", m.ID, "error", err)
	}
	metrics.HaikuDetected.WithLabelValues("new").Inc()

	config := h.currentConfig()
	if flags.ReactToHaiku() {
		h.react(s, m, randomString(config.PositiveReacts))
	}
	if flags.ReplyToHaiku() {
		_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
			Content:         FormatHaiku(lines, flags.YellHaiku()),
			Reference:       m.Reference(),
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		})
		if err != nil {
			h.log.Errorw("could not reply to haiku", "message_id", m.ID, "error", err)
		}
	}
}

// store records a detected haiku unless an identical one was recorded before, in which case the ID of the
// original message is returned with db.ErrDuplicate.
func (h *HaikuBot) store(m *discordgo.Message) (int64, error) {
	ctx := context.Background()
	record, err := toRecord(m)
	if err != nil {
		return 0, err
	}
	original, err := db.CheckHash(ctx, h.db, record.MessageID, DuplicateHash(m.Content))
	if err != nil {
		return original, err
	}
	_, err = db.HaikuDAO.Upsert(ctx, h.db, record)
	return record.MessageID, err
}

func toRecord(m *discordgo.Message) (db.Haiku, error) {
	var ids [4]int64
	for i, id := range []string{m.GuildID, m.ChannelID, m.ID, m.Author.ID} {
		if id == "" { // direct messages have no guild
			continue
		}
		parsed, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return db.Haiku{}, fmt.Errorf("could not parse snowflake %q: %w", id, err)
		}
		ids[i] = parsed
	}
	return db.Haiku{
		GuildID:       ids[0],
		ChannelID:     ids[1],
		MessageID:     ids[2],
		AuthorID:      ids[3],
		AuthorMention: m.Author.Mention(),
		Content:       m.Content,
	}, nil
}

func (h *HaikuBot) HandleNonHaiku(s *discordgo.Session, m *discordgo.MessageCreate, flags db.ConfigFlag) {
	if flags.DeleteNonHaiku() {
		h.Delete(s, m)
		return
	}

	if flags.ReactToNonHaiku() {
		h.react(s, m, randomString(h.currentConfig().NegativeReacts))
		h.log.Debugw("reacted to non-haiku", "message_id", m.ID, "content", escape(m.Content))
	}
}

func (h *HaikuBot) Delete(s *discordgo.Session, m *discordgo.MessageCreate) {
	err := s.ChannelMessageDelete(m.ChannelID, m.ID)
	if err != nil {
		h.log.Errorw("could not delete message from channel", "channel_id", m.ChannelID, "error", err)
		return
	}
	h.log.Infow("deleted message", "message_id", m.ID, "content", escape(m.Content))

	c, err := h.lookupChannel(s, m.ChannelID)
	if err != nil {
		h.log.Errorw("could not lookup message channel", "channel_id", m.ChannelID, "error", err)
		return
	}
	explanation := fmt.Sprintf("I deleted the message you just sent to %s since I didn't think it was a proper haiku:\n%s", c.Mention(), quote(m.Content))
	h.DM(s, m.Message, explanation)
}

// ServeRandomHaiku quotes a haiku previously recorded in the same guild.
func (h *HaikuBot) ServeRandomHaiku(s *discordgo.Session, m *discordgo.Message) {
	content, err := h.randomHaiku(m.GuildID)
	if err != nil {
		h.log.Errorw("could not look up random haiku", "guild_id", m.GuildID, "error", err)
		return
	}
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Content:         content,
		Reference:       m.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		h.log.Errorw("could not send random haiku", "channel_id", m.ChannelID, "error", err)
	}
}

func (h *HaikuBot) randomHaiku(guildID string) (string, error) {
	gid, err := strconv.ParseInt(guildID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("could not parse guild ID %q: %w", guildID, err)
	}
	record, err := db.HaikuDAO.Random(context.Background(), h.db, gid)
	if err != nil {
		return "", err
	}
	if record.Content == "" {
		return "I haven't seen any haiku here yet.", nil
	}
	return fmt.Sprintf("%s once wrote:\n%s", record.AuthorMention, quote(record.Content)), nil
}

// DM sends content to the author of m in a direct message.
func (h *HaikuBot) DM(s *discordgo.Session, m *discordgo.Message, content string) {
	dmChannel, err := h.createDMChannel(s, m.Author.ID)
	if err != nil {
		h.log.Errorw("could not create user DM channel", "user_id", m.Author.ID, "error", err)
		return
	}
	_, err = s.ChannelMessageSend(dmChannel.ID, content)
	if err != nil {
		h.log.Errorw("could not send message to user DM channel", "user_id", m.Author.ID, "error", err)
	}
}

func (h *HaikuBot) react(s *discordgo.Session, m *discordgo.MessageCreate, reaction string) {
	if reaction == "" {
		return
	}
	err := s.MessageReactionAdd(m.ChannelID, m.ID, reaction)
	if err != nil {
		h.log.Errorw("could not add emoji reaction", "message_id", m.ID, "reaction", reaction, "error", err)
	}
}

func (h *HaikuBot) createDMChannel(s *discordgo.Session, authorID string) (*discordgo.Channel, error) {
	h.mu.RLock()
	c, ok := h.dmCache[authorID]
	h.mu.RUnlock()
	if ok {
		return c, nil
	}
	c, err := s.UserChannelCreate(authorID)
	if err != nil {
		return nil, err
	}
	h.log.Debugw("retrieved new DM channel for user", "user_id", authorID)
	h.mu.Lock()
	h.channelCache[c.ID] = c
	h.dmCache[authorID] = c
	h.mu.Unlock()
	return c, nil
}

func (h *HaikuBot) lookupChannel(s *discordgo.Session, channelID string) (*discordgo.Channel, error) {
	h.mu.RLock()
	c, ok := h.channelCache[channelID]
	h.mu.RUnlock()
	if ok {
		return c, nil
	}
	c, err := s.Channel(channelID)
	if err != nil {
		return nil, err
	}
	h.log.Debugw("looked up channel", "channel_id", channelID)
	h.mu.Lock()
	h.channelCache[channelID] = c
	if c.Type == discordgo.ChannelTypeDM && len(c.Recipients) == 1 {
		h.dmCache[c.Recipients[0].ID] = c
	}
	h.mu.Unlock()
	return c, nil
}

// detectIn reports whether messages in channelID should be checked for haiku.
func detectIn(config Config, flags db.ConfigFlag, channelID string) bool {
	return flags.DetectHaiku() || contains(config.HaikuChannels, channelID)
}

func yellFlag(config Config, channelID string) db.ConfigFlag {
	if contains(config.YellingChannels, channelID) {
		return db.ConfigYellHaiku
	}
	return 0
}

func isMentioned(s *discordgo.Session, m *discordgo.Message) bool {
	if s.State == nil || s.State.User == nil {
		return false
	}
	for _, user := range m.Mentions {
		if user.ID == s.State.User.ID {
			return true
		}
	}
	return false
}

func hasCodeBlock(content string) bool {
	return strings.Contains(content, "```")
}

// FormatHaiku renders the lines of a detected haiku as a quote. Yelling haiku are upper-cased.
func FormatHaiku(lines []string, yell bool) string {
	text := strings.Join(lines, "\n")
	intro := "That's a haiku!"
	if yell {
		text = strings.ToUpper(text)
		intro = strings.ToUpper(intro)
	}
	return intro + "\n" + quote(text)
}

func contains(strs []string, str string) bool {
	for _, s := range strs {
		if s == str {
			return true
		}
	}
	return false
}

func randomString(strs []string) string {
	if len(strs) == 0 {
		return ""
	}
	return strs[rand.Intn(len(strs))]
}

func quote(str string) string {
	return "> " + strings.ReplaceAll(str, "\n", "\n> ")
}

func escape(str string) string {
	return strings.ReplaceAll(str, "\n", "\\n")
}
