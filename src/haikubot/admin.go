package haikubot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/uqcs/haikubot/src/haikubot/db"
	"github.com/uqcs/haikubot/src/metrics"
)

// adminCommandPerms is a bitmask for the min permissions required to send admin commands. If any flag is set, the
// user can send HaikuBot admin commands.
const adminCommandPerms = discordgo.PermissionAdministrator | discordgo.PermissionManageChannels | discordgo.PermissionManageServer

func (h *HaikuBot) HandleAdminCommand(s *discordgo.Session, m *discordgo.Message) {
	metrics.CommandTotal.WithLabelValues("admin").Inc()
	if m.GuildID == "" {
		h.reply(s, m, "Admin commands must be sent in the guild they are meant to apply to.")
		return
	}

	perms, err := h.Permissions(s, m)
	if err != nil {
		metrics.CommandErrors.WithLabelValues("admin").Inc()
		h.log.Errorw("could not retrieve permissions for user, ignoring admin command", "user_id", m.Author.ID, "error", err)
		return
	}
	if perms&adminCommandPerms == 0 {
		h.log.Debugw("could not verify admin permissions", "found", perms, "expected", adminCommandPerms)
		h.DM(s, m, fmt.Sprintf("You do not have permissions to manage HaikuBot in <#%s>", m.ChannelID))
		return
	}
	commandRaw := strings.TrimPrefix(strings.TrimPrefix(m.Content, "!haiku"), " ")
	command, err := parseCommand(commandRaw)
	if err != nil {
		h.reply(s, m, err.Error())
		return
	}

	switch command.Operation {
	case OpFeatureOn:
		err = h.updateFeatures(m, command, EnableFeatures)
		if err == nil {
			h.reply(s, m, fmt.Sprintf("Enabled features %s for target %s", command.Features, command.MentionTarget()))
		}
	case OpFeatureOff:
		err = h.updateFeatures(m, command, DisableFeatures)
		if err == nil {
			h.reply(s, m, fmt.Sprintf("Disabled features %s for target %s", command.Features, command.MentionTarget()))
		}
	case OpFeatureList:
		err = h.handleFeatureList(s, m, command)
	case OpHelp:
		h.reply(s, m, AdminHelp)
	}
	if err != nil {
		metrics.CommandErrors.WithLabelValues("admin").Inc()
		h.log.Errorw("could not handle admin command", "command", commandRaw, "error", err)
		h.reply(s, m, "Something went wrong handling that command; please try again later.")
	}
}

func (h *HaikuBot) reply(s *discordgo.Session, m *discordgo.Message, content string) {
	_, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		h.log.Errorw("could not reply to message", "message_id", m.ID, "error", err)
	}
}

// Permissions computes the guild-level permissions of the author of m.
func (h *HaikuBot) Permissions(s *discordgo.Session, m *discordgo.Message) (int64, error) {
	g, err := s.Guild(m.GuildID)
	if err != nil {
		return 0, err
	}
	if g.OwnerID == m.Author.ID {
		return discordgo.PermissionAll, nil
	}
	member, err := s.GuildMember(m.GuildID, m.Author.ID)
	if err != nil {
		return 0, err
	}
	roles, err := s.GuildRoles(m.GuildID)
	if err != nil {
		return 0, err
	}
	return memberPermissions(m.GuildID, roles, member.Roles), nil
}

// memberPermissions ORs together the @everyone role, whose ID is the guild ID, and every role of the member.
func memberPermissions(guildID string, roles []*discordgo.Role, memberRoles []string) int64 {
	roleMap := make(map[string]int64)
	for _, role := range roles {
		roleMap[role.ID] = role.Permissions
	}
	permissions := roleMap[guildID]
	for _, role := range memberRoles {
		permissions |= roleMap[role]
	}
	if permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator {
		return discordgo.PermissionAll
	}
	return permissions
}

func (h *HaikuBot) handleFeatureList(s *discordgo.Session, m *discordgo.Message, command Command) error {
	ctx := context.Background()
	var flags db.ConfigFlag
	switch command.Target {
	case "global":
		gid, err := strconv.ParseInt(m.GuildID, 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse guildID %q: %w", m.GuildID, err)
		}
		currConfig, err := db.GuildConfigDAO.FindByID(ctx, h.db, gid)
		if err != nil {
			return fmt.Errorf("could not read guild config from database: %w", err)
		}
		flags = currConfig.Flags
	default:
		cid, err := strconv.ParseInt(command.Target, 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse channelID %q: %w", command.Target, err)
		}
		currConfig, err := db.ChannelConfigDAO.FindByID(ctx, h.db, cid)
		if err != nil {
			return fmt.Errorf("could not read channel config from database: %w", err)
		}
		flags = currConfig.Flags
	}
	h.reply(s, m, fmt.Sprintf("Features enabled for target %s: %s", command.MentionTarget(), flags))
	return nil
}

type featureMutator func(db.ConfigFlag, db.ConfigFlag) db.ConfigFlag

func EnableFeatures(current db.ConfigFlag, feats db.ConfigFlag) db.ConfigFlag {
	return current.Or(feats)
}

func DisableFeatures(current db.ConfigFlag, feats db.ConfigFlag) db.ConfigFlag {
	return current.And(^feats) // and with bitwise not
}

func (h *HaikuBot) updateFeatures(m *discordgo.Message, command Command, mutator featureMutator) error {
	ctx := context.Background()
	switch command.Target {
	case "global":
		gid, err := strconv.ParseInt(m.GuildID, 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse guildID %q: %w", m.GuildID, err)
		}
		currConfig, err := db.GuildConfigDAO.FindByID(ctx, h.db, gid) // read
		if err != nil {
			return fmt.Errorf("could not retrieve guild features: %w", err)
		}

		// modify
		currConfig.GuildID = gid
		currConfig.Flags = mutator(currConfig.Flags, command.Features)

		_, err = db.GuildConfigDAO.Upsert(ctx, h.db, currConfig) // write
		if err != nil {
			return fmt.Errorf("could not update guild features: %w", err)
		}
	default: // channel ID (target was verified by parseCommand)
		cid, err := strconv.ParseInt(command.Target, 10, 64)
		if err != nil {
			return fmt.Errorf("could not parse channelID %q: %w", command.Target, err)
		}
		currConfig, err := db.ChannelConfigDAO.FindByID(ctx, h.db, cid) // read
		if err != nil {
			return fmt.Errorf("could not retrieve channel features: %w", err)
		}

		flags := mutator(currConfig.Flags, command.Features)

		_, err = db.ChannelConfigDAO.Upsert(ctx, h.db, cid, flags) // write
		if err != nil {
			return fmt.Errorf("could not update channel features: %w", err)
		}
	}
	h.log.Infow("updated features", "guild_id", m.GuildID, "target", command.Target, "features", command.Features.String())
	return nil
}

type Operation uint8

const (
	OpFeatureOn Operation = iota
	OpFeatureOff
	OpFeatureList
	OpHelp
)

type Command struct {
	Operation Operation
	Target    string
	Features  db.ConfigFlag
}

func (c Command) MentionTarget() string {
	if c.Target == "global" {
		return "global"
	}
	return fmt.Sprintf("<#%s>", c.Target)
}

func parseCommand(content string) (Command, error) {
	var err error
	tokens := strings.Fields(content)
	if len(tokens) < 1 {
		return Command{}, errors.New("expected a valid command after `!haiku`; send `!haiku help` for help")
	}
	command := tokens[0]
	if len(tokens) > 1 {
		command += " " + tokens[1]
	}
	result := Command{}
	switch command {
	case "feature on":
		result.Operation = OpFeatureOn
		if len(tokens) < 4 {
			return Command{}, errors.New("expected a target and list of features after `feature on`; send `!haiku help` for help")
		}
	case "feature off":
		result.Operation = OpFeatureOff
		if len(tokens) < 4 {
			return Command{}, errors.New("expected a target and list of features after `feature off`; send `!haiku help` for help")
		}
	case "feature list":
		result.Operation = OpFeatureList
		if len(tokens) < 3 {
			return Command{}, errors.New("expected a target after `feature list`; send `!haiku help` for help")
		}
	default:
		if tokens[0] == "help" {
			result.Operation = OpHelp
			return result, nil
		}
		return Command{}, fmt.Errorf("could not understand command `%s`; send `!haiku help` for help", command)
	}

	// parse channel mention
	result.Target = tokens[2]
	if result.Target != "global" && strings.HasPrefix(result.Target, "<#") && strings.HasSuffix(result.Target, ">") {
		id, err := strconv.ParseInt(result.Target[2:len(result.Target)-1], 10, 64)
		if err != nil {
			return Command{}, fmt.Errorf("couldn't parse target '%s' as valid channel mention", result.Target)
		}
		result.Target = strconv.FormatInt(id, 10)
	} else if result.Target != "global" {
		return Command{}, fmt.Errorf("couldn't parse target '%s' as valid target", result.Target)
	}

	result.Features, err = parseFeatures(tokens[3:])
	if err != nil {
		return Command{}, err
	}
	return result, nil
}

func parseFeatures(features []string) (db.ConfigFlag, error) {
	var result db.ConfigFlag
next:
	for _, feature := range features {
		for _, known := range db.Features {
			if strings.EqualFold(feature, known.Name) {
				result |= known.Flag
				continue next
			}
		}
		return 0, fmt.Errorf("could not understand '%s' as a valid feature; send `!haiku help` for help", feature)
	}
	return result, nil
}

var AdminHelp = `All commands must be sent in the guild they are meant to apply to.
  ~~~!haiku feature on [target] [feature feature...]~~~
  ~~~!haiku feature off [target] [feature feature...]~~~
  ~~~!haiku feature list [target]~~~

~~~[target]~~~ can be either a channel mention or ~~~global~~~ to enable features for every channel in the guild.
~~~[feature feature...]~~~ is a space-separated list of features from the below list.

   - ~~~DetectHaiku~~~ - check every message in the channel for haiku
   - ~~~ReactToHaiku~~~ - adds an emoji reaction to any detected haiku
   - ~~~ReplyToHaiku~~~ - replies to any detected haiku, quoting it split into its three lines
   - ~~~YellHaiku~~~ - replies to haiku in upper case
   - ~~~ReactToNonHaiku~~~ - adds an emoji reaction to any detected non-haiku
   - ~~~DeleteNonHaiku~~~ - deletes any messages which are not valid haiku -- requires MANAGE_MESSAGES permission
   - ~~~ServeRandomHaiku~~~ - reacts to mentions by publicly quoting some haiku previously detected in the same guild.
`

func init() {
	AdminHelp = strings.ReplaceAll(AdminHelp, "~~~", "`")
}
