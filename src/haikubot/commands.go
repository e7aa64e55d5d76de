package haikubot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/uqcs/haikubot/src/haiku"
	"github.com/uqcs/haikubot/src/haikubot/db"
	"github.com/uqcs/haikubot/src/metrics"
)

const poetsLimit = 10

var haikuCommand = &discordgo.ApplicationCommand{
	Name:        "haiku",
	Description: "Haiku Bot commands",
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "check",
			Description: "Check whether some text is a haiku",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "text",
					Description: "The text to check",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "syllables",
			Description: "Count the syllables in a word",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "word",
					Description: "The word to count",
					Required:    true,
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "random",
			Description: "Quote a haiku previously written in this server",
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "poets",
			Description: "List the members who have written the most haiku",
		},
	},
}

func (h *HaikuBot) registerCommands() error {
	_, err := h.session.ApplicationCommandCreate(h.session.State.User.ID, "", haikuCommand)
	if err != nil {
		return fmt.Errorf("could not register /%s command: %w", haikuCommand.Name, err)
	}
	return nil
}

func (h *HaikuBot) ReceiveInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	if data.Name != haikuCommand.Name || len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	metrics.CommandTotal.WithLabelValues(sub.Name).Inc()

	content, ephemeral, err := h.runCommand(context.Background(), i.GuildID, sub)
	if err != nil {
		metrics.CommandErrors.WithLabelValues(sub.Name).Inc()
		h.log.Errorw("could not handle slash command", "command", sub.Name, "guild_id", i.GuildID, "error", err)
		content, ephemeral = "Something went wrong handling that command; please try again later.", true
	}

	response := &discordgo.InteractionResponseData{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}
	if ephemeral {
		response.Flags = discordgo.MessageFlagsEphemeral
	}
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: response,
	})
	if err != nil {
		h.log.Errorw("could not respond to interaction", "command", sub.Name, "error", err)
	}
}

// runCommand produces the reply to a /haiku subcommand and reports whether only the caller should see it.
func (h *HaikuBot) runCommand(ctx context.Context, guildID string, sub *discordgo.ApplicationCommandInteractionDataOption) (string, bool, error) {
	switch sub.Name {
	case "check":
		text := stringOption(sub, "text")
		if lines, ok := haiku.FindHaiku(text); ok {
			return FormatHaiku(lines, false), true, nil
		}
		return "That's not a haiku.", true, nil
	case "syllables":
		word := stringOption(sub, "word")
		return fmt.Sprintf("%q has %d syllables.", word, haiku.EstimateSyllables(word)), true, nil
	case "random":
		if guildID == "" {
			return "Haiku can only be served in a server.", true, nil
		}
		content, err := h.randomHaiku(guildID)
		return content, false, err
	case "poets":
		if guildID == "" {
			return "Poets can only be listed in a server.", true, nil
		}
		content, err := h.topPoets(ctx, guildID)
		return content, false, err
	}
	return fmt.Sprintf("I don't know the command `%s`.", sub.Name), true, nil
}

func (h *HaikuBot) topPoets(ctx context.Context, guildID string) (string, error) {
	gid, err := strconv.ParseInt(guildID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("could not parse guild ID %q: %w", guildID, err)
	}
	poets, err := db.TopPoets(ctx, h.db, gid, poetsLimit)
	if err != nil {
		return "", err
	}
	return formatPoets(poets), nil
}

func formatPoets(poets []db.Poet) string {
	if len(poets) == 0 {
		return "I haven't seen any haiku here yet."
	}
	var sb strings.Builder
	sb.WriteString("Top poets:")
	for i, poet := range poets {
		fmt.Fprintf(&sb, "\n%d. %s - %d haiku", i+1, poet.AuthorMention, poet.Count)
	}
	return sb.String()
}

func stringOption(sub *discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, opt := range sub.Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}
