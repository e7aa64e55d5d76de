package db

import (
	"context"

	"github.com/jonbodner/proteus"
)

type Haiku struct {
	GuildID       int64  `prof:"guild_id"`
	ChannelID     int64  `prof:"channel_id"`
	MessageID     int64  `prof:"message_id"`
	AuthorID      int64  `prof:"author_id"`
	AuthorMention string `prof:"author_mention"`
	Content       string `prof:"content"`
}

var HaikuDAO HaikuDaoImpl

type HaikuDaoImpl struct {
	Upsert func(ctx context.Context, e proteus.ContextExecutor, h Haiku) (int64, error)        `proq:"q:upsert" prop:"h"`
	Random func(ctx context.Context, e proteus.ContextQuerier, guildID int64) (Haiku, error)   `proq:"q:random" prop:"guildID"`
	Count  func(ctx context.Context, e proteus.ContextQuerier, guildID int64) (int64, error)   `proq:"q:count" prop:"guildID"`
	// FindByID is only intended for testing
	FindByID func(ctx context.Context, e proteus.ContextQuerier, messageID int64) (Haiku, error) `proq:"q:findByID" prop:"messageID"`
}

const haikuColumns = `guild_id, channel_id, message_id, author_id, author_mention, content`

func init() {
	m := proteus.MapMapper{
		"upsert": `INSERT INTO haiku (guild_id, channel_id, message_id, author_id, author_mention, content)
				   VALUES (:h.GuildID:,:h.ChannelID:,:h.MessageID:,:h.AuthorID:,:h.AuthorMention:,:h.Content:)
				   ON CONFLICT(guild_id, channel_id, message_id)
				   DO UPDATE SET content = excluded.content`,
		"findByID": `SELECT ` + haikuColumns + ` FROM haiku WHERE message_id = :messageID:`,
		"random":   `SELECT ` + haikuColumns + ` FROM haiku WHERE guild_id = :guildID: ORDER BY RANDOM() LIMIT 1`,
		"count":    `SELECT COUNT(*) FROM haiku WHERE guild_id = :guildID:`,
	}
	err := proteus.ShouldBuild(context.Background(), &HaikuDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
}
