package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Poet is one row of a guild's haiku leaderboard.
type Poet struct {
	AuthorID      int64  `db:"author_id"`
	AuthorMention string `db:"author_mention"`
	Count         int    `db:"haiku_count"`
}

// TopPoets returns up to limit authors with the most recorded haiku in a guild, most prolific first.
func TopPoets(ctx context.Context, q sqlx.QueryerContext, guildID int64, limit int) ([]Poet, error) {
	var poets []Poet
	query := `SELECT author_id, MAX(author_mention) AS author_mention, COUNT(*) AS haiku_count
			  FROM haiku
			  WHERE guild_id = ?
			  GROUP BY author_id
			  ORDER BY haiku_count DESC, author_id ASC
			  LIMIT ?`
	err := sqlx.SelectContext(ctx, q, &poets, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing top poets: %w", err)
	}
	return poets, nil
}
