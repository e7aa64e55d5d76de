package haikubot

import (
	"context"
	"crypto/md5"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/uqcs/haikubot/src/haikubot/db"
)

// DuplicateHash fingerprints a haiku so reposts are recognised regardless of case, punctuation or emoji.
func DuplicateHash(haiku string) [md5.Size]byte {
	return md5.Sum([]byte(strings.ToUpper(hashStrip(haiku))))
}

// hashStrip keeps ASCII letters and collapses every run of whitespace to a single space.
func hashStrip(s string) string {
	letters := strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r == ' ' || r == '\n' || r == '\t' {
			return r
		}
		return -1
	}, s)
	return strings.Join(strings.Fields(letters), " ")
}

// UpdateHashes ensures all haiku have their hashes loaded into the table. It's intended
// to be run on a separate goroutine on startup.
func UpdateHashes(ctx context.Context, dbx *sqlx.DB, logger *zap.SugaredLogger) (int, error) {
	defer func() {
		if err := recover(); err != nil {
			logger.Errorw("recovered from panic in UpdateHashes", "panic", err)
		}
	}()
	logger.Debug("beginning UpdateHashes")

	var records []struct {
		MessageID int64  `db:"message_id"`
		Content   string `db:"content"`
	}
	err := dbx.SelectContext(ctx, &records, `SELECT message_id, content FROM haiku
		WHERE message_id NOT IN (SELECT message_id FROM haiku_hash)`)
	if err != nil {
		return 0, fmt.Errorf("error while listing unhashed haiku: %w", err)
	}

	insertCount := 0
	for _, record := range records {
		hash := DuplicateHash(record.Content)
		count, err := db.HaikuHashDAO.Upsert(ctx, dbx, record.MessageID, hash[:])
		if err != nil {
			return insertCount, fmt.Errorf("error while storing hash for message %d: %w", record.MessageID, err)
		}
		if count != 0 {
			insertCount++
		}
	}
	logger.Infow("upserted new haiku hashes", "count", insertCount)
	return insertCount, nil
}
