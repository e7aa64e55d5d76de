// Command haiku-extract scans a CSV export of a chat channel and records every haiku it finds.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/uqcs/haikubot/src/haiku"
	"github.com/uqcs/haikubot/src/haikubot"
	"github.com/uqcs/haikubot/src/haikubot/db"
)

type options struct {
	GuildID       int64
	ChannelID     int64
	FirstID       int64
	AuthorColumn  int
	ContentColumn int
}

func main() {
	var (
		input  = flag.StringP("input", "i", "gen-chat.csv", "CSV chat export to scan")
		dbPath = flag.String("db", "haikuDB.sqlite3", "SQLite database to store haiku in")
		opts   options
	)
	flag.Int64Var(&opts.GuildID, "guild", 690680416373571585, "guild ID to record haiku under")
	flag.Int64Var(&opts.ChannelID, "channel", 704842231227482182, "channel ID to record haiku under")
	flag.Int64Var(&opts.FirstID, "first-id", 1, "message ID given to the first haiku; later haiku count up from it")
	flag.IntVar(&opts.AuthorColumn, "author-column", 0, "zero-based CSV column holding the author ID")
	flag.IntVar(&opts.ContentColumn, "content-column", 3, "zero-based CSV column holding the message content")
	flag.Parse()

	zl, err := zap.NewDevelopment()
	if err != nil {
		fmt.Printf("encountered error: %v\n", err)
		os.Exit(1)
	}
	logger := zl.Sugar()
	defer logger.Sync()

	f, err := os.Open(*input)
	if err != nil {
		logger.Fatalw("could not open chat export", "input", *input, "error", err)
	}
	defer f.Close()

	dbx, err := db.Open(*dbPath)
	if err != nil {
		logger.Fatalw("could not open database", "db", *dbPath, "error", err)
	}
	defer dbx.Close()

	stored, err := extract(context.Background(), f, dbx, opts, logger)
	if err != nil {
		logger.Fatalw("could not extract haiku", "error", err)
	}
	logger.Infow("finished extracting haiku", "stored", stored)
}

// extract stores every haiku found in the CSV read from r and returns how many were new.
func extract(ctx context.Context, r io.Reader, dbx *sqlx.DB, opts options, logger *zap.SugaredLogger) (int, error) {
	s := csv.NewReader(r)
	s.FieldsPerRecord = -1

	messageID := opts.FirstID
	stored := 0
	for {
		record, err := s.Read()
		if err == io.EOF {
			return stored, nil
		}
		if err != nil {
			return stored, fmt.Errorf("error reading CSV: %w", err)
		}
		if len(record) <= opts.ContentColumn || len(record) <= opts.AuthorColumn {
			continue
		}
		content := strings.TrimSpace(record[opts.ContentColumn])
		if !haiku.IsHaiku(content) {
			continue
		}
		authorID, err := strconv.ParseInt(strings.TrimSpace(record[opts.AuthorColumn]), 10, 64)
		if err != nil {
			logger.Warnw("skipping haiku with unparseable author", "author", record[opts.AuthorColumn])
			continue
		}

		mid := messageID
		messageID++
		original, err := db.CheckHash(ctx, dbx, mid, haikubot.DuplicateHash(content))
		if errors.Is(err, db.ErrDuplicate) {
			logger.Debugw("skipping duplicate haiku", "message_id", mid, "original_message_id", original)
			continue
		}
		if err != nil {
			return stored, err
		}
		_, err = db.HaikuDAO.Upsert(ctx, dbx, db.Haiku{
			GuildID:       opts.GuildID,
			ChannelID:     opts.ChannelID,
			MessageID:     mid,
			AuthorID:      authorID,
			AuthorMention: fmt.Sprintf("<@%d>", authorID),
			Content:       content,
		})
		if err != nil {
			return stored, fmt.Errorf("couldn't write to db: %w", err)
		}
		stored++
	}
}
