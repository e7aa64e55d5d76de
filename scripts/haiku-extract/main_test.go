package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uqcs/haikubot/src/haikubot/db"
)

const export = `11,2021-01-01,general,"I am all out of haikus on this fine morning good luck with your tests"
12,2021-01-01,general,this is not a haiku
13,2021-01-02,general,"i am ALL out of haikus, on this fine morning... good luck with your tests!"
not-a-user,2021-01-02,general,"I am all out of haikus on this fine morning good luck with your tests again"
14,2021-01-03,general
`

func TestExtract(t *testing.T) {
	ctx := context.Background()
	dbx, err := db.Open(filepath.Join(t.TempDir(), "extract.db"))
	require.NoError(t, err)
	defer dbx.Close()

	opts := options{GuildID: 7, ChannelID: 8, FirstID: 100, AuthorColumn: 0, ContentColumn: 3}
	stored, err := extract(ctx, strings.NewReader(export), dbx, opts, zap.NewNop().Sugar())
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	h, err := db.HaikuDAO.FindByID(ctx, dbx, 100)
	require.NoError(t, err)
	assert.EqualValues(t, 7, h.GuildID)
	assert.EqualValues(t, 8, h.ChannelID)
	assert.EqualValues(t, 11, h.AuthorID)
	assert.Equal(t, "<@11>", h.AuthorMention)

	count, err := db.HaikuDAO.Count(ctx, dbx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
