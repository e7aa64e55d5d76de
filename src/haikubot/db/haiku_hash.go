package db

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"

	"github.com/jonbodner/proteus"
)

// ErrDuplicate is returned by CheckHash when an identical haiku was already recorded.
var ErrDuplicate = errors.New("haiku was already posted")

var HaikuHashDAO HaikuHashDaoImpl

type HaikuHashDaoImpl struct {
	Upsert    func(ctx context.Context, e proteus.ContextExecutor, mid int64, md5Sum []byte) (int64, error) `proq:"q:upsert" prop:"mid,md5Sum"`
	FindByMD5 func(ctx context.Context, e proteus.ContextQuerier, md5Sum []byte) (int64, error)            `proq:"q:findByMD5" prop:"md5Sum"`
}

func init() {
	m := proteus.MapMapper{
		"upsert": `INSERT INTO haiku_hash (message_id, md5_sum) VALUES (:mid:, :md5Sum:)
				   ON CONFLICT (message_id)
				   DO UPDATE SET md5_sum = excluded.md5_sum`,
		"findByMD5": `SELECT message_id FROM haiku_hash WHERE md5_sum = :md5Sum: ORDER BY message_id LIMIT 1`,
	}
	err := proteus.ShouldBuild(context.Background(), &HaikuHashDAO, proteus.Sqlite, m)
	if err != nil {
		panic(err)
	}
}

// CheckHash records hash for the haiku posted as message mid. If a different message already has the same
// hash, nothing is recorded and the original message ID is returned along with ErrDuplicate.
func CheckHash(ctx context.Context, e proteus.ContextWrapper, mid int64, hash [md5.Size]byte) (int64, error) {
	midFound, err := HaikuHashDAO.FindByMD5(ctx, e, hash[:])
	if err != nil {
		return 0, fmt.Errorf("error while looking up haiku hash: %w", err)
	}
	if midFound != 0 && midFound != mid {
		return midFound, ErrDuplicate
	}
	_, err = HaikuHashDAO.Upsert(ctx, e, mid, hash[:])
	if err != nil {
		return 0, fmt.Errorf("error while storing haiku hash: %w", err)
	}
	return mid, nil
}
