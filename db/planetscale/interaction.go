package planetscale

import (
	"context"
	"database/sql"
	"fmt"

	db2 "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/upper/db/v4"
)

type InteractionDB struct {
	sess db.Session
}

func getInteractionDB(sess db.Session) *InteractionDB {
	return &InteractionDB{sess}
}

var interactionTables = map[model.InteractionKind]string{
	model.InteractionLike:     "post_like",
	model.InteractionRepost:   "repost",
	model.InteractionBookmark: "bookmark",
}

func interactionTable(kind model.InteractionKind) (string, error) {
	table, ok := interactionTables[kind]
	if !ok {
		return "", fmt.Errorf("unknown interaction kind %q", kind)
	}
	return table, nil
}

func (idb *InteractionDB) ToggleInteraction(ctx context.Context, kind model.InteractionKind, userId, postId int64) (bool, error) {
	table, err := interactionTable(kind)
	if err != nil {
		return false, err
	}
	var active bool
	err = idb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx,
			fmt.Sprintf(`SELECT id FROM %s WHERE user_id = ? AND post_id = ? FOR UPDATE`, table),
			userId, postId)
		if err != nil {
			return err
		}
		var existingId int64
		if err := row.Scan(&existingId); err != nil {
			if err != sql.ErrNoRows {
				return err
			}
			active = true
			_, err = sess.SQL().
				InsertInto(table).
				Columns("user_id", "post_id").
				Values(userId, postId).
				ExecContext(ctx)
			return err
		}
		active = false
		_, err = sess.SQL().
			DeleteFrom(table).
			Where("id = ?", existingId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return resolveToggle(active, err)
}

// resolveToggle maps the outcome of a toggle transaction to the edge state.
// A duplicate key means a concurrent toggle inserted the same edge first.
func resolveToggle(active bool, err error) (bool, error) {
	if err != nil {
		if db2.IsDupKeyErr(err) {
			return true, nil
		}
		return false, err
	}
	return active, nil
}

func (idb *InteractionDB) HasInteraction(ctx context.Context, kind model.InteractionKind, userId, postId int64) (bool, error) {
	table, err := interactionTable(kind)
	if err != nil {
		return false, err
	}
	return exists(ctx, idb.sess, table, "user_id = ? AND post_id = ?", userId, postId)
}
