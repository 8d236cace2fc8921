package planetscale

import (
	"context"
	"database/sql"

	"github.com/navbryce/next-social-be/model"
	"github.com/upper/db/v4"
)

type FollowDB struct {
	sess db.Session
}

func getFollowDB(sess db.Session) *FollowDB {
	return &FollowDB{sess}
}

func (fdb *FollowDB) ToggleFollow(ctx context.Context, followerId, followingId int64) (bool, error) {
	var following bool
	err := fdb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx,
			`SELECT 1 FROM follow WHERE follower_id = ? AND following_id = ? FOR UPDATE`,
			followerId, followingId)
		if err != nil {
			return err
		}
		var found int
		if err := row.Scan(&found); err != nil {
			if err != sql.ErrNoRows {
				return err
			}
			following = true
			_, err = sess.SQL().
				InsertInto("follow").
				Columns("follower_id", "following_id").
				Values(followerId, followingId).
				ExecContext(ctx)
			return err
		}
		following = false
		_, err = sess.SQL().
			DeleteFrom("follow").
			Where("follower_id = ? AND following_id = ?", followerId, followingId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return resolveToggle(following, err)
}

func (fdb *FollowDB) GetFollowers(ctx context.Context, userId int64) ([]*model.User, error) {
	followers := []*model.User{}
	err := fdb.sess.SQL().
		Select(prefixedColumns("p", personColumns)...).
		From("follow AS f").
		Join("person AS p").On("f.follower_id = p.id").
		Where("f.following_id = ?", userId).
		OrderBy("f.created_at").
		IteratorContext(ctx).
		All(&followers)
	return followers, err
}

func (fdb *FollowDB) GetFollowingIds(ctx context.Context, userId int64) ([]int64, error) {
	var follows []*model.Follow
	if err := fdb.sess.WithContext(ctx).
		Collection("follow").
		Find("follower_id = ?", userId).
		All(&follows); err != nil {
		return nil, err
	}
	ids := make([]int64, len(follows))
	for i, follow := range follows {
		ids[i] = follow.FollowingId
	}
	return ids, nil
}

func (fdb *FollowDB) CountFollows(ctx context.Context, userId int64) (int64, int64, error) {
	followers, err := fdb.sess.WithContext(ctx).
		Collection("follow").
		Find("following_id = ?", userId).
		Count()
	if err != nil {
		return 0, 0, err
	}
	following, err := fdb.sess.WithContext(ctx).
		Collection("follow").
		Find("follower_id = ?", userId).
		Count()
	if err != nil {
		return 0, 0, err
	}
	return int64(followers), int64(following), nil
}
