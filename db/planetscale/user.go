package planetscale

import (
	"context"

	db2 "github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/upper/db/v4"
)

type UserDB struct {
	sess db.Session
}

func getUserDB(sess db.Session) *UserDB {
	return &UserDB{sess}
}

var userColumns = prefixedColumns("person", personColumns)

func (udb *UserDB) CreateUser(ctx context.Context, user *model.User) (int64, error) {
	res, err := udb.sess.SQL().
		InsertInto("person").
		Columns("email", "username", "displayname", "description").
		Values(user.Email, user.Username, user.DisplayName, user.Description).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (udb *UserDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return getUserWhere(ctx, udb.sess, "email = ?", email)
}

func (udb *UserDB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return getUserWhere(ctx, udb.sess, "username = ?", username)
}

func getUserWhere(ctx context.Context, sess db.Session, cond string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := sess.SQL().
		Select(userColumns...).
		From("person").
		Where(cond, arg).
		IteratorContext(ctx).
		One(&user); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (udb *UserDB) GetUsersByIds(ctx context.Context, ids []int64) ([]*model.User, error) {
	return getUsersByIds(ctx, udb.sess, ids)
}

func getUsersByIds(ctx context.Context, sess db.Session, ids []int64) ([]*model.User, error) {
	users := []*model.User{}
	if len(ids) == 0 {
		return users, nil
	}
	err := sess.SQL().
		Select(userColumns...).
		From("person").
		Where("id IN ?", ids).
		IteratorContext(ctx).
		All(&users)
	return users, err
}

func usersById(users []*model.User) map[int64]*model.User {
	byId := make(map[int64]*model.User, len(users))
	for _, user := range users {
		byId[user.Id] = user
	}
	return byId
}

func (udb *UserDB) UpdateProfile(ctx context.Context, userId int64, update *db2.ProfileUpdate) error {
	q := udb.sess.SQL().
		Update("person").
		Set("username", update.Username).
		Set("displayname", update.DisplayName).
		Set("description", update.Description)
	if update.Avatar != nil {
		q = q.Set("avatar", *update.Avatar)
	}
	if update.Banner != nil {
		q = q.Set("banner", *update.Banner)
	}
	_, err := q.Where("id = ?", userId).ExecContext(ctx)
	return err
}
