package planetscale

import (
	"context"
	"database/sql"
	"time"

	"github.com/navbryce/next-social-be/model"
	"github.com/upper/db/v4"
)

type DirectDB struct {
	sess db.Session
}

func getDirectDB(sess db.Session) *DirectDB {
	return &DirectDB{sess}
}

type flattenedDirect struct {
	Id        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
}

type flattenedMember struct {
	model.User `db:",inline"`
	DirectId   int64 `db:"direct_id"`
}

var memberColumns = prefixedColumns("p", personColumns, "m.direct_id")

func (ddb *DirectDB) CreateDirect(ctx context.Context, memberIds []int64) (int64, error) {
	var directId int64
	err := ddb.sess.TxContext(ctx, func(sess db.Session) error {
		res, err := sess.SQL().
			InsertInto("direct").
			Columns("created_at").
			Values(time.Now()).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		directId, err = res.LastInsertId()
		if err != nil {
			return err
		}

		batchInserter := sess.SQL().
			InsertInto("direct_member").
			Columns("direct_id", "user_id").
			Batch(len(memberIds))
		for _, memberId := range memberIds {
			batchInserter.Values(directId, memberId)
		}
		batchInserter.Done()
		return batchInserter.Wait()
	}, &sql.TxOptions{})
	return directId, err
}

func (ddb *DirectDB) IsDirectMember(ctx context.Context, directId, userId int64) (bool, error) {
	return exists(ctx, ddb.sess, "direct_member", "direct_id = ? AND user_id = ?", directId, userId)
}

func (ddb *DirectDB) CreateDirectMessage(ctx context.Context, directId, userId int64, content string) (int64, error) {
	res, err := ddb.sess.SQL().
		InsertInto("direct_message").
		Columns("direct_id", "user_id", "content").
		Values(directId, userId, content).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (ddb *DirectDB) GetDirectMembers(ctx context.Context, directId int64) ([]*model.User, error) {
	members, err := getMembers(ctx, ddb.sess, []int64{directId})
	if err != nil {
		return nil, err
	}
	users := make([]*model.User, len(members))
	for i := range members {
		users[i] = &members[i].User
	}
	return users, nil
}

func (ddb *DirectDB) GetDirectsForUser(ctx context.Context, userId int64) ([]*model.Direct, error) {
	var flattenedDirects []flattenedDirect
	if err := ddb.sess.SQL().
		Select("d.id", "d.created_at").
		From("direct AS d").
		Join("direct_member AS m").On("m.direct_id = d.id").
		Where("m.user_id = ?", userId).
		OrderBy("d.created_at DESC", "d.id DESC").
		IteratorContext(ctx).
		All(&flattenedDirects); err != nil {
		return nil, err
	}
	directs := make([]*model.Direct, len(flattenedDirects))
	if len(flattenedDirects) == 0 {
		return directs, nil
	}

	ids := make([]int64, len(flattenedDirects))
	byId := make(map[int64]*model.Direct, len(flattenedDirects))
	for i, fd := range flattenedDirects {
		ids[i] = fd.Id
		directs[i] = &model.Direct{
			Id:        fd.Id,
			CreatedAt: fd.CreatedAt,
			Members:   []*model.User{},
			Messages:  []*model.DirectMessage{},
		}
		byId[fd.Id] = directs[i]
	}

	members, err := getMembers(ctx, ddb.sess, ids)
	if err != nil {
		return nil, err
	}
	users := make(map[int64]*model.User)
	for i := range members {
		member := &members[i]
		user := member.User
		users[user.Id] = &user
		byId[member.DirectId].Members = append(byId[member.DirectId].Members, &user)
	}

	var messages []*model.DirectMessage
	if err := ddb.sess.SQL().
		Select("id", "direct_id", "user_id", "content", "created_at").
		From("direct_message").
		Where("direct_id IN ?", ids).
		OrderBy("created_at", "id").
		IteratorContext(ctx).
		All(&messages); err != nil {
		return nil, err
	}
	for _, message := range messages {
		message.User = users[message.UserId]
		byId[message.DirectId].Messages = append(byId[message.DirectId].Messages, message)
	}
	return directs, nil
}

func getMembers(ctx context.Context, sess db.Session, directIds []int64) ([]flattenedMember, error) {
	var members []flattenedMember
	err := sess.SQL().
		Select(memberColumns...).
		From("direct_member AS m").
		Join("person AS p").On("m.user_id = p.id").
		Where("m.direct_id IN ?", directIds).
		OrderBy("p.id").
		IteratorContext(ctx).
		All(&members)
	return members, err
}
