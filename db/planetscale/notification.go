package planetscale

import (
	"context"

	"github.com/navbryce/next-social-be/db/dao"
	"github.com/navbryce/next-social-be/model"
	"github.com/upper/db/v4"
)

type NotificationDB struct {
	sess db.Session
}

func getNotificationDB(sess db.Session) *NotificationDB {
	return &NotificationDB{sess}
}

func (ndb *NotificationDB) CreateNotification(ctx context.Context, notification *model.Notification) (int64, error) {
	res, err := ndb.sess.SQL().
		InsertInto("notification").
		Columns("type", "from_id", "to_id", "post_id").
		Values(notification.Type, notification.FromId, notification.ToId, dao.NullInt64From(notification.PostId)).
		ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (ndb *NotificationDB) GetNotifications(ctx context.Context, userId int64, limit int) ([]*model.Notification, error) {
	notifications := []*model.Notification{}
	if err := ndb.sess.SQL().
		Select("id", "type", "from_id", "to_id", "post_id", "is_read", "created_at").
		From("notification").
		Where("to_id = ?", userId).
		OrderBy("created_at DESC", "id DESC").
		Limit(limit).
		IteratorContext(ctx).
		All(&notifications); err != nil {
		return nil, err
	}

	fromIds := make([]int64, len(notifications))
	for i, notification := range notifications {
		fromIds[i] = notification.FromId
	}
	users, err := getUsersByIds(ctx, ndb.sess, fromIds)
	if err != nil {
		return nil, err
	}
	byId := usersById(users)
	for _, notification := range notifications {
		notification.From = byId[notification.FromId]
	}
	return notifications, nil
}

func (ndb *NotificationDB) CountUnreadNotifications(ctx context.Context, userId int64) (int64, error) {
	count, err := ndb.sess.WithContext(ctx).
		Collection("notification").
		Find("to_id = ? AND is_read = ?", userId, false).
		Count()
	return int64(count), err
}

func (ndb *NotificationDB) MarkNotificationsRead(ctx context.Context, userId int64) error {
	_, err := ndb.sess.SQL().
		Update("notification").
		Set("is_read", true).
		Where("to_id = ? AND is_read = ?", userId, false).
		ExecContext(ctx)
	return err
}
