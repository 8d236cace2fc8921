package model

import "time"

type NotificationType string

const (
	NotificationLike   NotificationType = "LIKE"
	NotificationFollow NotificationType = "FOLLOW"
	NotificationReply  NotificationType = "REPLY"
)

type Notification struct {
	Id        int64            `db:"id" json:"id"`
	Type      NotificationType `db:"type" json:"type"`
	FromId    int64            `db:"from_id" json:"fromId"`
	ToId      int64            `db:"to_id" json:"toId"`
	PostId    *int64           `db:"post_id" json:"postId"`
	Read      bool             `db:"is_read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	From      *User            `db:"-" json:"from,omitempty"`
}
