package controllers

import (
	"context"

	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
)

const notificationPageSize = 50

type NotificationController struct {
	db db.Database
}

func NewNotificationController(db db.Database) *NotificationController {
	return &NotificationController{db: db}
}

func (nc *NotificationController) List(ctx context.Context, user *model.User) ([]*model.Notification, *util.HTTPError) {
	notifications, err := nc.db.GetNotifications(ctx, user.Id, notificationPageSize)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return notifications, nil
}

func (nc *NotificationController) MarkRead(ctx context.Context, user *model.User) *util.HTTPError {
	if err := nc.db.MarkNotificationsRead(ctx, user.Id); err != nil {
		return util.BuildDbHTTPErr(err)
	}
	return nil
}
