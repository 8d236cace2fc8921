package controllers

import (
	"context"

	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/metrics"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
	"go.uber.org/zap"
)

type FollowController struct {
	db db.Database
}

func NewFollowController(db db.Database) *FollowController {
	return &FollowController{db: db}
}

// ToggleFollow follows or unfollows username and returns whether the caller now follows them.
func (fc *FollowController) ToggleFollow(ctx context.Context, user *model.User, username string) (bool, *util.HTTPError) {
	target, err := fc.db.GetUserByUsername(ctx, username)
	if err != nil {
		return false, util.BuildDbHTTPErr(err)
	}
	if target == nil {
		return false, util.BuildNotFoundHTTPErr("user")
	}
	if target.Id == user.Id {
		return false, util.BuildValidationHTTPErr("cannot follow yourself")
	}

	following, err := fc.db.ToggleFollow(ctx, user.Id, target.Id)
	if err != nil {
		return false, util.BuildDbHTTPErr(err)
	}
	if following {
		metrics.Toggles.WithLabelValues("follow", "true").Inc()
		if _, err := fc.db.CreateNotification(ctx, &model.Notification{
			Type:   model.NotificationFollow,
			FromId: user.Id,
			ToId:   target.Id,
		}); err != nil {
			util.Log.Error("failed to create follow notification", zap.Int64("target", target.Id), zap.Error(err))
		}
	} else {
		metrics.Toggles.WithLabelValues("follow", "false").Inc()
	}
	return following, nil
}
