package controllers

import (
	"context"
	"strconv"

	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/metrics"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/services"
	"github.com/navbryce/next-social-be/util"
	"go.uber.org/zap"
)

type InteractionController struct {
	db    db.Database
	cache services.PostCache
}

func NewInteractionController(db db.Database, cache services.PostCache) *InteractionController {
	return &InteractionController{db: db, cache: cache}
}

// Toggle flips the caller's edge on the post and returns the new state.
// Activating a like notifies the post's author.
func (ic *InteractionController) Toggle(ctx context.Context, user *model.User, kind model.InteractionKind, postId int64) (bool, *util.HTTPError) {
	if err := kind.Validate(); err != nil {
		return false, util.BuildValidationHTTPErr(err.Error())
	}
	post, err := ic.db.GetPostById(ctx, postId, nil)
	if err != nil {
		return false, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return false, util.BuildNotFoundHTTPErr("post")
	}

	active, err := ic.db.ToggleInteraction(ctx, kind, user.Id, postId)
	if err != nil {
		return false, util.BuildDbHTTPErr(err)
	}
	metrics.Toggles.WithLabelValues(string(kind), strconv.FormatBool(active)).Inc()

	if kind != model.InteractionBookmark {
		if err := ic.cache.Evict(ctx, postId); err != nil {
			util.Log.Error("post cache eviction failed", zap.Int64("post", postId), zap.Error(err))
		}
	}

	if kind == model.InteractionLike && active {
		if _, err := ic.db.CreateNotification(ctx, &model.Notification{
			Type:   model.NotificationLike,
			FromId: user.Id,
			ToId:   post.AuthorId,
			PostId: &postId,
		}); err != nil {
			util.Log.Error("failed to create like notification", zap.Int64("post", postId), zap.Error(err))
		}
	}
	return active, nil
}

// Check reports whether the caller's edge exists. Unknown posts report false.
func (ic *InteractionController) Check(ctx context.Context, user *model.User, kind model.InteractionKind, postId int64) (bool, *util.HTTPError) {
	if err := kind.Validate(); err != nil {
		return false, util.BuildValidationHTTPErr(err.Error())
	}
	active, err := ic.db.HasInteraction(ctx, kind, user.Id, postId)
	if err != nil {
		return false, util.BuildDbHTTPErr(err)
	}
	return active, nil
}
