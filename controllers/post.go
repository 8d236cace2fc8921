package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/metrics"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/services"
	"github.com/navbryce/next-social-be/util"
	"go.uber.org/zap"
)

type PostController struct {
	db       db.Database
	cache    services.PostCache
	uploader services.Uploader
	fanout   *FanoutDispatcher
}

func NewPostController(db db.Database, cache services.PostCache, uploader services.Uploader, fanout *FanoutDispatcher) *PostController {
	return &PostController{
		db:       db,
		cache:    cache,
		uploader: uploader,
		fanout:   fanout,
	}
}

type CreatePostReq struct {
	Content string
	Image   []byte
	ReplyId *int64
}

func (pc *PostController) CreatePost(ctx context.Context, author *model.User, req *CreatePostReq) (*model.Post, *util.HTTPError) {
	content := strings.TrimSpace(util.XSSSanitize(req.Content))
	if content == "" && len(req.Image) == 0 {
		return nil, util.BuildValidationHTTPErr("post must have content or an image")
	}

	var parent *model.Post
	if req.ReplyId != nil {
		var err error
		parent, err = pc.db.GetPostById(ctx, *req.ReplyId, nil)
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		if parent == nil {
			return nil, util.BuildValidationHTTPErr("reply target does not exist")
		}
	}

	var image *string
	if len(req.Image) > 0 {
		blobId, err := pc.uploader.Upload(ctx, services.FolderUploads, req.Image)
		if err != nil {
			return nil, util.BuildInternalHTTPErr("image upload failed", err)
		}
		image = &blobId
	}

	postId, err := pc.db.CreatePost(ctx, &db.CreatePost{
		AuthorId: author.Id,
		Content:  content,
		Image:    image,
		ReplyId:  req.ReplyId,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	post, err := pc.db.GetPostById(ctx, postId, &db.PostQueryOpts{WithReplies: true})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, util.BuildInternalHTTPErr("created post vanished", nil)
	}

	if parent != nil {
		pc.evict(ctx, parent.Id)
		if parent.AuthorId != author.Id {
			if _, err := pc.db.CreateNotification(ctx, &model.Notification{
				Type:   model.NotificationReply,
				FromId: author.Id,
				ToId:   parent.AuthorId,
				PostId: &post.Id,
			}); err != nil {
				util.Log.Error("failed to create reply notification", zap.Int64("post", post.Id), zap.Error(err))
			}
		}
	}

	pc.fanoutPost(ctx, author, model.EventNewMessage, post)
	return post, nil
}

func (pc *PostController) DeletePost(ctx context.Context, user *model.User, id int64) (*model.Post, *util.HTTPError) {
	post, err := pc.db.GetPostById(ctx, id, nil)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, util.BuildNotFoundHTTPErr("post")
	}
	if !post.CanDelete(user) {
		return nil, util.BuildForbiddenHTTPErr("only the author can delete a post")
	}

	if err := pc.db.DeletePost(ctx, id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	pc.evict(ctx, id)
	if post.ReplyId != nil {
		pc.evict(ctx, *post.ReplyId)
	}

	pc.fanoutPost(ctx, user, model.EventDeleteMessage, post)
	return post, nil
}

// GetPost reads through the cache. Misses are filled unconditionally; absent
// posts are not cached.
func (pc *PostController) GetPost(ctx context.Context, id int64) (*model.Post, *util.HTTPError) {
	cached, err := pc.cache.Get(ctx, id)
	if err != nil {
		metrics.CacheLookups.WithLabelValues("error").Inc()
		util.Log.Warn("post cache read failed", zap.Int64("post", id), zap.Error(err))
	} else if cached != nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	} else {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	post, err := pc.db.GetPostById(ctx, id, &db.PostQueryOpts{WithReplies: true})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, util.BuildNotFoundHTTPErr("post")
	}
	if err := pc.cache.Set(ctx, post); err != nil {
		util.Log.Warn("post cache write failed", zap.Int64("post", id), zap.Error(err))
	}
	return post, nil
}

func (pc *PostController) evict(ctx context.Context, id int64) {
	if err := pc.cache.Evict(ctx, id); err != nil {
		util.Log.Error("post cache eviction failed", zap.Int64("post", id), zap.Error(err))
	}
}

// fanoutPost sends the post to the author's profile channel, every follower's
// dashboard and the author's own dashboard.
func (pc *PostController) fanoutPost(ctx context.Context, author *model.User, event string, post *model.Post) {
	followers, err := pc.db.GetFollowers(ctx, author.Id)
	if err != nil {
		util.Log.Error("failed to load followers for fan-out", zap.Int64("author", author.Id), zap.Error(err))
		followers = nil
	}
	payload := gin.H{"post": post}
	deliveries := make([]Delivery, 0, len(followers)+2)
	deliveries = append(deliveries, Delivery{Channel: model.ProfileChannel(author.Username), Event: event, Payload: payload})
	for _, follower := range followers {
		deliveries = append(deliveries, Delivery{Channel: model.DashboardChannel(follower.Email), Event: event, Payload: payload})
	}
	deliveries = append(deliveries, Delivery{Channel: model.DashboardChannel(author.Email), Event: event, Payload: payload})
	pc.fanout.Dispatch(ctx, deliveries...)
}
