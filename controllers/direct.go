package controllers

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
	"go.uber.org/zap"
)

type DirectController struct {
	db     db.Database
	fanout *FanoutDispatcher
}

func NewDirectController(db db.Database, fanout *FanoutDispatcher) *DirectController {
	return &DirectController{db: db, fanout: fanout}
}

// SendMessage stores a message in a direct the sender belongs to, then pushes
// every member's full conversation state to their directs channel.
func (dc *DirectController) SendMessage(ctx context.Context, sender *model.User, directId int64, message string) *util.HTTPError {
	content := strings.TrimSpace(util.XSSSanitize(message))
	if content == "" {
		return util.BuildValidationHTTPErr("message must not be empty")
	}
	isMember, err := dc.db.IsDirectMember(ctx, directId, sender.Id)
	if err != nil {
		return util.BuildDbHTTPErr(err)
	}
	if !isMember {
		return util.BuildNotFoundHTTPErr("direct")
	}

	if _, err := dc.db.CreateDirectMessage(ctx, directId, sender.Id, content); err != nil {
		return util.BuildDbHTTPErr(err)
	}

	// the message is stored; from here on failures only cost realtime pushes
	members, err := dc.db.GetDirectMembers(ctx, directId)
	if err != nil {
		util.Log.Error("failed to load direct members", zap.Int64("direct", directId), zap.Error(err))
		return nil
	}
	deliveries := make([]Delivery, 0, len(members))
	for _, member := range members {
		directs, err := dc.db.GetDirectsForUser(ctx, member.Id)
		if err != nil {
			util.Log.Error("failed to load directs for realtime push", zap.Int64("user", member.Id), zap.Error(err))
			continue
		}
		deliveries = append(deliveries, Delivery{
			Channel: model.DirectsChannel(member.Username),
			Event:   model.EventNewMessage,
			Payload: gin.H{"user": &model.UserWithDirects{User: member, Directs: directs}},
		})
	}
	dc.fanout.Dispatch(ctx, deliveries...)
	return nil
}

// StartDirect returns the caller's two person direct with username, creating it if needed.
func (dc *DirectController) StartDirect(ctx context.Context, user *model.User, username string) (*model.Direct, *util.HTTPError) {
	other, err := dc.db.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if other == nil {
		return nil, util.BuildNotFoundHTTPErr("user")
	}
	if other.Id == user.Id {
		return nil, util.BuildValidationHTTPErr("cannot message yourself")
	}

	directs, err := dc.db.GetDirectsForUser(ctx, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	for _, direct := range directs {
		if len(direct.Members) == 2 && direct.HasMember(other.Id) {
			return direct, nil
		}
	}

	directId, err := dc.db.CreateDirect(ctx, []int64{user.Id, other.Id})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	directs, err = dc.db.GetDirectsForUser(ctx, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	for _, direct := range directs {
		if direct.Id == directId {
			return direct, nil
		}
	}
	return nil, util.BuildInternalHTTPErr("created direct vanished", nil)
}

func (dc *DirectController) ListDirects(ctx context.Context, user *model.User) ([]*model.Direct, *util.HTTPError) {
	directs, err := dc.db.GetDirectsForUser(ctx, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return directs, nil
}
