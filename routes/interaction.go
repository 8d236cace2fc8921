package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/util"
)

type interactionRoutes struct {
	kind                  model.InteractionKind
	interactionController *controllers.InteractionController
}

// AddInteractionRoutes mounts toggle and check routes for like, repost and bookmark.
func AddInteractionRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, interactionController *controllers.InteractionController) {
	for _, kind := range []model.InteractionKind{model.InteractionLike, model.InteractionRepost, model.InteractionBookmark} {
		routes := &interactionRoutes{kind: kind, interactionController: interactionController}
		interactions := group.Group("/"+string(kind),
			middleware.GenAuth(db, verifier, &middleware.AuthConfig{}))
		interactions.POST("", util.HandlerWrapper(routes.toggle, &util.HandlerOpts{Name: "toggle_" + string(kind)}))
		interactions.GET("", util.HandlerWrapper(routes.check, &util.HandlerOpts{Name: "check_" + string(kind)}))
	}
}

func (ir *interactionRoutes) toggle(c *gin.Context) (interface{}, *util.HTTPError) {
	var req idReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	active, httpErr := ir.interactionController.Toggle(c, middleware.MustGetUser(c), ir.kind, req.Id)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{ir.kind.ResponseKey(): active}, nil
}

func (ir *interactionRoutes) check(c *gin.Context) (interface{}, *util.HTTPError) {
	postId, httpErr := util.ParseId(c.Query("post_id"))
	if httpErr != nil {
		return nil, httpErr
	}
	active, httpErr := ir.interactionController.Check(c, middleware.MustGetUser(c), ir.kind, postId)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{ir.kind.ResponseKey(): active}, nil
}
