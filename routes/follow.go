package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/util"
)

type followRoutes struct {
	followController *controllers.FollowController
}

func AddFollowRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, followController *controllers.FollowController) {
	routes := followRoutes{followController: followController}
	follow := group.Group("/follow", middleware.GenAuth(db, verifier, &middleware.AuthConfig{}))
	follow.POST("", util.HandlerWrapper(routes.toggleFollow, &util.HandlerOpts{Name: "toggle_follow"}))
}

func (fr *followRoutes) toggleFollow(c *gin.Context) (interface{}, *util.HTTPError) {
	var req usernameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	following, httpErr := fr.followController.ToggleFollow(c, middleware.MustGetUser(c), req.Username)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"following": following}, nil
}
