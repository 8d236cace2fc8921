package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/util"
)

type userRoutes struct {
	userController *controllers.UserController
}

func AddUserRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, userController *controllers.UserController) {
	routes := userRoutes{userController: userController}
	user := group.Group("/user", middleware.GenAuth(db, verifier, &middleware.AuthConfig{
		AppAccountNotRequired: true,
	}))
	user.PUT("", util.HandlerWrapper(routes.createUser, &util.HandlerOpts{Name: "create_user"}))
	user.GET("", middleware.RequireAccount(), util.HandlerWrapper(routes.getUser, &util.HandlerOpts{Name: "get_user"}))
	user.POST("", middleware.RequireAccount(), util.HandlerWrapper(routes.updateUser, &util.HandlerOpts{Name: "update_user"}))

	users := group.Group("/users", middleware.GenAuth(db, verifier, &middleware.AuthConfig{}))
	users.GET("/:username", util.HandlerWrapper(routes.getPublicProfile, &util.HandlerOpts{Name: "get_public_profile"}))
}

func (ur *userRoutes) getUser(c *gin.Context) (interface{}, *util.HTTPError) {
	profile, httpErr := ur.userController.GetProfile(c, middleware.MustGetUser(c))
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"user": profile}, nil
}

type createUserReq struct {
	DisplayName string `json:"displayName"`
}

func (ur *userRoutes) createUser(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createUserReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, util.BuildJSONBindHTTPErr(err)
		}
	}
	identity := middleware.GetIdentity(c)
	if identity == nil {
		return nil, &util.HTTPError{Kind: util.KindUnauthenticated, Message: "no session"}
	}
	user, httpErr := ur.userController.CreateUser(c, identity.Email, req.DisplayName)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"user": user}, nil
}

func (ur *userRoutes) updateUser(c *gin.Context) (interface{}, *util.HTTPError) {
	req := &controllers.UpdateProfileReq{
		Username:    c.PostForm("username"),
		DisplayName: c.PostForm("displayname"),
		Description: c.PostForm("description"),
	}
	var httpErr *util.HTTPError
	if req.Avatar, httpErr = formBlob(c, "avatar"); httpErr != nil {
		return nil, httpErr
	}
	if req.Banner, httpErr = formBlob(c, "banner"); httpErr != nil {
		return nil, httpErr
	}
	user, httpErr := ur.userController.UpdateProfile(c, middleware.MustGetUser(c), req)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"user": user}, nil
}

func (ur *userRoutes) getPublicProfile(c *gin.Context) (interface{}, *util.HTTPError) {
	return ur.userController.GetPublicProfile(c, c.Param("username"))
}
