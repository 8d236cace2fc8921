package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/util"
)

type directRoutes struct {
	directController *controllers.DirectController
}

func AddDirectRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, directController *controllers.DirectController) {
	routes := directRoutes{directController: directController}
	auth := middleware.GenAuth(db, verifier, &middleware.AuthConfig{})

	directs := group.Group("/direct", auth)
	directs.GET("", util.HandlerWrapper(routes.listDirects, &util.HandlerOpts{Name: "list_directs"}))
	directs.POST("", util.HandlerWrapper(routes.startDirect, &util.HandlerOpts{Name: "start_direct"}))

	messages := group.Group("/direct-message", auth)
	messages.POST("", util.HandlerWrapper(routes.sendMessage, &util.HandlerOpts{Name: "send_direct_message"}))
}

type sendMessageReq struct {
	DirectId string `json:"directId" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

func (dr *directRoutes) sendMessage(c *gin.Context) (interface{}, *util.HTTPError) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	directId, httpErr := util.ParseId(req.DirectId)
	if httpErr != nil {
		return nil, httpErr
	}
	if httpErr := dr.directController.SendMessage(c, middleware.MustGetUser(c), directId, req.Message); httpErr != nil {
		return nil, httpErr
	}
	return nil, nil
}

type usernameReq struct {
	Username string `json:"username" binding:"required"`
}

func (dr *directRoutes) startDirect(c *gin.Context) (interface{}, *util.HTTPError) {
	var req usernameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	direct, httpErr := dr.directController.StartDirect(c, middleware.MustGetUser(c), req.Username)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"direct": direct}, nil
}

func (dr *directRoutes) listDirects(c *gin.Context) (interface{}, *util.HTTPError) {
	directs, httpErr := dr.directController.ListDirects(c, middleware.MustGetUser(c))
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"directs": directs}, nil
}
