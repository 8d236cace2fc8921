package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/util"
)

type notificationRoutes struct {
	notificationController *controllers.NotificationController
}

func AddNotificationRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, notificationController *controllers.NotificationController) {
	routes := notificationRoutes{notificationController: notificationController}
	notifications := group.Group("/notifications", middleware.GenAuth(db, verifier, &middleware.AuthConfig{}))
	notifications.GET("", util.HandlerWrapper(routes.list, &util.HandlerOpts{Name: "list_notifications"}))
	notifications.POST("/read", util.HandlerWrapper(routes.markRead, &util.HandlerOpts{Name: "mark_notifications_read"}))
}

func (nr *notificationRoutes) list(c *gin.Context) (interface{}, *util.HTTPError) {
	notifications, httpErr := nr.notificationController.List(c, middleware.MustGetUser(c))
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"notifications": notifications}, nil
}

func (nr *notificationRoutes) markRead(c *gin.Context) (interface{}, *util.HTTPError) {
	return nil, nr.notificationController.MarkRead(c, middleware.MustGetUser(c))
}
