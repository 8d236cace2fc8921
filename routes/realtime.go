package routes

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/model"
	"github.com/navbryce/next-social-be/services"
	"github.com/navbryce/next-social-be/util"
	"go.uber.org/zap"
)

const keepAliveInterval = 25 * time.Second

type realtimeRoutes struct {
	subscriber services.Subscriber
	done       <-chan struct{}
}

// AddRealtimeRoutes streams bus events for one channel as Server-Sent Events.
// Open streams end when done is closed, so a graceful shutdown is not held up.
func AddRealtimeRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, subscriber services.Subscriber, done <-chan struct{}) {
	routes := realtimeRoutes{subscriber: subscriber, done: done}
	realtime := group.Group("/realtime", middleware.GenAuth(db, verifier, &middleware.AuthConfig{}))
	realtime.GET("/:channel", routes.stream)
}

func (rr *realtimeRoutes) stream(c *gin.Context) {
	channel := c.Param("channel")
	if !model.CanSubscribe(middleware.MustGetUser(c), channel) {
		util.HandleHTTPErrorRes(c, "realtime", util.BuildForbiddenHTTPErr("cannot subscribe to channel"))
		return
	}

	events, cancel, err := rr.subscriber.Subscribe(c, channel)
	if err != nil {
		util.HandleHTTPErrorRes(c, "realtime", util.BuildInternalHTTPErr("subscribe failed", err))
		return
	}
	defer cancel()
	util.Log.Debug("realtime_subscribed", zap.String("channel", channel))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-rr.done:
			return false
		case event, ok := <-events:
			if !ok {
				return false
			}
			// Data is already JSON; passing it as a string keeps sse from re-encoding it.
			c.SSEvent(event.Name, string(event.Data))
			return true
		case <-keepAlive.C:
			c.SSEvent("ping", "")
			return true
		}
	})
}
