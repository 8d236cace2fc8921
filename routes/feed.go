package routes

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/app"
	"github.com/navbryce/next-social-be/controllers"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/middleware"
	"github.com/navbryce/next-social-be/util"
)

const feedPageSize = 20

type feedRoutes struct {
	db                db.Database
	exploreController *controllers.ExploreController
}

func AddFeedRoutes(group *gin.RouterGroup, db db.Database, verifier middleware.TokenVerifier, exploreController *controllers.ExploreController) {
	routes := feedRoutes{db: db, exploreController: exploreController}
	auth := middleware.GenAuth(db, verifier, &middleware.AuthConfig{})

	feeds := group.Group("/feeds", auth)
	feeds.POST("", util.HandlerWrapper(routes.getFeed, &util.HandlerOpts{Name: "get_feed"}))

	explore := group.Group("/explore", auth)
	explore.GET("", util.HandlerWrapper(routes.explore, &util.HandlerOpts{Name: "explore"}))
}

func (fr *feedRoutes) getFeed(c *gin.Context) (interface{}, *util.HTTPError) {
	var cursor app.TaggedUnionCursor
	if err := c.ShouldBindJSON(&cursor); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	page, err := app.GetFeedForUser(c, fr.db, middleware.MustGetUser(c), &cursor, &app.PostCursorOpts{Limit: feedPageSize})
	if err != nil {
		if errors.Is(err, app.MissingCursorErr) {
			return nil, util.BuildValidationHTTPErr(err.Error())
		}
		return nil, util.BuildDbHTTPErr(err)
	}
	return page, nil
}

func (fr *feedRoutes) explore(c *gin.Context) (interface{}, *util.HTTPError) {
	skip := 0
	if raw := c.Query("skip"); raw != "" {
		var err error
		if skip, err = strconv.Atoi(raw); err != nil {
			return nil, &util.HTTPError{Kind: util.KindValidation, Message: "skip malformed", Cause: err}
		}
	}
	return fr.exploreController.Explore(c, skip)
}
