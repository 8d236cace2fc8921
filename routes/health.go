package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/navbryce/next-social-be/db"
	"github.com/navbryce/next-social-be/util"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthRoutes struct {
	db db.Database
}

func AddHealthCheckRoutes(group *gin.RouterGroup, db db.Database) {
	routes := healthRoutes{db: db}
	health := group.Group("/health")
	health.GET("", util.HandlerWrapper(routes.aliveCheck, &util.HandlerOpts{Name: "health"}))
}

func AddMetricsRoutes(group *gin.RouterGroup) {
	group.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (hr *healthRoutes) aliveCheck(c *gin.Context) (interface{}, *util.HTTPError) {
	sqlDB := hr.db.GetSQLDB()
	if sqlDB == nil {
		return nil, nil
	}
	if err := sqlDB.PingContext(c); err != nil {
		return nil, util.BuildInternalHTTPErr("database unreachable", err)
	}
	return nil, nil
}
