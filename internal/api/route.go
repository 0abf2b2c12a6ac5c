package api

import (
	"net/http"

	"Plume/internal/api/middleware"
	"Plume/internal/pkg/consts"
	"Plume/internal/pkg/logger"
	"Plume/internal/pkg/monitor"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS & Metrics
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(monitor.GinMiddleware())
	logger.SetupGin(r)

	r.GET("/metrics", gin.WrapH(monitor.Handler()))

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"code":    200,
				"message": "pong",
				"data":    nil,
			})
		})

		metricsGroup := apiGroup.Group("/metrics")
		metricsGroup.Use(middleware.AuthMiddleware())
		{
			metricsGroup.GET("/me", group.DashboardHandler.Me)
			metricsGroup.GET("/employees/:user_id", group.DashboardHandler.Employee)

			// 需要管理角色
			managerGroup := metricsGroup.Group("")
			managerGroup.Use(middleware.CheckRoles(consts.RoleAdmin, consts.RoleManager))
			{
				managerGroup.GET("/campaigns/:campaign_id", group.DashboardHandler.Campaign)
				managerGroup.GET("/groups", group.DashboardHandler.Group)
			}

			adminGroup := metricsGroup.Group("")
			adminGroup.Use(middleware.CheckRoles(consts.RoleAdmin))
			{
				adminGroup.GET("/global", group.DashboardHandler.Global)
			}
		}
	}

	return r
}
