package app

import (
	"smartgrade_backend/internal/config"
	"smartgrade_backend/internal/middleware"
	"smartgrade_backend/internal/model"
	"smartgrade_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 2. 需要授权的路由。/profile 不过审核门禁：未审核账号要能看到自己的待审状态
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
	}

	// 3. 功能路由：审核通过的账号才可访问
	approved := router.Group("/api")
	approved.Use(middleware.AuthMiddleware(cfg), middleware.ApprovedMiddleware(repos.user))
	{
		// 任务可见性在控制器内按角色过滤
		approved.GET("/tasks", c.task.ListTasks)
		approved.GET("/tasks/:id", c.task.GetTask)

		// 学生提交
		student := approved.Group("/submissions")
		student.Use(middleware.RoleMiddleware(model.Student))
		{
			student.POST("", c.submission.Submit)
			student.POST("/draft", c.submission.SaveDraft)
			student.GET("/mine", c.submission.ListMine)
		}

		// 监考端
		proctor := approved.Group("/proctor")
		proctor.Use(middleware.RoleMiddleware(model.Proctor))
		{
			proctor.POST("/tasks", c.task.CreateTask)
			proctor.PATCH("/tasks/:id/status", c.task.SetStatus)
			proctor.DELETE("/tasks/:id", c.task.DeleteTask)

			proctor.GET("/submissions", c.submission.ListGraded)

			proctor.GET("/users/pending", c.user.ListPending)
			proctor.POST("/users/:id/approve", c.user.Approve)

			proctor.POST("/invites", c.invite.Generate)
			proctor.GET("/invites", c.invite.List)
			proctor.DELETE("/invites/:code", c.invite.Revoke)

			proctor.GET("/gradebook", c.report.StudentAverages)
			proctor.GET("/gradebook/export", c.report.ExportGradebook)
		}
	}
}
