package web

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hatcher/voyage/pkg/hertzx/middleware"
	"github.com/hatcher/voyage/pkg/jwtx"
)

// RegisterRoutes 注册全部HTTP路由
func RegisterRoutes(hertz *server.Hertz, h *Handler, authCfg jwtx.Config) {
	api := hertz.Group("/api")
	if authCfg.Enabled {
		api.Use(middleware.AuthMW(jwtx.NewJwtService(authCfg)))
	}

	sessions := api.Group("/sessions")
	sessions.POST("", h.CreateSession)
	sessions.GET("", h.ListSessions)
	sessions.GET("/:id", h.GetSession)
	sessions.POST("/:id/end", h.EndSession)
	sessions.DELETE("/:id", h.DeleteSession)
	sessions.GET("/:id/stats", h.SessionStats)
	sessions.POST("/:id/heartbeat", h.Heartbeat)
	sessions.GET("/:id/live", h.Live)
	sessions.GET("/:id/interventions", h.ListInterventions)

	tasks := api.Group("/tasks")
	tasks.POST("", h.CreateTask)
	tasks.GET("", h.ListTasks)
	tasks.GET("/:id", h.GetTask)
	tasks.PUT("/:id", h.UpdateTask)
	tasks.DELETE("/:id", h.DeleteTask)
}
