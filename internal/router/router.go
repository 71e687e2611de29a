package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/woshisimox/mahjong-ai-match/internal/handler"
	"github.com/woshisimox/mahjong-ai-match/internal/health"
	"github.com/woshisimox/mahjong-ai-match/internal/middleware"
)

// SetupRouter 设置路由, healthChecker 可为 nil
func SetupRouter(
	mode string,
	logger *slog.Logger,
	healthChecker *health.Checker,
	roomHandler *handler.RoomHandler,
	rulesHandler *handler.RulesHandler,
) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}

	r := gin.New()

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))

	if healthChecker != nil {
		r.GET("/health", healthChecker.Health)
		r.GET("/ready", healthChecker.Ready)
	}

	v1 := r.Group("/api/v1")
	{
		rooms := v1.Group("/rooms")
		{
			rooms.POST("", roomHandler.Start)
			rooms.GET("", roomHandler.List)
			rooms.GET("/:id", roomHandler.Get)
			rooms.POST("/:id/pause", roomHandler.Pause)
			rooms.POST("/:id/resume", roomHandler.Resume)
			rooms.POST("/:id/stop", roomHandler.Stop)
			rooms.GET("/:id/snapshot", roomHandler.Snapshot)
			rooms.GET("/:id/events", roomHandler.Events)
			rooms.GET("/:id/result", roomHandler.Result)
		}

		v1.POST("/rules/analyze", rulesHandler.Analyze)
		v1.POST("/decide", rulesHandler.Decide)
	}

	return r
}
