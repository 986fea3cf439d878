package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"planroom/internal/api/handlers"
	"planroom/internal/middleware"
	"planroom/internal/service"
	"planroom/internal/utils"
)

func SetupRoutes(r *gin.Engine, services *service.Services, tokens *utils.TokenManager) {
	// 初始化 handlers
	authHandler := handlers.NewAuthHandler(services.User, tokens)
	roomHandler := handlers.NewRoomHandler(services.Gateway, services.Chat)
	usageHandler := handlers.NewUsageHandler(services.Ledger)
	wsHandler := handlers.NewWebSocketHandler(services.Chat)

	api := r.Group("/api")

	// 處理 404 錯誤
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	// 公開路由
	{
		api.POST("/register", authHandler.Register)
		api.POST("/login", authHandler.Login)

		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
	}

	// 需要驗證的路由
	authorized := api.Group("/")
	authorized.Use(middleware.AuthMiddleware(tokens))
	{
		authorized.GET("/rooms/:room/messages", roomHandler.GetMessages)
		authorized.GET("/usage", usageHandler.GetUsage)
	}

	// 聊天連線允許匿名
	r.GET("/ws/chat/:room", middleware.OptionalAuth(tokens), wsHandler.HandleWebSocket)
}
