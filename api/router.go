// Package api 组装 gin 路由
package api

import (
	"net/http"
	"time"

	"github.com/BinLe1988/cofounder-match/api/handlers"
	"github.com/BinLe1988/cofounder-match/api/middleware"
	"github.com/BinLe1988/cofounder-match/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers 各业务区域的处理器
type Handlers struct {
	Auth          *handlers.AuthHandler
	Profiles      *handlers.ProfileHandler
	Swipes        *handlers.SwipeHandler
	Matches       *handlers.MatchHandler
	Documents     *handlers.DocumentHandler
	AiChats       *handlers.AiChatHandler
	Notifications *handlers.NotificationHandler
	Social        *handlers.SocialHandler
	Filter        *handlers.ContentFilterHandler
	Files         *handlers.FileHandler // 仅本地存储时注册
}

// Options 路由配置
type Options struct {
	JWT          *utils.JWTManager
	AllowOrigins []string
	Log          *zap.Logger
}

// SetupRouter 设置API路由
func SetupRouter(router *gin.Engine, opts Options, h Handlers) {
	router.Use(middleware.Recovery(opts.Log), middleware.RequestLogger(opts.Log))
	router.Use(cors.New(corsConfig(opts.AllowOrigins)))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 公共API
	public := router.Group("/api")
	{
		h.Auth.RegisterPublicRoutes(public)
		h.Profiles.RegisterPublicRoutes(public)
	}
	if h.Files != nil {
		h.Files.RegisterRoutes(router)
	}

	// 需要认证的API
	authorized := router.Group("/api")
	authorized.Use(middleware.Auth(opts.JWT))
	{
		h.Auth.RegisterRoutes(authorized)
		h.Profiles.RegisterRoutes(authorized)
		h.Swipes.RegisterRoutes(authorized)
		h.Matches.RegisterRoutes(authorized)
		h.Documents.RegisterRoutes(authorized)
		h.AiChats.RegisterRoutes(authorized)
		h.Notifications.RegisterRoutes(authorized)
		h.Social.RegisterRoutes(authorized)
		h.Filter.RegisterRoutes(authorized)
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		MaxAge:           12 * time.Hour,
		AllowCredentials: true,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
