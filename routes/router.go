package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/forumcore/config"
	"github.com/cppla/forumcore/controllers"
	"github.com/cppla/forumcore/middleware"
	"github.com/cppla/forumcore/services"
	"github.com/cppla/forumcore/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(forum *services.Forum) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postController := controllers.NewPostController(forum, time.Duration(cfg.ListCacheTTLSeconds)*time.Second)
	statsController := controllers.NewStatsController(forum)
	configController := controllers.NewConfigController()

	api := r.Group("/api/v1")

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/:id", postController.GetPost)

	// Public stats endpoint
	api.GET("/stats", statsController.GetStats)
	// Public config endpoint
	api.GET("/config/forum", configController.GetForumConfig)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/posts/mine", postController.ListMyPosts)
	protected.POST("/posts", postController.CreatePost)
	protected.PUT("/posts/:id", postController.UpdatePost)
	protected.DELETE("/posts/:id", postController.DeletePost)
	protected.POST("/posts/:id/reply", postController.AddReply)
	protected.POST("/posts/:id/like", postController.ToggleLike)
	protected.PUT("/posts/:id/moderation", postController.SetModerationFlags)
	protected.PUT("/posts/:id/replies/:replyId/solution", postController.MarkAsSolution)
	protected.POST("/posts/:id/replies/:replyId/like", postController.ToggleLike)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
