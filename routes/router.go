package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/lmenendez/agora/config"
	"github.com/lmenendez/agora/controllers"
	"github.com/lmenendez/agora/middleware"
	"github.com/lmenendez/agora/notify"
	"github.com/lmenendez/agora/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, pipeline *notify.Pipeline) *gin.Engine {
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
	// Access log goes to its own rolling file; panics land in the app log.
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.GinLogger(gl))
		r.Use(utils.GinRecovery(utils.Logger))
	} else {
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
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	forumController := controllers.NewForumController(db)
	topicController := controllers.NewTopicController(db, pipeline)
	commentController := controllers.NewCommentController(db, pipeline)
	notificationController := controllers.NewNotificationController(pipeline.Store())

	api := r.Group("/api/v1")

	api.GET("/forums", forumController.ListForums)
	api.GET("/forums/:name", forumController.GetForum)
	api.GET("/forums/:name/users", forumController.ListMembers)
	api.GET("/forums/:name/topics", topicController.ListTopics)
	api.GET("/forums/:name/topics/search", topicController.SearchTopics)
	api.GET("/topics/:id", topicController.GetTopic)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
	protected.POST("/forums/:name/register", forumController.Join)
	protected.DELETE("/forums/:name/register", forumController.Leave)
	protected.POST("/forums/:name/topics", topicController.CreateTopic)
	protected.PUT("/topics/:id", topicController.UpdateTopic)
	protected.DELETE("/topics/:id", topicController.DeleteTopic)
	protected.POST("/topics/:id/comments", commentController.CreateComment)
	protected.PUT("/comments/:id", commentController.UpdateComment)
	protected.DELETE("/comments/:id", commentController.DeleteComment)
	protected.GET("/notifications", notificationController.ListNotifications)
	protected.GET("/notifications/pending", notificationController.PendingCount)
	protected.POST("/notifications/viewed", notificationController.MarkViewed)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
