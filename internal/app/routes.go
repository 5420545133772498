package app

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/config"
	"github.com/nadi-health/core/internal/middleware"
	"github.com/nadi-health/core/internal/modules/auth"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/topic"
	"github.com/nadi-health/core/internal/modules/processing/ai"
	"github.com/nadi-health/core/internal/modules/render"
	"github.com/nadi-health/core/internal/modules/storage/backup"
	"github.com/nadi-health/core/internal/pkg/response"
	"github.com/nadi-health/core/internal/pkg/taskqueue"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

var appInfo = gin.H{
	"name":    "nadi-core",
	"version": "1.0.0",
}

func newRouter(cfg *config.AppConfig, logger *zap.Logger) *gin.Engine {
	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(corsMiddleware(cfg))
	return router
}

func (a *App) registerRoutes() {
	r := a.router

	r.NoRoute(func(c *gin.Context) { response.NotFound(c) })
	r.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, gin.H{
			"ok": 0, "code": http.StatusMethodNotAllowed, "message": "method not allowed",
		})
	})
	r.GET("/health", a.health)

	var rdb *redis.Client
	if a.rc != nil {
		rdb = a.rc.Raw()
	}

	api := r.Group(apiPrefix)
	api.Use(middleware.OptionalAuth())
	api.Use(middleware.PublicCache(rdb, 30*time.Second))
	api.Use(middleware.PurgeOnWrite(rdb))
	api.GET("", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })

	admin := middleware.Admin()
	generation := append(middleware.Admin(),
		middleware.RateLimit(a.counter(), "ai", a.cfg.AI.RateLimitPerMinute),
		middleware.Idempotence(rdb),
	)

	auth.NewHandler(a.auth).RegisterRoutes(api)
	article.NewHandler(a.articles).RegisterRoutes(api, admin...)
	render.NewHandler(a.articles).RegisterRoutes(api, admin...)
	ai.NewHandler(a.ai).RegisterRoutes(api, generation...)
	topics := topic.NewHandler(a.topics, a.runner)
	if rdb != nil {
		// Async batches save after the 202, so PurgeOnWrite has already run.
		topics.OnBatchDone(func(ctx context.Context) {
			if _, err := middleware.PurgePublicCache(ctx, rdb); err != nil {
				a.logger.Warn("purge public cache after batch failed", zap.Error(err))
			}
		})
	}
	topics.RegisterRoutes(api, admin...)
	backup.NewHandler(a.backups).RegisterRoutes(api, admin...)

	api.GET("/tasks", append(admin, a.listTasks)...)
	api.GET("/cron", append(admin, a.listJobs)...)
	api.POST("/cron/:name", append(admin, a.runJob)...)
}

// health GET /health
func (a *App) health(c *gin.Context) {
	status := gin.H{
		"status": "ok",
		"uptime": humanizeDuration(time.Since(processStart)),
		"redis":  a.rc != nil,
	}
	if sqlDB, err := a.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	c.JSON(http.StatusOK, status)
}

// listTasks GET /tasks?type=topic-batch&limit=20
func (a *App) listTasks(c *gin.Context) {
	if a.rc == nil {
		response.OK(c, []*taskqueue.Task{})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	tasks, err := taskqueue.NewService(a.rc).List(c.Request.Context(), c.Query("type"), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, tasks)
}

// listJobs GET /cron
func (a *App) listJobs(c *gin.Context) {
	response.OK(c, a.sched.List())
}

// runJob POST /cron/:name
func (a *App) runJob(c *gin.Context) {
	if err := a.sched.RunNow(c.Request.Context(), c.Param("name")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}
