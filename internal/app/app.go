package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nadi-health/core/internal/config"
	"github.com/nadi-health/core/internal/database"
	"github.com/nadi-health/core/internal/middleware"
	"github.com/nadi-health/core/internal/modules/auth"
	"github.com/nadi-health/core/internal/modules/content/article"
	"github.com/nadi-health/core/internal/modules/content/topic"
	"github.com/nadi-health/core/internal/modules/processing/ai"
	"github.com/nadi-health/core/internal/modules/storage/articlestore"
	"github.com/nadi-health/core/internal/modules/storage/backup"
	pkgcron "github.com/nadi-health/core/internal/pkg/cron"
	pkgredis "github.com/nadi-health/core/internal/pkg/redis"
	"github.com/nadi-health/core/internal/pkg/taskqueue"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds all application dependencies.
type App struct {
	cfg    *config.AppConfig
	router *gin.Engine
	db     *gorm.DB
	rc     *pkgredis.Client
	logger *zap.Logger
	cancel context.CancelFunc
	sched  *pkgcron.Scheduler

	store    article.Store
	articles *article.Service
	topics   *topic.Service
	runner   *topic.Runner
	ai       *ai.Service
	backups  *backup.Service
	auth     *auth.Service
}

// New initializes the application: DB, Redis, storage, services, routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg, logger); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{cfg: cfg, logger: logger, cancel: cancel}
	if err := a.init(ctx); err != nil {
		cancel()
		a.close()
		return nil, err
	}

	a.sched = pkgcron.New(logger)
	registerCronJobs(a.sched, a)
	go a.sched.Start(ctx)

	a.router = newRouter(cfg, logger)
	a.registerRoutes()
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.cfg

	db, err := database.Connect(cfg, true)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	a.db = db

	if cfg.Redis.Enable {
		rc, err := pkgredis.Connect(ctx, cfg.Redis.URLValue())
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.rc = rc
	} else {
		a.logger.Warn("redis disabled, batch tasks are not recorded and rate limits are off")
	}

	a.store, err = articlestore.New(ctx, cfg.Storage, db, a.logger)
	if err != nil {
		return fmt.Errorf("article storage: %w", err)
	}
	a.articles = article.NewService(a.store, a.logger)
	a.topics = topic.NewService(db, a.logger)

	gen, err := ai.NewGenerator(cfg.AI)
	if err != nil {
		return fmt.Errorf("ai: %w", err)
	}
	a.ai = ai.NewService(ai.NewBridge(gen, a.logger), a.articles, a.topics, a.logger)

	var recorder topic.Recorder
	if a.rc != nil {
		recorder = taskqueue.NewService(a.rc)
	}
	a.runner = topic.NewRunner(a.topics, a.ai, recorder, a.logger)

	opts := []backup.Option{backup.WithDB(db), backup.WithLogger(a.logger)}
	if s3 := cfg.Storage.S3; s3.Bucket != "" {
		opts = append(opts, backup.WithS3(articlestore.NewS3Client(s3), s3.Bucket, ""))
	}
	a.backups = backup.NewService(a.store, cfg.BackupDir(), opts...)

	a.auth = auth.NewService(db, a.logger)
	if err := a.auth.EnsureAdmin(ctx, cfg.Admin); err != nil {
		return fmt.Errorf("admin bootstrap: %w", err)
	}
	return nil
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown stops background jobs and closes connections.
func (a *App) Shutdown() {
	a.cancel()
	a.close()
}

func (a *App) close() {
	if a.rc != nil {
		_ = a.rc.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// counter returns the rate-limit counter, or a nil interface without Redis.
func (a *App) counter() middleware.Counter {
	if a.rc == nil {
		return nil
	}
	return a.rc
}

var processStart = time.Now()
