// Package articlestore provides the article persistence backends and picks
// one of them at startup.
package articlestore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nadi-health/core/internal/config"
	"github.com/nadi-health/core/internal/modules/content/article"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	_ article.Store = (*Relational)(nil)
	_ article.Store = (*Blob)(nil)
	_ article.Store = (*Local)(nil)
	_ article.Store = (*Overlay)(nil)
	_ article.Store = (*Manifest)(nil)
)

// New builds the configured backend, then layers the seed overlay and the
// manifest on top when they are enabled.
func New(ctx context.Context, cfg config.StorageConfig, db *gorm.DB, logger *zap.Logger) (article.Store, error) {
	logger = orNop(logger).Named("articlestore")

	var (
		store article.Store
		err   error
	)
	switch cfg.Backend {
	case config.StorageRelational:
		if db == nil {
			return nil, fmt.Errorf("relational storage requires a database")
		}
		store = NewRelational(db, logger)
	case config.StorageBlob:
		store, err = NewBlob(NewS3Client(cfg.S3), cfg.S3.Bucket, cfg.S3.Prefix, logger)
	case config.StorageLocal:
		store, err = NewLocal(cfg.ArticlesDir, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("article storage ready", zap.String("backend", string(cfg.Backend)))

	if cfg.SeedDir != "" {
		seed, err := NewLocal(cfg.SeedDir, logger.Named("seed"))
		if err != nil {
			return nil, err
		}
		store = NewOverlay(store, seed)
	}

	if cfg.Manifest {
		path := cfg.ManifestPath
		if path == "" {
			path = filepath.Join(cfg.ArticlesDir, manifestName)
		}
		m := WithManifest(store, path, logger)
		if err := m.Rebuild(ctx); err != nil {
			logger.Warn("initial manifest rebuild failed", zap.Error(err))
		}
		store = m
	}
	return store, nil
}

func orNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
