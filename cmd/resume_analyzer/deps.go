package main

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-analyzer/internal/cache"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/logger"
	"github.com/jonathan/resume-analyzer/internal/pipeline"
	"github.com/jonathan/resume-analyzer/internal/queue"
	"github.com/jonathan/resume-analyzer/internal/requirements"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/jonathan/resume-analyzer/internal/storage"
)

// deps holds the external collaborators built from configuration.
// Each one is optional; nil means the feature is disabled.
type deps struct {
	db       *db.DB
	objects  *storage.Store
	cache    *cache.Cache
	mq       *queue.RabbitMQ
	provider *requirements.Provider
	service  *pipeline.Service
}

// openDeps connects to every configured collaborator. Database, bucket and
// broker failures are fatal; an unreachable cache only disables caching.
func openDeps(ctx context.Context, c config.Config) (*deps, error) {
	d := &deps{provider: &requirements.Provider{File: c.RequirementsFile}}
	svc := &pipeline.Service{Requirements: d.provider}
	d.service = svc

	if c.DatabaseURL != "" {
		database, err := db.Connect(ctx, c.DatabaseURL)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.db = database
		d.provider.Store = database
		svc.Store = database
	} else {
		logger.Warn().Msg("DATABASE_URL not set; uploads and stored analyses are disabled")
	}

	if c.Storage.Enabled() {
		objects, err := storage.New(ctx, storage.Config{
			Endpoint:      c.Storage.Endpoint,
			Region:        c.Storage.Region,
			Bucket:        c.Storage.Bucket,
			AccessKey:     c.Storage.AccessKey,
			SecretKey:     c.Storage.SecretKey,
			PublicBaseURL: c.Storage.PublicBaseURL,
			UsePathStyle:  c.Storage.UsePathStyle,
		})
		if err != nil {
			d.Close()
			return nil, err
		}
		d.objects = objects
		svc.Objects = objects
	} else {
		logger.Warn().Msg("STORAGE_BUCKET not set; file uploads are disabled")
	}

	if c.RedisURL != "" {
		rc, err := cache.New(ctx, c.RedisURL, c.CacheDuration())
		if err != nil {
			logger.Warn().Err(err).Msg("analysis cache unavailable, continuing without it")
		} else {
			d.cache = rc
			svc.Cache = rc
		}
	}

	if c.AMQPURL != "" {
		mq, err := queue.Dial(c.AMQPURL, c.Queue)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.mq = mq
		svc.Publisher = mq
	}

	logger.Info().
		Bool("database", d.db != nil).
		Bool("storage", d.objects != nil).
		Bool("cache", d.cache != nil).
		Bool("queue", d.mq != nil).
		Msg("dependencies ready")
	return d, nil
}

// healthChecks lists the collaborators /health should ping.
func (d *deps) healthChecks() map[string]server.Pinger {
	checks := map[string]server.Pinger{}
	if d.db != nil {
		checks["database"] = d.db
	}
	if d.cache != nil {
		checks["cache"] = d.cache
	}
	return checks
}

// Close releases every open connection.
func (d *deps) Close() {
	if d.mq != nil {
		if err := d.mq.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close broker connection")
		}
	}
	if d.cache != nil {
		if err := d.cache.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close cache")
		}
	}
	if d.db != nil {
		d.db.Close()
	}
}

// requireDatabase is used by commands that cannot run without Postgres.
func requireDatabase(c config.Config) error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable (or database_url config) is required")
	}
	return nil
}
