package main

import (
	"context"
	"log/slog"
	"time"

	"confpilot/internal/cache"
	"confpilot/internal/conference"
	"confpilot/internal/config"
	"confpilot/internal/logging"
	"confpilot/internal/prep"
	"confpilot/internal/research"
	"confpilot/internal/schedule"
	"confpilot/internal/server"
	"confpilot/internal/services/airia"
	"confpilot/internal/services/apify"
	"confpilot/internal/services/brightdata"
	"confpilot/internal/services/gladia"
	"confpilot/internal/services/openai"
	"confpilot/internal/services/serper"
	"confpilot/internal/supabase"
)

// buildDeps wires every service the API server needs. Providers with missing
// credentials are left nil; their endpoints answer 503 instead of blocking
// daemon startup.
func buildDeps(ctx context.Context, cfg *config.Config, logger *slog.Logger) (server.Deps, func(), error) {
	cleanup := func() {}

	store, closeStore := openCacheStore(ctx, cfg, logger)
	cleanup = closeStore
	researchStore := research.NewStore(store)
	material := conference.NewMaterialSource(researchStore, cfg.Conference.MaterialPath,
		logging.NewComponentLogger(logger, "conference"))

	deps := server.Deps{
		Config:  cfg,
		Logger:  logger,
		Version: version,
	}

	prepService, ok := buildPrepService(cfg, logger, researchStore, material)
	if ok {
		deps.Prep = prepService
	} else {
		logger.Warn("session prep disabled: research provider credentials missing")
	}

	if cfg.Supabase.URL != "" && cfg.Supabase.APIKey != "" {
		conferences, err := supabase.New(cfg.Supabase.URL, cfg.Supabase.APIKey)
		if err != nil {
			return server.Deps{}, cleanup, err
		}
		deps.Conferences = conferences

		if cfg.OpenAI.APIKey != "" {
			generator, err := openai.New(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL,
				openai.WithModel(cfg.OpenAI.Model))
			if err != nil {
				return server.Deps{}, cleanup, err
			}
			deps.Schedule = schedule.NewService(conferences, generator,
				logging.NewComponentLogger(logger, "schedule"))
		} else {
			logger.Warn("schedule generation disabled: openai api key missing")
		}
	} else {
		logger.Warn("conference store disabled: supabase credentials missing")
	}

	if cfg.Gladia.APIKey != "" {
		transcription, err := gladia.New(cfg.Gladia.APIKey, cfg.Gladia.BaseURL)
		if err != nil {
			return server.Deps{}, cleanup, err
		}
		deps.Transcription = transcription
	} else {
		logger.Warn("live transcription disabled: gladia api key missing")
	}

	return deps, cleanup, nil
}

// openCacheStore connects to Redis, falling back to the in-process store so
// the daemon still serves when the cache is down.
func openCacheStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, func()) {
	cacheLogger := logging.NewComponentLogger(logger, "cache")
	redisStore, err := cache.NewRedisStore(cfg.Redis.URL, cacheLogger)
	if err == nil {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		pingErr := redisStore.Ping(pingCtx)
		if pingErr == nil {
			return redisStore, func() { _ = redisStore.Close() }
		}
		err = pingErr
		_ = redisStore.Close()
	}
	logger.Warn("redis unavailable, using in-memory cache", logging.Error(err))
	return cache.NewMemoryStore(), func() {}
}

func buildPrepService(cfg *config.Config, logger *slog.Logger,
	store *research.Store, material *conference.MaterialSource) (*prep.Service, bool) {

	if cfg.Serper.APIKey == "" || cfg.Apify.APIKey == "" ||
		cfg.BrightData.APIKey == "" || cfg.Airia.APIKey == "" || cfg.Airia.PipelineID == "" {
		return nil, false
	}

	search, err := serper.New(cfg.Serper.APIKey, cfg.Serper.BaseURL)
	if err != nil {
		return nil, false
	}
	scrape, err := apify.New(cfg.Apify.APIKey, cfg.Apify.BaseURL)
	if err != nil {
		return nil, false
	}
	people, err := brightdata.New(cfg.BrightData.APIKey, cfg.BrightData.BaseURL, cfg.BrightData.DatasetID,
		brightdata.WithPolling(time.Duration(cfg.BrightData.PollIntervalSeconds)*time.Second, cfg.BrightData.MaxPolls))
	if err != nil {
		return nil, false
	}
	pipeline, err := airia.New(cfg.Airia.APIKey, cfg.Airia.BaseURL, cfg.Airia.PipelineID)
	if err != nil {
		return nil, false
	}

	return prep.NewService(prep.Deps{
		Store:               store,
		Material:            material,
		Search:              search,
		Scrape:              scrape,
		People:              people,
		Pipeline:            pipeline,
		DefaultConferenceID: cfg.Conference.DefaultID,
		Logger:              logging.NewComponentLogger(logger, "prep"),
	}), true
}
