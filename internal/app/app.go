// Package app собирает зависимости сервисов из config.Config.
//
// Бэкенды опциональны: без DB_URL нет истории и прошлых оценок,
// без REDIS_ADDR нет кэша анализа, без LLM_API_KEY работает эвристика.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/shaiso/Mentor/internal/agents"
	"github.com/shaiso/Mentor/internal/analyzer"
	"github.com/shaiso/Mentor/internal/cache"
	"github.com/shaiso/Mentor/internal/config"
	"github.com/shaiso/Mentor/internal/llm"
	"github.com/shaiso/Mentor/internal/llm/openai"
	"github.com/shaiso/Mentor/internal/orchestrator"
	"github.com/shaiso/Mentor/internal/repo"
)

// Services — собранные зависимости.
type Services struct {
	Pipeline *orchestrator.Pipeline

	// Requests — история запросов (nil без базы).
	Requests *repo.RequestRepo

	// Performance — прошлые оценки студентов (nil без базы).
	Performance *repo.PerformanceRepo

	pool  *pgxpool.Pool
	redis *redis.Client
}

// Build подключает бэкенды и собирает Pipeline.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	s := &Services{}

	var records orchestrator.RecordStore
	var performance agents.PerformanceSource
	if cfg.Database.URL != "" {
		pool, err := repo.NewPool(ctx, repo.PoolConfig{
			DSN:      cfg.Database.URL,
			MaxConns: cfg.Database.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		s.pool = pool
		s.Requests = repo.NewRequestRepo(pool)
		records = s.Requests
		s.Performance = repo.NewPerformanceRepo(pool)
		performance = s.Performance
		logger.Info("database connected")
	} else {
		logger.Warn("DB_URL not set, request history disabled")
	}

	var analysisCache analyzer.Cache
	if cfg.Redis.Addr != "" {
		s.redis = cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		c := cache.New(s.redis, cache.Config{TTL: cfg.Redis.TTL})
		if err := c.Ping(ctx); err != nil {
			// кэш необязателен
			logger.Warn("redis not available, analysis cache disabled", "error", err)
		} else {
			analysisCache = c
			logger.Info("redis connected")
		}
	}

	var client llm.Client
	if cfg.LLM.APIKey != "" {
		c, err := openai.NewClient(openai.Config{
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
			Model:   cfg.LLM.Model,
			Timeout: cfg.LLM.Timeout,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("llm client: %w", err)
		}
		client = c
	} else {
		logger.Warn("LLM_API_KEY not set, using heuristic analysis only")
	}

	registry := agents.DefaultRegistry(agents.Config{
		LLM:           client,
		Performance:   performance,
		ScheduleCron:  cfg.Agents.ScheduleCron,
		QuestionCount: cfg.Agents.QuestionCount,
		Logger:        logger,
	})

	s.Pipeline = orchestrator.NewPipeline(orchestrator.Config{
		Analyzer: analyzer.New(analyzer.Config{
			Client:  client,
			Cache:   analysisCache,
			Timeout: cfg.LLM.Timeout,
			Logger:  logger,
		}),
		Executor: orchestrator.NewExecutor(orchestrator.ExecutorConfig{
			Registry: registry,
			Logger:   logger,
		}),
		Records: records,
		Logger:  logger,
	})

	return s, nil
}

// Close освобождает подключения.
func (s *Services) Close() error {
	var errs []error
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.pool != nil {
		s.pool.Close()
	}
	return errors.Join(errs...)
}
