package bootstrap

import (
	"time"

	"analyzer_server/adapter/out/cache"
	"analyzer_server/adapter/out/llm"
	"analyzer_server/adapter/out/persistence"
	"analyzer_server/config"
	"analyzer_server/core/port/in"
	"analyzer_server/core/port/out"
	"analyzer_server/core/service/analysis"
	"analyzer_server/infra/database"
	"analyzer_server/pkg/logger"
	"analyzer_server/pkg/metrics"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	Config *config.Config
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	WorkloadRepo out.WorkloadRepository

	// Cache
	AnalysisCache out.AnalysisCache

	// Services
	AnalysisService in.AnalysisService

	// Metrics
	Pools *metrics.PoolMonitor
}

// NewDependencies wires the dependency graph. Postgres and Redis are both
// optional: without Postgres the engine analyzes with no workload snapshot,
// without Redis it analyzes with no result cache.
func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg, Pools: metrics.NewPoolMonitor()}
	var cleanups []func()

	// Database (sqlx over the pgx stdlib driver)
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			logger.Warn("Postgres connection failed, workload snapshots disabled: %v", err)
		} else {
			deps.DB = db
			cleanups = append(cleanups, func() { db.Close() })

			deps.WorkloadRepo = persistence.NewWorkloadRepository(db)
			deps.Pools.Register("postgres", db.DB)
			logger.Info("Postgres connection successful")
		}
	} else {
		logger.Info("DATABASE_URL not set, workload snapshots disabled")
	}

	// Redis
	if cfg.RedisURL != "" {
		redisClient, err := database.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis connection failed, analysis cache disabled: %v", err)
		} else {
			deps.Redis = redisClient
			cleanups = append(cleanups, func() { redisClient.Close() })

			deps.AnalysisCache = cache.NewRedisAnalysisCache(redisClient)
			logger.Info("Redis connection successful")
		}
	} else {
		logger.Info("REDIS_URL not set, analysis cache disabled")
	}

	// Analysis engine
	clientFactory := llm.Factory(llm.Config{
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		AnthropicModel:  cfg.AnthropicModel,
		LMStudioBaseURL: cfg.LMStudioBaseURL,
		LMStudioModel:   cfg.LMStudioModel,
		Temperature:     cfg.LLMTemperature,
		MaxTokens:       cfg.LLMMaxTokens,
	})
	deps.AnalysisService = analysis.New(analysis.Config{
		Mode:     cfg.AIServiceMode,
		Timeout:  time.Duration(cfg.LLMTimeoutSec) * time.Second,
		CacheTTL: time.Duration(cfg.AnalysisCacheTTLMin) * time.Minute,
	}, analysis.Deps{
		ClientFactory: clientFactory,
		Cache:         deps.AnalysisCache,
	})

	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	return deps, cleanup, nil
}
