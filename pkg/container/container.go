package container

import (
	"context"
	"fmt"
	"time"

	"library-backend/internal/config"
	catalogHandler "library-backend/internal/domains/catalog/handler"
	catalogRepo "library-backend/internal/domains/catalog/repository"
	catalogService "library-backend/internal/domains/catalog/service"
	"library-backend/internal/domains/fine"
	loanHandler "library-backend/internal/domains/loan/handler"
	loanRepo "library-backend/internal/domains/loan/repository"
	loanService "library-backend/internal/domains/loan/service"
	policyHandler "library-backend/internal/domains/policy/handler"
	policyRepo "library-backend/internal/domains/policy/repository"
	policyService "library-backend/internal/domains/policy/service"
	readerHandler "library-backend/internal/domains/reader/handler"
	readerRepo "library-backend/internal/domains/reader/repository"
	readerService "library-backend/internal/domains/reader/service"
	requestHandler "library-backend/internal/domains/request/handler"
	requestRepo "library-backend/internal/domains/request/repository"
	requestService "library-backend/internal/domains/request/service"
	infraCache "library-backend/internal/infrastructure/cache"
	"library-backend/internal/infrastructure/database"
	"library-backend/internal/infrastructure/notify"
	"library-backend/pkg/cache"
	"library-backend/pkg/jwt"
	"library-backend/pkg/logger"
)

// Container is the root of the dependency graph. Initialization order is
// config, infrastructure, repositories, services, handlers; each layer only
// sees the one below it.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager
	Dispatcher notify.Dispatcher

	CatalogRepo catalogRepo.Repository
	ReaderRepo  readerRepo.Repository
	RequestRepo requestRepo.Repository
	LoanRepo    loanRepo.Repository
	PolicyRepo  policyRepo.Repository

	CatalogService catalogService.ServiceInterface
	ReaderService  readerService.ServiceInterface
	RequestService requestService.ServiceInterface
	LoanService    loanService.ServiceInterface
	PolicyService  policyService.ServiceInterface
	Sweeper        *fine.Sweeper

	CatalogHandler *catalogHandler.Handler
	ReaderHandler  *readerHandler.Handler
	RequestHandler *requestHandler.Handler
	LoanHandler    *loanHandler.Handler
	PolicyHandler  *policyHandler.Handler
}

// NewContainer builds the full dependency graph for the API server.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	logger.Info("Configuration loaded", map[string]interface{}{
		"environment": cfg.App.Environment,
	})

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	logger.Info("Database connected", nil)

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		// Listings fall back to the database when the cache is down.
		logger.Warn("Redis connection failed, continuing without cache", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		c.Cache = redisCache
		logger.Info("Redis connected", nil)
	}

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret)
	c.Dispatcher = notify.NewAsynqDispatcher(cfg.Redis.Host, cfg.Job.NotifyQueue, cfg.Job.NotifyMaxRetry)

	pool := db.Pool
	c.CatalogRepo = catalogRepo.NewRepository(pool)
	c.ReaderRepo = readerRepo.NewRepository(pool)
	c.RequestRepo = requestRepo.NewRepository(pool)
	c.LoanRepo = loanRepo.NewRepository(pool)
	c.PolicyRepo = policyRepo.NewRepository(pool)

	c.PolicyService = policyService.NewService(c.PolicyRepo, cfg.Lending)
	c.CatalogService = catalogService.NewService(c.CatalogRepo, c.Cache)
	c.ReaderService = readerService.NewService(c.ReaderRepo)
	c.RequestService = requestService.NewService(
		c.RequestRepo, c.ReaderRepo, c.CatalogRepo, c.LoanRepo, c.PolicyService, c.Dispatcher,
	)
	c.LoanService = loanService.NewService(
		c.LoanRepo, c.CatalogRepo, c.ReaderRepo, c.RequestRepo, c.PolicyService, c.Dispatcher,
	)
	c.Sweeper = fine.NewSweeper(c.LoanRepo, c.PolicyService, c.Dispatcher, cfg.Job.SweepBatchLimit)

	c.CatalogHandler = catalogHandler.NewHandler(c.CatalogService)
	c.ReaderHandler = readerHandler.NewHandler(c.ReaderService)
	c.RequestHandler = requestHandler.NewHandler(c.RequestService)
	c.LoanHandler = loanHandler.NewHandler(c.LoanService)
	c.PolicyHandler = policyHandler.NewHandler(c.PolicyService)

	logger.Info("Container initialized", nil)
	return c, nil
}

// Cleanup releases every connection the container owns, in reverse of the
// initialization order.
func (c *Container) Cleanup() {
	if closer, ok := c.Dispatcher.(interface{ Close() error }); ok && closer != nil {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close dispatcher", err)
		}
	}

	if c.Cache != nil {
		if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
			if err := rc.Close(); err != nil {
				logger.Error("Failed to close Redis connection", err)
			}
		}
	}

	if c.DB != nil {
		c.DB.Close()
	}

	logger.Info("Container cleanup completed", nil)
}
