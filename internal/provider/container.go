package provider

import (
	"github.com/ghost-toolkit/internal/cache"
	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/queue"
	"github.com/ghost-toolkit/internal/repository"
	"github.com/ghost-toolkit/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	Cache       *cache.Cache
	QueueClient *queue.Client

	// Repositories
	Store     repository.Store
	AdminRepo repository.AdminRepository

	// Services
	AuthService       *service.AuthService
	KeyService        *service.KeyService
	RedemptionService *service.RedemptionService
	PrizeService      *service.PrizeService
	AccountService    *service.AccountService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config, db *gorm.DB) *Container {
	// 初始化缓存
	redisCache := cache.NewRedis(&cfg.Redis)

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		DB:          db,
		Cache:       redisCache,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	c.Store = repository.NewStore(c.DB)
	c.AdminRepo = c.Store.Admins()
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo, c.Cache)
	c.KeyService = service.NewKeyService(c.Store, service.NewKeyCodec(), c.QueueClient, service.KeyServiceOptions{
		MaxBatchSize:   c.Config.Keys.MaxBatchSize,
		AsyncThreshold: c.Config.Keys.AsyncThreshold,
	})
	c.RedemptionService = service.NewRedemptionService(c.Store, service.NewPrizeDrawEngine(c.Config.Draw.Dilution, nil))
	c.PrizeService = service.NewPrizeService(c.Store)
	c.AccountService = service.NewAccountService(c.Store)
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := c.Cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
