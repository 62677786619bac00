package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	staleBatchCheckInterval = time.Minute
	staleBatchAge           = 15 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.KeyService != nil {
		go s.runStaleBatchLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runStaleBatchLoop 定期补写投递丢失的密钥批次
func (s *Service) runStaleBatchLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.KeyService == nil {
		return
	}
	runOnce := func() {
		if _, err := s.consumer.KeyService.RecoverStaleBatches(ctx, staleBatchAge); err != nil {
			logger.Warnw("worker_key_batch_recover_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(staleBatchCheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
