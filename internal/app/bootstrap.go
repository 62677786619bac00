package app

import (
	"errors"

	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/provider"
	"github.com/ghost-toolkit/internal/router"
	"github.com/ghost-toolkit/internal/worker"

	"gorm.io/gorm"
)

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, db *gorm.DB, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if db == nil {
		return nil, errors.New("database is nil")
	}

	withHTTP, withWorker, err := resolveMode(mode)
	if err != nil {
		return nil, err
	}
	if withWorker && withHTTP && !cfg.Queue.Enabled {
		logger.Warnw("worker_skipped_queue_disabled", "mode", mode)
		withWorker = false
	}

	container := provider.NewContainer(cfg, db)
	var services []Service

	if withHTTP {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server.Host+":"+cfg.Server.Port, engine))
	}
	if withWorker {
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			container.Close()
			return nil, err
		}
		services = append(services, workerService)
	}

	runner := NewRunner(services...)
	runner.AddCloser(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.DB, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
