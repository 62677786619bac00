package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 启动模式：all 同时运行 API 与批次生成 Worker
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	DB              *gorm.DB
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaultShutdownTimeout
	}
	opts.Mode = strings.ToLower(strings.TrimSpace(opts.Mode))
	if opts.Mode == "" {
		opts.Mode = ModeAll
	}
	return opts
}

// resolveMode 校验启动模式，返回是否需要 HTTP 与 Worker
func resolveMode(mode string) (withHTTP, withWorker bool, err error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeAll, "":
		return true, true, nil
	case ModeAPI:
		return true, false, nil
	case ModeWorker:
		return false, true, nil
	default:
		return false, false, fmt.Errorf("unknown mode %q", mode)
	}
}
