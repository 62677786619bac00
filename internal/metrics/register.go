package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once       sync.Once
	collectors []prometheus.Collector
)

// register 由各指标文件的 init() 调用，登记待注册的采集器
func register(cs ...prometheus.Collector) {
	collectors = append(collectors, cs...)
}

// MustRegister 将所有已登记的采集器注册到默认 Registry，仅执行一次
func MustRegister() {
	once.Do(func() {
		if len(collectors) > 0 {
			prometheus.MustRegister(collectors...)
		}
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
