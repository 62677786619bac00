package admin

import "github.com/ghost-toolkit/internal/provider"

// Handler 管理端处理器，覆盖登录、密钥批次、奖池与账户接口
type Handler struct {
	*provider.Container
}

// New 创建管理端处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
