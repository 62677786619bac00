package public

import "github.com/ghost-toolkit/internal/provider"

// Handler 公开兑换接口处理器入口
// 说明：该处理器仅服务旧版客户端的 GET 兑换接口，响应为扁平 JSON。
type Handler struct {
	*provider.Container
}

// New 创建公开处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
