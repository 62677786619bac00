package router

import (
	"net/http"
	"sort"
	"strings"

	"github.com/ghost-toolkit/internal/config"
	adminhandlers "github.com/ghost-toolkit/internal/http/handlers/admin"
	publichandlers "github.com/ghost-toolkit/internal/http/handlers/public"
	"github.com/ghost-toolkit/internal/http/response"
	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/metrics"
	"github.com/ghost-toolkit/internal/provider"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const adminRoutePrefix = "/api/v1/admin"

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	metrics.MustRegister()
	r := gin.New()

	// 初始化 Handler（旧版兑换接口 / 管理端）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ghost"
	}
	redisClient := c.Cache.Client()
	redeemRule := BuildRateLimitRule(redisPrefix, "redeem", cfg.Security.RedeemRateLimit, "error.too_many_requests", true)
	adminLoginRule := BuildRateLimitRule(redisPrefix, "admin_login", cfg.Security.AdminLoginRateLimit, "error.too_many_requests", false)

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(MetricsMiddleware())
	r.Use(CORSMiddleware(cfg.CORS))

	// 旧版客户端兑换接口（扁平 JSON）
	legacy := r.Group("")
	legacy.Use(RateLimitMiddleware(redisClient, redeemRule, KeyByIP))
	{
		legacy.GET("/ghost_rest_api/access_key_resource/:access_key", publicHandler.RedeemAccessKey)
		legacy.GET("/hf_toolkit_rest_api/toolkit_sub_resource/:access_key", publicHandler.RedeemSubscriptionKey)
		legacy.GET("/hf_toolkit_rest_api/redeem_spin_resource/:spin_key", publicHandler.RedeemSpinKey)
		legacy.GET("/hf_toolkit_rest_api/prize_resource/:uid", publicHandler.Spin)
		legacy.GET("/hf_toolkit_rest_api/spins_resource/:uid", publicHandler.GetSpinBalance)
	}

	// 管理员接口
	admin := r.Group(adminRoutePrefix)
	{
		// 登录接口（无需鉴权）
		admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

		// 需要鉴权的接口
		authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo, c.Cache))
		{
			authorized.PUT("/password", adminHandler.UpdateAdminPassword)

			// 密钥管理
			authorized.POST("/keys", adminHandler.GenerateKeys)
			authorized.GET("/keys", adminHandler.GetKeys)
			authorized.GET("/key-batches/:batch_no", adminHandler.GetKeyBatch)

			// 奖池管理
			authorized.POST("/prizes", adminHandler.CreatePrize)
			authorized.GET("/prizes", adminHandler.GetPrizes)
			authorized.GET("/spin-records", adminHandler.GetSpinRecords)

			// 账户管理
			authorized.POST("/accounts", adminHandler.CreateAccount)
			authorized.GET("/accounts", adminHandler.GetAccounts)
			authorized.GET("/accounts/:uid", adminHandler.GetAccount)

			// 接口目录
			authorized.GET("/routes", func(ctx *gin.Context) {
				response.Success(ctx, buildAdminRouteCatalog(r))
			})
		}
	}

	// 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 健康检查
	r.GET("/health", func(ctx *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok"}
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			body["redis"] = "unavailable"
		}
		if sqlDB, err := c.DB.DB(); err != nil || sqlDB.PingContext(ctx.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unavailable"
		}
		ctx.JSON(status, body)
	})

	return r
}

type adminRouteCatalogItem struct {
	Module string `json:"module"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

func buildAdminRouteCatalog(engine *gin.Engine) []adminRouteCatalogItem {
	if engine == nil {
		return []adminRouteCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminRouteCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, adminRoutePrefix+"/") {
			continue
		}
		if item.Path == adminRoutePrefix+"/login" {
			continue
		}
		path := strings.TrimPrefix(item.Path, adminRoutePrefix)
		permission := method + ":" + path
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminRouteCatalogItem{
			Module: deriveAdminRouteModule(path),
			Method: method,
			Path:   path,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Path == items[j].Path {
				return items[i].Method < items[j].Method
			}
			return items[i].Path < items[j].Path
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminRouteModule(path string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(path), "/")
	if normalized == "" {
		return "system"
	}
	segment := strings.Split(normalized, "/")[0]
	switch segment {
	case "keys", "key-batches":
		return "keys"
	case "prizes", "spin-records":
		return "prizes"
	}
	return segment
}
