package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/provider"
	"github.com/ghost-toolkit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRouterTest(t *testing.T) (*gin.Engine, *provider.Container) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: "debug"},
		JWT:    config.JWTConfig{SecretKey: "router-secret", ExpireHours: 1},
		Redis:  config.RedisConfig{Enabled: false},
		Security: config.SecurityConfig{
			RedeemRateLimit: config.RateLimitConfig{WindowSeconds: 60, MaxAttempts: 1},
		},
		Draw: config.DrawConfig{Dilution: 10},
		Keys: config.KeysConfig{MaxBatchSize: 10, AsyncThreshold: 5},
	}
	c := provider.NewContainer(cfg, db)
	t.Cleanup(c.Close)
	return SetupRouter(cfg, c), c
}

func TestLegacyRoutesRespondFlatJSON(t *testing.T) {
	r, c := setupRouterTest(t)
	if err := c.DB.Create(&models.Account{UID: 5, SpinBalance: 2}).Error; err != nil {
		t.Fatalf("create account failed: %v", err)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/hf_toolkit_rest_api/spins_resource/5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status want 200 got %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if body["spin_balance"] != float64(2) {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["status_code"]; ok {
		t.Fatalf("legacy response should not use the envelope: %v", body)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ghost_rest_api/access_key_resource/GHOST-missing", nil))
	if !strings.Contains(w.Body.String(), `"message":"invalid key"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r, c := setupRouterTest(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/keys", nil))
	var resp struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}

	hash, err := service.HashPassword("secret-pass")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	admin := models.Admin{Username: "root", PasswordHash: hash}
	if err := c.DB.Create(&admin).Error; err != nil {
		t.Fatalf("create admin failed: %v", err)
	}
	token, _, err := c.AuthService.GenerateJWT(&admin)
	if err != nil {
		t.Fatalf("generate jwt failed: %v", err)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/routes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	var catalog struct {
		StatusCode int                     `json:"status_code"`
		Data       []adminRouteCatalogItem `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if catalog.StatusCode != 0 || len(catalog.Data) == 0 {
		t.Fatalf("unexpected catalog: %s", w.Body.String())
	}
	for _, item := range catalog.Data {
		if item.Path == "/login" {
			t.Fatalf("login should not be listed")
		}
	}

	if err := c.DB.Model(&models.Admin{}).Where("id = ?", admin.ID).Update("token_version", 3).Error; err != nil {
		t.Fatalf("bump token version failed: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/keys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("revoked token should be rejected, got %d", resp.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	r, _ := setupRouterTest(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health response: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "ghost_http_requests_total") {
		t.Fatalf("metrics endpoint should expose http counters")
	}
}

func TestDeriveAdminRouteModule(t *testing.T) {
	cases := map[string]string{
		"/keys":            "keys",
		"/key-batches/:no": "keys",
		"/spin-records":    "prizes",
		"/accounts/:uid":   "accounts",
		"/":                "system",
	}
	for path, want := range cases {
		if got := deriveAdminRouteModule(path); got != want {
			t.Fatalf("path %s want %s got %s", path, want, got)
		}
	}
}
