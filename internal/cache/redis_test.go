package cache

import (
	"context"
	"testing"

	"github.com/ghost-toolkit/internal/config"
	"github.com/ghost-toolkit/internal/models"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	c := NewRedis(&config.RedisConfig{Enabled: false})
	if c.Enabled() {
		t.Fatalf("disabled cache should not be enabled")
	}
	ctx := context.Background()
	if err := c.SetAdminAuthState(ctx, BuildAdminAuthState(&models.Admin{ID: 1, Username: "admin"})); err != nil {
		t.Fatalf("set on disabled cache failed: %v", err)
	}
	state, hit, err := c.GetAdminAuthState(ctx, 1)
	if err != nil || hit || state != nil {
		t.Fatalf("disabled cache should miss, got state=%v hit=%v err=%v", state, hit, err)
	}
	if c.Client() != nil {
		t.Fatalf("disabled cache should not expose client")
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	if c.Enabled() {
		t.Fatalf("nil cache should not be enabled")
	}
	if err := c.Del(context.Background(), "x"); err != nil {
		t.Fatalf("del on nil cache failed: %v", err)
	}
}

func TestKeyPrefix(t *testing.T) {
	c := NewWithClient(nil, "ghost")
	if got := c.Key("auth:admin:1"); got != "ghost:auth:admin:1" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := c.Key(" "); got != "ghost" {
		t.Fatalf("unexpected empty key: %s", got)
	}
}
