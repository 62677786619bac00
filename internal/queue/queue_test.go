package queue

import (
	"errors"
	"testing"

	"github.com/ghost-toolkit/internal/config"
)

func TestKeyBatchGenerateTaskPayload(t *testing.T) {
	task, err := NewKeyBatchGenerateTask(KeyBatchGeneratePayload{BatchID: 12})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskKeyBatchGenerate {
		t.Fatalf("unexpected task type: %s", task.Type())
	}
	payload, err := ParseKeyBatchGeneratePayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.BatchID != 12 {
		t.Fatalf("batch id want 12, got %d", payload.BatchID)
	}
	if _, err := NewKeyBatchGenerateTask(KeyBatchGeneratePayload{}); err == nil {
		t.Fatalf("zero batch id should be rejected")
	}
}

func TestDisabledClient(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueueKeyBatchGenerate(1); !errors.Is(err, ErrQueueDisabled) {
		t.Fatalf("expected queue disabled, got %v", err)
	}
	var nilClient *Client
	if nilClient.Enabled() || nilClient.Close() != nil {
		t.Fatalf("nil client should be a disabled no-op")
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2, Concurrency: 4})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 4 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}

func TestKeyBatchTaskID(t *testing.T) {
	if got := KeyBatchTaskID(42); got != "key_batch:generate:42" {
		t.Fatalf("unexpected task id: %s", got)
	}
}
