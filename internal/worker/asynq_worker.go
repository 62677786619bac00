package worker

import (
	"context"
	"errors"

	"github.com/ghost-toolkit/internal/logger"
	"github.com/ghost-toolkit/internal/provider"
	"github.com/ghost-toolkit/internal/queue"
	"github.com/ghost-toolkit/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskKeyBatchGenerate, c.handleKeyBatchGenerate)
}

func (c *Consumer) handleKeyBatchGenerate(ctx context.Context, task *asynq.Task) error {
	if c == nil || c.Container == nil || task == nil {
		logger.Debugw("worker_key_batch_generate_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseKeyBatchGeneratePayload(task)
	if err != nil {
		logger.Warnw("worker_key_batch_generate_unmarshal_failed", "error", err)
		return err
	}
	if c.KeyService == nil {
		logger.Warnw("worker_key_batch_generate_skip_key_service_nil", "batch_id", payload.BatchID)
		return nil
	}
	batch, err := c.KeyService.FillBatch(ctx, payload.BatchID)
	if err != nil {
		if errors.Is(err, service.ErrKeyBatchInvalid) {
			logger.Debugw("worker_key_batch_generate_skip_batch_not_found", "batch_id", payload.BatchID)
			return nil
		}
		logger.Warnw("worker_key_batch_generate_failed", "batch_id", payload.BatchID, "error", err)
		return err
	}
	logger.Infow("worker_key_batch_generated",
		"batch_id", batch.ID,
		"batch_no", batch.BatchNo,
		"status", batch.Status,
		"quantity", batch.Quantity,
	)
	return nil
}
