package queue

import (
	"encoding/json"
	"errors"

	"github.com/ghost-toolkit/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskKeyBatchGenerate 批量生成访问密钥任务
	TaskKeyBatchGenerate = constants.TaskKeyBatchGenerate
)

// KeyBatchGeneratePayload 批量生成密钥任务载荷
type KeyBatchGeneratePayload struct {
	BatchID uint `json:"batch_id"`
}

// NewKeyBatchGenerateTask 创建批量生成密钥任务
func NewKeyBatchGenerateTask(payload KeyBatchGeneratePayload) (*asynq.Task, error) {
	if payload.BatchID == 0 {
		return nil, errors.New("invalid key batch id")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskKeyBatchGenerate, body), nil
}

// ParseKeyBatchGeneratePayload 解析批量生成密钥任务载荷
func ParseKeyBatchGeneratePayload(task *asynq.Task) (KeyBatchGeneratePayload, error) {
	var payload KeyBatchGeneratePayload
	if task == nil {
		return payload, errors.New("nil task")
	}
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return payload, err
	}
	if payload.BatchID == 0 {
		return payload, errors.New("invalid key batch id")
	}
	return payload, nil
}
