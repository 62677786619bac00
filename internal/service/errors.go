package service

import (
	"errors"
	"fmt"
)

// 兑换与抽奖领域错误
var (
	ErrKeyNotFound         = errors.New("access key not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrPolicyViolation     = errors.New("policy violation")
	ErrHwidMismatch        = fmt.Errorf("%w: hwid mismatch", ErrPolicyViolation)
	ErrInsufficientBalance = fmt.Errorf("%w: insufficient spin balance", ErrPolicyViolation)
	ErrMalformedKey        = errors.New("malformed key")
	ErrNoPrizesConfigured  = errors.New("no prizes configured")
	ErrStore               = errors.New("store failure")
	ErrAccountConflict     = fmt.Errorf("%w: account version conflict", ErrStore)
)

// 管理端错误
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid old password")
	ErrWeakPassword       = errors.New("password does not satisfy policy")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrKeyBatchInvalid    = errors.New("invalid key batch request")
	ErrKeyBatchTooLarge   = errors.New("key batch exceeds maximum size")
	ErrPrizeInvalid       = errors.New("invalid prize")
	ErrAccountInvalid     = errors.New("invalid account")
	ErrAccountExists      = errors.New("account already exists")
	ErrQueueUnavailable   = errors.New("task queue unavailable")
)

// storeErr 包装存储层错误，保留原始错误链
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStore, op, err)
}
