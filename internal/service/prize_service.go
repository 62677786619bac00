package service

import (
	"context"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
)

// PrizeService 奖池管理服务
type PrizeService struct {
	store repository.Store
}

// CreatePrizeInput 创建奖品输入
type CreatePrizeInput struct {
	Name        string
	PayoutKey   string
	PayoutValue string
	Amount      *models.Money
	Published   *bool
}

// NewPrizeService 创建奖池服务
func NewPrizeService(store repository.Store) *PrizeService {
	return &PrizeService{store: store}
}

func isKnownPrizeName(name string) bool {
	switch name {
	case constants.PrizeNameCash, constants.PrizeNameHFSub, constants.PrizeNameGhost:
		return true
	}
	return false
}

// CreatePrize 创建奖品；现金奖必须带正数金额，描述为空时使用金额
func (s *PrizeService) CreatePrize(ctx context.Context, input CreatePrizeInput) (*models.Prize, error) {
	name := strings.TrimSpace(input.Name)
	if !isKnownPrizeName(name) {
		return nil, ErrPrizeInvalid
	}
	payoutKey := strings.TrimSpace(input.PayoutKey)
	if payoutKey == "" {
		return nil, ErrPrizeInvalid
	}
	payoutValue := strings.TrimSpace(input.PayoutValue)

	var amount *models.Money
	if name == constants.PrizeNameCash {
		if input.Amount == nil || !input.Amount.Decimal.IsPositive() {
			return nil, ErrPrizeInvalid
		}
		rounded := models.NewMoneyFromDecimal(input.Amount.Decimal)
		amount = &rounded
		if payoutValue == "" {
			payoutValue = "$" + rounded.String()
		}
	}
	if payoutValue == "" {
		return nil, ErrPrizeInvalid
	}

	published := true
	if input.Published != nil {
		published = *input.Published
	}
	now := time.Now()
	prize := &models.Prize{
		Name:        name,
		PayoutKey:   payoutKey,
		PayoutValue: payoutValue,
		Amount:      amount,
		State:       constants.PrizeStateActive,
		Published:   published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.WithContext(ctx).Prizes().Create(prize); err != nil {
		return nil, storeErr("create prize", err)
	}
	return prize, nil
}

// ListPrizes 查询奖品列表
func (s *PrizeService) ListPrizes(ctx context.Context, filter repository.PrizeListFilter) ([]models.Prize, int64, error) {
	prizes, total, err := s.store.WithContext(ctx).Prizes().List(filter)
	if err != nil {
		return nil, 0, storeErr("list prizes", err)
	}
	return prizes, total, nil
}

// ListSpinRecords 查询抽奖记录
func (s *PrizeService) ListSpinRecords(ctx context.Context, filter repository.SpinRecordListFilter) ([]models.SpinRecord, int64, error) {
	records, total, err := s.store.WithContext(ctx).SpinRecords().List(filter)
	if err != nil {
		return nil, 0, storeErr("list spin records", err)
	}
	return records, total, nil
}
