package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/metrics"
	"github.com/ghost-toolkit/internal/repository"
)

// RedemptionService 密钥兑换与抽奖服务
type RedemptionService struct {
	store repository.Store
	draw  *PrizeDrawEngine
	now   func() time.Time
}

// AccessKeyRedemption 普通访问密钥兑换结果
type AccessKeyRedemption struct {
	Code       string
	Class      string
	RedeemedAt time.Time
}

// SubscriptionRedemption 订阅密钥兑换结果
type SubscriptionRedemption struct {
	UID        uint
	Code       string
	Class      string
	HWID       string
	RedeemedAt time.Time
	Expiration time.Time
	Status     string
}

// SpinKeyRedemption 点数密钥兑换结果
type SpinKeyRedemption struct {
	UID         uint
	Code        string
	SpinsBought int64
	SpinBalance int64
	RedeemedAt  time.Time
}

// SpinBalanceView 账户余额视图
type SpinBalanceView struct {
	UID         uint
	SpinBalance int64
	Expiration  *time.Time
	Status      string
}

// NewRedemptionService 创建兑换服务
func NewRedemptionService(store repository.Store, draw *PrizeDrawEngine) *RedemptionService {
	if draw == nil {
		draw = NewPrizeDrawEngine(constants.DefaultDrawDilution, nil)
	}
	return &RedemptionService{
		store: store,
		draw:  draw,
		now:   time.Now,
	}
}

// SetClock 替换时间源
func (s *RedemptionService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// RedeemAccessKey 兑换普通访问密钥，不涉及账户
func (s *RedemptionService) RedeemAccessKey(ctx context.Context, code string) (result *AccessKeyRedemption, err error) {
	defer func() { metrics.IncRedemption(constants.RedeemKindAccess, redemptionResult(err)) }()

	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrMalformedKey
	}
	now := s.now()
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		redeemed, err := NewKeyLedger(tx.Keys()).Redeem(KeyPredicate{
			SubscriptionType: constants.SubscriptionTypePlain,
		}, code, nil, now)
		if err != nil {
			return err
		}
		result = &AccessKeyRedemption{
			Code:       redeemed.Code,
			Class:      redeemed.Class,
			RedeemedAt: redeemed.RedeemedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RedeemSubscriptionKey 兑换订阅时长密钥，presented 为 "<uid>--<hwid>--<code>"
func (s *RedemptionService) RedeemSubscriptionKey(ctx context.Context, presented string) (result *SubscriptionRedemption, err error) {
	defer func() { metrics.IncRedemption(constants.RedeemKindSubscription, redemptionResult(err)) }()

	parts, err := ParseSubscriptionKey(presented)
	if err != nil {
		return nil, err
	}
	now := s.now()
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		accounts := NewAccountLedger(tx.Accounts())
		keys := NewKeyLedger(tx.Keys())

		account, err := accounts.Load(parts.UID)
		if err != nil {
			return err
		}
		key, err := keys.Match(KeyPredicate{SubscriptionType: constants.SubscriptionTypeToolkit}, parts.Code)
		if err != nil {
			return err
		}
		// 设备校验必须先于消费密钥
		update, err := ComputeEntitlement(EntitlementInput{
			KeyID:       key.ID,
			Class:       key.Class,
			Code:        key.Code,
			Kind:        key.SubscriptionType,
			Account:     account,
			ClaimedHWID: parts.HWID,
			Now:         now,
		})
		if err != nil {
			return err
		}
		redeemed, err := keys.Consume(key, &parts.UID, now)
		if err != nil {
			return err
		}
		updated, err := accounts.ApplyTo(account, update)
		if err != nil {
			return err
		}
		result = &SubscriptionRedemption{
			UID:        updated.UID,
			Code:       redeemed.Code,
			Class:      redeemed.Class,
			HWID:       derefString(updated.HWID),
			RedeemedAt: redeemed.RedeemedAt,
			Expiration: *updated.KeyExpiration,
			Status:     SubscriptionStatus(updated.KeyExpiration, now),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RedeemSpinKey 兑换点数密钥，presented 为 "<uid>-<code>"
func (s *RedemptionService) RedeemSpinKey(ctx context.Context, presented string) (result *SpinKeyRedemption, err error) {
	defer func() { metrics.IncRedemption(constants.RedeemKindSpin, redemptionResult(err)) }()

	parts, err := ParseSpinKey(presented)
	if err != nil {
		return nil, err
	}
	now := s.now()
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		accounts := NewAccountLedger(tx.Accounts())
		keys := NewKeyLedger(tx.Keys())

		account, err := accounts.Load(parts.UID)
		if err != nil {
			return err
		}
		key, err := keys.Match(KeyPredicate{SubscriptionType: constants.SubscriptionTypeSpin}, parts.Code)
		if err != nil {
			return err
		}
		update, err := ComputeEntitlement(EntitlementInput{
			KeyID:   key.ID,
			Class:   key.Class,
			Code:    key.Code,
			Kind:    key.SubscriptionType,
			Account: account,
			Now:     now,
		})
		if err != nil {
			return err
		}
		redeemed, err := keys.Consume(key, &parts.UID, now)
		if err != nil {
			return err
		}
		updated, err := accounts.ApplyTo(account, update)
		if err != nil {
			return err
		}
		result = &SpinKeyRedemption{
			UID:         updated.UID,
			Code:        redeemed.Code,
			SpinsBought: update.BalanceDelta,
			SpinBalance: updated.SpinBalance,
			RedeemedAt:  redeemed.RedeemedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Spin 为账户执行一次抽奖
func (s *RedemptionService) Spin(ctx context.Context, uid uint) (outcome *DrawOutcome, err error) {
	defer func() { metrics.IncSpin(spinResult(outcome, err)) }()

	if uid == 0 {
		return nil, ErrMalformedKey
	}
	now := s.now()
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		drawn, err := s.draw.Spin(tx, uid, now)
		if err != nil {
			return err
		}
		outcome = drawn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// GetSpinBalance 查询账户余额与订阅状态
func (s *RedemptionService) GetSpinBalance(ctx context.Context, uid uint) (*SpinBalanceView, error) {
	if uid == 0 {
		return nil, ErrMalformedKey
	}
	account, err := s.store.WithContext(ctx).Accounts().GetByUID(uid)
	if err != nil {
		return nil, storeErr("get account", err)
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	return &SpinBalanceView{
		UID:         account.UID,
		SpinBalance: account.SpinBalance,
		Expiration:  account.KeyExpiration,
		Status:      SubscriptionStatus(account.KeyExpiration, s.now()),
	}, nil
}

func redemptionResult(err error) string {
	switch {
	case err == nil:
		return constants.ResultSuccess
	case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrAccountNotFound):
		return constants.ResultNotFound
	case errors.Is(err, ErrPolicyViolation):
		return constants.ResultRejected
	case errors.Is(err, ErrMalformedKey):
		return constants.ResultMalformed
	default:
		return constants.ResultError
	}
}

func spinResult(outcome *DrawOutcome, err error) string {
	if err != nil {
		if errors.Is(err, ErrStore) {
			return constants.ResultError
		}
		return constants.ResultRejected
	}
	if outcome != nil && outcome.Won {
		return constants.ResultWon
	}
	return constants.ResultLost
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
