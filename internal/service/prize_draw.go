package service

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/ghost-toolkit/internal/constants"
	"github.com/ghost-toolkit/internal/models"
	"github.com/ghost-toolkit/internal/repository"
)

// Random 抽奖随机源
type Random interface {
	// Intn 返回 [0, n) 内的均匀随机整数
	Intn(n int) (int, error)
}

type cryptoRandom struct{}

func (cryptoRandom) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("invalid random bound: %d", n)
	}
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}

// DrawOutcome 抽奖结果
type DrawOutcome struct {
	Won         bool
	Prize       *models.Prize
	SpinBalance int64
	DrawnAt     time.Time
}

// PrizeDrawEngine 稀释奖池抽奖
type PrizeDrawEngine struct {
	dilution int
	random   Random
}

// NewPrizeDrawEngine 创建抽奖引擎，dilution 为空奖槽位数量
func NewPrizeDrawEngine(dilution int, random Random) *PrizeDrawEngine {
	if dilution < 0 {
		dilution = constants.DefaultDrawDilution
	}
	if random == nil {
		random = cryptoRandom{}
	}
	return &PrizeDrawEngine{dilution: dilution, random: random}
}

// buildDrawPool 空奖槽位在前，奖品在后；nil 表示空奖
func buildDrawPool(prizes []models.Prize, dilution int) []*models.Prize {
	pool := make([]*models.Prize, dilution, dilution+len(prizes))
	for i := range prizes {
		pool = append(pool, &prizes[i])
	}
	return pool
}

// Draw 洗牌后取一个均匀随机下标；每次调用恰好一次排列和一次取样
func (e *PrizeDrawEngine) Draw(prizes []models.Prize) (*models.Prize, error) {
	if len(prizes) == 0 {
		return nil, ErrNoPrizesConfigured
	}
	pool := buildDrawPool(prizes, e.dilution)
	for i := len(pool) - 1; i > 0; i-- {
		j, err := e.random.Intn(i + 1)
		if err != nil {
			return nil, fmt.Errorf("shuffle draw pool failed: %w", err)
		}
		pool[i], pool[j] = pool[j], pool[i]
	}
	idx, err := e.random.Intn(len(pool))
	if err != nil {
		return nil, fmt.Errorf("pick draw slot failed: %w", err)
	}
	return pool[idx], nil
}

// Spin 在事务仓储 tx 上执行一次抽奖：校验账户与奖池，扣除一次，命中则发放奖品
func (e *PrizeDrawEngine) Spin(tx repository.Store, uid uint, now time.Time) (*DrawOutcome, error) {
	ledger := NewAccountLedger(tx.Accounts())
	account, err := ledger.Load(uid)
	if err != nil {
		return nil, err
	}

	prizes, err := tx.Prizes().ListActive()
	if err != nil {
		return nil, storeErr("list active prizes", err)
	}
	if len(prizes) == 0 {
		return nil, ErrNoPrizesConfigured
	}
	if account.SpinBalance < constants.DrawCostPerSpin {
		return nil, ErrInsufficientBalance
	}

	picked, err := e.Draw(prizes)
	if err != nil {
		return nil, err
	}

	updated, err := ledger.ApplyTo(account, EntitlementUpdate{BalanceDelta: -constants.DrawCostPerSpin, RedeemedAt: now})
	if err != nil {
		return nil, err
	}

	outcome := &DrawOutcome{SpinBalance: updated.SpinBalance, DrawnAt: now}
	if picked != nil {
		awarded, err := tx.Prizes().MarkAwarded(picked.ID, uid, now)
		if err != nil {
			return nil, storeErr("mark prize awarded", err)
		}
		// 被并发中奖者抢先领取时按未中奖处理
		if awarded {
			prize := *picked
			prize.State = constants.PrizeStateAwarded
			prize.Published = false
			prize.AwardedUID = &uid
			prize.AwardedAt = &now
			outcome.Won = true
			outcome.Prize = &prize
		}
	}

	record := &models.SpinRecord{
		UID:          uid,
		Won:          outcome.Won,
		BalanceAfter: outcome.SpinBalance,
		CreatedAt:    now,
	}
	if outcome.Prize != nil {
		record.PrizeID = &outcome.Prize.ID
	}
	if err := tx.SpinRecords().Create(record); err != nil {
		return nil, storeErr("create spin record", err)
	}
	return outcome, nil
}
