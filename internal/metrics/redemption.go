package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		redemptionsTotal,
		spinsTotal,
		keysGeneratedTotal,
	)
}

var (
	redemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghost_redemptions_total",
			Help: "Key redemption attempts by kind (access/subscription/spin) and result.",
		},
		[]string{"kind", "result"},
	)

	spinsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghost_spins_total",
			Help: "Prize draw attempts by result (won/lost/rejected/error).",
		},
		[]string{"result"},
	)

	keysGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ghost_keys_generated_total",
			Help: "Access keys generated by subscription type.",
		},
		[]string{"subscription_type"},
	)
)

// IncRedemption 记录一次兑换尝试
func IncRedemption(kind, result string) {
	redemptionsTotal.WithLabelValues(norm(kind), norm(result)).Inc()
}

// IncSpin 记录一次抽奖
func IncSpin(result string) {
	spinsTotal.WithLabelValues(norm(result)).Inc()
}

// AddKeysGenerated 累加生成的密钥数量
func AddKeysGenerated(subscriptionType string, count int) {
	if count <= 0 {
		return
	}
	keysGeneratedTotal.WithLabelValues(norm(subscriptionType)).Add(float64(count))
}
