package constants

// 访问密钥状态常量
const (
	KeyStateActive   = "active"
	KeyStateRedeemed = "redeemed"
)

// 密钥批次状态常量
const (
	KeyBatchStatusPending   = "pending"
	KeyBatchStatusCompleted = "completed"
	KeyBatchStatusFailed    = "failed"
)

// 订阅类型常量
const (
	SubscriptionTypePlain   = "plain_subscription"
	SubscriptionTypeSpin    = "spin_balance"
	SubscriptionTypeToolkit = "hf_toolkit_subscription_time"
)

// 密钥等级常量
const (
	KeyClassDay   = "Day Key"
	KeyClassWeek  = "Week Key"
	KeyClassMonth = "Month Key"
)

// 批量生成标题常量（与密钥等级一一对应）
const (
	KeyTitleDay   = "Day Access"
	KeyTitleWeek  = "Week Access"
	KeyTitleMonth = "Month Access"
	KeyTitleSpin  = "Spin Key"
)

// 密钥格式常量
const (
	KeyCodePrefix                  = "GHOST-"
	SubscriptionKeyDelimiter       = "--"
	SpinKeyDelimiter               = "-"
	KeyBatchNoPrefix               = "GKB"
	DefaultKeyMaxBatchSize         = 10000
	DefaultKeyAsyncThreshold       = 1000
	DefaultDrawDilution            = 10000
	DrawCostPerSpin          int64 = 1
)

// 奖品名称常量
const (
	PrizeNameCash  = "Cash Prize"
	PrizeNameHFSub = "HF Sub"
	PrizeNameGhost = "Ghost Sub"
)

// 奖品状态常量
const (
	PrizeStateActive  = "active"
	PrizeStateAwarded = "awarded"
)

// 订阅状态常量
const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
	SubscriptionStatusNone    = "none"
)

// 兑换响应文案
const (
	HWIDAccessGranted = "Access Granted"
)

// 指标标签常量
const (
	RedeemKindAccess       = "access"
	RedeemKindSubscription = "subscription"
	RedeemKindSpin         = "spin"
	ResultSuccess          = "success"
	ResultNotFound         = "not_found"
	ResultRejected         = "rejected"
	ResultMalformed        = "malformed"
	ResultError            = "error"
	ResultWon              = "won"
	ResultLost             = "lost"
)

// 队列与任务常量
const (
	QueueDefault         = "default"
	TaskKeyBatchGenerate = "key_batch:generate"
)
