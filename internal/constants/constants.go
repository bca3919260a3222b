package constants

// Redis Key 前缀常量
const (
	// RedisKeyBalance 余额缓存 key 前缀
	RedisKeyBalance = "balance:"
	// RedisKeyPackage 充值套餐缓存 key 前缀
	RedisKeyPackage = "package:"
	// RedisKeyTopupRunLock 自动充值批处理运行锁 key
	RedisKeyTopupRunLock = "topup:run:lock"
	// RedisKeyUsageLock 话单扣费锁 key 前缀
	RedisKeyUsageLock = "usage:lock:"
)

// 支付记录状态常量
const (
	// PaymentStatusSucceeded 支付成功
	PaymentStatusSucceeded = "succeeded"
	// PaymentStatusFailed 支付失败
	PaymentStatusFailed = "failed"
)

// 网关收费状态常量（与 Stripe PaymentIntent 状态对齐）
const (
	// ChargeStatusSucceeded 收费成功
	ChargeStatusSucceeded = "succeeded"
	// ChargeStatusRequiresAction 需要持卡人进一步操作（离线场景视为失败）
	ChargeStatusRequiresAction = "requires_action"
	// ChargeStatusFailed 收费失败
	ChargeStatusFailed = "failed"
)

// 批处理结果常量（用于指标）
const (
	// TopupResultSuccess 充值成功
	TopupResultSuccess = "success"
	// TopupResultSkippedPackage 套餐缺失跳过
	TopupResultSkippedPackage = "skipped_package"
	// TopupResultSkippedPaymentMethod 支付方式缺失跳过
	TopupResultSkippedPaymentMethod = "skipped_payment_method"
	// TopupResultChargeFailed 收费失败
	TopupResultChargeFailed = "charge_failed"
	// TopupResultRecordFailed 支付记录写入失败
	TopupResultRecordFailed = "record_failed"
	// TopupResultCreditFailed 积分入账失败（对账缺口）
	TopupResultCreditFailed = "credit_failed"
)

// 批处理运行结果常量
const (
	// RunResultCompleted 运行完成
	RunResultCompleted = "completed"
	// RunResultSkipped 上一次运行未结束，本次跳过
	RunResultSkipped = "skipped"
	// RunResultFailed 运行失败
	RunResultFailed = "failed"
)

// 通用结果常量（用于指标）
const (
	// ResultSuccess 成功
	ResultSuccess = "success"
	// ResultFailed 失败
	ResultFailed = "failed"
)

// 锁结果常量
const (
	// LockResultSuccess 获取锁成功
	LockResultSuccess = "success"
	// LockResultFailed 获取锁失败
	LockResultFailed = "failed"
)

// 收费元数据 key 常量（写入网关请求，用于对账）
const (
	// MetadataKeyAccountID 账户ID
	MetadataKeyAccountID = "account_id"
	// MetadataKeyPackageID 套餐ID
	MetadataKeyPackageID = "package_id"
	// MetadataKeyCredits 积分数量
	MetadataKeyCredits = "credits"
	// MetadataKeyAutoTopup 自动充值标记
	MetadataKeyAutoTopup = "auto_topup"
)

// 收费幂等 key 前缀常量
const (
	// ChargeIDPrefixTopup 自动充值收费前缀
	ChargeIDPrefixTopup = "topup_"
)

// 默认值常量
const (
	// DefaultMinBalance 默认余额阈值（积分）
	DefaultMinBalance = 100
	// DefaultCurrency 默认币种
	DefaultCurrency = "usd"
	// DefaultTopupSchedule 默认批处理调度（每 15 分钟）
	DefaultTopupSchedule = "0 */15 * * * *"
)
