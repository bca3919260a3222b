package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BillingMetrics 计费服务指标
type BillingMetrics struct {
	// 批处理运行相关指标
	TopupRunTotal    *prometheus.CounterVec // 批处理运行总数（按结果）
	TopupRunDuration prometheus.Histogram   // 批处理运行耗时
	TopupRunScanned  prometheus.Gauge       // 最近一次运行扫描的账户数

	// 单账户充值相关指标
	TopupAccountTotal   *prometheus.CounterVec // 单账户处理总数（按结果）
	TopupChargeAmount   prometheus.Counter     // 成功收费金额累计（最小货币单位）
	TopupCreditsGranted prometheus.Counter     // 成功入账积分累计
	ChargeDuration      prometheus.Histogram   // 网关收费耗时

	// 对账相关指标
	ReconciliationGapTotal prometheus.Counter // 对账缺口总数（已收费未入账）

	// 话单扣费相关指标
	UsageDeductTotal   *prometheus.CounterVec // 话单扣费总数（按结果）
	UsageDeductCredits prometheus.Counter     // 话单扣费积分累计
	UsageBatchSize     prometheus.Histogram   // 话单批量大小

	// 通知相关指标
	NotifyTotal *prometheus.CounterVec // 通知发送总数（按结果）

	// 分布式锁相关指标
	LockAcquireTotal    *prometheus.CounterVec // 锁获取总数（按结果）
	LockAcquireDuration prometheus.Histogram   // 锁获取耗时
}

// NewBillingMetrics 创建计费服务指标
func NewBillingMetrics() *BillingMetrics {
	return &BillingMetrics{
		// 批处理运行指标
		TopupRunTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_topup_run_total",
				Help: "Total number of auto top-up batch runs",
			},
			[]string{"result"}, // result: completed/skipped/failed
		),
		TopupRunDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "billing_topup_run_duration_seconds",
				Help:    "Duration of auto top-up batch runs",
				Buckets: prometheus.DefBuckets,
			},
		),
		TopupRunScanned: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "billing_topup_run_scanned",
				Help: "Number of candidate accounts scanned in the last run",
			},
		),

		// 单账户充值指标
		TopupAccountTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_topup_account_total",
				Help: "Total number of per-account top-up outcomes",
			},
			[]string{"result"}, // result: success/skipped_*/charge_failed/record_failed/credit_failed
		),
		TopupChargeAmount: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_topup_charge_amount_total",
				Help: "Total amount charged in minor currency units",
			},
		),
		TopupCreditsGranted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_topup_credits_granted_total",
				Help: "Total credits granted by auto top-up",
			},
		),
		ChargeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "billing_topup_charge_duration_seconds",
				Help:    "Duration of gateway charge submissions",
				Buckets: prometheus.DefBuckets,
			},
		),

		// 对账指标
		ReconciliationGapTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_reconciliation_gap_total",
				Help: "Payments recorded without a matching credit grant",
			},
		),

		// 话单扣费指标
		UsageDeductTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_usage_deduct_total",
				Help: "Total number of call usage deductions",
			},
			[]string{"result"}, // result: success/failed
		),
		UsageDeductCredits: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "billing_usage_deduct_credits_total",
				Help: "Total credits deducted for call usage",
			},
		),
		UsageBatchSize: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "billing_usage_batch_size",
				Help:    "Number of usage events per consumed batch",
				Buckets: []float64{1, 5, 10, 25, 50, 100},
			},
		),

		// 通知指标
		NotifyTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_notify_total",
				Help: "Total number of top-up notifications dispatched",
			},
			[]string{"result"}, // result: success/failed
		),

		// 分布式锁指标
		LockAcquireTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "billing_lock_acquire_total",
				Help: "Total number of lock acquisition attempts",
			},
			[]string{"result"}, // result: success/failed
		),
		LockAcquireDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "billing_lock_acquire_duration_seconds",
				Help:    "Duration of lock acquisition",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0}, // 毫秒级
			},
		),
	}
}

// 全局指标实例
var defaultMetrics *BillingMetrics

// InitMetrics 初始化全局指标
func InitMetrics() {
	defaultMetrics = NewBillingMetrics()
}

// GetMetrics 获取全局指标实例
func GetMetrics() *BillingMetrics {
	if defaultMetrics == nil {
		InitMetrics()
	}
	return defaultMetrics
}
