package biz

import (
	"time"

	"voip-billing-service/internal/conf"
	"voip-billing-service/internal/constants"
)

// TopupConfig 自动充值配置
type TopupConfig struct {
	MinBalance int64         // 触发自动充值的余额阈值（单位：积分）
	Currency   string        // 收费币种
	Schedule   string        // 批处理 cron 表达式
	RunTimeout time.Duration // 单次批处理整体超时
}

// NewTopupConfig 从配置创建 TopupConfig
// 配置缺失或非法时回退到默认值，不阻断启动
func NewTopupConfig(c *conf.Bootstrap) *TopupConfig {
	config := &TopupConfig{
		MinBalance: constants.DefaultMinBalance,
		Currency:   constants.DefaultCurrency,
		Schedule:   constants.DefaultTopupSchedule,
		RunTimeout: 10 * time.Minute,
	}
	if c == nil {
		return config
	}
	if c.Topup != nil {
		if c.Topup.MinBalance > 0 {
			config.MinBalance = c.Topup.MinBalance
		}
		if c.Topup.Schedule != "" {
			config.Schedule = c.Topup.Schedule
		}
		config.RunTimeout = conf.ParseDuration(c.Topup.RunTimeout, config.RunTimeout)
	}
	if c.Stripe != nil && c.Stripe.Currency != "" {
		config.Currency = c.Stripe.Currency
	}
	return config
}
