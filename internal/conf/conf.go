package conf

import "time"

// Bootstrap 服务启动配置
type Bootstrap struct {
	Data   *Data   `json:"data"`
	Topup  *Topup  `json:"topup"`
	Stripe *Stripe `json:"stripe"`
}

// Data 数据层配置
type Data struct {
	Database *Database `json:"database"`
	Redis    *Redis    `json:"redis"`
	Rocketmq *Rocketmq `json:"rocketmq"`
}

// Database 数据库配置
type Database struct {
	Driver string `json:"driver"`
	Source string `json:"source"`
}

// Redis Redis 配置
type Redis struct {
	Addr         string `json:"addr"`
	Password     string `json:"password"`
	Db           int    `json:"db"`
	ReadTimeout  string `json:"read_timeout"`
	WriteTimeout string `json:"write_timeout"`
}

// Rocketmq RocketMQ 配置
type Rocketmq struct {
	Enabled     bool     `json:"enabled"`
	NameServers []string `json:"name_servers"`
	GroupName   string   `json:"group_name"`
	UsageTopic  string   `json:"usage_topic"`
	NotifyTopic string   `json:"notify_topic"`
	RetryTimes  int      `json:"retry_times"`
}

// Topup 自动充值批处理配置
type Topup struct {
	// MinBalance 触发自动充值的余额阈值（单位：积分），未配置时使用默认值
	MinBalance int64 `json:"min_balance"`
	// Schedule cron 表达式（支持秒级），默认每 15 分钟执行一次
	Schedule string `json:"schedule"`
	// RunLockTtl 批处理运行锁的过期时间，如 "10m"
	RunLockTtl string `json:"run_lock_ttl"`
	// RunTimeout 单次批处理的整体超时时间，如 "10m"
	RunTimeout string `json:"run_timeout"`
}

// Stripe 支付网关配置
type Stripe struct {
	ApiKey   string `json:"api_key"`
	Currency string `json:"currency"`
	// Timeout 单次网关调用的超时时间，如 "30s"
	Timeout string `json:"timeout"`
}

// ParseDuration 解析配置中的时长字符串，解析失败时返回默认值
func ParseDuration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
