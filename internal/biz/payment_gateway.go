package biz

import "context"

// PaymentGateway 支付网关客户端接口
type PaymentGateway interface {
	// GetDefaultPaymentMethod 查询网关客户的默认支付方式，未绑定时返回空字符串
	GetDefaultPaymentMethod(ctx context.Context, customerRef string) (string, error)
	// CreateCharge 发起一次离线（off-session）收费并立即确认
	CreateCharge(ctx context.Context, req *ChargeRequest) (*ChargeReply, error)
}

// ChargeRequest 收费请求
type ChargeRequest struct {
	ChargeID         string // 幂等 key（voip-billing-service 生成）
	CustomerRef      string // 网关客户ID
	PaymentMethodRef string // 网关支付方式ID
	Amount           int64  // 金额（最小货币单位）
	Currency         string
	Description      string
	Metadata         map[string]string // 对账元数据：账户ID、套餐ID、积分数量、自动充值标记
}

// ChargeReply 收费响应
type ChargeReply struct {
	TransactionID string // 网关交易号
	Status        string // 收费状态枚举（constants.ChargeStatus*）
}
