package biz

import (
	"context"
	"time"
)

// TopupNotification is the message sent to RocketMQ for the notification service
type TopupNotification struct {
	AccountID     string    `json:"account_id"`
	Email         string    `json:"email"`
	PackageID     string    `json:"package_id"`
	Credits       int64     `json:"credits"`
	Amount        float64   `json:"amount"`
	TransactionID string    `json:"transaction_id"`
	ToppedUpAt    time.Time `json:"topped_up_at"`
}

// Notifier 充值完成通知接口（尽力而为，失败不影响充值结果）
type Notifier interface {
	NotifyTopup(ctx context.Context, n *TopupNotification) error
}
