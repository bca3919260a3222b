package data

import (
	"context"
	"encoding/json"

	"voip-billing-service/internal/biz"
	"voip-billing-service/internal/conf"

	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
)

// 默认通知 topic
const defaultNotifyTopic = "billing_topup_notify"

// mqNotifier 基于 RocketMQ 的充值通知（实现 biz.Notifier）
// 下游 notification-service 消费该 topic 并发送邮件/短信
type mqNotifier struct {
	data  *Data
	topic string
	log   *log.Helper
}

// NewNotifier 创建充值通知发送器（返回 biz.Notifier 接口）
func NewNotifier(data *Data, c *conf.Bootstrap, logger log.Logger) biz.Notifier {
	topic := defaultNotifyTopic
	if c.Data != nil && c.Data.Rocketmq != nil && c.Data.Rocketmq.NotifyTopic != "" {
		topic = c.Data.Rocketmq.NotifyTopic
	}
	return &mqNotifier{
		data:  data,
		topic: topic,
		log:   log.NewHelper(logger),
	}
}

// NotifyTopup 发送充值完成通知（尽力而为）
func (n *mqNotifier) NotifyTopup(ctx context.Context, notification *biz.TopupNotification) error {
	if n.data.mq == nil {
		// MQ 未启用时降级为仅记日志，不视为失败
		n.log.Infof("Notification producer disabled, drop: account_id=%s, transaction_id=%s",
			notification.AccountID, notification.TransactionID)
		return nil
	}

	msgBytes, err := json.Marshal(notification)
	if err != nil {
		return err
	}
	msg := primitive.NewMessage(n.topic, msgBytes)

	if _, err := n.data.mq.SendSync(ctx, msg); err != nil {
		n.log.Errorf("Send notification failed: account_id=%s, error=%v", notification.AccountID, err)
		return err
	}
	return nil
}
