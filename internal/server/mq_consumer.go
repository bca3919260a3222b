package server

import (
	"context"
	"encoding/json"

	"voip-billing-service/internal/biz"
	"voip-billing-service/internal/conf"

	"github.com/apache/rocketmq-client-go/v2"
	"github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewMQConsumerServer)

// MQConsumerServer consumes call usage events from RocketMQ
type MQConsumerServer struct {
	c       rocketmq.PushConsumer
	usage   *biz.UsageUseCase
	conf    *conf.Rocketmq
	log     *log.Helper
	enabled bool
}

// NewMQConsumerServer creates a RocketMQ consumer server
func NewMQConsumerServer(c *conf.Bootstrap, usage *biz.UsageUseCase, logger log.Logger) *MQConsumerServer {
	if c.Data == nil || c.Data.Rocketmq == nil || !c.Data.Rocketmq.Enabled {
		return &MQConsumerServer{enabled: false}
	}
	mqConf := c.Data.Rocketmq

	r, err := rocketmq.NewPushConsumer(
		consumer.WithNsResolver(primitive.NewPassthroughResolver(mqConf.NameServers)),
		consumer.WithGroupName(mqConf.GroupName),
		consumer.WithRetry(mqConf.RetryTimes),
		consumer.WithConsumeMessageBatchMaxSize(100), // Process up to 100 messages at once
	)
	if err != nil {
		log.NewHelper(logger).Errorf("init consumer error: %v", err)
		return &MQConsumerServer{enabled: false}
	}

	s := &MQConsumerServer{
		c:       r,
		usage:   usage,
		conf:    mqConf,
		log:     log.NewHelper(logger),
		enabled: true,
	}
	return s
}

// Start starts the consumer
func (s *MQConsumerServer) Start(ctx context.Context) error {
	if !s.enabled {
		s.log.Infof("MQConsumerServer is disabled, skipping startup")
		return nil
	}

	if s.c == nil {
		s.log.Warnf("MQConsumerServer consumer is nil, skipping startup")
		return nil
	}

	s.log.Infof("Starting MQConsumerServer, topic: %s", s.conf.UsageTopic)

	// Subscribe
	err := s.c.Subscribe(s.conf.UsageTopic, consumer.MessageSelector{}, s.handler)
	if err != nil {
		s.log.Errorf("Failed to subscribe to topic %s: %v", s.conf.UsageTopic, err)
		// 不返回错误，避免导致整个应用启动失败
		// 在开发环境中，RocketMQ 可能不可用
		return nil
	}

	err = s.c.Start()
	if err != nil {
		s.log.Errorf("Failed to start RocketMQ consumer: %v", err)
		// 不返回错误，避免导致整个应用启动失败
		return nil
	}

	return nil
}

// Stop stops the consumer
func (s *MQConsumerServer) Stop(ctx context.Context) error {
	if !s.enabled || s.c == nil {
		return nil
	}
	s.log.Info("Stopping MQConsumerServer")
	return s.c.Shutdown()
}

func (s *MQConsumerServer) handler(ctx context.Context, msgs ...*primitive.MessageExt) (consumer.ConsumeResult, error) {
	if len(msgs) == 0 {
		return consumer.ConsumeSuccess, nil
	}

	var events []*biz.UsageEvent
	for _, msg := range msgs {
		var event biz.UsageEvent
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			s.log.Errorf("Unmarshal message failed: %v, body: %s", err, string(msg.Body))
			continue
		}
		events = append(events, &event)
	}

	if len(events) > 0 {
		if err := s.usage.BatchDeduct(ctx, events); err != nil {
			s.log.Errorf("BatchDeduct failed: %v", err)
			return consumer.ConsumeRetryLater, nil
		}
	}
	return consumer.ConsumeSuccess, nil
}
