package biz

import (
	"context"
	"time"

	"voip-billing-service/internal/constants"
	"voip-billing-service/internal/metrics"

	"github.com/go-kratos/kratos/v2/log"
)

// UsageEvent is the message received from the telephony switch for one call
type UsageEvent struct {
	CallID     string    `json:"call_id"`
	AccountID  string    `json:"account_id"`
	Seconds    int       `json:"seconds"`
	Credits    int64     `json:"credits"`
	OccurredAt time.Time `json:"occurred_at"`
}

// UsageUseCase 话单扣费业务逻辑
type UsageUseCase struct {
	repo    BillingRepo
	log     *log.Helper
	metrics *metrics.BillingMetrics
}

// NewUsageUseCase 创建话单扣费 UseCase
func NewUsageUseCase(repo BillingRepo, logger log.Logger) *UsageUseCase {
	return &UsageUseCase{
		repo:    repo,
		log:     log.NewHelper(logger),
		metrics: metrics.GetMetrics(),
	}
}

// BatchDeduct 批量扣减通话积分（Consumer 调用）
func (uc *UsageUseCase) BatchDeduct(ctx context.Context, events []*UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	err := uc.repo.BatchDeductUsage(ctx, events)

	if uc.metrics != nil {
		uc.metrics.UsageBatchSize.Observe(float64(len(events)))
		result := constants.ResultSuccess
		if err != nil {
			result = constants.ResultFailed
		}
		uc.metrics.UsageDeductTotal.WithLabelValues(result).Inc()
		if err == nil {
			var total int64
			for _, e := range events {
				total += e.Credits
			}
			uc.metrics.UsageDeductCredits.Add(float64(total))
		}
	}

	return err
}
