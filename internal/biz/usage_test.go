package biz

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageUseCase_BatchDeduct(t *testing.T) {
	ctx := context.Background()
	logger := log.NewStdLogger(io.Discard)

	t.Run("Empty batch is a no-op", func(t *testing.T) {
		repo := &fakeBillingRepo{}
		uc := NewUsageUseCase(repo, logger)

		err := uc.BatchDeduct(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, repo.batches)
	})

	t.Run("Events are passed through in one batch", func(t *testing.T) {
		repo := &fakeBillingRepo{}
		uc := NewUsageUseCase(repo, logger)

		events := []*UsageEvent{
			{CallID: "call-1", AccountID: "acc1", Seconds: 60, Credits: 2, OccurredAt: time.Now()},
			{CallID: "call-2", AccountID: "acc2", Seconds: 125, Credits: 5, OccurredAt: time.Now()},
		}
		err := uc.BatchDeduct(ctx, events)
		require.NoError(t, err)
		require.Len(t, repo.batches, 1)
		assert.Equal(t, events, repo.batches[0])
	})

	t.Run("Repository error propagates", func(t *testing.T) {
		repo := &fakeBillingRepo{deductErr: errors.New("deadlock")}
		uc := NewUsageUseCase(repo, logger)

		err := uc.BatchDeduct(ctx, []*UsageEvent{{CallID: "call-1", AccountID: "acc1", Credits: 2}})
		assert.Error(t, err)
	})
}
