package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voip-billing-service/internal/biz"
	"voip-billing-service/internal/constants"
	"voip-billing-service/internal/data/model"
	billingErrors "voip-billing-service/internal/errors"
	"voip-billing-service/internal/metrics"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// billingRepo 组合 repo，实现 biz.BillingRepo 接口
type billingRepo struct {
	data              *Data
	log               *log.Helper
	sync              *redsync.Redsync
	metrics           *metrics.BillingMetrics
	accountRepo       biz.AccountRepo
	packageRepo       biz.CreditPackageRepo
	paymentRecordRepo biz.PaymentRecordRepo
}

// NewBillingRepo 创建组合 repo
func NewBillingRepo(
	data *Data,
	sync *redsync.Redsync,
	logger log.Logger,
	accountRepo biz.AccountRepo,
	packageRepo biz.CreditPackageRepo,
	paymentRecordRepo biz.PaymentRecordRepo,
) biz.BillingRepo {
	return &billingRepo{
		data:              data,
		log:               log.NewHelper(logger),
		sync:              sync,
		metrics:           metrics.GetMetrics(),
		accountRepo:       accountRepo,
		packageRepo:       packageRepo,
		paymentRecordRepo: paymentRecordRepo,
	}
}

// ========== 账户相关 ==========

// ListTopupCandidates 查询自动充值候选账户
func (r *billingRepo) ListTopupCandidates(ctx context.Context, minBalance int64) ([]*biz.Account, error) {
	return r.accountRepo.ListTopupCandidates(ctx, minBalance)
}

// GetAccount 获取账户信息
func (r *billingRepo) GetAccount(ctx context.Context, accountID string) (*biz.Account, error) {
	return r.accountRepo.GetAccount(ctx, accountID)
}

// CreditBalance 积分入账
func (r *billingRepo) CreditBalance(ctx context.Context, accountID string, credits int64) error {
	return r.accountRepo.CreditBalance(ctx, accountID, credits)
}

// ========== 套餐相关 ==========

// GetPackageByID 按ID查询套餐
func (r *billingRepo) GetPackageByID(ctx context.Context, packageID string) (*biz.CreditPackage, error) {
	return r.packageRepo.GetPackageByID(ctx, packageID)
}

// ========== 支付记录相关 ==========

// CreatePaymentRecord 创建支付记录
func (r *billingRepo) CreatePaymentRecord(ctx context.Context, record *biz.PaymentRecord) error {
	return r.paymentRecordRepo.CreatePaymentRecord(ctx, record)
}

// ListPaymentRecords 分页查询支付记录
func (r *billingRepo) ListPaymentRecords(ctx context.Context, accountID string, page, pageSize int) ([]*biz.PaymentRecord, int64, error) {
	return r.paymentRecordRepo.ListPaymentRecords(ctx, accountID, page, pageSize)
}

// ========== 事务操作 ==========

// BatchDeductUsage 批量话单扣费（Consumer调用）
// 按账户加分布式锁防止多实例并发扣费；单个事务内处理整批事件；
// call_id 唯一，重复投递的话单直接跳过；扣减金额以余额为上限（余额不为负）
func (r *billingRepo) BatchDeductUsage(ctx context.Context, events []*biz.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	// 按账户去重后加锁
	mutexes := make(map[string]*redsync.Mutex)
	if r.sync != nil {
		for _, event := range events {
			if _, ok := mutexes[event.AccountID]; ok {
				continue
			}
			lockKey := fmt.Sprintf("%s%s", constants.RedisKeyUsageLock, event.AccountID)
			lockStartTime := time.Now()
			mutex := r.sync.NewMutex(lockKey, redsync.WithExpiry(5*time.Second))
			if err := mutex.LockContext(ctx); err != nil {
				r.log.Errorf("Failed to acquire usage lock: account_id=%s, error=%v", event.AccountID, err)
				if r.metrics != nil {
					r.metrics.LockAcquireTotal.WithLabelValues(constants.LockResultFailed).Inc()
					r.metrics.LockAcquireDuration.Observe(time.Since(lockStartTime).Seconds())
				}
				r.unlockAll(mutexes)
				return pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeUsageLockFailed)
			}
			if r.metrics != nil {
				r.metrics.LockAcquireTotal.WithLabelValues(constants.LockResultSuccess).Inc()
				r.metrics.LockAcquireDuration.Observe(time.Since(lockStartTime).Seconds())
			}
			mutexes[event.AccountID] = mutex
		}
	}
	defer r.unlockAll(mutexes)

	newBalances := make(map[string]int64)

	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, event := range events {
			// 重复投递检查（call_id 唯一）
			var count int64
			if err := tx.Model(&model.UsageRecord{}).
				Where("call_id = ?", event.CallID).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				r.log.Infof("Usage event already processed, skip: call_id=%s", event.CallID)
				continue
			}

			var account model.Account
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("account_id = ?", event.AccountID).
				First(&account).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					r.log.Warnf("Account not found for usage event, skip: call_id=%s, account_id=%s",
						event.CallID, event.AccountID)
					continue
				}
				return err
			}

			// 余额不允许为负，扣减金额以当前余额为上限
			deducted := event.Credits
			if deducted > account.Balance {
				r.log.Warnf("Insufficient balance for usage event, clamping: account_id=%s, call_id=%s, credits=%d, balance=%d",
					event.AccountID, event.CallID, event.Credits, account.Balance)
				deducted = account.Balance
			}

			if deducted > 0 {
				if err := tx.Model(&account).
					Update("balance", gorm.Expr("balance - ?", deducted)).Error; err != nil {
					r.log.Errorf("Failed to deduct balance in batch: %v", err)
					return err
				}
			}

			record := model.UsageRecord{
				UsageRecordID: uuid.New().String(),
				AccountID:     event.AccountID,
				CallID:        event.CallID,
				Seconds:       event.Seconds,
				Credits:       deducted,
				CreatedAt:     event.OccurredAt,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}

			newBalances[event.AccountID] = account.Balance - deducted
		}
		return nil
	})
	if err != nil {
		return pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeUsageDeductFailed)
	}

	// 事务提交成功后，更新 Redis 缓存（设置超时避免阻塞）
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cacheCancel()
	for accountID, balance := range newBalances {
		balanceKey := fmt.Sprintf("%s%s", constants.RedisKeyBalance, accountID)
		if err := r.data.rdb.Set(cacheCtx, balanceKey, fmt.Sprintf("%d", balance), 5*time.Minute).Err(); err != nil {
			// 缓存更新失败不影响主流程，只记录日志
			r.log.Warnf("failed to update balance cache in BatchDeductUsage: %v", err)
		}
	}

	return nil
}

// unlockAll 释放本批次持有的全部账户锁
func (r *billingRepo) unlockAll(mutexes map[string]*redsync.Mutex) {
	for accountID, mutex := range mutexes {
		if ok, err := mutex.Unlock(); !ok || err != nil {
			r.log.Warnf("Failed to unlock usage lock: account_id=%s, error=%v", accountID, err)
		}
	}
}
