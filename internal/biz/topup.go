package biz

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"voip-billing-service/internal/constants"
	billingErrors "voip-billing-service/internal/errors"
	"voip-billing-service/internal/metrics"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
)

// BillingRepo 统一数据层接口（用于跨领域事务）
// 包含所有领域的方法，主要用于 BatchDeductUsage 等跨领域事务操作
type BillingRepo interface {
	// 账户相关
	ListTopupCandidates(ctx context.Context, minBalance int64) ([]*Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	CreditBalance(ctx context.Context, accountID string, credits int64) error

	// 套餐相关
	GetPackageByID(ctx context.Context, packageID string) (*CreditPackage, error)

	// 支付记录相关
	CreatePaymentRecord(ctx context.Context, record *PaymentRecord) error
	ListPaymentRecords(ctx context.Context, accountID string, page, pageSize int) ([]*PaymentRecord, int64, error)

	// 事务操作
	BatchDeductUsage(ctx context.Context, events []*UsageEvent) error
}

// RunLocker 批处理运行互斥锁
// 防止上一次运行未结束时下一次调度触发，避免同一账户被重复收费
type RunLocker interface {
	// TryLockRun 尝试获取运行锁
	// 返回 ok=false 表示锁被其他运行持有；err 非空表示锁服务不可用
	TryLockRun(ctx context.Context) (release func(), ok bool, err error)
}

// RunReport 单次批处理运行报告（仅写入日志，不落库）
type RunReport struct {
	Scanned   int           // 扫描的候选账户数
	Processed int           // 实际处理的账户数
	Succeeded int           // 充值成功的账户数
	Skipped   bool          // 因运行锁被占用而跳过本次运行
	Elapsed   time.Duration // 运行耗时
}

// TopupUseCase 自动充值业务逻辑（组合 UseCase）
// 负责协调各个领域 UseCase，驱动批处理与单账户充值流程
type TopupUseCase struct {
	accountUseCase       *AccountUseCase
	packageUseCase       *CreditPackageUseCase
	paymentRecordUseCase *PaymentRecordUseCase

	repo     BillingRepo // 用于跨领域事务
	gateway  PaymentGateway
	notifier Notifier
	locker   RunLocker
	conf     *TopupConfig
	log      *log.Helper
	metrics  *metrics.BillingMetrics
}

// NewTopupUseCase 创建自动充值 UseCase
func NewTopupUseCase(
	accountUseCase *AccountUseCase,
	packageUseCase *CreditPackageUseCase,
	paymentRecordUseCase *PaymentRecordUseCase,
	repo BillingRepo,
	gateway PaymentGateway,
	notifier Notifier,
	locker RunLocker,
	conf *TopupConfig,
	logger log.Logger,
) *TopupUseCase {
	return &TopupUseCase{
		accountUseCase:       accountUseCase,
		packageUseCase:       packageUseCase,
		paymentRecordUseCase: paymentRecordUseCase,
		repo:                 repo,
		gateway:              gateway,
		notifier:             notifier,
		locker:               locker,
		conf:                 conf,
		log:                  log.NewHelper(logger),
		metrics:              metrics.GetMetrics(),
	}
}

// RunAutoTopup 执行一次自动充值批处理
// 启动阶段的失败（锁服务、候选查询）返回错误并中止整个运行；
// 迭代阶段单个账户的失败只记录日志，不影响后续账户
func (uc *TopupUseCase) RunAutoTopup(ctx context.Context) (*RunReport, error) {
	startTime := time.Now()

	// 运行互斥：上一次运行未结束时直接跳过本次调度
	lockStart := time.Now()
	release, ok, err := uc.locker.TryLockRun(ctx)
	if uc.metrics != nil {
		uc.metrics.LockAcquireDuration.Observe(time.Since(lockStart).Seconds())
	}
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.LockAcquireTotal.WithLabelValues(constants.LockResultFailed).Inc()
			uc.metrics.TopupRunTotal.WithLabelValues(constants.RunResultFailed).Inc()
		}
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeTopupRunLockFailed)
	}
	if !ok {
		uc.log.Warn("Previous auto top-up run still active, skipping this run")
		if uc.metrics != nil {
			uc.metrics.LockAcquireTotal.WithLabelValues(constants.LockResultFailed).Inc()
			uc.metrics.TopupRunTotal.WithLabelValues(constants.RunResultSkipped).Inc()
		}
		return &RunReport{Skipped: true, Elapsed: time.Since(startTime)}, nil
	}
	defer release()
	if uc.metrics != nil {
		uc.metrics.LockAcquireTotal.WithLabelValues(constants.LockResultSuccess).Inc()
	}

	candidates, err := uc.accountUseCase.ListTopupCandidates(ctx, uc.conf.MinBalance)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.TopupRunTotal.WithLabelValues(constants.RunResultFailed).Inc()
		}
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeCandidateQueryFailed)
	}

	report := &RunReport{Scanned: len(candidates)}
	uc.log.Infof("Auto top-up run started: threshold=%d, candidates=%d", uc.conf.MinBalance, len(candidates))

	for _, account := range candidates {
		report.Processed++
		result := uc.replenishAccount(ctx, account)
		if uc.metrics != nil {
			uc.metrics.TopupAccountTotal.WithLabelValues(result).Inc()
		}
		if result == constants.TopupResultSuccess {
			report.Succeeded++
		}
	}

	report.Elapsed = time.Since(startTime)
	if uc.metrics != nil {
		uc.metrics.TopupRunTotal.WithLabelValues(constants.RunResultCompleted).Inc()
		uc.metrics.TopupRunDuration.Observe(report.Elapsed.Seconds())
		uc.metrics.TopupRunScanned.Set(float64(report.Scanned))
	}
	uc.log.Infof("Auto top-up run completed: scanned=%d, processed=%d, succeeded=%d, elapsed=%s",
		report.Scanned, report.Processed, report.Succeeded, report.Elapsed)

	return report, nil
}

// replenishAccount 处理单个账户的自动充值
// 每一步都可能失败，任何失败只影响当前账户；返回结果常量用于计数与指标
func (uc *TopupUseCase) replenishAccount(ctx context.Context, account *Account) string {
	// 1. 解析充值套餐，套餐缺失时不发起任何网关调用
	pkg, err := uc.packageUseCase.GetPackage(ctx, account.TopupPackageID)
	if err != nil {
		uc.log.Warnf("GetPackage failed, skip account: account_id=%s, package_id=%s, error=%v",
			account.AccountID, account.TopupPackageID, err)
		return constants.TopupResultSkippedPackage
	}
	if pkg == nil {
		uc.log.Warnf("Package not found, skip account: account_id=%s, package_id=%s",
			account.AccountID, account.TopupPackageID)
		return constants.TopupResultSkippedPackage
	}

	// 2. 查询网关侧默认支付方式
	paymentMethod, err := uc.gateway.GetDefaultPaymentMethod(ctx, account.PaymentCustomerRef)
	if err != nil {
		uc.log.Warnf("GetDefaultPaymentMethod failed, skip account: account_id=%s, customer=%s, error=%v",
			account.AccountID, account.PaymentCustomerRef, err)
		return constants.TopupResultSkippedPaymentMethod
	}
	if paymentMethod == "" {
		uc.log.Warnf("No default payment method, skip account: account_id=%s, customer=%s",
			account.AccountID, account.PaymentCustomerRef)
		return constants.TopupResultSkippedPaymentMethod
	}

	// 3. 发起离线收费（商户发起，无持卡人交互，立即确认）
	chargeID := fmt.Sprintf("%s%s_%d", constants.ChargeIDPrefixTopup, account.AccountID, time.Now().Unix())
	chargeStart := time.Now()
	reply, err := uc.gateway.CreateCharge(ctx, &ChargeRequest{
		ChargeID:         chargeID,
		CustomerRef:      account.PaymentCustomerRef,
		PaymentMethodRef: paymentMethod,
		Amount:           pkg.PriceMinorUnits(),
		Currency:         uc.conf.Currency,
		Description:      fmt.Sprintf("Auto top-up - %s", pkg.Name),
		Metadata: map[string]string{
			constants.MetadataKeyAccountID: account.AccountID,
			constants.MetadataKeyPackageID: pkg.PackageID,
			constants.MetadataKeyCredits:   strconv.FormatInt(pkg.Credits, 10),
			constants.MetadataKeyAutoTopup: "true",
		},
	})
	if uc.metrics != nil {
		uc.metrics.ChargeDuration.Observe(time.Since(chargeStart).Seconds())
	}
	if err != nil {
		uc.log.Warnf("CreateCharge failed, skip account: account_id=%s, charge_id=%s, error=%v",
			account.AccountID, chargeID, err)
		return constants.TopupResultChargeFailed
	}

	// 4. 只有 succeeded 状态才继续入账；其他终态本轮直接跳过，
	// 余额仍低于阈值，下一次调度会重新评估该账户
	if reply.Status != constants.ChargeStatusSucceeded {
		uc.log.Warnf("Charge not succeeded, skip account: account_id=%s, charge_id=%s, status=%s, transaction_id=%s",
			account.AccountID, chargeID, reply.Status, reply.TransactionID)
		return constants.TopupResultChargeFailed
	}

	// 5. 落支付记录。写入失败时绝不入账（入账必须以持久化的支付记录为前提）
	record := &PaymentRecord{
		AccountID:     account.AccountID,
		PackageID:     pkg.PackageID,
		Amount:        pkg.Price,
		Credits:       pkg.Credits,
		TransactionID: reply.TransactionID,
		Status:        constants.PaymentStatusSucceeded,
		AutoTopup:     true,
	}
	if err := uc.paymentRecordUseCase.CreateRecord(ctx, record); err != nil {
		uc.log.Errorf("CreatePaymentRecord failed after charge, credit NOT granted: account_id=%s, transaction_id=%s, error=%v",
			account.AccountID, reply.TransactionID, err)
		return constants.TopupResultRecordFailed
	}

	// 6. 积分入账。支付记录已落库但入账失败属于对账缺口，必须显式暴露，
	// 批处理内不做自动补偿
	if err := uc.accountUseCase.CreditBalance(ctx, account.AccountID, pkg.Credits); err != nil {
		uc.log.Errorf("Reconciliation gap: payment recorded without credit grant: account_id=%s, payment_record_id=%s, transaction_id=%s, credits=%d, error=%v",
			account.AccountID, record.PaymentRecordID, reply.TransactionID, pkg.Credits, err)
		if uc.metrics != nil {
			uc.metrics.ReconciliationGapTotal.Inc()
		}
		return constants.TopupResultCreditFailed
	}

	if uc.metrics != nil {
		uc.metrics.TopupChargeAmount.Add(float64(pkg.PriceMinorUnits()))
		uc.metrics.TopupCreditsGranted.Add(float64(pkg.Credits))
	}

	// 7. 尽力而为的通知，失败不改变充值结果
	if uc.notifier != nil {
		if err := uc.notifier.NotifyTopup(ctx, &TopupNotification{
			AccountID:     account.AccountID,
			Email:         account.Email,
			PackageID:     pkg.PackageID,
			Credits:       pkg.Credits,
			Amount:        pkg.Price,
			TransactionID: reply.TransactionID,
			ToppedUpAt:    time.Now(),
		}); err != nil {
			uc.log.Warnf("NotifyTopup failed: account_id=%s, error=%v", account.AccountID, err)
			if uc.metrics != nil {
				uc.metrics.NotifyTotal.WithLabelValues(constants.ResultFailed).Inc()
			}
		} else if uc.metrics != nil {
			uc.metrics.NotifyTotal.WithLabelValues(constants.ResultSuccess).Inc()
		}
	}

	uc.log.Infof("Auto top-up succeeded: account_id=%s, package_id=%s, credits=%d, amount=%.2f, transaction_id=%s",
		account.AccountID, pkg.PackageID, pkg.Credits, pkg.Price, reply.TransactionID)
	return constants.TopupResultSuccess
}
