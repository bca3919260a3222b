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

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// accountRepo 账户相关数据访问
type accountRepo struct {
	data *Data
	log  *log.Helper
}

// NewAccountRepo 创建账户 repo（返回 biz.AccountRepo 接口）
func NewAccountRepo(data *Data, logger log.Logger) biz.AccountRepo {
	return &accountRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// ListTopupCandidates 查询自动充值候选账户
// 条件：auto_topup 开启、余额严格低于阈值、已绑定支付客户与充值套餐
func (r *accountRepo) ListTopupCandidates(ctx context.Context, minBalance int64) ([]*biz.Account, error) {
	var ms []model.Account
	if err := r.data.db.WithContext(ctx).
		Where("auto_topup = ? AND balance < ? AND payment_customer_ref <> '' AND topup_package_id <> ''", true, minBalance).
		Find(&ms).Error; err != nil {
		r.log.Errorf("ListTopupCandidates failed: min_balance=%d, error=%v", minBalance, err)
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeCandidateQueryFailed)
	}

	accounts := make([]*biz.Account, 0, len(ms))
	for _, m := range ms {
		accounts = append(accounts, toBizAccount(&m))
	}
	return accounts, nil
}

// GetAccount 获取账户信息
func (r *accountRepo) GetAccount(ctx context.Context, accountID string) (*biz.Account, error) {
	if accountID == "" {
		return nil, fmt.Errorf("accountID is required")
	}

	var m model.Account
	if err := r.data.db.WithContext(ctx).Where("account_id = ?", accountID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 账户不存在，返回 nil 而不是错误（业务层决定如何处理）
			return nil, nil
		}
		r.log.Errorf("GetAccount failed: account_id=%s, error=%v", accountID, err)
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeAccountQueryFailed)
	}

	return toBizAccount(&m), nil
}

// CreditBalance 积分入账（行锁保证并发安全）
func (r *accountRepo) CreditBalance(ctx context.Context, accountID string, credits int64) error {
	var newBalance int64
	err := r.data.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Account
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("account_id = ?", accountID).
			First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgErrors.NewBizErrorWithLang(ctx, billingErrors.ErrCodeAccountNotFound)
			}
			return pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeAccountQueryFailed)
		}
		if err := tx.Model(&m).Update("balance", gorm.Expr("balance + ?", credits)).Error; err != nil {
			return pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodeBalanceCreditFailed)
		}
		newBalance = m.Balance + credits
		return nil
	})
	if err != nil {
		return err
	}

	// 更新 Redis 缓存（设置超时避免阻塞）
	balanceKey := fmt.Sprintf("%s%s", constants.RedisKeyBalance, accountID)
	cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cacheCancel()
	if err := r.data.rdb.Set(cacheCtx, balanceKey, fmt.Sprintf("%d", newBalance), 5*time.Minute).Err(); err != nil {
		// 缓存更新失败不影响主流程，只记录日志
		r.log.Warnf("failed to update balance cache in CreditBalance: %v", err)
	}

	return nil
}

// toBizAccount 模型转换为领域对象
func toBizAccount(m *model.Account) *biz.Account {
	return &biz.Account{
		AccountID:          m.AccountID,
		Name:               m.Name,
		Email:              m.Email,
		Balance:            m.Balance,
		AutoTopup:          m.AutoTopup,
		PaymentCustomerRef: m.PaymentCustomerRef,
		TopupPackageID:     m.TopupPackageID,
		UpdatedAt:          m.UpdatedAt,
	}
}
