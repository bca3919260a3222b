package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// Account 账户领域对象
type Account struct {
	AccountID          string
	Name               string
	Email              string
	Balance            int64 // 余额（单位：积分），不允许为负
	AutoTopup          bool
	PaymentCustomerRef string // 支付网关客户ID
	TopupPackageID     string // 自动充值套餐ID
	UpdatedAt          time.Time
}

// AccountRepo 账户数据层接口（定义在 biz 层）
type AccountRepo interface {
	// ListTopupCandidates 查询满足自动充值条件的账户：
	// auto_topup 开启、余额低于阈值、已绑定支付客户和充值套餐
	ListTopupCandidates(ctx context.Context, minBalance int64) ([]*Account, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
	CreditBalance(ctx context.Context, accountID string, credits int64) error
}

// AccountUseCase 账户业务逻辑
type AccountUseCase struct {
	repo AccountRepo
	log  *log.Helper
}

// NewAccountUseCase 创建账户 UseCase
func NewAccountUseCase(repo AccountRepo, logger log.Logger) *AccountUseCase {
	return &AccountUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// ListTopupCandidates 查询自动充值候选账户
func (uc *AccountUseCase) ListTopupCandidates(ctx context.Context, minBalance int64) ([]*Account, error) {
	return uc.repo.ListTopupCandidates(ctx, minBalance)
}

// GetAccount 获取账户信息
func (uc *AccountUseCase) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	return uc.repo.GetAccount(ctx, accountID)
}

// CreditBalance 积分入账
func (uc *AccountUseCase) CreditBalance(ctx context.Context, accountID string, credits int64) error {
	return uc.repo.CreditBalance(ctx, accountID, credits)
}
