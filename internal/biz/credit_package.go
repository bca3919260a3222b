package biz

import (
	"context"
	"math"

	"github.com/go-kratos/kratos/v2/log"
)

// CreditPackage 充值套餐领域对象（只读参考数据）
type CreditPackage struct {
	PackageID string
	Name      string
	Price     float64 // 价格（主货币单位，如美元）
	Credits   int64   // 套餐包含的积分数量
}

// PriceMinorUnits 套餐价格换算为最小货币单位（四舍五入到整数）
func (p *CreditPackage) PriceMinorUnits() int64 {
	return int64(math.Round(p.Price * 100))
}

// CreditPackageRepo 充值套餐数据层接口（定义在 biz 层）
type CreditPackageRepo interface {
	// GetPackageByID 按ID查询套餐，不存在时返回 nil 而非错误
	GetPackageByID(ctx context.Context, packageID string) (*CreditPackage, error)
}

// CreditPackageUseCase 充值套餐业务逻辑
type CreditPackageUseCase struct {
	repo CreditPackageRepo
	log  *log.Helper
}

// NewCreditPackageUseCase 创建充值套餐 UseCase
func NewCreditPackageUseCase(repo CreditPackageRepo, logger log.Logger) *CreditPackageUseCase {
	return &CreditPackageUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// GetPackage 获取套餐
func (uc *CreditPackageUseCase) GetPackage(ctx context.Context, packageID string) (*CreditPackage, error) {
	return uc.repo.GetPackageByID(ctx, packageID)
}
