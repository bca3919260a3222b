package data

import (
	"context"
	"encoding/json"
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
)

// creditPackageRepo 充值套餐相关数据访问
type creditPackageRepo struct {
	data *Data
	log  *log.Helper
}

// NewCreditPackageRepo 创建充值套餐 repo（返回 biz.CreditPackageRepo 接口）
func NewCreditPackageRepo(data *Data, logger log.Logger) biz.CreditPackageRepo {
	return &creditPackageRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// GetPackageByID 按ID查询启用的套餐
// 套餐为只读参考数据，同一ID在一次批处理内的多次查询结果一致；
// 不存在时返回 nil 而非错误（业务层处理为跳过该账户）
func (r *creditPackageRepo) GetPackageByID(ctx context.Context, packageID string) (*biz.CreditPackage, error) {
	if packageID == "" {
		return nil, nil
	}

	// 先尝试从 Redis 获取
	packageKey := fmt.Sprintf("%s%s", constants.RedisKeyPackage, packageID)
	cached, err := r.data.rdb.Get(ctx, packageKey).Result()
	if err == nil {
		var pkg biz.CreditPackage
		if err := json.Unmarshal([]byte(cached), &pkg); err == nil {
			return &pkg, nil
		}
	}

	// 缓存未命中，从数据库查询
	var m model.CreditPackage
	if err := r.data.db.WithContext(ctx).
		Where("package_id = ? AND enabled = ?", packageID, true).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.log.Errorf("GetPackageByID failed: package_id=%s, error=%v", packageID, err)
		return nil, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodePackageQueryFailed)
	}

	result := &biz.CreditPackage{
		PackageID: m.PackageID,
		Name:      m.Name,
		Price:     m.Price,
		Credits:   m.Credits,
	}

	// 更新缓存（设置超时避免阻塞）
	if data, err := json.Marshal(result); err == nil {
		cacheCtx, cacheCancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cacheCancel()
		if err := r.data.rdb.Set(cacheCtx, packageKey, data, 5*time.Minute).Err(); err != nil {
			// 缓存更新失败不影响主流程，只记录日志
			r.log.Warnf("failed to update package cache: %v", err)
		}
	}

	return result, nil
}
