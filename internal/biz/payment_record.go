package biz

import (
	"context"
	"time"

	"github.com/go-kratos/kratos/v2/log"
)

// PaymentRecord 支付记录领域对象
// 仅在网关收费成功后创建，创建后不可变更，是积分入账的唯一依据
type PaymentRecord struct {
	PaymentRecordID string
	AccountID       string
	PackageID       string
	Amount          float64 // 实付金额（主货币单位）
	Credits         int64   // 本次购买的积分数量
	TransactionID   string  // 网关交易号
	Status          string
	AutoTopup       bool
	CreatedAt       time.Time
}

// PaymentRecordRepo 支付记录数据层接口（定义在 biz 层）
type PaymentRecordRepo interface {
	CreatePaymentRecord(ctx context.Context, record *PaymentRecord) error
	ListPaymentRecords(ctx context.Context, accountID string, page, pageSize int) ([]*PaymentRecord, int64, error)
}

// PaymentRecordUseCase 支付记录业务逻辑
type PaymentRecordUseCase struct {
	repo PaymentRecordRepo
	log  *log.Helper
}

// NewPaymentRecordUseCase 创建支付记录 UseCase
func NewPaymentRecordUseCase(repo PaymentRecordRepo, logger log.Logger) *PaymentRecordUseCase {
	return &PaymentRecordUseCase{
		repo: repo,
		log:  log.NewHelper(logger),
	}
}

// CreateRecord 创建支付记录
func (uc *PaymentRecordUseCase) CreateRecord(ctx context.Context, record *PaymentRecord) error {
	return uc.repo.CreatePaymentRecord(ctx, record)
}

// ListRecords 获取支付记录列表
func (uc *PaymentRecordUseCase) ListRecords(ctx context.Context, accountID string, page, pageSize int) ([]*PaymentRecord, int64, error) {
	return uc.repo.ListPaymentRecords(ctx, accountID, page, pageSize)
}
