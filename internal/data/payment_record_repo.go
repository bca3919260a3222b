package data

import (
	"context"

	"voip-billing-service/internal/biz"
	"voip-billing-service/internal/data/model"
	billingErrors "voip-billing-service/internal/errors"

	pkgErrors "github.com/gaoyong06/go-pkg/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// paymentRecordRepo 支付记录相关数据访问
type paymentRecordRepo struct {
	data *Data
	log  *log.Helper
}

// NewPaymentRecordRepo 创建支付记录 repo（返回 biz.PaymentRecordRepo 接口）
func NewPaymentRecordRepo(data *Data, logger log.Logger) biz.PaymentRecordRepo {
	return &paymentRecordRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

// CreatePaymentRecord 创建支付记录（只追加，transaction_id 唯一索引保证幂等）
func (r *paymentRecordRepo) CreatePaymentRecord(ctx context.Context, record *biz.PaymentRecord) error {
	if record.PaymentRecordID == "" {
		record.PaymentRecordID = uuid.New().String()
	}

	m := model.PaymentRecord{
		PaymentRecordID: record.PaymentRecordID,
		AccountID:       record.AccountID,
		PackageID:       record.PackageID,
		Amount:          record.Amount,
		Credits:         record.Credits,
		TransactionID:   record.TransactionID,
		Status:          record.Status,
		AutoTopup:       record.AutoTopup,
	}
	if err := r.data.db.WithContext(ctx).Create(&m).Error; err != nil {
		r.log.Errorf("CreatePaymentRecord failed: account_id=%s, transaction_id=%s, error=%v",
			record.AccountID, record.TransactionID, err)
		return pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodePaymentRecordCreateFailed)
	}
	record.CreatedAt = m.CreatedAt

	return nil
}

// ListPaymentRecords 分页查询账户的支付记录
func (r *paymentRecordRepo) ListPaymentRecords(ctx context.Context, accountID string, page, pageSize int) ([]*biz.PaymentRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := r.data.db.WithContext(ctx).Model(&model.PaymentRecord{}).Where("account_id = ?", accountID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodePaymentRecordQueryFailed)
	}

	var ms []model.PaymentRecord
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&ms).Error; err != nil {
		return nil, 0, pkgErrors.WrapErrorWithLang(ctx, err, billingErrors.ErrCodePaymentRecordQueryFailed)
	}

	records := make([]*biz.PaymentRecord, 0, len(ms))
	for _, m := range ms {
		records = append(records, &biz.PaymentRecord{
			PaymentRecordID: m.PaymentRecordID,
			AccountID:       m.AccountID,
			PackageID:       m.PackageID,
			Amount:          m.Amount,
			Credits:         m.Credits,
			TransactionID:   m.TransactionID,
			Status:          m.Status,
			AutoTopup:       m.AutoTopup,
			CreatedAt:       m.CreatedAt,
		})
	}
	return records, total, nil
}
