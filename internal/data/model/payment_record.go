package model

import (
	"time"

	"voip-billing-service/internal/constants"
)

// 支付记录状态常量（引用 constants 包中的常量，保持一致性）
const (
	PaymentStatusSucceeded = constants.PaymentStatusSucceeded // 支付成功
	PaymentStatusFailed    = constants.PaymentStatusFailed    // 支付失败
)

// PaymentRecord 支付流水表（只追加，创建后不可变更）
type PaymentRecord struct {
	PaymentRecordID string    `gorm:"primaryKey;type:varchar(36)"`
	AccountID       string    `gorm:"type:varchar(36);not null;index:idx_account_date,priority:1"`
	PackageID       string    `gorm:"type:varchar(36);not null"`
	Amount          float64   `gorm:"type:decimal(10,2);not null"`
	Credits         int64     `gorm:"not null"`
	TransactionID   string    `gorm:"type:varchar(64);uniqueIndex"` // 支付网关交易号
	Status          string    `gorm:"type:enum('succeeded','failed');not null"`
	AutoTopup       bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index:idx_account_date,priority:2"`
}

// TableName 指定表名
func (PaymentRecord) TableName() string {
	return "payment_record"
}
