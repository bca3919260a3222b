package model

import (
	"time"
)

// Account 账户表
type Account struct {
	AccountID          string    `gorm:"primaryKey;type:varchar(36)"`
	Name               string    `gorm:"type:varchar(64);not null"`
	Email              string    `gorm:"type:varchar(128);not null"`
	Balance            int64     `gorm:"not null;default:0"` // 余额（积分），业务保证不为负
	AutoTopup          bool      `gorm:"not null;default:false;index"`
	PaymentCustomerRef string    `gorm:"type:varchar(64);default:''"`
	TopupPackageID     string    `gorm:"type:varchar(36);default:''"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Account) TableName() string {
	return "account"
}
