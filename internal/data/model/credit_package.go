package model

import (
	"time"
)

// CreditPackage 充值套餐表（只读参考数据）
type CreditPackage struct {
	PackageID string    `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"type:varchar(64);not null"`
	Price     float64   `gorm:"type:decimal(10,2);not null"`
	Credits   int64     `gorm:"not null"`
	Enabled   bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (CreditPackage) TableName() string {
	return "credit_package"
}
