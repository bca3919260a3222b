package model

import (
	"time"
)

// UsageRecord 话单扣费流水表（只追加，call_id 唯一保证重复投递幂等）
type UsageRecord struct {
	UsageRecordID string    `gorm:"primaryKey;type:varchar(36)"`
	AccountID     string    `gorm:"type:varchar(36);not null;index:idx_account_date,priority:1"`
	CallID        string    `gorm:"type:varchar(64);uniqueIndex"`
	Seconds       int       `gorm:"not null"`
	Credits       int64     `gorm:"not null"` // 实际扣减的积分（可能因余额不足被截断）
	CreatedAt     time.Time `gorm:"autoCreateTime;index:idx_account_date,priority:2"`
}

// TableName 指定表名
func (UsageRecord) TableName() string {
	return "usage_record"
}
