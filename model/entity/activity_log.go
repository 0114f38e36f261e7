package entity

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records one audited mutation (ledger writes, order lifecycle).
// Detail holds the operation payload as JSON for later inspection.
type ActivityLog struct {
	LogID     uint           `gorm:"column:log_id;primaryKey;autoIncrement" json:"id"`
	UserID    *uint          `gorm:"column:user_id;index" json:"userId,omitempty"`
	Action    string         `gorm:"column:action;type:varchar(64);not null" json:"action"`
	Entity    string         `gorm:"column:entity;type:varchar(32);not null" json:"entity"`
	RefID     uint           `gorm:"column:ref_id;not null;default:0" json:"refId"`
	Detail    datatypes.JSON `gorm:"column:detail" json:"detail,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (ActivityLog) TableName() string {
	return "activity_log"
}
