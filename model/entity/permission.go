package entity

import "time"

type Permission struct {
	PermissionID uint      `gorm:"column:permission_id;primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"column:name;type:varchar(64);not null;uniqueIndex" json:"name"`
	Description  *string   `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	Resource     string    `gorm:"column:resource;type:varchar(32);not null" json:"resource"`
	Action       string    `gorm:"column:action;type:varchar(16);not null" json:"action"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Permission) TableName() string {
	return "permission"
}
