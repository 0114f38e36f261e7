package entity

import "time"

type Role struct {
	RoleID      uint         `gorm:"column:role_id;primaryKey;autoIncrement" json:"id"`
	Name        string       `gorm:"column:name;type:varchar(50);not null;uniqueIndex" json:"name"`
	Description *string      `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	Permissions []Permission `gorm:"many2many:role_permissions;foreignKey:RoleID;joinForeignKey:RoleID;references:PermissionID;joinReferences:PermissionID" json:"permissions,omitempty"`
	CreatedAt   time.Time    `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time    `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (Role) TableName() string {
	return "role"
}
