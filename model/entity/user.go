package entity

import "time"

type User struct {
	UserID    uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"column:username;type:varchar(40);not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"column:password;type:varchar(128);not null" json:"-"`
	Name      string    `gorm:"column:name;type:varchar(64);not null" json:"name"`
	Email     string    `gorm:"column:email;type:varchar(128);not null;uniqueIndex" json:"email"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true" json:"isActive"`
	Roles     []Role    `gorm:"many2many:user_roles;foreignKey:UserID;joinForeignKey:UserID;references:RoleID;joinReferences:RoleID" json:"roles,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "user"
}

// HasRole reports whether the user carries any of the given role names.
func (u *User) HasRole(names ...string) bool {
	for _, r := range u.Roles {
		for _, n := range names {
			if r.Name == n {
				return true
			}
		}
	}
	return false
}

// HasPermission reports whether any of the user's roles grants resource/action.
func (u *User) HasPermission(resource, action string) bool {
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if p.Resource == resource && p.Action == action {
				return true
			}
		}
	}
	return false
}
