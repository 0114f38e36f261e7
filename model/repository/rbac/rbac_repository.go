package rbac

import (
	"gorm.io/gorm"

	entity "erp.GO/model/entity"
)

type RbacRepository struct {
	db *gorm.DB
}

func NewRbacRepository(db *gorm.DB) *RbacRepository {
	return &RbacRepository{db: db}
}

func (r *RbacRepository) AllRoles() ([]entity.Role, error) {
	var roles []entity.Role
	err := r.db.Preload("Permissions").Order("role_id").Find(&roles).Error
	return roles, err
}

func (r *RbacRepository) FindRoleByID(id uint) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.Preload("Permissions").First(&role, "role_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RbacRepository) FindRoleByName(name string) (*entity.Role, error) {
	var role entity.Role
	if err := r.db.Preload("Permissions").First(&role, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *RbacRepository) CreateRole(role *entity.Role) error {
	return r.db.Create(role).Error
}

func (r *RbacRepository) DeleteRole(id uint) error {
	return r.db.Delete(&entity.Role{}, "role_id = ?", id).Error
}

func (r *RbacRepository) AllPermissions() ([]entity.Permission, error) {
	var perms []entity.Permission
	err := r.db.Order("permission_id").Find(&perms).Error
	return perms, err
}

func (r *RbacRepository) FindPermissionByID(id uint) (*entity.Permission, error) {
	var p entity.Permission
	if err := r.db.First(&p, "permission_id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RbacRepository) CreatePermission(p *entity.Permission) error {
	return r.db.Create(p).Error
}

func (r *RbacRepository) DeletePermission(id uint) error {
	return r.db.Delete(&entity.Permission{}, "permission_id = ?", id).Error
}

// GrantPermission attaches a permission to a role.
func (r *RbacRepository) GrantPermission(role *entity.Role, p *entity.Permission) error {
	return r.db.Model(role).Association("Permissions").Append(p)
}
